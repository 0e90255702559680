//go:build windows

package target

import (
	stderrors "errors"
	"io/fs"

	"golang.org/x/sys/windows"
)

func isBusy(err error) bool {
	return stderrors.Is(err, windows.ERROR_SHARING_VIOLATION) ||
		stderrors.Is(err, windows.ERROR_LOCK_VIOLATION) ||
		stderrors.Is(err, fs.ErrPermission)
}
