//go:build unix

package target

import (
	stderrors "errors"
	"io/fs"

	"golang.org/x/sys/unix"
)

func isBusy(err error) bool {
	return stderrors.Is(err, unix.EBUSY) ||
		stderrors.Is(err, unix.ETXTBSY) ||
		stderrors.Is(err, fs.ErrPermission)
}
