//go:build !unix && !windows

package target

import (
	stderrors "errors"
	"io/fs"
)

func isBusy(err error) bool {
	return stderrors.Is(err, fs.ErrPermission)
}
