//go:build unix

package target

import (
	"io/fs"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/repatch/pkg/errors"
)

// flakyFs refuses the first writes with EBUSY.
type flakyFs struct {
	afero.Fs
	failures int
	attempts int
}

func (f *flakyFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR) != 0 {
		f.attempts++
		if f.attempts <= f.failures {
			return nil, &os.PathError{Op: "open", Path: name, Err: syscall.EBUSY}
		}
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func seed(t *testing.T, fsys afero.Fs, path, content string, mode os.FileMode) time.Time {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), mode))
	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, fsys.Chtimes(path, mtime, mtime))
	return mtime
}

func TestStore_Load(t *testing.T) {
	mem := afero.NewMemMapFs()
	seed(t, mem, "/app/main.js", "hello", 0644)
	s := NewStore(mem)

	data, err := s.Load("/app/main.js")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	_, err = s.Load("/app/missing.js")
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileAccess))
}

func TestStore_BackupSuffix(t *testing.T) {
	mem := afero.NewMemMapFs()
	mtime := seed(t, mem, "/app/main.js", "original", 0750)
	s := NewStore(mem)

	res, err := s.Backup("/app/main.js")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "/app/main.js.bak", res.Path)
	assert.Equal(t, "/app/main.js", res.Source)

	data, err := afero.ReadFile(mem, "/app/main.js.bak")
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))

	info, err := mem.Stat("/app/main.js.bak")
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0750), info.Mode().Perm())
	assert.True(t, info.ModTime().Equal(mtime))
}

func TestStore_BackupKeepsExisting(t *testing.T) {
	mem := afero.NewMemMapFs()
	seed(t, mem, "/app/main.js", "patched", 0644)
	seed(t, mem, "/app/main.js.orig", "pristine", 0644)
	s := NewStore(mem, WithBackupSuffix(".orig"))

	res, err := s.Backup("/app/main.js")
	require.NoError(t, err)
	assert.False(t, res.Created)

	data, err := afero.ReadFile(mem, "/app/main.js.orig")
	require.NoError(t, err)
	assert.Equal(t, "pristine", string(data))
}

func TestStore_BackupDir(t *testing.T) {
	mem := afero.NewMemMapFs()
	seed(t, mem, "/app/res/main.js", "original", 0644)

	res, err := NewStore(mem, WithBackupDir("backups")).Backup("/app/res/main.js")
	require.NoError(t, err)
	assert.Equal(t, "/app/res/backups/main.js", res.Path)
	exists, err := afero.Exists(mem, res.Path)
	require.NoError(t, err)
	assert.True(t, exists)

	assert.Equal(t, "/var/bak/main.js", NewStore(mem, WithBackupDir("/var/bak")).BackupPath("/app/res/main.js"))
}

func TestStore_BackupMissingSource(t *testing.T) {
	_, err := NewStore(afero.NewMemMapFs()).Backup("/nope")
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileAccess))
}

func TestStore_SaveKeepsMode(t *testing.T) {
	mem := afero.NewMemMapFs()
	seed(t, mem, "/app/main.js", "old content", 0600)

	require.NoError(t, NewStore(mem).Save("/app/main.js", []byte("new")))

	data, err := afero.ReadFile(mem, "/app/main.js")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
	info, err := mem.Stat("/app/main.js")
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0600), info.Mode().Perm())
}

func TestStore_SaveReadOnlyIsBusy(t *testing.T) {
	mem := afero.NewMemMapFs()
	seed(t, mem, "/app/main.js", "old", 0644)

	err := NewStore(afero.NewReadOnlyFs(mem)).Save("/app/main.js", []byte("new"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrResourceBusy))
	assert.Contains(t, errors.GetHint(err), "try again")
	assert.Equal(t, "/app/main.js", errors.GetErrorDetails(err)["path"])
}

func TestStore_SaveRetriesBusyWrite(t *testing.T) {
	mem := afero.NewMemMapFs()
	seed(t, mem, "/app/main.js", "old", 0644)
	flaky := &flakyFs{Fs: mem, failures: 2}

	var waits []time.Duration
	s := NewStore(flaky, WithRetries(2, time.Second), WithSleep(func(d time.Duration) { waits = append(waits, d) }))

	require.NoError(t, s.Save("/app/main.js", []byte("new")))
	assert.Equal(t, 3, flaky.attempts)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, waits)

	data, err := afero.ReadFile(mem, "/app/main.js")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestStore_SaveGivesUpAfterRetries(t *testing.T) {
	mem := afero.NewMemMapFs()
	seed(t, mem, "/app/main.js", "old", 0644)
	flaky := &flakyFs{Fs: mem, failures: 5}

	s := NewStore(flaky, WithRetries(1, 0), WithSleep(func(time.Duration) {}))
	err := s.Save("/app/main.js", []byte("new"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrResourceBusy))
	assert.Equal(t, 2, flaky.attempts)
}

func TestStore_SaveOtherErrorsAreNotRetried(t *testing.T) {
	mem := afero.NewMemMapFs()
	s := NewStore(mem, WithRetries(3, 0))
	s.busy = func(error) bool { return false }
	s.fs = &flakyFs{Fs: mem, failures: 1}

	err := s.Save("/app/main.js", []byte("new"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileWrite))
}

func TestIsBusy(t *testing.T) {
	assert.True(t, isBusy(&os.PathError{Op: "open", Path: "x", Err: syscall.EBUSY}))
	assert.True(t, isBusy(fs.ErrPermission))
	assert.False(t, isBusy(fs.ErrNotExist))
}
