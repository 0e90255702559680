package target

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arthur-debert/repatch/pkg/errors"
	"github.com/arthur-debert/repatch/pkg/logging"
	"github.com/arthur-debert/repatch/pkg/types"
)

// DefaultBackupSuffix is appended to the target name for sibling backups.
const DefaultBackupSuffix = ".bak"

// Store implements types.TargetStore on an afero filesystem.
type Store struct {
	fs        afero.Fs
	suffix    string
	backupDir string
	retries   int
	delay     time.Duration
	sleep     func(time.Duration)
	busy      func(error) bool
	logger    zerolog.Logger
}

var _ types.TargetStore = (*Store)(nil)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithBackupSuffix sets the suffix of sibling backups.
func WithBackupSuffix(suffix string) StoreOption {
	return func(s *Store) {
		if suffix != "" {
			s.suffix = suffix
		}
	}
}

// WithBackupDir switches to the directory strategy: backups are copied
// into dir under the target's own name. A relative dir is resolved
// against the target's directory.
func WithBackupDir(dir string) StoreOption {
	return func(s *Store) { s.backupDir = dir }
}

// WithRetries makes Save retry a busy write n more times, waiting delay
// between attempts.
func WithRetries(n int, delay time.Duration) StoreOption {
	return func(s *Store) {
		s.retries = n
		s.delay = delay
	}
}

// WithSleep replaces the wait between write attempts.
func WithSleep(sleep func(time.Duration)) StoreOption {
	return func(s *Store) { s.sleep = sleep }
}

// NewStore creates a Store.
func NewStore(fs afero.Fs, opts ...StoreOption) *Store {
	s := &Store{
		fs:     fs,
		suffix: DefaultBackupSuffix,
		sleep:  time.Sleep,
		busy:   isBusy,
		logger: logging.GetLogger("target.store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the whole file.
func (s *Store) Load(path string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", path).
			WithDetail("path", path)
	}
	s.logger.Debug().Str("path", path).Int("bytes", len(data)).Msg("Loaded target")
	return data, nil
}

// BackupPath returns where the backup of path lives.
func (s *Store) BackupPath(path string) string {
	if s.backupDir == "" {
		return path + s.suffix
	}
	dir := s.backupDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(filepath.Dir(path), dir)
	}
	return filepath.Join(dir, filepath.Base(path))
}

// Backup copies path aside, keeping its mode and modification time. An
// existing backup is left alone: it holds the pristine file from before
// the first patch.
func (s *Store) Backup(path string) (types.BackupResult, error) {
	dest := s.BackupPath(path)
	result := types.BackupResult{Source: path, Path: dest}

	if _, err := s.fs.Stat(dest); err == nil {
		s.logger.Info().Str("backup", dest).Msg("Backup already exists, keeping it")
		return result, nil
	} else if !os.IsNotExist(err) {
		return result, errors.Wrapf(err, errors.ErrBackup, "cannot check backup %s", dest).
			WithDetail("path", dest)
	}

	info, err := s.fs.Stat(path)
	if err != nil {
		return result, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", path).
			WithDetail("path", path)
	}

	if err := s.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return result, errors.Wrapf(err, errors.ErrBackup, "cannot create backup directory for %s", dest).
			WithDetail("path", dest)
	}
	if err := s.copyFile(path, dest, info); err != nil {
		return result, errors.Wrapf(err, errors.ErrBackup, "cannot back up %s", path).
			WithDetail("path", dest)
	}

	s.logger.Info().Str("source", path).Str("backup", dest).Msg("Backup created")
	result.Created = true
	return result, nil
}

func (s *Store) copyFile(src, dest string, info os.FileInfo) error {
	in, err := s.fs.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := s.fs.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if err := s.fs.Chmod(dest, info.Mode().Perm()); err != nil {
		return err
	}
	return s.fs.Chtimes(dest, info.ModTime(), info.ModTime())
}

// Save writes data over path, keeping the file's mode. A write refused
// because the file is in use is retried as configured and then reported
// as ErrResourceBusy.
func (s *Store) Save(path string, data []byte) error {
	mode := os.FileMode(0644)
	if info, err := s.fs.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	var err error
	for attempt := 0; ; attempt++ {
		err = afero.WriteFile(s.fs, path, data, mode)
		if err == nil {
			s.logger.Info().Str("path", path).Int("bytes", len(data)).Msg("Target written")
			return nil
		}
		if !s.busy(err) {
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", path).
				WithDetail("path", path)
		}
		if attempt >= s.retries {
			break
		}
		s.logger.Warn().
			Err(err).
			Str("path", path).
			Int("attempt", attempt+1).
			Dur("delay", s.delay).
			Msg("Target busy, retrying")
		s.sleep(s.delay)
	}

	return errors.Wrapf(err, errors.ErrResourceBusy, "%s is in use", path).
		WithDetail("path", path).
		WithHint("close the application using it and try again")
}
