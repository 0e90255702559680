package target

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arthur-debert/repatch/pkg/errors"
	"github.com/arthur-debert/repatch/pkg/logging"
	"github.com/arthur-debert/repatch/pkg/rules"
)

// Locator resolves the target file of a patch set.
type Locator struct {
	fs       afero.Fs
	spec     rules.TargetSpec
	explicit string
	goos     string
	getenv   func(string) string
	home     func() (string, error)
	logger   zerolog.Logger
}

// LocatorOption configures a Locator.
type LocatorOption func(*Locator)

// WithExplicit sets a path given by the user. It wins over any search.
func WithExplicit(path string) LocatorOption {
	return func(l *Locator) { l.explicit = path }
}

// WithGOOS selects which search list is used.
func WithGOOS(goos string) LocatorOption {
	return func(l *Locator) { l.goos = goos }
}

// WithEnv replaces the environment lookup used for expansion and PATH.
func WithEnv(getenv func(string) string) LocatorOption {
	return func(l *Locator) { l.getenv = getenv }
}

// WithHome replaces the home directory lookup used to expand ~.
func WithHome(home func() (string, error)) LocatorOption {
	return func(l *Locator) { l.home = home }
}

// NewLocator creates a Locator for spec.
func NewLocator(fs afero.Fs, spec rules.TargetSpec, opts ...LocatorOption) *Locator {
	l := &Locator{
		fs:     fs,
		spec:   spec,
		goos:   runtime.GOOS,
		getenv: os.Getenv,
		home:   os.UserHomeDir,
		logger: logging.GetLogger("target.locator"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Locate returns the first existing candidate.
func (l *Locator) Locate() (string, error) {
	if l.explicit != "" {
		path, err := l.expand(l.explicit)
		if err != nil {
			return "", err
		}
		if !l.isFile(path) {
			return "", errors.Newf(errors.ErrTargetNotFound, "target %s does not exist", path).
				WithDetail("path", path)
		}
		l.logger.Debug().Str("path", path).Msg("Using explicit target")
		return path, nil
	}

	if l.spec.File == "" {
		return "", errors.New(errors.ErrTargetNotFound, "patch set does not name a target file").
			WithHint("pass --target")
	}

	candidates, err := l.Candidates()
	if err != nil {
		return "", err
	}
	for _, path := range candidates {
		if l.isFile(path) {
			l.logger.Debug().Str("path", path).Msg("Found target")
			return path, nil
		}
		l.logger.Trace().Str("path", path).Msg("Target candidate missing")
	}

	return "", errors.Newf(errors.ErrTargetNotFound, "could not find %s", l.spec.File).
		WithDetail("candidates", candidates).
		WithHint("pass --target with the full path of the file")
}

// Candidates lists every path Locate would try, in order, without the
// explicit path.
func (l *Locator) Candidates() ([]string, error) {
	var out []string
	for _, dir := range l.spec.Search[l.goos] {
		expanded, err := l.expand(dir)
		if err != nil {
			return nil, err
		}
		out = append(out, filepath.Join(expanded, l.spec.File))
	}
	if l.spec.PathBinary != "" {
		for _, dir := range l.binaryDirs() {
			out = append(out, filepath.Join(filepath.Dir(dir), l.spec.File))
		}
	}
	return out, nil
}

// binaryDirs returns the PATH entries that hold the binary.
func (l *Locator) binaryDirs() []string {
	names := []string{l.spec.PathBinary}
	if l.goos == "windows" && filepath.Ext(l.spec.PathBinary) == "" {
		exts := l.getenv("PATHEXT")
		if exts == "" {
			exts = ".com;.exe;.bat;.cmd"
		}
		names = names[:0]
		for _, ext := range strings.Split(exts, ";") {
			if ext != "" {
				names = append(names, l.spec.PathBinary+strings.ToLower(ext))
			}
		}
	}

	var dirs []string
	for _, dir := range filepath.SplitList(l.getenv("PATH")) {
		if dir == "" {
			continue
		}
		for _, name := range names {
			if l.isFile(filepath.Join(dir, name)) {
				dirs = append(dirs, dir)
				break
			}
		}
	}
	return dirs
}

func (l *Locator) expand(path string) (string, error) {
	path = os.Expand(path, l.getenv)
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := l.home()
		if err != nil {
			return "", errors.Wrap(err, errors.ErrTargetNotFound, "cannot expand ~").
				WithDetail("path", path)
		}
		if home == "" {
			return "", errors.New(errors.ErrTargetNotFound, "cannot expand ~: home directory unknown").
				WithDetail("path", path)
		}
		path = filepath.Join(home, path[1:])
	}
	return filepath.Clean(path), nil
}

func (l *Locator) isFile(path string) bool {
	info, err := l.fs.Stat(path)
	return err == nil && !info.IsDir()
}
