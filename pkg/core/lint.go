package core

import (
	"github.com/arthur-debert/repatch/pkg/errors"
	"github.com/arthur-debert/repatch/pkg/logging"
	"github.com/arthur-debert/repatch/pkg/patch"
	"github.com/arthur-debert/repatch/pkg/rules"
)

const lintPlaceholder = "placeholder"

// LintResult is the outcome of checking one patch set file.
type LintResult struct {
	Path  string   `json:"path"`
	Name  string   `json:"name,omitempty"`
	Rules []string `json:"rules,omitempty"`
	Error error    `json:"-"`
	// Message is Error rendered for JSON output.
	Message string `json:"error,omitempty"`
}

// OK reports whether the set loaded and every rule compiled.
func (r LintResult) OK() bool {
	return r.Error == nil
}

// Lint loads each patch set and compiles its rules. Templated values are
// generated but never written anywhere, and vars the user did not
// supply are filled with a placeholder so sets needing --var can still be
// checked.
func Lint(loader func(path string) (*rules.PatchSet, error), engine *patch.Engine, paths []string, overrides map[string]string) []LintResult {
	logger := logging.GetLogger("core.lint")
	if engine == nil {
		engine = patch.New()
	}

	results := make([]LintResult, 0, len(paths))
	for _, path := range paths {
		result := LintResult{Path: path}

		set, err := loader(path)
		if err == nil {
			result.Name = set.Name
			values := rules.NewValues(overrides).WithPlaceholder(lintPlaceholder)
			var compiled []*patch.Compiled
			compiled, err = Compile(engine, set, values)
			for _, c := range compiled {
				result.Rules = append(result.Rules, c.Rule.Label())
			}
		}
		if err != nil {
			result.Error = err
			result.Message = err.Error()
			logger.Debug().Str("path", path).Str("code", string(errors.GetErrorCode(err))).Msg("Patch set failed lint")
		}
		results = append(results, result)
	}
	return results
}
