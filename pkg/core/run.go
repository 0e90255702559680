package core

import (
	"bytes"

	"github.com/arthur-debert/repatch/pkg/errors"
	"github.com/arthur-debert/repatch/pkg/logging"
	"github.com/arthur-debert/repatch/pkg/patch"
	"github.com/arthur-debert/repatch/pkg/rules"
	"github.com/arthur-debert/repatch/pkg/types"
)

// RunOptions holds everything a run needs.
type RunOptions struct {
	PatchSet *rules.PatchSet
	Locator  types.TargetLocator
	Store    types.TargetStore
	// Engine defaults to patch.New().
	Engine *patch.Engine
	// Values defaults to a source without user overrides.
	Values *rules.Values
	// DryRun computes outcomes without backing up or writing.
	DryRun bool
}

// Run applies a patch set to its target.
//
// The result is returned together with an error when the run fails after
// the rules were applied (backup or write), so callers can still report
// what the rules did.
func Run(opts RunOptions) (*types.RunResult, error) {
	logger := logging.GetLogger("core.run")
	defer logging.LogOperationStart(logger, "run")()

	if opts.PatchSet == nil || opts.Locator == nil || opts.Store == nil {
		return nil, errors.New(errors.ErrInternal, "run needs a patch set, a locator and a store")
	}
	engine := opts.Engine
	if engine == nil {
		engine = patch.New()
	}
	values := opts.Values
	if values == nil {
		values = rules.NewValues(nil)
	}

	compiled, err := Compile(engine, opts.PatchSet, values)
	if err != nil {
		return nil, err
	}

	result := &types.RunResult{
		PatchSet: opts.PatchSet.DisplayName(),
		DryRun:   opts.DryRun,
	}

	path, err := opts.Locator.Locate()
	if err != nil {
		return nil, err
	}
	result.Target = path

	original, err := opts.Store.Load(path)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("patchset", result.PatchSet).
		Str("target", path).
		Int("rules", len(compiled)).
		Bool("dryRun", opts.DryRun).
		Msg("Applying patch set")

	data, outcomes, err := engine.ApplyAllCompiled(original, compiled)
	if err != nil {
		return nil, err
	}
	result.Outcomes = outcomes
	result.Values = values.Used()
	if keys := values.Keys(); len(keys) > 0 {
		logger.Debug().Strs("values", keys).Msg("Template values in use")
	}

	if bytes.Equal(original, data) {
		result.Unchanged = true
		logger.Info().Str("target", path).Msg("Target unchanged, nothing to write")
		return result, nil
	}
	if opts.DryRun {
		logger.Info().Str("target", path).Msg("Dry run, not writing")
		return result, nil
	}

	backup, err := opts.Store.Backup(path)
	if err != nil {
		return result, err
	}
	result.Backup = &backup

	if err := opts.Store.Save(path, data); err != nil {
		return result, err
	}
	result.Saved = true

	logger.Info().
		Str("target", path).
		Int("applied", result.Count(patch.StatusApplied)).
		Int("reapplied", result.Count(patch.StatusReapplied)).
		Int("skipped", result.Count(patch.StatusSkipped)).
		Int("partial", result.Count(patch.StatusPartial)).
		Msg("Patch set applied")
	return result, nil
}

// Compile builds and validates every rule of set without touching the
// target.
func Compile(engine *patch.Engine, set *rules.PatchSet, values *rules.Values) ([]*patch.Compiled, error) {
	built, err := set.Build(values)
	if err != nil {
		return nil, err
	}
	return engine.CompileAll(built)
}
