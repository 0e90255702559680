// Package core runs a patch set against its target.
//
// A run builds the rules (rendering templated fields), validates all of
// them, locates and loads the target, applies the rules in order and,
// unless it is a dry run, backs the file up and writes the result. The
// target is only touched through types.TargetLocator and
// types.TargetStore, so the pipeline is tested without a filesystem.
package core
