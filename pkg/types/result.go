package types

import "github.com/arthur-debert/repatch/pkg/patch"

// RunResult collects everything a patch run did, for rendering.
type RunResult struct {
	PatchSet string          `json:"patch_set"`
	Target   string          `json:"target"`
	DryRun   bool            `json:"dry_run"`
	Outcomes []patch.Outcome `json:"outcomes"`
	// Values holds the generated or user supplied values rendered into
	// the rules, by key.
	Values map[string]string `json:"values,omitempty"`
	Backup *BackupResult     `json:"backup,omitempty"`
	Saved  bool              `json:"saved"`
	// Unchanged is set when the patched buffer equals the original, so
	// nothing had to be written.
	Unchanged bool `json:"unchanged"`
}

// Count returns how many outcomes have the given status.
func (r *RunResult) Count(status patch.Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// HasWarnings reports whether any rule was skipped or only partially applied.
func (r *RunResult) HasWarnings() bool {
	return r.Count(patch.StatusSkipped) > 0 || r.Count(patch.StatusPartial) > 0
}
