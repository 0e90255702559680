// Package report renders run results for people and for machines.
//
// The terminal and text formats print one status line per rule, marked
// [√], [i], [WARN] or [ERR]; the terminal format adds colour. The JSON
// format encodes the result types directly.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/arthur-debert/repatch/pkg/core"
	"github.com/arthur-debert/repatch/pkg/errors"
	"github.com/arthur-debert/repatch/pkg/patch"
	"github.com/arthur-debert/repatch/pkg/types"
)

// Renderer writes results in one format.
type Renderer struct {
	w      io.Writer
	format Format
	styles styles
}

// New creates a renderer. FormatAuto is resolved against w when it is a
// file and falls back to FormatText otherwise.
func New(w io.Writer, format Format) *Renderer {
	if format == FormatAuto {
		format = FormatText
		if f, ok := w.(*os.File); ok {
			format = DetectFormat(f)
		}
	}

	r := &Renderer{w: w, format: format, styles: styles{plain: true}}
	if format == FormatTerminal {
		lr := lipgloss.NewRenderer(w)
		if lr.ColorProfile() == termenv.Ascii {
			lr.SetColorProfile(termenv.ANSI256)
		}
		r.styles = newStyles(lr)
	}
	return r
}

// Format returns the resolved output format.
func (r *Renderer) Format() Format {
	return r.format
}

// Render writes the result of a run.
func (r *Renderer) Render(res *types.RunResult) error {
	if r.format == FormatJSON {
		return r.encode(res)
	}

	var b strings.Builder
	r.heading(&b, res.PatchSet, res.Target)
	for _, o := range res.Outcomes {
		lvl, text := describeOutcome(o)
		r.line(&b, lvl, text)
	}

	if keys := sortedKeys(res.Values); len(keys) > 0 {
		r.line(&b, levelInfo, "Values:")
		for _, k := range keys {
			fmt.Fprintf(&b, "    %s = %s\n", k, r.styles.render(r.styles.muted, res.Values[k]))
		}
	}

	switch {
	case res.Unchanged:
		r.line(&b, levelInfo, "Nothing changed, file left untouched")
	case res.DryRun:
		r.line(&b, levelInfo, "Dry run, file left untouched")
	default:
		if res.Backup != nil {
			if res.Backup.Created {
				r.line(&b, levelSuccess, "Backup created: "+r.styles.render(r.styles.path, res.Backup.Path))
			} else {
				r.line(&b, levelInfo, "Backup "+r.styles.render(r.styles.path, res.Backup.Path)+" already exists, kept")
			}
		}
		if res.Saved {
			r.line(&b, levelSuccess, "File saved")
		}
	}
	return r.write(b.String())
}

// RenderLint writes the results of checking patch set files.
func (r *Renderer) RenderLint(results []core.LintResult) error {
	if r.format == FormatJSON {
		return r.encode(results)
	}

	var b strings.Builder
	for _, res := range results {
		name := res.Path
		if res.Name != "" {
			name = fmt.Sprintf("%s (%s)", res.Path, res.Name)
		}
		if res.OK() {
			r.line(&b, levelSuccess, fmt.Sprintf("%s: %d %s", name, len(res.Rules), plural(len(res.Rules), "rule", "rules")))
			continue
		}
		r.line(&b, levelError, fmt.Sprintf("%s: %s", name, res.Error))
		r.hint(&b, res.Error)
	}
	return r.write(b.String())
}

// LocateResult is what the locate command found.
type LocateResult struct {
	Target     string   `json:"target,omitempty"`
	Candidates []string `json:"candidates"`
}

// RenderLocate writes the located target and every candidate tried.
func (r *Renderer) RenderLocate(res LocateResult) error {
	if r.format == FormatJSON {
		return r.encode(res)
	}

	var b strings.Builder
	for _, c := range res.Candidates {
		if c == res.Target {
			r.line(&b, levelSuccess, c)
		} else {
			r.line(&b, levelInfo, r.styles.render(r.styles.muted, c+" (missing)"))
		}
	}
	if res.Target != "" && !contains(res.Candidates, res.Target) {
		r.line(&b, levelSuccess, res.Target)
	}
	if res.Target == "" {
		r.line(&b, levelWarn, "Target not found")
	}
	return r.write(b.String())
}

// RenderMessage writes a single informational line.
func (r *Renderer) RenderMessage(msg string) error {
	if r.format == FormatJSON {
		return r.encode(map[string]string{"message": msg})
	}
	var b strings.Builder
	r.line(&b, levelInfo, msg)
	return r.write(b.String())
}

// RenderError writes an error with its hint, if any.
func (r *Renderer) RenderError(err error) error {
	if r.format == FormatJSON {
		obj := map[string]string{
			"error": err.Error(),
			"code":  string(errors.GetErrorCode(err)),
		}
		if hint := errors.GetHint(err); hint != "" {
			obj["hint"] = hint
		}
		return r.encode(obj)
	}

	var b strings.Builder
	r.line(&b, levelError, err.Error())
	r.hint(&b, err)
	return r.write(b.String())
}

func (r *Renderer) heading(b *strings.Builder, name, target string) {
	text := "> " + name
	if target != "" {
		text += " => " + target
	}
	fmt.Fprintln(b, r.styles.render(r.styles.heading, text))
}

func (r *Renderer) line(b *strings.Builder, lvl level, text string) {
	marker := r.styles.render(r.styles.levels[lvl], markers[lvl])
	fmt.Fprintf(b, "%s %s\n", marker, text)
}

func (r *Renderer) hint(b *strings.Builder, err error) {
	if hint := errors.GetHint(err); hint != "" {
		fmt.Fprintf(b, "    %s\n", r.styles.render(r.styles.muted, hint))
	}
}

func (r *Renderer) write(s string) error {
	_, err := io.WriteString(r.w, s)
	return err
}

func (r *Renderer) encode(v interface{}) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func describeOutcome(o patch.Outcome) (level, string) {
	switch o.Status {
	case patch.StatusSkipped:
		return levelWarn, fmt.Sprintf("%s: pattern not found, skipped", o.Rule)
	case patch.StatusReapplied:
		return levelInfo, fmt.Sprintf("%s: found %d %s already patched, overwritten",
			o.Rule, o.ProbeCount, plural(o.ProbeCount, "occurrence", "occurrences"))
	case patch.StatusPartial:
		if extra := o.ReplacedCount - o.Expected(); extra > 0 {
			return levelWarn, fmt.Sprintf("%s: patched %d, %d more than the %d found",
				o.Rule, o.ReplacedCount, extra, o.Expected())
		}
		return levelWarn, fmt.Sprintf("%s: patched %d/%d, failed %d",
			o.Rule, o.ReplacedCount, o.Expected(), o.Failed())
	default:
		return levelSuccess, fmt.Sprintf("%s: patched %d %s",
			o.Rule, o.ReplacedCount, plural(o.ReplacedCount, "occurrence", "occurrences"))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
