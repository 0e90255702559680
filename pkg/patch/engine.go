package patch

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/repatch/pkg/errors"
	"github.com/arthur-debert/repatch/pkg/logging"
)

// Engine applies rules to byte buffers.
type Engine struct {
	logger  zerolog.Logger
	timeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger the engine reports decisions to.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMatchTimeout bounds every scan of a single expression. Zero means
// no bound.
func WithMatchTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{logger: logging.GetLogger("patch")}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply applies a single rule with a default engine.
func Apply(data []byte, rule Rule) ([]byte, Outcome, error) {
	return New().Apply(data, rule)
}

// Compiled is a validated rule ready to be applied.
type Compiled struct {
	Rule    Rule
	pattern matcher
	probe   matcher
}

// Compile validates a rule: both expressions must compile and every group
// the replacement references must exist in both of them.
func (e *Engine) Compile(rule Rule) (*Compiled, error) {
	pieces, err := parseTemplate(rule.Replacement)
	if err != nil {
		return nil, withRule(err, rule)
	}

	pattern, err := compileExpression(rule.Pattern, "pattern", pieces, e.timeout)
	if err != nil {
		return nil, withRule(err, rule)
	}
	probe, err := compileExpression(rule.Probe, "probe", pieces, e.timeout)
	if err != nil {
		return nil, withRule(err, rule)
	}

	return &Compiled{Rule: rule, pattern: pattern, probe: probe}, nil
}

// CompileAll validates every rule, stopping at the first malformed one.
func (e *Engine) CompileAll(rules []Rule) ([]*Compiled, error) {
	compiled := make([]*Compiled, 0, len(rules))
	for _, rule := range rules {
		c, err := e.Compile(rule)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, c)
	}
	return compiled, nil
}

// Apply compiles rule and applies it to data. A malformed rule returns an
// error and data untouched. A rule that matches nothing is not an error.
func (e *Engine) Apply(data []byte, rule Rule) ([]byte, Outcome, error) {
	c, err := e.Compile(rule)
	if err != nil {
		return data, Outcome{Rule: rule.Label()}, err
	}
	return e.ApplyCompiled(data, c)
}

// ApplyAll applies rules in order, threading the buffer through each one.
// Every rule is compiled before the first one runs, so a malformed rule
// aborts without touching data.
func (e *Engine) ApplyAll(data []byte, rules []Rule) ([]byte, []Outcome, error) {
	compiled, err := e.CompileAll(rules)
	if err != nil {
		return data, nil, err
	}
	return e.ApplyAllCompiled(data, compiled)
}

// ApplyAllCompiled applies already validated rules in order. A matching
// failure stops at the failing rule and returns the buffer as it was
// before it, with the outcomes of the rules that ran.
func (e *Engine) ApplyAllCompiled(data []byte, compiled []*Compiled) ([]byte, []Outcome, error) {
	outcomes := make([]Outcome, 0, len(compiled))
	for _, c := range compiled {
		next, outcome, err := e.ApplyCompiled(data, c)
		if err != nil {
			return data, outcomes, err
		}
		data = next
		outcomes = append(outcomes, outcome)
	}
	return data, outcomes, nil
}

// ApplyCompiled applies an already validated rule.
func (e *Engine) ApplyCompiled(data []byte, c *Compiled) ([]byte, Outcome, error) {
	rule := c.Rule
	outcome := Outcome{Rule: rule.Label()}
	logger := e.logger.With().Str("rule", outcome.Rule).Logger()

	logger.Debug().
		Str("pattern", string(rule.Pattern)).
		Str("replacement", string(rule.Replacement)).
		Msg("Applying rule")

	patternMatches, err := c.pattern.find(data)
	if err != nil {
		return data, outcome, withRule(err, rule)
	}
	probeMatches, err := c.probe.find(data)
	if err != nil {
		return data, outcome, withRule(err, rule)
	}

	probeSpans := spans(probeMatches)
	outcome.ProbeCount = len(probeMatches)
	for _, m := range patternMatches {
		if !overlapsAny(probeSpans, m.span) {
			outcome.PreCount++
		}
	}

	switch {
	case outcome.PreCount == 0 && outcome.ProbeCount == 0:
		outcome.Status = StatusSkipped
		logger.Warn().Str("pattern", string(rule.Pattern)).Msg("Pattern not found, skipped")
		return data, outcome, nil
	case outcome.PreCount == 0:
		outcome.Status = StatusReapplied
		logger.Info().
			Int("patched", outcome.ProbeCount).
			Msg("Found occurrences already patched, will overwrite")
	default:
		outcome.Status = StatusApplied
	}

	patched, written, probeReplaced := substitute(data, probeMatches, nil)

	remaining, err := c.pattern.find(patched)
	if err != nil {
		return data, Outcome{Rule: outcome.Rule}, withRule(err, rule)
	}
	result, _, patternReplaced := substitute(patched, remaining, written)

	outcome.ReplacedCount = probeReplaced + patternReplaced
	if outcome.ReplacedCount != outcome.Expected() {
		outcome.Status = StatusPartial
		logger.Warn().
			Int("replaced", outcome.ReplacedCount).
			Int("expected", outcome.Expected()).
			Int("failed", outcome.Failed()).
			Msgf("Patched %d/%d", outcome.ReplacedCount, outcome.Expected())
		return result, outcome, nil
	}

	logger.Info().Int("replaced", outcome.ReplacedCount).Msg("Patched")
	return result, outcome, nil
}

// substitute replaces every match that does not overlap a protected span.
// It returns the new buffer, the spans the replacements occupy in it, and
// how many matches were replaced.
func substitute(data []byte, matches []match, protected []span) ([]byte, []span, int) {
	if len(matches) == 0 {
		return data, nil, 0
	}

	out := make([]byte, 0, len(data))
	var written []span
	last, replaced := 0, 0
	for _, m := range matches {
		if overlapsAny(protected, m.span) {
			continue
		}
		out = append(out, data[last:m.start]...)
		start := len(out)
		out = append(out, m.replacement...)
		written = append(written, span{start: start, end: len(out)})
		last = m.end
		replaced++
	}
	out = append(out, data[last:]...)
	return out, written, replaced
}

func spans(matches []match) []span {
	s := make([]span, len(matches))
	for i, m := range matches {
		s[i] = m.span
	}
	return s
}

// withRule tags a structured error with the rule it came from.
func withRule(err error, rule Rule) error {
	if details := errors.GetErrorDetails(err); details != nil {
		details["rule"] = rule.Label()
	}
	return err
}
