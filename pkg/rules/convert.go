package rules

import (
	"encoding/hex"
	"fmt"
	"strings"
	"text/template"

	"github.com/dlclark/regexp2"

	"github.com/arthur-debert/repatch/pkg/errors"
	"github.com/arthur-debert/repatch/pkg/patch"
)

// Build converts every rule of the set into engine rules, rendering
// templated fields with values.
func (p *PatchSet) Build(values *Values) ([]patch.Rule, error) {
	out := make([]patch.Rule, 0, len(p.Rules))
	for i, spec := range p.Rules {
		rule, err := spec.Build(values)
		if err != nil {
			if details := errors.GetErrorDetails(err); details != nil {
				details["rule"] = ruleLabel(i, spec)
			}
			return nil, err
		}
		out = append(out, rule)
	}
	return out, nil
}

// Build converts one rule spec into an engine rule.
func (r RuleSpec) Build(values *Values) (patch.Rule, error) {
	fields := []string{r.Pattern, r.Replacement, r.Probe}

	if r.Template {
		for i, name := range []string{"pattern", "replacement", "probe"} {
			rendered, err := render(name, fields[i], templateFuncs(values, name))
			if err != nil {
				return patch.Rule{}, err
			}
			fields[i] = rendered
		}
	}

	rule := patch.Rule{Name: r.Name}
	switch r.Encoding {
	case "", EncodingText:
		rule.Pattern = []byte(fields[0])
		rule.Replacement = []byte(fields[1])
		rule.Probe = []byte(fields[2])
	case EncodingHex:
		decoded := make([][]byte, len(fields))
		for i, name := range []string{"pattern", "replacement", "probe"} {
			b, err := decodeHex(fields[i])
			if err != nil {
				return patch.Rule{}, errors.Wrapf(err, errors.ErrRuleFile, "%s is not valid hex", name).
					WithDetail("field", name)
			}
			decoded[i] = b
		}
		rule.Pattern = literalExpression(decoded[0])
		rule.Replacement = escapeReplacement(decoded[1])
		rule.Probe = literalExpression(decoded[2])
	default:
		return patch.Rule{}, errors.Newf(errors.ErrRuleFile, "unknown encoding %q", r.Encoding)
	}
	return rule, nil
}

// templateFuncs returns the functions for one field. Values are quoted
// for the field they land in, so they are always taken literally: escaped
// as regex text in the pattern and probe, with $ and \ doubled in the
// replacement.
func templateFuncs(values *Values, field string) template.FuncMap {
	quote := regexp2.Escape
	if field == "replacement" {
		quote = func(s string) string { return string(escapeReplacement([]byte(s))) }
	}
	return template.FuncMap{
		"uuid":    func(key string) string { return quote(values.UUID(key)) },
		"macaddr": func(key string) string { return quote(values.MAC(key)) },
		"var": func(key string) (string, error) {
			val, err := values.Var(key)
			if err != nil {
				return "", err
			}
			return quote(val), nil
		},
	}
}

func render(name, text string, funcs template.FuncMap) (string, error) {
	tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrRuleFile, "%s template does not parse", name).
			WithDetail("field", name)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, nil); err != nil {
		wrapped := errors.Wrapf(err, errors.ErrRuleFile, "%s template failed", name).
			WithDetail("field", name)
		if hint := errors.GetHint(err); hint != "" {
			wrapped.WithHint(hint)
		}
		return "", wrapped
	}
	return sb.String(), nil
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.Join(strings.Fields(s), ""))
}

// literalExpression turns raw bytes into an expression matching exactly
// those bytes.
func literalExpression(b []byte) []byte {
	var sb strings.Builder
	for _, c := range b {
		fmt.Fprintf(&sb, `\x%02X`, c)
	}
	return []byte(sb.String())
}

// escapeReplacement keeps raw replacement bytes from being read as group
// references.
func escapeReplacement(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if c == '$' || c == '\\' {
			out = append(out, c)
		}
		out = append(out, c)
	}
	return out
}
