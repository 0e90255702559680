package patch

import (
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/encoding/charmap"

	"github.com/arthur-debert/repatch/pkg/errors"
)

// match is one occurrence found in a buffer together with the bytes the
// rule's replacement expands to at that occurrence.
type match struct {
	span
	replacement []byte
}

// matcher finds the non-overlapping occurrences of one expression.
type matcher interface {
	find(data []byte) ([]match, error)
}

// regexpMatcher runs a regexp2 expression over the byte view of a buffer.
// In that view rune offsets equal byte offsets.
type regexpMatcher struct {
	re   *regexp2.Regexp
	expr []byte
	tmpl *template
	refs []int
}

// highBase is where bytes 0x80-0xFF land in the byte view. The private use
// area has no case mappings and belongs to no word, digit or space class,
// so \w, \d, \s, \b and (?i) only ever act on ASCII.
const highBase = 0xF700

// byteRunes maps each byte to its rune in the byte view: ISO-8859-1 for the
// ASCII half, the private use area for the rest.
var byteRunes = func() [256]rune {
	var t [256]rune
	for i := range t {
		r := charmap.ISO8859_1.DecodeByte(byte(i))
		if r >= 0x80 {
			r = highBase + r
		}
		t[i] = r
	}
	return t
}()

// byteView maps every byte of b to exactly one rune.
func byteView(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = byteRunes[c]
	}
	return string(runes)
}

// expressionView is byteView for an expression. \xHH and \uHHHH escapes
// naming a byte above 0x7F are replaced by that byte's rune so they match
// what byteView produces for the buffer.
func expressionView(expr []byte) string {
	runes := []rune(byteView(expr))
	out := make([]rune, 0, len(runes))
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c != '\\' || i+1 >= len(runes) {
			out = append(out, c)
			continue
		}
		width := 0
		switch runes[i+1] {
		case 'x':
			width = 2
		case 'u':
			width = 4
		}
		if width > 0 && i+2+width <= len(runes) {
			if v, err := strconv.ParseUint(string(runes[i+2:i+2+width]), 16, 32); err == nil && v >= 0x80 && v <= 0xFF {
				out = append(out, byteRunes[v])
				i += 1 + width
				continue
			}
		}
		out = append(out, c, runes[i+1])
		i++
	}
	return string(out)
}

func compileExpression(expr []byte, field string, pieces []piece, timeout time.Duration) (*regexpMatcher, error) {
	if len(expr) == 0 {
		return nil, errors.Newf(errors.ErrMalformedRule, "%s is empty", field).
			WithDetail("field", field)
	}

	re, err := regexp2.Compile(expressionView(expr), regexp2.Singleline)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrMalformedRule, "%s does not compile", field).
			WithDetail("field", field).
			WithDetail("expression", string(expr))
	}
	if timeout > 0 {
		re.MatchTimeout = timeout
	}

	tmpl, err := bindTemplate(pieces, re, field)
	if err != nil {
		return nil, err
	}

	return &regexpMatcher{re: re, expr: expr, tmpl: tmpl, refs: tmpl.references()}, nil
}

func (m *regexpMatcher) find(data []byte) ([]match, error) {
	var matches []match
	found, err := m.re.FindStringMatch(byteView(data))
	for found != nil && err == nil {
		var groups map[int]span
		if len(m.refs) > 0 {
			groups = make(map[int]span, len(m.refs))
			for _, num := range m.refs {
				g := found.GroupByNumber(num)
				if g == nil || len(g.Captures) == 0 {
					continue
				}
				groups[num] = span{start: g.Index, end: g.Index + g.Length}
			}
		}

		s := span{start: found.Index, end: found.Index + found.Length}
		matches = append(matches, match{
			span:        s,
			replacement: m.tmpl.expand(nil, data, groups),
		})
		found, err = m.re.FindNextMatch(found)
	}
	if err != nil {
		return nil, m.matchError(err)
	}
	return matches, nil
}

// matchError converts a scan failure. regexp2 quotes the whole input in
// its timeout error, so that text is dropped.
func (m *regexpMatcher) matchError(err error) error {
	if strings.HasPrefix(err.Error(), "match timeout") {
		return errors.Newf(errors.ErrMatch, "match timeout after %s", m.re.MatchTimeout).
			WithDetail("expression", string(m.expr)).
			WithHint("simplify the expression or raise engine.timeout")
	}
	return errors.Wrap(err, errors.ErrMatch, "matching failed").
		WithDetail("expression", string(m.expr))
}
