package patch

import (
	"strconv"

	"github.com/arthur-debert/repatch/pkg/errors"
)

// piece is one segment of a parsed replacement: either literal bytes or a
// reference to a capture group.
type piece struct {
	literal []byte
	ref     string
	isRef   bool
}

// parseTemplate splits a replacement into literals and group references.
// Two syntaxes are accepted. The regexp.Expand form is $name or ${name}
// where name is a run of letters, digits and underscores, with $$ for a
// literal dollar sign; a $ not followed by a valid name is kept as is. The
// re.sub form is \N with one or two digits, the first non-zero, or
// \g<name>, with \\ for a literal backslash; other backslashes are kept.
// A \g not followed by a closed name is malformed.
func parseTemplate(tmpl []byte) ([]piece, error) {
	var pieces []piece
	var lit []byte
	ref := func(name string) {
		if len(lit) > 0 {
			pieces = append(pieces, piece{literal: lit})
			lit = nil
		}
		pieces = append(pieces, piece{ref: name, isRef: true})
	}

	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if (c != '$' && c != '\\') || i+1 >= len(tmpl) {
			lit = append(lit, c)
			continue
		}
		next := tmpl[i+1]

		if c == '$' {
			if next == '$' {
				lit = append(lit, '$')
				i++
				continue
			}
			name, width := extractName(tmpl[i+1:])
			if width == 0 {
				lit = append(lit, c)
				continue
			}
			ref(name)
			i += width
			continue
		}

		switch {
		case next == '\\':
			lit = append(lit, '\\')
			i++
		case next >= '1' && next <= '9':
			width := 1
			if i+2 < len(tmpl) && tmpl[i+2] >= '0' && tmpl[i+2] <= '9' {
				width = 2
			}
			ref(string(tmpl[i+1 : i+1+width]))
			i += width
		case next == 'g':
			name, width := bracketedName(tmpl[i+2:])
			if width == 0 {
				return nil, errors.Newf(errors.ErrMalformedRule,
					"replacement has a malformed group reference at offset %d", i).
					WithDetail("field", "replacement")
			}
			ref(name)
			i += 1 + width
		default:
			lit = append(lit, c)
		}
	}
	if len(lit) > 0 {
		pieces = append(pieces, piece{literal: lit})
	}
	return pieces, nil
}

// extractName reads a group name at the start of b, in either bare or
// braced form, and returns it with the number of bytes consumed.
func extractName(b []byte) (string, int) {
	if len(b) > 0 && b[0] == '{' {
		return enclosedName(b, '}')
	}
	n := nameLen(b)
	return string(b[:n]), n
}

// bracketedName reads <name> at the start of b.
func bracketedName(b []byte) (string, int) {
	if len(b) == 0 || b[0] != '<' {
		return "", 0
	}
	return enclosedName(b, '>')
}

// enclosedName reads a non-empty name between b[0] and closing.
func enclosedName(b []byte, closing byte) (string, int) {
	n := nameLen(b[1:])
	if n == 0 || 1+n >= len(b) || b[1+n] != closing {
		return "", 0
	}
	return string(b[1 : 1+n]), n + 2
}

func nameLen(b []byte) int {
	n := 0
	for n < len(b) {
		c := b[n]
		if c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			n++
			continue
		}
		break
	}
	return n
}

// groupResolver maps group names to numbers for one compiled expression.
type groupResolver interface {
	GetGroupNumbers() []int
	GroupNumberFromName(name string) int
}

// template is a replacement bound to the group numbering of one expression.
type template struct {
	pieces []piece
	groups []int // group number per piece, -1 for literals
}

// bindTemplate resolves every reference in pieces against re. A reference
// to a group the expression does not define is a malformed rule.
func bindTemplate(pieces []piece, re groupResolver, field string) (*template, error) {
	defined := make(map[int]bool)
	for _, n := range re.GetGroupNumbers() {
		defined[n] = true
	}

	t := &template{pieces: pieces, groups: make([]int, len(pieces))}
	for i, p := range pieces {
		t.groups[i] = -1
		if !p.isRef {
			continue
		}
		num := -1
		if n, err := strconv.Atoi(p.ref); err == nil {
			if defined[n] {
				num = n
			}
		} else {
			num = re.GroupNumberFromName(p.ref)
		}
		if num < 0 {
			return nil, errors.Newf(errors.ErrMalformedRule,
				"replacement references group %q which %s does not define", p.ref, field).
				WithDetail("group", p.ref).
				WithDetail("field", field)
		}
		t.groups[i] = num
	}
	return t, nil
}

// references returns the distinct group numbers the template reads.
func (t *template) references() []int {
	var refs []int
	seen := make(map[int]bool)
	for _, g := range t.groups {
		if g >= 0 && !seen[g] {
			seen[g] = true
			refs = append(refs, g)
		}
	}
	return refs
}

// expand appends the replacement for one match to dst. groups holds the
// captured spans by group number; a missing entry expands to nothing.
func (t *template) expand(dst, data []byte, groups map[int]span) []byte {
	for i, p := range t.pieces {
		if !p.isRef {
			dst = append(dst, p.literal...)
			continue
		}
		if g, ok := groups[t.groups[i]]; ok {
			dst = append(dst, data[g.start:g.end]...)
		}
	}
	return dst
}
