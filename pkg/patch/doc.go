// Package patch implements the rule engine that rewrites a byte buffer.
//
// A Rule pairs a Pattern (the original, unpatched form) with a Probe (the
// shape the Replacement produces). Apply counts both, decides whether the
// rule is skipped, freshly applied or re-applied over an earlier run, and
// substitutes every occurrence exactly once:
//
//	out, outcome, err := patch.New().Apply(data, patch.Rule{
//		Pattern:     []byte(`x = (\d+)`),
//		Replacement: []byte(`x = 2`),
//		Probe:       []byte(`x = 2`),
//	})
//
// Matching is byte-exact. Every byte of the buffer is exactly one
// character: `.` matches a single byte (newlines included) and `\xHH`
// matches byte 0xHH. Character classes and case folding are ASCII only, so
// \w, \s and (?i) never match or fold bytes above 0x7F.
//
// Replacements may reference capture groups as $1, ${1}, $name, ${name},
// \1 or \g<name>. $$ is a literal $ and \\ a literal backslash.
//
// The engine does no I/O and keeps no state between calls.
package patch
