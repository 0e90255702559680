package patch

import "sort"

// span is a half-open byte range [start, end).
type span struct {
	start, end int
}

// reach is the exclusive end used for overlap tests. An empty span still
// claims the byte it sits on, so a zero-width match inside a region counts
// as touching it.
func (s span) reach() int {
	if s.end > s.start {
		return s.end
	}
	return s.start + 1
}

func (s span) overlaps(o span) bool {
	return s.start < o.reach() && o.start < s.reach()
}

// overlapsAny reports whether s overlaps any span in sorted, which must be
// ordered by start and non-overlapping.
func overlapsAny(sorted []span, s span) bool {
	i := sort.Search(len(sorted), func(i int) bool {
		return sorted[i].reach() > s.start
	})
	return i < len(sorted) && sorted[i].overlaps(s)
}
