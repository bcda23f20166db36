package utils

// SeenFilter drops repeated strings. It is not safe for concurrent use.
type SeenFilter struct {
	seen map[string]bool
}

// NewSeenFilter creates a filter that already excludes the given values.
func NewSeenFilter(exclude ...string) *SeenFilter {
	seen := make(map[string]bool, len(exclude))
	for _, s := range exclude {
		seen[s] = true
	}
	return &SeenFilter{seen: seen}
}

// ShouldInclude reports whether s is new, and remembers it.
func (f *SeenFilter) ShouldInclude(s string) bool {
	if f.seen[s] {
		return false
	}
	f.seen[s] = true
	return true
}
