package schema

import (
	"fmt"
	"sort"
	"strings"
)

// FormatTargets formats targets as "a.go, b.go (+3 more)", keeping at most limit entries.
// A non-positive limit keeps everything.
func FormatTargets(targets []string, limit int) string {
	if limit <= 0 || len(targets) <= limit {
		return strings.Join(targets, ", ")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(targets[:limit], ", "), len(targets)-limit)
}

// SortedKeys returns the keys of a count map ordered by count desc, then key asc.
func SortedKeys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

// TargetsEqual compares two slices of targets, considering them equal if they contain the same targets
// regardless of order
func TargetsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	aSorted := make([]string, len(a))
	copy(aSorted, a)
	sort.Strings(aSorted)

	bSorted := make([]string, len(b))
	copy(bSorted, b)
	sort.Strings(bSorted)

	for i := range aSorted {
		if aSorted[i] != bSorted[i] {
			return false
		}
	}
	return true
}
