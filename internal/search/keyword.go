// Package search implements plain keyword matching over the expert roster.
package search

import (
	"slices"
	"strings"

	"github.com/kalambet/frank/internal/expert"
)

// Keyword returns the experts whose searchable text contains query as a
// case-insensitive substring. A blank query matches nothing. Internal experts
// come before External ones; source order is kept within each group.
func Keyword(query string, experts []expert.Expert) []expert.Expert {
	if strings.TrimSpace(query) == "" {
		return []expert.Expert{}
	}
	q := strings.ToLower(query)

	out := make([]expert.Expert, 0, len(experts))
	for _, e := range experts {
		if strings.Contains(Text(e), q) {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b expert.Expert) int {
		return typeRank(a.Type) - typeRank(b.Type)
	})
	return out
}

// Text is the lowercased projection of an expert that keyword search runs
// against.
func Text(e expert.Expert) string {
	parts := make([]string, 0, 7+len(e.Expertise))
	parts = append(parts, e.Name, e.Location, e.Industry, e.Function, e.LeadName())
	parts = append(parts, e.Expertise...)
	parts = append(parts, e.Notes, e.Bio)
	return strings.ToLower(strings.Join(parts, " "))
}

func typeRank(t expert.Type) int {
	if t == expert.TypeInternal {
		return 0
	}
	return 1
}
