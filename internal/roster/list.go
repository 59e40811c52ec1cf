package roster

import (
	"strings"

	"github.com/kalambet/frank/internal/expert"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Filter selects experts for the paged database view. Empty fields match
// everything. Query is a case-insensitive substring over name, expertise,
// industry, and location; the other string fields must match exactly,
// ignoring case.
type Filter struct {
	Query        string
	Industry     string
	Function     string
	Location     string
	Type         expert.Type
	Availability expert.Availability
	MinRating    *float64
	Limit        int
	Offset       int
}

// Page is one slice of a filtered listing.
type Page struct {
	Experts []expert.Expert `json:"experts"`
	Total   int             `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

// List returns the experts matching f, seed first, windowed by f.Limit and
// f.Offset. A zero limit means DefaultLimit.
func (s *Store) List(f Filter) (Page, error) {
	if f.Limit == 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit < 1 || f.Limit > MaxLimit || f.Offset < 0 {
		return Page{}, ErrInvalidPage
	}

	var matched []expert.Expert
	for _, e := range s.All() {
		if f.matches(e) {
			matched = append(matched, e)
		}
	}

	page := Page{Experts: []expert.Expert{}, Total: len(matched), Limit: f.Limit, Offset: f.Offset}
	if f.Offset < len(matched) {
		end := min(f.Offset+f.Limit, len(matched))
		page.Experts = matched[f.Offset:end]
	}
	return page, nil
}

func (f Filter) matches(e expert.Expert) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		hit := strings.Contains(strings.ToLower(e.Name), q) ||
			strings.Contains(strings.ToLower(e.Industry), q) ||
			strings.Contains(strings.ToLower(e.Location), q)
		for _, skill := range e.Expertise {
			if hit {
				break
			}
			hit = strings.Contains(strings.ToLower(skill), q)
		}
		if !hit {
			return false
		}
	}
	if !eqOrEmpty(f.Industry, e.Industry) || !eqOrEmpty(f.Function, e.Function) || !eqOrEmpty(f.Location, e.Location) {
		return false
	}
	if !eqOrEmpty(string(f.Type), string(e.Type)) || !eqOrEmpty(string(f.Availability), string(e.Availability)) {
		return false
	}
	if f.MinRating != nil && (e.Rating == nil || *e.Rating < *f.MinRating) {
		return false
	}
	return true
}

func eqOrEmpty(want, got string) bool {
	return want == "" || strings.EqualFold(want, got)
}
