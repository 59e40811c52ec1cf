package discovery

import (
	"strings"

	"github.com/kalambet/frank/internal/expert"
)

// Leads is the roster of internal owners assigned to generated experts.
var Leads = []string{"Daniel", "Bobby", "Kamran", "Pedram", "Harry"}

// TypePolicy decides whether a generated expert is Internal or External.
//
// The default keeps most generated experts External: only a profile located
// in one of the office cities can be Internal, and then only with the given
// probability. The business rule behind this is unconfirmed, so it lives
// here as a replaceable policy.
type TypePolicy struct {
	InternalCities      []string
	InternalProbability float64
}

// DefaultTypePolicy returns the office cities with a 30% Internal chance.
func DefaultTypePolicy() TypePolicy {
	return TypePolicy{
		InternalCities:      []string{"Chicago", "New York", "San Francisco", "Singapore", "Perth"},
		InternalProbability: 0.3,
	}
}

// Assign returns the type for a profile at location given a uniform draw
// in [0,1).
func (p TypePolicy) Assign(location string, draw float64) expert.Type {
	if draw >= p.InternalProbability {
		return expert.TypeExternal
	}
	for _, city := range p.InternalCities {
		if strings.Contains(location, city) {
			return expert.TypeInternal
		}
	}
	return expert.TypeExternal
}
