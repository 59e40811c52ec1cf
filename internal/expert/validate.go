package expert

import (
	"regexp"
	"sort"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldErrors maps a field name to a human-readable problem with it.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + fe[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks the fields an edited record must carry before it is
// committed. It returns nil or a FieldErrors value.
//
// AI-generated records are not validated on creation; they may arrive with
// an empty expertise list and only have to pass once someone edits them.
func Validate(e Expert) error {
	errs := FieldErrors{}

	if strings.TrimSpace(e.Name) == "" {
		errs["name"] = "Name is required"
	}
	switch email := strings.TrimSpace(e.Email); {
	case email == "":
		errs["email"] = "Email is required"
	case !emailPattern.MatchString(email):
		errs["email"] = "Invalid email format"
	}
	if strings.TrimSpace(e.Phone) == "" {
		errs["phone"] = "Phone is required"
	}
	if strings.TrimSpace(e.Location) == "" {
		errs["location"] = "Location is required"
	}
	if strings.TrimSpace(e.Industry) == "" {
		errs["industry"] = "Industry is required"
	}
	if strings.TrimSpace(e.Function) == "" {
		errs["function"] = "Function is required"
	}
	if len(e.Expertise) == 0 {
		errs["expertise"] = "At least one expertise area is required"
	}
	if e.Type != TypeInternal && e.Type != TypeExternal {
		errs["type"] = "Type must be Internal or External"
	}
	switch e.Availability {
	case AvailabilityAvailable, AvailabilityBusy, AvailabilityUnknown:
	default:
		errs["availability"] = "Availability must be Available, Busy or Unknown"
	}
	if e.YearsExperience < 0 {
		errs["yearsExperience"] = "Years of experience cannot be negative"
	}
	if e.Rating != nil && (*e.Rating < 0 || *e.Rating > 5) {
		errs["rating"] = "Rating must be between 0 and 5"
	}
	if e.ReviewCount != nil && *e.ReviewCount < 0 {
		errs["reviewCount"] = "Review count cannot be negative"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
