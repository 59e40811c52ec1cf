package expert

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Type separates staff experts from outside contacts.
type Type string

const (
	TypeInternal Type = "Internal"
	TypeExternal Type = "External"
)

// ParseType maps free text from an AI source to a Type. Anything that is not
// recognisably internal is treated as External.
func ParseType(s string) Type {
	if strings.EqualFold(strings.TrimSpace(s), string(TypeInternal)) {
		return TypeInternal
	}
	return TypeExternal
}

// Availability is the expert's last known availability.
type Availability string

const (
	AvailabilityAvailable Availability = "Available"
	AvailabilityBusy      Availability = "Busy"
	AvailabilityUnknown   Availability = "Unknown"
)

// ParseAvailability returns the matching Availability, or Unknown for empty
// or unrecognised input.
func ParseAvailability(s string) Availability {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "available":
		return AvailabilityAvailable
	case "busy":
		return AvailabilityBusy
	default:
		return AvailabilityUnknown
	}
}

const dateLayout = "2006-01-02"

// Date is a calendar date serialised as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseDate(node.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Expert is a person with domain expertise, internal or external to the
// organisation. Optional attributes are pointers; nil means absent.
type Expert struct {
	ID              string       `json:"id" yaml:"id"`
	Name            string       `json:"name" yaml:"name"`
	Photo           string       `json:"photo,omitempty" yaml:"photo,omitempty"`
	Email           string       `json:"email" yaml:"email"`
	Phone           string       `json:"phone" yaml:"phone"`
	Location        string       `json:"location" yaml:"location"`
	Industry        string       `json:"industry" yaml:"industry"`
	Function        string       `json:"function" yaml:"function"`
	Type            Type         `json:"type" yaml:"type"`
	Availability    Availability `json:"availability" yaml:"availability"`
	Expertise       []string     `json:"expertise" yaml:"expertise"`
	Certifications  []string     `json:"certifications" yaml:"certifications"`
	YearsExperience int          `json:"yearsExperience" yaml:"yearsExperience"`
	Bio             string       `json:"bio" yaml:"bio"`
	Notes           string       `json:"notes" yaml:"notes"`
	LastContact     *Date        `json:"lastContact,omitempty" yaml:"lastContact,omitempty"`
	Rating          *float64     `json:"rating,omitempty" yaml:"rating,omitempty"`
	ReviewCount     *int         `json:"reviewCount,omitempty" yaml:"reviewCount,omitempty"`
	Lead            *string      `json:"lead,omitempty" yaml:"lead,omitempty"`
	IsAIGenerated   bool         `json:"isAIGenerated,omitempty" yaml:"isAIGenerated,omitempty"`
}

// LeadName returns the assigned lead, or "" when none is assigned.
func (e Expert) LeadName() string {
	if e.Lead == nil {
		return ""
	}
	return *e.Lead
}

// Clone returns a deep copy so callers can mutate it without touching the original.
func (e Expert) Clone() Expert {
	c := e
	c.Expertise = cloneStrings(e.Expertise)
	c.Certifications = cloneStrings(e.Certifications)
	if e.LastContact != nil {
		d := *e.LastContact
		c.LastContact = &d
	}
	if e.Rating != nil {
		r := *e.Rating
		c.Rating = &r
	}
	if e.ReviewCount != nil {
		n := *e.ReviewCount
		c.ReviewCount = &n
	}
	if e.Lead != nil {
		l := *e.Lead
		c.Lead = &l
	}
	return c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// Match is an Expert returned from a search, carrying the transient relevance
// score and explanation. Matches are never written back to the store.
type Match struct {
	Expert
	AIScore          float64 `json:"aiScore,omitempty"`
	MatchExplanation string  `json:"matchExplanation,omitempty"`
}

// Ptr returns a pointer to v. Handy for optional fields.
func Ptr[T any](v T) *T {
	return &v
}
