package expert

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIndexOutOfRange is returned when removing a list item that does not exist.
var ErrIndexOutOfRange = errors.New("index out of range")

// Patch is a partial update. Nil fields are left untouched; non-nil fields
// overwrite the current value.
type Patch struct {
	Name            *string       `json:"name,omitempty"`
	Photo           *string       `json:"photo,omitempty"`
	Email           *string       `json:"email,omitempty"`
	Phone           *string       `json:"phone,omitempty"`
	Location        *string       `json:"location,omitempty"`
	Industry        *string       `json:"industry,omitempty"`
	Function        *string       `json:"function,omitempty"`
	Type            *Type         `json:"type,omitempty"`
	Availability    *Availability `json:"availability,omitempty"`
	Expertise       *[]string     `json:"expertise,omitempty"`
	Certifications  *[]string     `json:"certifications,omitempty"`
	YearsExperience *int          `json:"yearsExperience,omitempty"`
	Bio             *string       `json:"bio,omitempty"`
	Notes           *string       `json:"notes,omitempty"`
	LastContact     *Date         `json:"lastContact,omitempty"`
	Rating          *float64      `json:"rating,omitempty"`
	ReviewCount     *int          `json:"reviewCount,omitempty"`
	Lead            *string       `json:"lead,omitempty"`
}

// Apply returns a copy of e with the patch merged in. The ID and the
// AI-generated flag cannot be changed through a patch.
func (p Patch) Apply(e Expert) Expert {
	out := e.Clone()
	setIf(&out.Name, p.Name)
	setIf(&out.Photo, p.Photo)
	setIf(&out.Email, p.Email)
	setIf(&out.Phone, p.Phone)
	setIf(&out.Location, p.Location)
	setIf(&out.Industry, p.Industry)
	setIf(&out.Function, p.Function)
	setIf(&out.Type, p.Type)
	setIf(&out.Availability, p.Availability)
	setIf(&out.YearsExperience, p.YearsExperience)
	setIf(&out.Bio, p.Bio)
	setIf(&out.Notes, p.Notes)
	if p.Expertise != nil {
		out.Expertise = cloneStrings(*p.Expertise)
	}
	if p.Certifications != nil {
		out.Certifications = cloneStrings(*p.Certifications)
	}
	if p.LastContact != nil {
		d := *p.LastContact
		out.LastContact = &d
	}
	if p.Rating != nil {
		out.Rating = Ptr(*p.Rating)
	}
	if p.ReviewCount != nil {
		out.ReviewCount = Ptr(*p.ReviewCount)
	}
	if p.Lead != nil {
		// An empty lead clears the assignment.
		if *p.Lead == "" {
			out.Lead = nil
		} else {
			out.Lead = Ptr(*p.Lead)
		}
	}
	return out
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// AddExpertise appends a trimmed skill. Blank input leaves the list as is.
func AddExpertise(list []string, skill string) []string {
	return addItem(list, skill)
}

// RemoveExpertise removes the skill at index i.
func RemoveExpertise(list []string, i int) ([]string, error) {
	return removeItem(list, i)
}

// AddCertification appends a trimmed certification. Blank input is ignored.
func AddCertification(list []string, cert string) []string {
	return addItem(list, cert)
}

// RemoveCertification removes the certification at index i.
func RemoveCertification(list []string, i int) ([]string, error) {
	return removeItem(list, i)
}

func addItem(list []string, item string) []string {
	item = strings.TrimSpace(item)
	out := cloneStrings(list)
	if item == "" {
		return out
	}
	return append(out, item)
}

func removeItem(list []string, i int) ([]string, error) {
	if i < 0 || i >= len(list) {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, i, len(list))
	}
	out := make([]string, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...), nil
}
