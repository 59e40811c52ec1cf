package roster

import (
	"context"
	"fmt"

	"github.com/kalambet/frank/internal/expert"
)

// Update merges p into the expert with the given ID. The result must pass
// expert.Validate; otherwise the stored record is left unchanged and the
// expert.FieldErrors are returned.
func (s *Store) Update(ctx context.Context, id string, p expert.Patch) (expert.Expert, error) {
	return s.edit(ctx, id, func(e expert.Expert) (expert.Expert, error) {
		return p.Apply(e), nil
	})
}

// AddExpertise appends a skill to an expert's expertise list.
func (s *Store) AddExpertise(ctx context.Context, id, skill string) (expert.Expert, error) {
	return s.edit(ctx, id, func(e expert.Expert) (expert.Expert, error) {
		e.Expertise = expert.AddExpertise(e.Expertise, skill)
		return e, nil
	})
}

// RemoveExpertise removes the skill at index i.
func (s *Store) RemoveExpertise(ctx context.Context, id string, i int) (expert.Expert, error) {
	return s.edit(ctx, id, func(e expert.Expert) (expert.Expert, error) {
		list, err := expert.RemoveExpertise(e.Expertise, i)
		if err != nil {
			return e, err
		}
		e.Expertise = list
		return e, nil
	})
}

// AddCertification appends a certification.
func (s *Store) AddCertification(ctx context.Context, id, cert string) (expert.Expert, error) {
	return s.edit(ctx, id, func(e expert.Expert) (expert.Expert, error) {
		e.Certifications = expert.AddCertification(e.Certifications, cert)
		return e, nil
	})
}

// RemoveCertification removes the certification at index i.
func (s *Store) RemoveCertification(ctx context.Context, id string, i int) (expert.Expert, error) {
	return s.edit(ctx, id, func(e expert.Expert) (expert.Expert, error) {
		list, err := expert.RemoveCertification(e.Certifications, i)
		if err != nil {
			return e, err
		}
		e.Certifications = list
		return e, nil
	})
}

func (s *Store) edit(ctx context.Context, id string, fn func(expert.Expert) (expert.Expert, error)) (expert.Expert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.index[id]
	if !ok {
		return expert.Expert{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	updated, err := fn(s.at(sl).Clone())
	if err != nil {
		return expert.Expert{}, err
	}
	if err := expert.Validate(updated); err != nil {
		return expert.Expert{}, err
	}
	if s.persist != nil {
		if err := s.persist.SaveExpert(ctx, updated); err != nil {
			return expert.Expert{}, fmt.Errorf("persisting expert %s: %w", id, err)
		}
	}
	s.put(sl, updated)
	return updated.Clone(), nil
}
