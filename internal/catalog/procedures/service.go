package procedures

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/tramita/tramita/internal/catalog"
	"github.com/tramita/tramita/internal/platform/httpx"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) validate(p Procedure) error {
	if !slices.Contains(Categories, p.Category) {
		return fmt.Errorf("%w: unknown category %q", httpx.ErrValidation, p.Category)
	}
	if p.Cost < 0 {
		return fmt.Errorf("%w: cost must not be negative", httpx.ErrValidation)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (Procedure, error) {
	if id <= 0 {
		return Procedure{}, fmt.Errorf("%w: invalid procedure id", httpx.ErrValidation)
	}
	p, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Procedure{}, httpx.ErrNotFound
	}
	return p, err
}

func (s *Service) Create(ctx context.Context, p Procedure) (Procedure, error) {
	if err := s.validate(p); err != nil {
		return Procedure{}, err
	}
	created, err := s.repo.Create(ctx, p)
	if catalog.UniqueViolation(err) {
		return Procedure{}, fmt.Errorf("%w: procedure %q already exists", httpx.ErrDuplicate, p.Name)
	}
	return created, err
}

func (s *Service) Update(ctx context.Context, id int64, p Procedure) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid procedure id", httpx.ErrValidation)
	}
	if err := s.validate(p); err != nil {
		return err
	}
	err := s.repo.Update(ctx, id, p)
	switch {
	case catalog.UniqueViolation(err):
		return fmt.Errorf("%w: procedure %q already exists", httpx.ErrDuplicate, p.Name)
	case errors.Is(err, ErrNotFound):
		return httpx.ErrNotFound
	}
	return err
}

// SetActive archives or restores procedures by their selection keys.
func (s *Service) SetActive(ctx context.Context, keys []string, active bool) error {
	ids, err := catalog.ParseIDs(keys)
	if err != nil {
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return s.repo.SetActive(ctx, ids, active)
}
