package faqs

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

func (s *Service) validate(f FAQ) error {
	if !slices.Contains(Categories, f.Category) {
		return fmt.Errorf("%w: unknown faq category %q", httpx.ErrValidation, f.Category)
	}
	if f.Position < 0 {
		return fmt.Errorf("%w: position must not be negative", httpx.ErrValidation)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (FAQ, error) {
	if id <= 0 {
		return FAQ{}, fmt.Errorf("%w: invalid faq id", httpx.ErrValidation)
	}
	f, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return FAQ{}, httpx.ErrNotFound
	}
	return f, err
}

func (s *Service) Create(ctx context.Context, f FAQ) (FAQ, error) {
	if err := s.validate(f); err != nil {
		return FAQ{}, err
	}
	created, err := s.repo.Create(ctx, f)
	if catalog.UniqueViolation(err) {
		return FAQ{}, fmt.Errorf("%w: question already exists", httpx.ErrDuplicate)
	}
	return created, err
}

func (s *Service) Update(ctx context.Context, id int64, f FAQ) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid faq id", httpx.ErrValidation)
	}
	if err := s.validate(f); err != nil {
		return err
	}
	err := s.repo.Update(ctx, id, f)
	switch {
	case catalog.UniqueViolation(err):
		return fmt.Errorf("%w: question already exists", httpx.ErrDuplicate)
	case errors.Is(err, ErrNotFound):
		return httpx.ErrNotFound
	}
	return err
}

func (s *Service) Delete(ctx context.Context, keys []string) error {
	ids, err := catalog.ParseIDs(keys)
	if err != nil {
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return s.repo.Delete(ctx, ids)
}

func (s *Service) SetPublished(ctx context.Context, keys []string, published bool) error {
	ids, err := catalog.ParseIDs(keys)
	if err != nil {
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return s.repo.SetPublished(ctx, ids, published)
}
