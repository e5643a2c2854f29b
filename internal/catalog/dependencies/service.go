package dependencies

import (
	"context"
	"errors"
	"fmt"

	"github.com/tramita/tramita/internal/catalog"
	"github.com/tramita/tramita/internal/platform/httpx"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id int64) (Dependency, error) {
	if id <= 0 {
		return Dependency{}, fmt.Errorf("%w: invalid dependency id", httpx.ErrValidation)
	}
	dep, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Dependency{}, httpx.ErrNotFound
	}
	return dep, err
}

func (s *Service) Create(ctx context.Context, dep Dependency) (Dependency, error) {
	created, err := s.repo.Create(ctx, dep)
	if catalog.UniqueViolation(err) {
		return Dependency{}, fmt.Errorf("%w: code %q already exists", httpx.ErrDuplicate, dep.Code)
	}
	return created, err
}

func (s *Service) Update(ctx context.Context, id int64, dep Dependency) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid dependency id", httpx.ErrValidation)
	}
	err := s.repo.Update(ctx, id, dep)
	switch {
	case catalog.UniqueViolation(err):
		return fmt.Errorf("%w: code %q already exists", httpx.ErrDuplicate, dep.Code)
	case errors.Is(err, ErrNotFound):
		return httpx.ErrNotFound
	}
	return err
}

// Delete removes dependencies by their selection keys.
func (s *Service) Delete(ctx context.Context, keys []string) error {
	ids, err := catalog.ParseIDs(keys)
	if err != nil {
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return s.repo.Delete(ctx, ids)
}

// SetActive activates or deactivates dependencies by their selection keys.
func (s *Service) SetActive(ctx context.Context, keys []string, active bool) error {
	ids, err := catalog.ParseIDs(keys)
	if err != nil {
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return s.repo.SetActive(ctx, ids, active)
}
