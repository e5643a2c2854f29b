package acts

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

func (s *Service) validate(act Act) error {
	if !slices.Contains(Kinds, act.Kind) {
		return fmt.Errorf("%w: unknown act kind %q", httpx.ErrValidation, act.Kind)
	}
	if !slices.Contains(Statuses, act.Status) {
		return fmt.Errorf("%w: unknown act status %q", httpx.ErrValidation, act.Status)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (Act, error) {
	if id <= 0 {
		return Act{}, fmt.Errorf("%w: invalid act id", httpx.ErrValidation)
	}
	act, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Act{}, httpx.ErrNotFound
	}
	return act, err
}

func (s *Service) Create(ctx context.Context, act Act) (Act, error) {
	if act.Status == "" {
		act.Status = StatusDraft
	}
	if err := s.validate(act); err != nil {
		return Act{}, err
	}
	created, err := s.repo.Create(ctx, act)
	if catalog.UniqueViolation(err) {
		return Act{}, fmt.Errorf("%w: act number %q already exists", httpx.ErrDuplicate, act.Number)
	}
	return created, err
}

func (s *Service) Update(ctx context.Context, id int64, act Act) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid act id", httpx.ErrValidation)
	}
	if err := s.validate(act); err != nil {
		return err
	}
	err := s.repo.Update(ctx, id, act)
	switch {
	case catalog.UniqueViolation(err):
		return fmt.Errorf("%w: act number %q already exists", httpx.ErrDuplicate, act.Number)
	case errors.Is(err, ErrNotFound):
		return httpx.ErrNotFound
	}
	return err
}

// SetStatus moves acts to a lifecycle state by their selection keys. Only
// declared states are accepted.
func (s *Service) SetStatus(ctx context.Context, keys []string, status string) error {
	if !slices.Contains(Statuses, status) {
		return fmt.Errorf("%w: unknown act status %q", httpx.ErrValidation, status)
	}
	ids, err := catalog.ParseIDs(keys)
	if err != nil {
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return s.repo.SetStatus(ctx, ids, status)
}
