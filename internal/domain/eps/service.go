package eps

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrCodeTaken    = errors.New("eps code already exists")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name   string
	Code   string
	Regime string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (EPS, error) {
	name := strings.TrimSpace(in.Name)
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if name == "" || code == "" {
		return EPS{}, ErrInvalidInput
	}
	regime := RegimeType(strings.ToLower(strings.TrimSpace(in.Regime)))
	if !validRegime(regime) {
		return EPS{}, ErrInvalidInput
	}

	if _, err := s.repo.GetByCode(ctx, code); err == nil {
		return EPS{}, ErrCodeTaken
	}

	now := s.now()
	e := EPS{
		ID:        uuid.NewString(),
		Name:      name,
		Code:      code,
		Regime:    regime,
		Status:    StatusActiva,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return EPS{}, err
	}
	return e, nil
}

// Patch de catálogo: puntero nil = no tocar.
type Patch struct {
	Name   *string
	Regime *string
	Status *string
}

func (s *Service) Update(ctx context.Context, id string, patch Patch) (EPS, error) {
	e, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return EPS{}, ErrNotFound
	}

	if patch.Name != nil {
		v := strings.TrimSpace(*patch.Name)
		if v == "" {
			return EPS{}, ErrInvalidInput
		}
		e.Name = v
	}
	if patch.Regime != nil {
		r := RegimeType(strings.ToLower(strings.TrimSpace(*patch.Regime)))
		if !validRegime(r) {
			return EPS{}, ErrInvalidInput
		}
		e.Regime = r
	}
	if patch.Status != nil {
		st := Status(strings.ToLower(strings.TrimSpace(*patch.Status)))
		switch st {
		case StatusActiva, StatusInactiva, StatusLiquidacion:
			e.Status = st
		default:
			return EPS{}, ErrInvalidInput
		}
	}

	e.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, e); err != nil {
		return EPS{}, err
	}
	return e, nil
}

func (s *Service) List(ctx context.Context) ([]EPS, error) {
	return s.repo.List(ctx)
}

func validRegime(r RegimeType) bool {
	switch r {
	case RegimeContributivo, RegimeSubsidiado, RegimeAmbos:
		return true
	}
	return false
}
