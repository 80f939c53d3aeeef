package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/saas-backend/internal/domain"
	"github.com/spec-kit/saas-backend/internal/repository"
	apperrors "github.com/spec-kit/saas-backend/pkg/util"
)

// PlanService exposes read access to billing plans.
type PlanService struct {
	plans repository.PlanRepository
}

// NewPlanService builds the service.
func NewPlanService(plans repository.PlanRepository) *PlanService {
	return &PlanService{plans: plans}
}

// FindAll lists every plan.
func (s *PlanService) FindAll(ctx context.Context) ([]*domain.Plan, error) {
	plans, err := s.plans.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return plans, nil
}

// FindOne returns a plan or a NOT_FOUND domain error.
func (s *PlanService) FindOne(ctx context.Context, id string) (*domain.Plan, error) {
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("plan", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return plan, nil
}
