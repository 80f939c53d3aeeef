package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/saas-backend/internal/api/dto"
	"github.com/spec-kit/saas-backend/internal/service"
)

// PlansHandler exposes read access to billing plans.
type PlansHandler struct {
	plans *service.PlanService
}

// NewPlansHandler constructs handler.
func NewPlansHandler(plans *service.PlanService) *PlansHandler {
	return &PlansHandler{plans: plans}
}

// List handles GET /plans.
func (h *PlansHandler) List(c *fiber.Ctx) error {
	plans, err := h.plans.FindAll(c.Context())
	if err != nil {
		return err
	}

	out := make([]dto.PlanResponse, 0, len(plans))
	for _, plan := range plans {
		out = append(out, dto.FromPlan(plan))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Get handles GET /plans/:id.
func (h *PlansHandler) Get(c *fiber.Ctx) error {
	plan, err := h.plans.FindOne(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromPlan(plan)})
}
