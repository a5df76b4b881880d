package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/survey-service/internal/api/dto"
	apperrors "github.com/spec-kit/survey-service/pkg/util/errorutil"
)

// DepartmentsHandler exposes department endpoints.
type DepartmentsHandler struct {
	service DepartmentService
}

// NewDepartmentsHandler constructs handler.
func NewDepartmentsHandler(service DepartmentService) *DepartmentsHandler {
	return &DepartmentsHandler{service: service}
}

// List GET /api/departments.
func (h *DepartmentsHandler) List(c *fiber.Ctx) error {
	depts, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.DepartmentResponse, 0, len(depts))
	for _, d := range depts {
		items = append(items, dto.NewDepartmentResponse(d))
	}
	return c.JSON(items)
}

// Create POST /api/departments.
func (h *DepartmentsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	dept, err := h.service.Create(c.UserContext(), req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewDepartmentResponse(*dept))
}
