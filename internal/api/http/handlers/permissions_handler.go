package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/survey-service/internal/api/dto"
	"github.com/spec-kit/survey-service/internal/service"
	apperrors "github.com/spec-kit/survey-service/pkg/util/errorutil"
)

const (
	msgPairsNotList     = "Invalid data format. 'allowed_pairs' must be a list."
	msgPermissionsSaved = "Permissions saved successfully"
	msgNoRelevantUsers  = "No relevant users found for mail alert."
	msgAlertInitiated   = "Mail alert process initiated (simulated). Check backend logs for details."
)

// PermissionsHandler exposes the permission registry and mail alerts.
type PermissionsHandler struct {
	service PermissionService
}

// NewPermissionsHandler constructs handler.
func NewPermissionsHandler(service PermissionService) *PermissionsHandler {
	return &PermissionsHandler{service: service}
}

// List GET /api/permissions.
func (h *PermissionsHandler) List(c *fiber.Ctx) error {
	perms, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.PermissionResponse, 0, len(perms))
	for _, p := range perms {
		items = append(items, dto.NewPermissionResponse(p))
	}
	return c.JSON(items)
}

// Save POST /api/permissions/save replaces the whole edge set.
func (h *PermissionsHandler) Save(c *fiber.Ctx) error {
	var req dto.SavePermissionsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError(msgPairsNotList, nil)
	}
	pairs, err := decodePairs(req.AllowedPairs)
	if err != nil {
		return err
	}
	if err := h.service.ReplaceAll(c.UserContext(), pairs); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": msgPermissionsSaved})
}

// MailAlert POST /api/permissions/mail-alert composes simulated alerts.
func (h *PermissionsHandler) MailAlert(c *fiber.Ctx) error {
	var req dto.MailAlertRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	pairs, err := decodePairs(req.AllowedPairs)
	if err != nil {
		return err
	}

	result, err := h.service.MailAlert(c.UserContext(), service.MailAlertInput{
		Pairs:     pairs,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		return err
	}

	resp := dto.MailAlertResponse{
		Message:         msgAlertInitiated,
		AlertDetails:    result.Notifications,
		UsersConsidered: result.UsersConsidered,
	}
	if result.UsersConsidered == 0 {
		resp.Message = msgNoRelevantUsers
	}
	if resp.AlertDetails == nil {
		resp.AlertDetails = []string{}
	}
	return c.JSON(resp)
}

func decodePairs(raw json.RawMessage) ([]service.PairInput, error) {
	pairs, err := dto.DecodePairs(raw)
	if errors.Is(err, dto.ErrPairsNotList) {
		return nil, apperrors.NewValidationError(msgPairsNotList, nil)
	}
	return pairs, err
}
