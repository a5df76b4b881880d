package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/survey-service/internal/api/dto"
	"github.com/spec-kit/survey-service/internal/auth"
	apperrors "github.com/spec-kit/survey-service/pkg/util/errorutil"
)

// SurveysHandler serves survey definitions and accepts responses.
type SurveysHandler struct {
	service SurveyService
}

// NewSurveysHandler constructs handler.
func NewSurveysHandler(service SurveyService) *SurveysHandler {
	return &SurveysHandler{service: service}
}

// GetSurvey GET /api/surveys/:id.
func (h *SurveysHandler) GetSurvey(c *fiber.Ctx) error {
	id, err := surveyID(c)
	if err != nil {
		return err
	}
	survey, err := h.service.GetSurvey(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSurveyResponse(survey))
}

// SubmitResponse POST /api/surveys/:id/submit_response. When the body has
// no user_id the authenticated principal, if any, supplies it.
func (h *SurveysHandler) SubmitResponse(c *fiber.Ctx) error {
	id, err := surveyID(c)
	if err != nil {
		return err
	}
	var req dto.SubmitResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == nil {
		if principal, ok := auth.PrincipalFromContext(c); ok {
			uid := principal.UserID
			req.UserID = &uid
		}
	}

	result, err := h.service.SubmitResponse(c.UserContext(), id, req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.SubmitResponseResult{
		Message:    "Survey submitted successfully",
		ResponseID: result.ResponseID,
	})
}

func surveyID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("survey id must be an integer", map[string]any{"id": c.Params("id")})
	}
	return id, nil
}
