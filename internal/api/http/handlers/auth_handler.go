package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/survey-service/internal/api/dto"
	apperrors "github.com/spec-kit/survey-service/pkg/util/errorutil"
)

// AuthHandler exposes the login endpoint.
type AuthHandler struct {
	auth AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Missing username or password", nil)
	}

	res, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(dto.LoginResponse{
		ID:         res.User.ID,
		Username:   res.User.Username,
		Name:       res.User.Name,
		Email:      res.User.Email,
		Department: res.User.Department,
		Role:       res.Role,
		Token:      res.Token,
		ExpiresAt:  res.ExpiresAt,
	})
}
