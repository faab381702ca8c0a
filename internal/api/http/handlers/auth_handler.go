package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/facilityops/maintenance-service/internal/api/dto"
	"github.com/facilityops/maintenance-service/internal/auth"
	"github.com/facilityops/maintenance-service/internal/domain"
	"github.com/facilityops/maintenance-service/internal/service"
	apperrors "github.com/facilityops/maintenance-service/pkg/util"
)

// AuthHandler serves login and identity endpoints.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	result, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": dto.LoginResponse{
		AccessToken: result.Token,
		ExpiresAt:   result.ExpiresAt,
		User:        userResponse(result.User),
	}})
}

// Me GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	return c.JSON(fiber.Map{"data": userResponse(principal.User)})
}

func userResponse(user *domain.User) dto.UserResponse {
	roles := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, string(role))
	}
	return dto.UserResponse{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Roles:  roles,
		Active: user.Active,
	}
}
