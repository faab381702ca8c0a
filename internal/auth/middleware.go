package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/facilityops/maintenance-service/internal/domain"
	"github.com/facilityops/maintenance-service/internal/repository"
	apperrors "github.com/facilityops/maintenance-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	User  *domain.User
	Roles []domain.Role
}

// Caller returns the identity the lifecycle engine authorizes against.
func (p *Principal) Caller() domain.Caller {
	return domain.Caller{ID: p.User.ID, Roles: p.Roles}
}

// Middleware validates bearer tokens and loads principals.
type Middleware struct {
	tokens *TokenManager
	users  repository.UserStore
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, users repository.UserStore) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	user, err := m.users.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}
	if !user.Active {
		return apperrors.NewForbidden("user account is inactive", nil)
	}

	roles := make([]domain.Role, 0, len(claims.Roles))
	for _, role := range claims.Roles {
		roles = append(roles, domain.Role(role))
	}

	c.Locals(principalKey, &Principal{User: user, Roles: roles})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
