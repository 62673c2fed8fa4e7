package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/triage-service/internal/api/dto"
	"github.com/spec-kit/triage-service/internal/auth"
	apperrors "github.com/spec-kit/triage-service/pkg/util"
)

// AuthHandler issues bearer tokens for API clients.
type AuthHandler struct {
	tokens  *auth.TokenManager
	clients *auth.ClientStore
}

// NewAuthHandler constructs handler.
func NewAuthHandler(tokens *auth.TokenManager, clients *auth.ClientStore) *AuthHandler {
	return &AuthHandler{tokens: tokens, clients: clients}
}

// Token POST /auth/token.
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.ClientID) == "" || req.ClientSecret == "" {
		return apperrors.NewValidationError("client_id and client_secret required", nil)
	}
	if !h.clients.Verify(req.ClientID, req.ClientSecret) {
		return apperrors.NewUnauthorized("invalid client credentials")
	}

	token, expiresAt, err := h.tokens.GenerateToken(req.ClientID)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}})
}
