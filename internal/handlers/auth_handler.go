package handlers

import (
	"yamdb/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles the confirmation code signup flow.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers the authentication routes. Callers rate limit router.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/signup", h.HandleSignup)
	router.Post("/token", h.HandleToken)
}

// HandleSignup mails a confirmation code, creating the account on first use.
// The response is the same whether or not the account already existed.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var req services.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	user, err := h.authService.RequestCode(req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"email":    user.Email,
		"username": user.Username,
	})
}

// HandleToken exchanges a confirmation code for an access token.
func (h *AuthHandler) HandleToken(c *fiber.Ctx) error {
	var req services.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	token, err := h.authService.ExchangeCode(req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"token": token})
}
