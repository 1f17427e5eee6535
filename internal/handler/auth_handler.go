package handler

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/nearbuy/nearbuy-api/internal/dto"
	"github.com/nearbuy/nearbuy-api/internal/middleware"
	"github.com/nearbuy/nearbuy-api/internal/service"
	"github.com/nearbuy/nearbuy-api/internal/utils"
)

// AuthHandler manages registration and the session cookie lifecycle.
type AuthHandler struct {
	service    service.AuthService
	cookieTTL  time.Duration
	secureCook bool
	logger     zerolog.Logger
}

// NewAuthHandler constructs a handler instance. secureCookies should be true
// everywhere except local development over plain HTTP.
func NewAuthHandler(service service.AuthService, cookieTTL time.Duration, secureCookies bool, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service:    service,
		cookieTTL:  cookieTTL,
		secureCook: secureCookies,
		logger:     logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register binds the auth routes. The me/logout routes are mounted separately
// behind the session middleware.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/register", h.register)
	router.Post("/login", h.login)
}

// RegisterProtected binds the routes that require a live session. The guards
// run per route because the group prefix also serves public routes.
func (h *AuthHandler) RegisterProtected(router fiber.Router, guards ...fiber.Handler) {
	router.Post("/logout", guarded(guards, h.logout)...)
	router.Get("/me", guarded(guards, h.me)...)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.Register(requestContext(c), payload)
	if err != nil {
		var validationErrors validator.ValidationErrors
		switch {
		case errors.As(err, &validationErrors):
			return utils.SendValidationError(c, err)
		case errors.Is(err, service.ErrEmailTaken):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create account")
		}
	}

	h.setSessionCookie(c, session.Token)
	return c.Status(fiber.StatusCreated).JSON(session.User)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.Login(requestContext(c), payload)
	if err != nil {
		var validationErrors validator.ValidationErrors
		switch {
		case errors.As(err, &validationErrors):
			return utils.SendValidationError(c, err)
		case errors.Is(err, service.ErrInvalidCredentials):
			return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
		case errors.Is(err, service.ErrAccountSuspended):
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to log in")
		}
	}

	h.setSessionCookie(c, session.Token)
	return c.JSON(session.User)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	sessionID := sessionIDFromContext(c)
	if sessionID != "" {
		if err := h.service.Logout(requestContext(c), sessionID); err != nil {
			h.logger.Warn().Err(err).Msg("failed to revoke session")
		}
	}

	h.clearSessionCookie(c)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	user, err := h.service.Me(requestContext(c), userIDFromContext(c))
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load account")
	}
	return c.JSON(user)
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Expires:  time.Now().Add(h.cookieTTL),
		HTTPOnly: true,
		Secure:   h.secureCook,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.secureCook,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}
