package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/hassan-khan07/Chat-App/internal/apperr"
	"github.com/hassan-khan07/Chat-App/internal/auth"
	"github.com/hassan-khan07/Chat-App/internal/service"
)

type UserHandler struct {
	users    *service.UserService
	validate *validator.Validate
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users, validate: validator.New()}
}

type signupRequest struct {
	FullName string `json:"full_name" form:"full_name" validate:"required"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
}

func (h *UserHandler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, apperr.Validation("malformed request body"))
	}
	if err := h.validate.Struct(&req); err != nil {
		return respondErr(c, apperr.Validation("full name, a valid email and a password of at least 6 characters are required"))
	}
	avatar, err := formFile(c, "avatar")
	if err != nil {
		return respondErr(c, err)
	}
	user, err := h.users.Signup(c.Context(), req.FullName, req.Email, req.Password, avatar)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(http.StatusCreated).JSON(user)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *UserHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, apperr.Validation("malformed request body"))
	}
	if err := h.validate.Struct(&req); err != nil {
		return respondErr(c, apperr.Validation("email and password are required"))
	}
	user, pair, err := h.users.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return respondErr(c, err)
	}
	setAuthCookies(c, pair)
	return c.JSON(fiber.Map{"user": user, "tokens": pair})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *UserHandler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err == nil && req.RefreshToken != "" {
		// body token wins over cookie
	} else {
		req.RefreshToken = c.Cookies("refresh_token")
	}
	pair, err := h.users.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		return respondErr(c, err)
	}
	setAuthCookies(c, pair)
	return c.JSON(fiber.Map{"tokens": pair})
}

func (h *UserHandler) Logout(c *fiber.Ctx) error {
	if err := h.users.Logout(c.Context(), auth.UserID(c)); err != nil {
		return respondErr(c, err)
	}
	clearAuthCookies(c)
	return c.JSON(fiber.Map{"status": "logged out"})
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	user, err := h.users.Get(c.Context(), auth.UserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(user)
}

func (h *UserHandler) UpdateAvatar(c *fiber.Ctx) error {
	avatar, err := formFile(c, "avatar")
	if err != nil {
		return respondErr(c, err)
	}
	if avatar == nil {
		return respondErr(c, apperr.Validation("avatar file is missing"))
	}
	user, err := h.users.UpdateAvatar(c.Context(), auth.UserID(c), *avatar)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(user)
}

// Sidebar lists every other user for the contact list.
func (h *UserHandler) Sidebar(c *fiber.Ctx) error {
	users, err := h.users.ListOthers(c.Context(), auth.UserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(users)
}

func setAuthCookies(c *fiber.Ctx, pair *auth.TokenPair) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    pair.AccessToken,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    pair.RefreshToken,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func clearAuthCookies(c *fiber.Ctx) {
	expired := time.Now().Add(-time.Hour)
	c.Cookie(&fiber.Cookie{Name: "access_token", Value: "", Expires: expired, HTTPOnly: true})
	c.Cookie(&fiber.Cookie{Name: "refresh_token", Value: "", Expires: expired, HTTPOnly: true})
}
