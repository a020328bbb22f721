package controllers

import (
	"errors"

	"github.com/icondb/icondb/internal/memstore"
	"github.com/icondb/icondb/internal/middlewares"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
)

// UserController serves accounts, sessions and profiles
type UserController struct {
	store      *memstore.Store
	cookieName string
}

type UserControllerDependencies struct {
	Store             *memstore.Store
	SessionCookieName string
}

func NewUserController(deps UserControllerDependencies) *UserController {
	return &UserController{
		store:      deps.Store,
		cookieName: deps.SessionCookieName,
	}
}

type credentialsRequest struct {
	ID       string `json:"id"`
	Password string `json:"pw"`
	Name     string `json:"name"`
}

// GetAuth returns the signed in user id, or null
func (c *UserController) GetAuth(ctx fiber.Ctx) error {
	user := middlewares.CurrentUser(ctx)
	if user == "" {
		return ctx.JSON(nil)
	}
	return ctx.JSON(user)
}

// SignIn checks credentials and opens a session
func (c *UserController) SignIn(ctx fiber.Ctx) error {
	var req credentialsRequest
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if req.ID == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "id and pw are required")
	}

	token, err := c.store.Authenticate(req.ID, req.Password)
	if err != nil {
		log.Info().Str("user", req.ID).Msg("Rejected sign in")
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     c.cookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	log.Info().Str("user", req.ID).Msg("Signed in")

	return ctx.SendString("success")
}

// SignUp creates an account
func (c *UserController) SignUp(ctx fiber.Ctx) error {
	var req credentialsRequest
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if req.ID == "" || req.Password == "" || req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "id, pw and name are required")
	}

	if err := c.store.CreateUser(req.ID, req.Password, req.Name); err != nil {
		if errors.Is(err, memstore.ErrDuplicate) {
			return fiber.NewError(fiber.StatusConflict, "User already exists")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to sign up")
	}

	log.Info().Str("user", req.ID).Msg("Signed up")

	return ctx.SendString("success")
}

// SignOut closes the session
func (c *UserController) SignOut(ctx fiber.Ctx) error {
	if token := middlewares.SessionToken(ctx); token != "" {
		c.store.CloseSession(token)
	}

	ctx.ClearCookie(c.cookieName)

	return ctx.SendString("success")
}

// GetProfile returns the profile rows of a user
func (c *UserController) GetProfile(ctx fiber.Ctx) error {
	var req struct {
		User string `json:"user"`
	}
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	return ctx.JSON(c.store.Profile(req.User))
}

// UpdateNickname renames the signed in user
func (c *UserController) UpdateNickname(ctx fiber.Ctx) error {
	var req struct {
		Nickname string `json:"nickname"`
	}
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if req.Nickname == "" {
		return fiber.NewError(fiber.StatusBadRequest, "nickname is required")
	}

	if err := c.store.UpdateNickname(middlewares.CurrentUser(ctx), req.Nickname); err != nil {
		return fiber.NewError(fiber.StatusNotFound, "User not found")
	}

	return ctx.JSON(fiber.Map{"success": true})
}
