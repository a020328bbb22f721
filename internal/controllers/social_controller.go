package controllers

import (
	"errors"

	"github.com/icondb/icondb/internal/memstore"
	"github.com/icondb/icondb/internal/middlewares"
	"github.com/icondb/icondb/pkg/clients/icondb"

	"github.com/gofiber/fiber/v3"
)

// SocialController serves tags, likes and follows
type SocialController struct {
	store *memstore.Store
}

type SocialControllerDependencies struct {
	Store *memstore.Store
}

func NewSocialController(deps SocialControllerDependencies) *SocialController {
	return &SocialController{store: deps.Store}
}

type userIDRequest struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
}

func (r userIDRequest) target() string {
	if r.UserID != "" {
		return r.UserID
	}
	return r.ID
}

// InsertTag adds a tag to a post. Blank tags answer "fail" and repeated
// tags answer "duplication", both with status 200.
func (c *SocialController) InsertTag(ctx fiber.Ctx) error {
	var req struct {
		ContentID  int    `json:"content_id"`
		TagContext string `json:"tag_context"`
	}
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if req.TagContext == "" {
		return ctx.JSON("fail")
	}

	result, err := c.store.AddTag(req.ContentID, req.TagContext)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Content not found")
	}

	if result != icondb.TagAdded {
		return ctx.JSON(string(result))
	}
	return ctx.JSON(fiber.Map{"success": true})
}

// SearchTag returns posts carrying a tag
func (c *SocialController) SearchTag(ctx fiber.Ctx) error {
	var req struct {
		Hashtag string `json:"Hashtag"`
	}
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if req.Hashtag == "" {
		return ctx.JSON([]any{})
	}

	return ctx.JSON(c.store.Search(req.Hashtag))
}

// GetTags returns the tags of a post
func (c *SocialController) GetTags(ctx fiber.Ctx) error {
	var req contentIDRequest
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	tags, err := c.store.Tags(req.ContentID)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Content not found")
	}

	return ctx.JSON(tags)
}

// CheckLiked answers "liked" or "unliked" for the signed in user
func (c *SocialController) CheckLiked(ctx fiber.Ctx) error {
	var req contentIDRequest
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if c.store.IsLiked(middlewares.CurrentUser(ctx), req.ContentID) {
		return ctx.JSON("liked")
	}
	return ctx.JSON("unliked")
}

// SetLike toggles the like of the signed in user and returns the new state
func (c *SocialController) SetLike(ctx fiber.Ctx) error {
	var req contentIDRequest
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	liked, err := c.store.ToggleLike(middlewares.CurrentUser(ctx), req.ContentID)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Content not found")
	}

	return ctx.JSON(liked)
}

// GetUserLikedContent returns the posts a user likes
func (c *SocialController) GetUserLikedContent(ctx fiber.Ctx) error {
	var req userIDRequest
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	return ctx.JSON(c.store.LikedContents(req.target()))
}

// CheckFollowed reports whether the signed in user follows a user
func (c *SocialController) CheckFollowed(ctx fiber.Ctx) error {
	var req userIDRequest
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	followed := c.store.IsFollowing(middlewares.CurrentUser(ctx), req.target())
	return ctx.JSON(fiber.Map{"followed": followed})
}

// Follow starts following a user
func (c *SocialController) Follow(ctx fiber.Ctx) error {
	var req userIDRequest
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	err := c.store.Follow(middlewares.CurrentUser(ctx), req.target())
	switch {
	case errors.Is(err, memstore.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "User not found")
	case errors.Is(err, memstore.ErrDuplicate):
		return ctx.JSON(fiber.Map{"success": false, "message": "Already followed"})
	case err != nil:
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to follow")
	}

	return ctx.JSON(fiber.Map{"success": true})
}

// Unfollow stops following a user
func (c *SocialController) Unfollow(ctx fiber.Ctx) error {
	var req userIDRequest
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	c.store.Unfollow(middlewares.CurrentUser(ctx), req.target())

	return ctx.JSON(fiber.Map{"success": true})
}

// GetFollowing returns the users a user follows
func (c *SocialController) GetFollowing(ctx fiber.Ctx) error {
	var req userIDRequest
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	return ctx.JSON(c.store.Following(req.target()))
}

// GetFollowers returns the users following a user
func (c *SocialController) GetFollowers(ctx fiber.Ctx) error {
	var req userIDRequest
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	return ctx.JSON(c.store.Followers(req.target()))
}
