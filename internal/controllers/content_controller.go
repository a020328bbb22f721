package controllers

import (
	"errors"
	"io"
	"mime/multipart"

	"github.com/icondb/icondb/internal/memstore"
	"github.com/icondb/icondb/internal/middlewares"
	"github.com/icondb/icondb/pkg/forms"
	"github.com/icondb/icondb/pkg/utils/pagination"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
)

// ContentController serves posts, uploads and downloads
type ContentController struct {
	store         *memstore.Store
	maxUploadSize int64
}

type ContentControllerDependencies struct {
	Store         *memstore.Store
	MaxUploadSize int64
}

func NewContentController(deps ContentControllerDependencies) *ContentController {
	maxUploadSize := deps.MaxUploadSize
	if maxUploadSize <= 0 {
		maxUploadSize = forms.MaxUploadSize
	}

	return &ContentController{
		store:         deps.Store,
		maxUploadSize: maxUploadSize,
	}
}

type contentIDRequest struct {
	ContentID int `json:"content_id"`
}

var feedPages = pagination.NewOffsetHandler(20, 100)

// GetContents returns a page of the feed
func (c *ContentController) GetContents(ctx fiber.Ctx) error {
	var req struct {
		Offset int `json:"id"`
		Count  int `json:"count"`
	}
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	page := feedPages.Normalize(pagination.Params{Offset: req.Offset, Limit: req.Count})

	return ctx.JSON(c.store.Contents(page.Offset, page.Limit))
}

// GetContent returns one post as a list
func (c *ContentController) GetContent(ctx fiber.Ctx) error {
	var req contentIDRequest
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	return ctx.JSON(c.store.Content(req.ContentID))
}

// GetUserContent returns the uploads of a user
func (c *ContentController) GetUserContent(ctx fiber.Ctx) error {
	var req struct {
		ID string `json:"id"`
	}
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	return ctx.JSON(c.store.UserContents(req.ID))
}

// InsertContent stores an uploaded icon as a new post
func (c *ContentController) InsertContent(ctx fiber.Ctx) error {
	header, err := ctx.FormFile("img")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "No file provided")
	}

	if header.Size > c.maxUploadSize {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "File too large")
	}

	data, err := readFormFile(header)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to insert content")
	}

	contentType, err := forms.Upload(header.Filename, data)
	switch {
	case errors.Is(err, forms.ErrEmptyUpload):
		return fiber.NewError(fiber.StatusBadRequest, "No file provided")
	case errors.Is(err, forms.ErrUploadTooLarge):
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "File too large")
	case err != nil:
		return fiber.NewError(fiber.StatusUnsupportedMediaType, "Unsupported file type")
	}

	content := c.store.InsertContent(middlewares.CurrentUser(ctx), header.Filename, contentType, data, ctx.FormValue("message"))

	log.Info().
		Int("content_id", content.ContentID).
		Str("user", content.UserID).
		Str("filename", content.Filename).
		Msg("Inserted content")

	return ctx.JSON(fiber.Map{"success": true})
}

// Search returns posts whose tags contain the search box text
func (c *ContentController) Search(ctx fiber.Ctx) error {
	var req struct {
		SearchBox string `json:"searchbox"`
	}
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	return ctx.JSON(c.store.Search(req.SearchBox))
}

// DeleteContent removes a post owned by the signed in user
func (c *ContentController) DeleteContent(ctx fiber.Ctx) error {
	var req contentIDRequest
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := c.checkOwner(ctx, req.ContentID); err != nil {
		return err
	}

	if err := c.store.DeleteContent(req.ContentID); err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Content not found")
	}

	return ctx.JSON(fiber.Map{"success": true})
}

// UpdateContent replaces the message of a post owned by the signed in user
func (c *ContentController) UpdateContent(ctx fiber.Ctx) error {
	var req struct {
		ContentID      int    `json:"content_id"`
		ContentMessage string `json:"content_message"`
	}
	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if req.ContentMessage == "" {
		return fiber.NewError(fiber.StatusBadRequest, "content_message is required")
	}

	if err := c.checkOwner(ctx, req.ContentID); err != nil {
		return err
	}

	if err := c.store.UpdateContent(req.ContentID, req.ContentMessage); err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Content not found")
	}

	return ctx.JSON(fiber.Map{"success": true})
}

// Download serves a stored image
func (c *ContentController) Download(ctx fiber.Ctx) error {
	file, ok := c.store.File(ctx.Params("key"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "File not found")
	}

	ctx.Set(fiber.HeaderContentType, file.ContentType)
	return ctx.Send(file.Data)
}

func (c *ContentController) checkOwner(ctx fiber.Ctx, contentID int) error {
	rows := c.store.Content(contentID)
	if len(rows) == 0 {
		return fiber.NewError(fiber.StatusNotFound, "Content not found")
	}
	if rows[0].UserID != middlewares.CurrentUser(ctx) {
		return fiber.NewError(fiber.StatusForbidden, "Not the owner of this content")
	}
	return nil
}

func readFormFile(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}
