package server

import (
	"errors"
	"time"

	"github.com/icondb/icondb/internal/controllers"
	"github.com/icondb/icondb/internal/memstore"
	"github.com/icondb/icondb/internal/middlewares"
	"github.com/icondb/icondb/internal/version"
	"github.com/icondb/icondb/pkg/forms"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/rs/zerolog/log"
)

type HTTPServerDependencies struct {
	Store             *memstore.Store
	SessionCookieName string
	// AccessLog enables the request logger middleware.
	AccessLog bool
}

// NewHTTPServer builds the development API. Every route answers errors as
// {"error": message} with the status the client classifies.
func NewHTTPServer(deps HTTPServerDependencies) *fiber.App {
	router := fiber.New(fiber.Config{
		AppName:      "icondb-mock-api",
		BodyLimit:    forms.MaxUploadSize + 1024*1024,
		ErrorHandler: errorHandler,
	})

	router.Use(cors.New())
	router.Use(requestid.New())
	if deps.AccessLog {
		router.Use(logger.New())
	}
	router.Use(middlewares.SessionMiddleware(deps.Store, deps.SessionCookieName))

	router.Get("/", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":    "healthy",
			"service":   "icondb-mock-api",
			"version":   version.GetVersion(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	users := controllers.NewUserController(controllers.UserControllerDependencies{
		Store:             deps.Store,
		SessionCookieName: deps.SessionCookieName,
	})
	contents := controllers.NewContentController(controllers.ContentControllerDependencies{
		Store: deps.Store,
	})
	social := controllers.NewSocialController(controllers.SocialControllerDependencies{
		Store: deps.Store,
	})

	requireUser := middlewares.RequireUser()

	router.Post("/get_auth", users.GetAuth)
	router.Post("/sign_in", users.SignIn)
	router.Post("/sign_up", users.SignUp)
	router.Post("/sign_out", users.SignOut)
	router.Post("/get_profile", users.GetProfile)
	router.Post("/update_profile_nickname", requireUser, users.UpdateNickname)

	router.Post("/get_contents", contents.GetContents)
	router.Post("/get_content", contents.GetContent)
	router.Post("/get_usercontent", contents.GetUserContent)
	router.Post("/insert_content", requireUser, contents.InsertContent)
	router.Post("/search", contents.Search)
	router.Post("/content_delete", requireUser, contents.DeleteContent)
	router.Post("/content_update", requireUser, contents.UpdateContent)
	router.Get("/download/:key", contents.Download)

	router.Post("/tag_insert", requireUser, social.InsertTag)
	router.Post("/tag_search", social.SearchTag)
	router.Post("/get_tags", social.GetTags)
	router.Post("/check_liked", social.CheckLiked)
	router.Post("/setLike", requireUser, social.SetLike)
	router.Post("/get_userlikedcontent", social.GetUserLikedContent)
	router.Post("/check_followed", social.CheckFollowed)
	router.Post("/follow", requireUser, social.Follow)
	router.Post("/unfollow", requireUser, social.Unfollow)
	router.Post("/get_following", social.GetFollowing)
	router.Post("/get_followers", social.GetFollowers)

	return router
}

func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
	}

	message := err.Error()
	if fiberErr != nil {
		message = fiberErr.Message
	}

	return c.Status(code).JSON(fiber.Map{"error": message})
}
