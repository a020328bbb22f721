package middlewares

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
)

type userKey struct{}
type tokenKey struct{}

// SessionLookup resolves a session token to a user id.
type SessionLookup interface {
	SessionUser(token string) (string, bool)
}

// SessionMiddleware attaches the user of the session cookie, if any, to the
// request. Requests without a valid session pass through anonymously.
func SessionMiddleware(lookup SessionLookup, cookieName string) fiber.Handler {
	return func(c fiber.Ctx) error {
		token := c.Cookies(cookieName)
		if token == "" {
			return c.Next()
		}

		user, ok := lookup.SessionUser(token)
		if !ok {
			log.Debug().
				Str("path", c.Path()).
				Str("method", c.Method()).
				Msg("Unknown session cookie")
			return c.Next()
		}

		c.Locals(userKey{}, user)
		c.Locals(tokenKey{}, token)

		return c.Next()
	}
}

// RequireUser rejects requests without a signed in user.
func RequireUser() fiber.Handler {
	return func(c fiber.Ctx) error {
		if CurrentUser(c) == "" {
			log.Debug().
				Str("path", c.Path()).
				Str("method", c.Method()).
				Msg("Rejected request without session")

			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Login required",
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the signed in user of the request, or "".
func CurrentUser(c fiber.Ctx) string {
	user, _ := c.Locals(userKey{}).(string)
	return user
}

// SessionToken returns the session token of the request, or "".
func SessionToken(c fiber.Ctx) string {
	token, _ := c.Locals(tokenKey{}).(string)
	return token
}
