package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// LocalSessionID is the c.Locals key holding the verified session id.
const LocalSessionID = "session_id"

// JWTMiddleware validates the session token and stores its session id in
// locals. Browsers cannot set headers on websocket upgrades, so a "token"
// query parameter is accepted as well. When the route has a :id or
// :sessionID parameter, the token must name that session.
func JWTMiddleware(issuer *Issuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get("Authorization"))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		sessionID, err := issuer.Verify(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		for _, param := range []string{"id", "sessionID"} {
			if want := c.Params(param); want != "" && want != sessionID {
				return fiber.NewError(fiber.StatusForbidden, "token does not match session")
			}
		}

		c.Locals(LocalSessionID, sessionID)
		return c.Next()
	}
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
