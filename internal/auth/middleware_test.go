package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func newTestApp(issuer *Issuer) *fiber.App {
	app := fiber.New()
	ok := func(c *fiber.Ctx) error {
		if c.Locals(LocalSessionID) == nil {
			return fiber.NewError(fiber.StatusUnauthorized)
		}
		return c.SendStatus(http.StatusOK)
	}
	app.Get("/private", JWTMiddleware(issuer), ok)
	app.Get("/sessions/:id", JWTMiddleware(issuer), ok)
	return app
}

func TestJWTMiddleware(t *testing.T) {
	issuer := NewIssuer("secret")
	app := newTestApp(issuer)

	// missing token
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized")
	}

	// bad token
	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer nope")
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized for bad token")
	}

	// valid token
	token, _ := issuer.Sign("session-1")
	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected ok")
	}

	// query token
	req = httptest.NewRequest(http.MethodGet, "/private?token="+token, nil)
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected ok for query token")
	}
}

func TestJWTMiddlewareSessionMismatch(t *testing.T) {
	issuer := NewIssuer("secret")
	app := newTestApp(issuer)
	token, _ := issuer.Sign("session-1")

	req := httptest.NewRequest(http.MethodGet, "/sessions/session-1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected ok for matching session")
	}

	req = httptest.NewRequest(http.MethodGet, "/sessions/session-2", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected forbidden for other session")
	}
}

func TestBearerFromHeader(t *testing.T) {
	if bearerFromHeader("bearer abc") != "abc" {
		t.Fatalf("expected case-insensitive scheme")
	}
	if bearerFromHeader("Basic abc") != "" || bearerFromHeader("") != "" {
		t.Fatalf("expected empty token")
	}
}
