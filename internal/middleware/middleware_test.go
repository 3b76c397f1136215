package middleware_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"yamdb/internal/middleware"
	"yamdb/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticAuthenticator map[string]*models.User

func (s staticAuthenticator) Authenticate(token string) (*models.User, error) {
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, errors.New("invalid token")
}

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(middleware.Metrics())
	app.Use(middleware.Authenticate(staticAuthenticator{"good": {Username: "alice"}}))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		if u := middleware.CurrentUser(c); u != nil {
			return c.SendString(u.Username)
		}
		return c.SendString("anonymous")
	})
	app.Get("/private", middleware.RequireAuth(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"anonymous read", "/whoami", "", fiber.StatusOK},
		{"valid token", "/whoami", "Bearer good", fiber.StatusOK},
		{"invalid token", "/whoami", "Bearer bad", fiber.StatusUnauthorized},
		{"wrong scheme", "/whoami", "Token good", fiber.StatusUnauthorized},
		{"anonymous private", "/private", "", fiber.StatusUnauthorized},
		{"authenticated private", "/private", "Bearer good", fiber.StatusNoContent},
	}
	app := newApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestMetricsLabelsUnmatchedRequests(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.Metrics())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	for _, path := range []string{"/nope", "/missing/42"} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(raw), `http_requests_total{method="GET",path="unmatched",status="404"} 2`)
	assert.NotContains(t, string(raw), `path="/",status="404"`)
}
