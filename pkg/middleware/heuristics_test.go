package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripwise-ai/tripwise/pkg/middleware"
)

const browserUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

func newHeuristicsTestApp(t *testing.T, strict bool, requiredHeaders []string) *fiber.App {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	app := fiber.New()
	app.Use(middleware.NewHeuristicsMiddleware(logger, strict, requiredHeaders).Middleware())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	return app
}

func TestHeuristicsMiddleware_BrowserAdmitted(t *testing.T) {
	app := newHeuristicsTestApp(t, true, nil)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(fiber.HeaderUserAgent, browserUA)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHeuristicsMiddleware_StrictBlocksScriptTools(t *testing.T) {
	app := newHeuristicsTestApp(t, true, nil)

	for _, ua := range []string{"curl/8.4.0", "python-requests/2.31", "Wget/1.21", ""} {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		if ua != "" {
			req.Header.Set(fiber.HeaderUserAgent, ua)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, "user agent %q", ua)
	}
}

func TestHeuristicsMiddleware_LenientModeOnlyFlags(t *testing.T) {
	app := newHeuristicsTestApp(t, false, nil)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(fiber.HeaderUserAgent, "curl/8.4.0")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHeuristicsMiddleware_RequiredHeaders(t *testing.T) {
	app := newHeuristicsTestApp(t, true, []string{"X-Client-Version"})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(fiber.HeaderUserAgent, browserUA)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(fiber.HeaderUserAgent, browserUA)
	req.Header.Set("X-Client-Version", "1.2.0")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHeuristicsMiddleware_BearerRequestsSkipChecks(t *testing.T) {
	app := newHeuristicsTestApp(t, true, []string{"X-Client-Version"})

	// Even a script UA with missing headers passes: identity verification
	// downstream is authoritative for credentialed calls.
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(fiber.HeaderUserAgent, "curl/8.4.0")
	req.Header.Set(fiber.HeaderAuthorization, "Bearer token")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
