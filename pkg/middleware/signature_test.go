package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripwise-ai/tripwise/pkg/admission/signature"
	"github.com/tripwise-ai/tripwise/pkg/common"
	"github.com/tripwise-ai/tripwise/pkg/middleware"
)

func newSignatureTestApp(t *testing.T, verifier *signature.Verifier) *fiber.App {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	mw := middleware.NewSignatureMiddleware(logger, verifier, middleware.SignatureMiddlewareConfig{
		SkipPaths:        []string{"/health"},
		ProtectedPaths:   []string{"/api/v1"},
		ProtectedMethods: []string{"POST", "PUT", "DELETE"},
	})

	app := fiber.New()
	app.Use(mw.Middleware())
	app.All("/*", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	return app
}

func newSignatureVerifier(t *testing.T, now time.Time) *signature.Verifier {
	t.Helper()
	v, err := signature.NewVerifier("test-secret", &signature.Opts{
		TimeProvider: func() time.Time { return now },
	})
	require.NoError(t, err)
	return v
}

func TestSignatureMiddleware_ValidSignatureAdmitted(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	v := newSignatureVerifier(t, now)
	app := newSignatureTestApp(t, v)

	body := `{"text":"hello"}`
	ts := strconv.FormatInt(now.Unix(), 10)
	sig := v.Compute(http.MethodPost, "/api/v1/translate", []byte(body), ts)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/translate", strings.NewReader(body))
	req.Header.Set(common.TimestampHeader, ts)
	req.Header.Set(common.SignatureHeader, sig)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSignatureMiddleware_MissingSignatureRejected(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	app := newSignatureTestApp(t, newSignatureVerifier(t, now))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/translate", strings.NewReader("{}"))
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSignatureMiddleware_TamperedBodyRejected(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	v := newSignatureVerifier(t, now)
	app := newSignatureTestApp(t, v)

	ts := strconv.FormatInt(now.Unix(), 10)
	sig := v.Compute(http.MethodPost, "/api/v1/translate", []byte(`{"text":"hello"}`), ts)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/translate", strings.NewReader(`{"text":"evil"}`))
	req.Header.Set(common.TimestampHeader, ts)
	req.Header.Set(common.SignatureHeader, sig)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSignatureMiddleware_StaleTimestampRejected(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	v := newSignatureVerifier(t, now)
	app := newSignatureTestApp(t, v)

	ts := strconv.FormatInt(now.Add(-10*time.Minute).Unix(), 10)
	sig := v.Compute(http.MethodPost, "/api/v1/translate", nil, ts)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/translate", nil)
	req.Header.Set(common.TimestampHeader, ts)
	req.Header.Set(common.SignatureHeader, sig)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSignatureMiddleware_BypassRules(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	app := newSignatureTestApp(t, newSignatureVerifier(t, now))

	cases := []struct {
		name   string
		method string
		path   string
		header map[string]string
	}{
		{"skip path", http.MethodPost, "/health", nil},
		{"unprotected path", http.MethodPost, "/public/ping", nil},
		{"unprotected method", http.MethodGet, "/api/v1/poi", nil},
		{"bearer deferred to auth", http.MethodPost, "/api/v1/translate", map[string]string{
			fiber.HeaderAuthorization: "Bearer some-token",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		})
	}
}
