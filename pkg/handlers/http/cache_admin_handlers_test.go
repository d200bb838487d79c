package http_test

import (
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripwise-ai/tripwise/pkg/admission/cache"
	"github.com/tripwise-ai/tripwise/pkg/common"
	"github.com/tripwise-ai/tripwise/pkg/domain/identity"
	handlers "github.com/tripwise-ai/tripwise/pkg/handlers/http"
)

func adminInjector() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(common.IdentityContextKey, &identity.Identity{
			Subject: "root",
			Roles:   []string{identity.RoleUser, identity.RoleAdmin},
		})
		return c.Next()
	}
}

func newCacheAdminApp(c *cache.Cache, admin bool) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/admin")
	if admin {
		group.Use(adminInjector())
	} else {
		group.Use(identityInjector("alice"))
	}
	group.Get("/cache/stats", handlers.NewCacheStatsHandler(testLogger(), c).Handle)
	group.Delete("/cache/:namespace", handlers.NewInvalidateCacheHandler(testLogger(), c).Handle)
	return app
}

func TestCacheStatsHandler_RequiresAdmin(t *testing.T) {
	app := newCacheAdminApp(cache.New(nil), false)

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/api/v1/admin/cache/stats", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestCacheStatsHandler_ReportsCounters(t *testing.T) {
	c := cache.New(nil)
	c.Set("poi", "k", "v", time.Minute)
	c.Get("poi", "k")
	c.Get("poi", "missing")

	app := newCacheAdminApp(c, true)
	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/api/v1/admin/cache/stats", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Entries int    `json:"entries"`
		Hits    uint64 `json:"hits"`
		Misses  uint64 `json:"misses"`
		Sets    uint64 `json:"sets"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, 1, payload.Entries)
	assert.Equal(t, uint64(1), payload.Hits)
	assert.Equal(t, uint64(1), payload.Misses)
	assert.Equal(t, uint64(1), payload.Sets)
}

func TestInvalidateCacheHandler_ClearsNamespace(t *testing.T) {
	c := cache.New(nil)
	c.Set("poi", "a", 1, time.Minute)
	c.Set("poi", "b", 2, time.Minute)
	c.Set("stays", "c", 3, time.Minute)

	app := newCacheAdminApp(c, true)
	resp, err := app.Test(httptest.NewRequest(nethttp.MethodDelete, "/api/v1/admin/cache/poi", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Removed int `json:"removed"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, 2, payload.Removed)
	assert.Equal(t, 1, c.Len())
}

func TestInvalidateCacheHandler_RequiresAdmin(t *testing.T) {
	app := newCacheAdminApp(cache.New(nil), false)

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodDelete, "/api/v1/admin/cache/poi", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
