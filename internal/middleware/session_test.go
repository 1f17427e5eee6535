package middleware_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nearbuy/nearbuy-api/internal/auth"
	"github.com/nearbuy/nearbuy-api/internal/middleware"
	"github.com/nearbuy/nearbuy-api/internal/models"
	"github.com/nearbuy/nearbuy-api/internal/repository"
)

const testSecret = "middleware-test-secret"

func setupSessionStore(t *testing.T) (*miniredis.Miniredis, *auth.SessionStore) {
	t.Helper()
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mini, auth.NewSessionStore(client, time.Hour)
}

func protectedApp(store *auth.SessionStore) *fiber.App {
	app := fiber.New()
	app.Get("/private", middleware.SessionProtected(testSecret, store), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": c.Locals("user_id")})
	})
	return app
}

func signedToken(t *testing.T, store *auth.SessionStore, userID uint) (string, string) {
	t.Helper()
	sessionID, err := store.Create(context.Background(), userID)
	require.NoError(t, err)
	token, err := auth.SignToken(testSecret, userID, sessionID, time.Hour)
	require.NoError(t, err)
	return token, sessionID
}

func TestSessionProtectedAcceptsCookie(t *testing.T) {
	_, store := setupSessionStore(t)
	app := protectedApp(store)
	token, _ := signedToken(t, store, 42)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSessionProtectedAcceptsBearer(t *testing.T) {
	_, store := setupSessionStore(t)
	app := protectedApp(store)
	token, _ := signedToken(t, store, 42)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSessionProtectedRejections(t *testing.T) {
	_, store := setupSessionStore(t)
	app := protectedApp(store)

	t.Run("no token", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/private", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "not-a-jwt"})
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong signing secret", func(t *testing.T) {
		sessionID, err := store.Create(context.Background(), 42)
		require.NoError(t, err)
		token, err := auth.SignToken("some-other-secret", 42, sessionID, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("revoked session", func(t *testing.T) {
		token, sessionID := signedToken(t, store, 42)
		require.NoError(t, store.Revoke(context.Background(), sessionID))

		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAdminOnly(t *testing.T) {
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	admin := models.User{Name: "Admin", Email: "admin@example.com", PasswordHash: "x", IsAdmin: true}
	member := models.User{Name: "Member", Email: "member@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&admin).Error)
	require.NoError(t, db.Create(&member).Error)

	newApp := func(userID uint) *fiber.App {
		app := fiber.New()
		app.Get("/admin",
			func(c *fiber.Ctx) error {
				if userID != 0 {
					c.Locals("user_id", userID)
				}
				return c.Next()
			},
			middleware.AdminOnly(repository.NewUserRepository(db)),
			func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
		)
		return app
	}

	cases := []struct {
		name       string
		userID     uint
		statusCode int
	}{
		{name: "admin", userID: admin.ID, statusCode: fiber.StatusOK},
		{name: "regular user", userID: member.ID, statusCode: fiber.StatusUnauthorized},
		{name: "unauthenticated", userID: 0, statusCode: fiber.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := newApp(tc.userID).Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
			require.NoError(t, err)
			require.Equal(t, tc.statusCode, resp.StatusCode)
		})
	}
}
