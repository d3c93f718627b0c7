package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokoku_backend/internals/configs"
)

func signTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(configs.JWTSecret))
	require.NoError(t, err)
	return signed
}

func newAdminTestApp() *fiber.App {
	app := fiber.New()
	admin := app.Group("/api/a", AuthMiddleware(), OnlyAdmin())
	admin.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestOnlyAdminRejectsNonAdminRole(t *testing.T) {
	configs.JWTSecret = "test-secret"
	app := newAdminTestApp()

	exp := time.Now().Add(time.Hour).Unix()
	cases := map[string]jwt.MapClaims{
		// Pembeli biasa tidak boleh masuk grup admin
		"role user":  {"user_id": "u-1", "role": "user", "exp": exp},
		"tanpa role": {"user_id": "u-2", "exp": exp},
	}
	for name, claims := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/a/ping", nil)
			req.Header.Set("Authorization", "Bearer "+signTestToken(t, claims))
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		})
	}
}

func TestOnlyAdminAllowsAdminRole(t *testing.T) {
	configs.JWTSecret = "test-secret"
	app := newAdminTestApp()

	req := httptest.NewRequest("GET", "/api/a/ping", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, jwt.MapClaims{
		"user_id": "a-1",
		"role":    "admin",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
