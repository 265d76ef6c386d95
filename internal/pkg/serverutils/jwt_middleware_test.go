package serverutils

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJwtSecret = "test-secret"

func newJwtTestApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", JwtMiddleware, func(ctx *fiber.Ctx) error {
		return ctx.SendString(ctx.Locals("user_id").(string))
	})
	return app
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJwtMiddleware_ValidTokenExposesUserId(t *testing.T) {
	t.Setenv("JWT_SECRET", testJwtSecret)
	app := newJwtTestApp()

	userId := uuid.New()
	token := signToken(t, testJwtSecret, jwt.MapClaims{
		"user_id": userId.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	body, _ := io.ReadAll(res.Body)
	assert.Equal(t, userId.String(), string(body))
}

func TestJwtMiddleware_MissingTokenRejected(t *testing.T) {
	t.Setenv("JWT_SECRET", testJwtSecret)
	app := newJwtTestApp()

	res, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestJwtMiddleware_WrongSecretRejected(t *testing.T) {
	t.Setenv("JWT_SECRET", testJwtSecret)
	app := newJwtTestApp()

	token := signToken(t, "some-other-secret", jwt.MapClaims{
		"user_id": uuid.New().String(),
	})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestJwtMiddleware_NonUuidSubjectRejected(t *testing.T) {
	t.Setenv("JWT_SECRET", testJwtSecret)
	app := newJwtTestApp()

	token := signToken(t, testJwtSecret, jwt.MapClaims{
		"user_id": "not-a-uuid",
	})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}
