package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testUUID = "1b73cfc1-b88a-4d98-bbcf-e1cbfb6afc9b"

func decodeResponse(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, out))
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// asRole simulates the session middleware for a request already past auth.
func asRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", 42)
		c.Locals("user_role", role)
		c.Locals("access_token", "test-token")
		return c.Next()
	}
}
