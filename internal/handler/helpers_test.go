package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/projecthub-api/internal/authz"
	"github.com/noah-isme/projecthub-api/internal/middleware"
	"github.com/noah-isme/projecthub-api/internal/models"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
	Details json.RawMessage `json:"details"`
	Meta    json.RawMessage `json:"meta"`
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

// withIdentity stands in for the JWT middleware. The identity comes from the
// X-Test-User and X-Test-Role headers so one app can serve several callers.
func withIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := models.Role(c.Get("X-Test-Role"))
		if role.Valid() {
			id, _ := strconv.ParseUint(c.Get("X-Test-User"), 10, 64)
			middleware.SetIdentity(c, authz.Identity{ID: uint(id), Role: role})
		}
		return c.Next()
	}
}

func setCaller(req *http.Request, id string, role models.Role) {
	req.Header.Set("X-Test-User", id)
	req.Header.Set("X-Test-Role", string(role))
}
