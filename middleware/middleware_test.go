package middleware

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"institute/config"
	"institute/errdefs"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	config.AppConfig = &config.Config{JWTKey: "test-secret"}

	app := fiber.New()
	app.Get("/admin", JWTMiddleware, RequireRole(RoleAdmin), func(c *fiber.Ctx) error {
		return JsonResponse(c, fiber.StatusOK, true, "ok", c.Locals("userId"))
	})
	app.Get("/fail/:kind", func(c *fiber.Ctx) error {
		errs := map[string]error{
			"validation": errdefs.ErrValidationFailed,
			"token":      errdefs.ErrInvalidToken,
			"transition": fmt.Errorf("remark: %w", errdefs.ErrInvalidTransition),
			"upstream":   errdefs.ErrUpstreamFailure,
			"boom":       fmt.Errorf("disk on fire"),
		}
		return ErrorResponse(c, errs[c.Params("kind")])
	})
	return app
}

func bearer(t *testing.T, role string, ttl time.Duration) string {
	t.Helper()
	token, err := GenerateJWT(1, "Ops", role, "ops@example.com", ttl)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAdminRoutesRequireAdminToken(t *testing.T) {
	app := newApp(t)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", fiber.StatusUnauthorized},
		{"malformed", "Token abc", fiber.StatusUnauthorized},
		{"garbage", "Bearer abc", fiber.StatusUnauthorized},
		{"expired", bearer(t, RoleAdmin, -time.Minute), fiber.StatusUnauthorized},
		{"wrong role", bearer(t, "TRAINER", time.Hour), fiber.StatusForbidden},
		{"admin", bearer(t, RoleAdmin, time.Hour), fiber.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestErrorResponse(t *testing.T) {
	app := newApp(t)

	cases := map[string]struct {
		status int
		code   string
	}{
		"validation": {fiber.StatusUnprocessableEntity, "VALIDATION_FAILED"},
		"token":      {fiber.StatusNotFound, "INVALID_TOKEN"},
		"transition": {fiber.StatusConflict, "INVALID_TRANSITION"},
		"upstream":   {fiber.StatusBadGateway, "UPSTREAM_FAILURE"},
		"boom":       {fiber.StatusInternalServerError, "INTERNAL"},
	}
	for kind, want := range cases {
		t.Run(kind, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", "/fail/"+kind, nil))
			require.NoError(t, err)
			assert.Equal(t, want.status, resp.StatusCode)

			var body struct {
				Status  bool              `json:"status"`
				Message string            `json:"message"`
				Data    map[string]string `json:"data"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Status)
			assert.Equal(t, want.code, body.Data["code"])
			if kind == "boom" {
				assert.NotContains(t, body.Message, "disk")
			}
		})
	}
}
