package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront-otp/controller"
	"storefront-otp/dto"
	"storefront-otp/repository"
	"storefront-otp/service"
	"storefront-otp/util"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminSecret = "test-admin-secret"

func newTestApp(t *testing.T, cfg *util.Config) *fiber.App {
	t.Helper()
	svc := service.NewOtpService(repository.NewInMemoryOtpRepository(), nil, service.DefaultOtpOptions())
	app := fiber.New()
	setupRoutes(app, cfg, controller.NewOtpController(svc, cfg.ExposeCode))
	return app
}

func testConfig() *util.Config {
	return &util.Config{
		ExposeCode:      true,
		AdminJWTSecret:  testAdminSecret,
		RateLimitMax:    100,
		RateLimitWindow: time.Minute,
	}
}

func adminToken(t *testing.T, roles ...string) string {
	t.Helper()
	claims := dto.AuthClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ops-user",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testAdminSecret))
	require.NoError(t, err)
	return signed
}

func doJSON(t *testing.T, app *fiber.App, method, path, body, token string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func TestOtpFlow(t *testing.T) {
	app := newTestApp(t, testConfig())
	token := adminToken(t, "admin")

	status, raw := doJSON(t, app, http.MethodPost, "/api/v1/otp/issue", `{"phone":"0901234567"}`, "")
	require.Equal(t, http.StatusCreated, status, string(raw))

	var issued dto.OtpResponse
	require.NoError(t, json.Unmarshal(raw, &issued))
	assert.Equal(t, "0901234567", issued.Phone)
	assert.Len(t, issued.Code, 6)
	assert.NotEmpty(t, issued.ID)

	status, raw = doJSON(t, app, http.MethodGet, "/api/v1/otp/active", "", token)
	require.Equal(t, http.StatusOK, status, string(raw))
	var active []dto.OtpResponse
	require.NoError(t, json.Unmarshal(raw, &active))
	require.Len(t, active, 1)
	assert.Equal(t, issued.ID, active[0].ID)
	assert.Equal(t, issued.Code, active[0].Code)
	assert.NotContains(t, string(raw), "verified")

	wrong := "000000"
	if issued.Code == wrong {
		wrong = "111111"
	}
	status, raw = doJSON(t, app, http.MethodPost, "/api/v1/otp/verify",
		`{"phone":"0901234567","code":"`+wrong+`"}`, "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"verified":false}`, string(raw))

	status, raw = doJSON(t, app, http.MethodPost, "/api/v1/otp/verify",
		`{"phone":"0901234567","code":"`+issued.Code+`"}`, "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"verified":true}`, string(raw))

	status, raw = doJSON(t, app, http.MethodGet, "/api/v1/otp/active", "", token)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestIssue_HidesCodeUnlessExposed(t *testing.T) {
	cfg := testConfig()
	cfg.ExposeCode = false
	app := newTestApp(t, cfg)

	status, raw := doJSON(t, app, http.MethodPost, "/api/v1/otp/issue", `{"phone":"0901234567"}`, "")
	require.Equal(t, http.StatusCreated, status)
	assert.NotContains(t, string(raw), `"code"`)
}

func TestValidation(t *testing.T) {
	app := newTestApp(t, testConfig())

	cases := []struct {
		name, path, body string
	}{
		{"malformed json", "/api/v1/otp/issue", `{"phone":`},
		{"missing phone", "/api/v1/otp/issue", `{}`},
		{"bad phone", "/api/v1/otp/issue", `{"phone":"call me"}`},
		{"short code", "/api/v1/otp/verify", `{"phone":"0901234567","code":"123"}`},
		{"non numeric code", "/api/v1/otp/verify", `{"phone":"0901234567","code":"12ab56"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, raw := doJSON(t, app, http.MethodPost, tc.path, tc.body, "")
			assert.Equal(t, http.StatusBadRequest, status, string(raw))
			assert.Contains(t, string(raw), "error")
		})
	}
}

func TestListActive_RequiresAdmin(t *testing.T) {
	app := newTestApp(t, testConfig())

	status, _ := doJSON(t, app, http.MethodGet, "/api/v1/otp/active", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/otp/active", "", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/otp/active", "", adminToken(t, "customer"))
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/otp/active", "", adminToken(t, "customer", "admin"))
	assert.Equal(t, http.StatusOK, status)
}

func TestListActive_ClosedWithoutSecret(t *testing.T) {
	cfg := testConfig()
	cfg.AdminJWTSecret = ""
	app := newTestApp(t, cfg)

	status, raw := doJSON(t, app, http.MethodPost, "/api/v1/otp/issue", `{"phone":"0901234567"}`, "")
	require.Equal(t, http.StatusCreated, status, string(raw))
	var issued dto.OtpResponse
	require.NoError(t, json.Unmarshal(raw, &issued))

	status, raw = doJSON(t, app, http.MethodGet, "/api/v1/otp/active", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.NotContains(t, string(raw), issued.Code)
}

func TestIssue_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitMax = 2
	app := newTestApp(t, cfg)

	for i := 0; i < 2; i++ {
		status, _ := doJSON(t, app, http.MethodPost, "/api/v1/otp/issue", `{"phone":"0901234567"}`, "")
		require.Equal(t, http.StatusCreated, status)
	}
	status, raw := doJSON(t, app, http.MethodPost, "/api/v1/otp/issue", `{"phone":"0901234567"}`, "")
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Contains(t, string(raw), "rate limit exceeded")

	// verification is not limited
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/otp/verify", `{"phone":"0901234567","code":"123456"}`, "")
	assert.Equal(t, http.StatusOK, status)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, testConfig())
	status, raw := doJSON(t, app, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(raw))
}
