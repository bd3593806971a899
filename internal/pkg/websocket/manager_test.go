package websocket

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwtpkg "github.com/uwayapp/uway/internal/pkg/jwt"
	"github.com/uwayapp/uway/internal/pkg/models"
)

func testManager() (*Manager, models.JWTConfig) {
	cfg := models.JWTConfig{Secret: "test-secret", Expiration: 60, Issuer: "uway-test"}
	return NewManager(cfg), cfg
}

func contextFor(target string, headers map[string]string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func TestAuthenticate_TokenInQuery(t *testing.T) {
	manager, cfg := testManager()
	token, _, err := jwtpkg.GenerateToken("driver-1", "Budi", "driver", cfg)
	require.NoError(t, err)

	identity, err := manager.Authenticate(contextFor("/ws/subscribe?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, "driver-1", identity.UserID)
	assert.Equal(t, "Budi", identity.Name)
}

func TestAuthenticate_BearerHeaderFallback(t *testing.T) {
	manager, cfg := testManager()
	token, _, err := jwtpkg.GenerateToken("viewer-1", "Viewer", "viewer", cfg)
	require.NoError(t, err)

	identity, err := manager.Authenticate(contextFor("/ws/subscribe",
		map[string]string{"Authorization": "Bearer " + token}))
	require.NoError(t, err)
	assert.Equal(t, "viewer-1", identity.UserID)
}

func TestAuthenticate_MissingToken(t *testing.T) {
	manager, _ := testManager()

	_, err := manager.Authenticate(contextFor("/ws/subscribe", nil))
	require.Error(t, err)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	manager, _ := testManager()

	_, err := manager.Authenticate(contextFor("/ws/subscribe?token=garbage", nil))
	require.Error(t, err)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestAuthenticate_MalformedAuthorizationHeader(t *testing.T) {
	manager, cfg := testManager()
	token, _, err := jwtpkg.GenerateToken("u-1", "N", "viewer", cfg)
	require.NoError(t, err)

	// Not a Bearer scheme: treated as missing.
	_, err = manager.Authenticate(contextFor("/ws/subscribe",
		map[string]string{"Authorization": "Basic " + token}))
	require.Error(t, err)
}
