package websocket

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/uwayapp/uway/internal/pkg/constants"
	"github.com/uwayapp/uway/internal/pkg/jwt"
	"github.com/uwayapp/uway/internal/pkg/logger"
	"github.com/uwayapp/uway/internal/pkg/models"
)

// Manager authenticates and upgrades WebSocket connections. The bearer token
// travels in the "token" query parameter because the upgrade handshake is a
// plain GET; an Authorization header is accepted as a fallback for clients
// that can set one.
type Manager struct {
	cfg      models.JWTConfig
	upgrader websocket.Upgrader
}

// NewManager creates a new WebSocket manager
func NewManager(jwtConfig models.JWTConfig) *Manager {
	return &Manager{
		cfg: jwtConfig,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Authenticate resolves the connection request's bearer token to an identity.
// The connection must be refused before any session object is created when
// this fails.
func (m *Manager) Authenticate(c echo.Context) (*models.Identity, error) {
	token := c.QueryParam("token")
	if token == "" {
		if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				token = parts[1]
			}
		}
	}
	if token == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, constants.ErrorMissingToken)
	}

	claims, err := jwt.ValidateToken(token, m.cfg.Secret)
	if err != nil {
		logger.Warn("Token validation failed", logger.Err(err))
		return nil, echo.NewHTTPError(http.StatusUnauthorized, constants.ErrorInvalidToken)
	}

	return jwt.IdentityFromClaims(claims), nil
}

// Upgrade switches the HTTP connection to the WebSocket protocol
func (m *Manager) Upgrade(c echo.Context) (*websocket.Conn, error) {
	return m.upgrader.Upgrade(c.Response(), c.Request(), nil)
}

// WriteErrorNotice pushes an {"error": ...} notice on the connection.
// Receivers must treat this shape as a notice, never as a sample.
func WriteErrorNotice(conn *websocket.Conn, message string) error {
	payload, err := json.Marshal(models.ErrorNotice{Error: message})
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}
