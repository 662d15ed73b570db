package handlers

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	config "github.com/mwangikibui/cert_track/configs"
	ws "github.com/mwangikibui/cert_track/websocket"
)

// ServeWs upgrades a learner connection and keeps it registered with the hub
// until it drops. Browsers cannot set an Authorization header on the upgrade
// request, so the JWT arrives as a query parameter.
func ServeWs(c *websocket.Conn) {
	tokenString := c.Query("token")

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return []byte(config.Config("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		c.Close()
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.Close()
		return
	}
	userID, err := uuid.Parse(claims["user_id"].(string))
	if err != nil {
		c.Close()
		return
	}

	client := &ws.Client{UserID: userID, Conn: c}
	ws.Register <- client
	defer func() {
		ws.Unregister <- client
		c.Close()
	}()

	// The hub only pushes; drain reads until the peer goes away.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
