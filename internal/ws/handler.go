package ws

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/MrFantastico007/DeadDrop/internal/models"
)

// Upgrade gates the route so only websocket upgrade requests reach the
// handler.
func Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler joins the connection to the room named by the `room` query
// parameter and keeps it subscribed until the socket dies. Disconnect,
// clean or abrupt, always runs Leave. Anyone naming a room code may join;
// knowing the code is the whole trust model.
func Handler(hub *Hub, log *zap.SugaredLogger) func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		room := models.NormalizeRoomCode(conn.Query("room"))
		if room == "" {
			_ = conn.Close()
			return
		}

		c := NewClient(conn)
		hub.Join(c, room)
		log.Infow("ws connected", "room", room, "conn", c.ID())

		go c.writePump()
		c.readPump()

		hub.Leave(c)
		log.Infow("ws disconnected", "room", room, "conn", c.ID())
	}
}
