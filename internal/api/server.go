package api

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	fiberws "github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/MrFantastico007/DeadDrop/internal/config"
	"github.com/MrFantastico007/DeadDrop/internal/metrics"
	"github.com/MrFantastico007/DeadDrop/internal/middleware"
	"github.com/MrFantastico007/DeadDrop/internal/service"
	"github.com/MrFantastico007/DeadDrop/internal/ws"
)

// NewServer wires the HTTP and websocket surface. No auth anywhere:
// knowing a room code is the only credential this system has.
func NewServer(cfg *config.Config, svc *service.MessageService, reaper *service.Reaper, hub *ws.Hub, log *zap.SugaredLogger) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BodyLimit:    int(cfg.Upload.MaxBytes) + 1024*1024,
	})
	app.Use(cors.New())
	app.Use(fiberlogger.New())

	h := newHandlers(svc, reaper, log)
	uploadLimit := middleware.NewIPRateLimiter(cfg.Upload.RatePerMinute, cfg.Upload.RateBurst, log)

	api := app.Group("/api")
	api.Post("/room/join", h.joinRoom)
	api.Post("/upload", uploadLimit.Handler(), h.upload)
	api.Post("/message", h.createMessage)
	api.Delete("/message/:id", h.deleteMessage)
	api.Get("/cleanup", h.cleanup)

	app.Use("/ws", ws.Upgrade)
	app.Get("/ws", fiberws.New(ws.Handler(hub, log)))

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	return app
}
