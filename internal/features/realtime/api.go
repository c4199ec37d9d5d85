package realtime

import (
	"go-opsboard/internal/common/api"
	"go-opsboard/internal/config"
	"go-opsboard/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type RealtimeApi struct {
	Controller *RealtimeController
	Config     *config.Config
}

func NewRealtimeApi(controller *RealtimeController, cfg *config.Config) api.Route {
	return &RealtimeApi{
		Controller: controller,
		Config:     cfg,
	}
}

func (h *RealtimeApi) Setup(app *fiber.App) {
	app.Get("/api/ws",
		middleware.AuthMiddleware(h.Config.SkipAuth),
		websocket.New(h.Controller.HandleWebSocket),
	)
}
