package system

import (
	"github.com/gofiber/fiber/v2"

	"go-opsboard/internal/config"
	"go-opsboard/internal/features/realtime"
	"go-opsboard/internal/middleware"
)

type StatsApi struct {
	controller *StatsController
	config     *config.Config
}

func NewStatsApi(controller *StatsController, cfg *config.Config) *StatsApi {
	return &StatsApi{
		controller: controller,
		config:     cfg,
	}
}

// Setup registers realtime stats routes
func (h *StatsApi) Setup(app *fiber.App) {
	stats := app.Group("/api/stats", middleware.AuthMiddleware(h.config.SkipAuth))
	stats.Get("/realtime", h.controller.RealtimeStats)
}

type StatsController struct {
	Hub *realtime.Hub
}

func NewStatsController(hub *realtime.Hub) *StatsController {
	return &StatsController{
		Hub: hub,
	}
}

// RealtimeStats godoc
// @Summary      Realtime delivery stats
// @Description  Open connection count and broadcast delivery counters
// @Tags         stats
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/stats/realtime [get]
func (c *StatsController) RealtimeStats(ctx *fiber.Ctx) error {
	return ctx.JSON(c.Hub.Stats())
}
