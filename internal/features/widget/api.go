package widget

import (
	"github.com/gofiber/fiber/v2"

	"go-opsboard/internal/config"
	"go-opsboard/internal/middleware"
)

type WidgetApi struct {
	WidgetController *WidgetController
	Config           *config.Config
}

func NewWidgetApi(widgetController *WidgetController, config *config.Config) *WidgetApi {
	return &WidgetApi{
		WidgetController: widgetController,
		Config:           config,
	}
}

func (api *WidgetApi) Setup(app *fiber.App) {
	auth := middleware.AuthMiddleware(api.Config.SkipAuth)

	nested := app.Group("/api/dashboards/:dashboardId/widgets", auth)
	nested.Post("/", api.WidgetController.CreateWidget)
	nested.Get("/", api.WidgetController.ListWidgets)

	group := app.Group("/api/widgets", auth)
	group.Put("/:id", api.WidgetController.UpdateWidget)
	group.Delete("/:id", api.WidgetController.DeleteWidget)
}
