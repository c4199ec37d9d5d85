package dashboard

import (
	"github.com/gofiber/fiber/v2"

	"go-opsboard/internal/config"
	"go-opsboard/internal/middleware"
)

type DashboardApi struct {
	DashboardController *DashboardController
	Config              *config.Config
}

func NewDashboardApi(dashboardController *DashboardController, config *config.Config) *DashboardApi {
	return &DashboardApi{
		DashboardController: dashboardController,
		Config:              config,
	}
}

func (api *DashboardApi) Setup(app *fiber.App) {
	group := app.Group("/api/dashboards", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Post("/", api.DashboardController.CreateDashboard)
	group.Get("/", api.DashboardController.ListDashboards)

	// Static paths must be registered before the :id wildcard.
	group.Get("/public", api.DashboardController.ListPublicDashboards)
	group.Get("/popular", api.DashboardController.ListPopularDashboards)
	group.Get("/search", api.DashboardController.SearchDashboards)
	group.Get("/export", api.DashboardController.ExportDashboards)

	group.Get("/:id", api.DashboardController.GetDashboard)
	group.Put("/:id", api.DashboardController.UpdateDashboard)
	group.Delete("/:id", api.DashboardController.DeleteDashboard)
}
