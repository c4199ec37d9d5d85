package main

import (
	"context"
	"fmt"
	"log"
	"time"

	common_api "go-opsboard/internal/common/api"
	"go-opsboard/internal/config"
	"go-opsboard/internal/database"
	"go-opsboard/internal/features/dashboard"
	"go-opsboard/internal/features/realtime"
	"go-opsboard/internal/features/refresh"
	"go-opsboard/internal/features/system"
	"go-opsboard/internal/features/widget"
	"go-opsboard/internal/logger"
	"go-opsboard/internal/middleware"
	"go-opsboard/pkg/utils"

	_ "go-opsboard/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Use custom CORS middleware
	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),    // Cast to Interface
		fx.ResultTags(`group:"routes"`), // Add to Group
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	log.Printf("Registering %d routes...\n", len(routes))
	for _, route := range routes {
		route.Setup(app)
	}
	log.Println("All routes registered successfully")
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithTimeout(time.Duration(cfg.ShutdownTimeout) * time.Second)
		},
	})
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(lc fx.Lifecycle, dashboardRepo dashboard.DashboardRepository, widgetRepo widget.WidgetRepository) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := dashboardRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure dashboard indexes: %v", err)
				}
				if err := widgetRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure widget indexes: %v", err)
				}
			}()
			return nil
		},
	})
}

// @title           OpsBoard API
// @version         1.0
// @description     Real-time dashboard composition and broadcast engine.

// @host            localhost:8000
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,

			// Initialize Repository
			dashboard.NewDashboardRepository,
			widget.NewWidgetRepository,

			// Realtime plumbing
			realtime.NewRegistry,
			realtime.NewHub,

			// Services
			dashboard.NewDashboardService,
			widget.NewWidgetService,
			refresh.NewSyntheticDataSource,
			refresh.NewRefreshService,

			// Interface Adapters to break circular dependencies and satisfy Fx
			func(h *realtime.Hub) dashboard.EventPublisher { return h },
			func(h *realtime.Hub) widget.EventPublisher { return h },
			func(h *realtime.Hub) refresh.EventPublisher { return h },
			func(s dashboard.DashboardService) realtime.DashboardAccess { return s },
			func(r widget.WidgetRepository) dashboard.WidgetCascader { return r },

			// Initialize Controller
			dashboard.NewDashboardController,
			widget.NewWidgetController,
			realtime.NewRealtimeController,
			system.NewStatsController,

			// Initialize API Routes
			AsRoute(dashboard.NewDashboardApi),
			AsRoute(widget.NewWidgetApi),
			AsRoute(realtime.NewRealtimeApi),
			AsRoute(system.NewStatsApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewSwaggerApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			func(cfg *config.Config) { utils.SetSecret(cfg.JWTSecret) },

			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			func(lc fx.Lifecycle, refreshService refresh.RefreshService) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return refreshService.InitializeScheduler(ctx)
					},
					OnStop: func(ctx context.Context) error {
						return refreshService.StopScheduler()
					},
				})
			},
			func(lc fx.Lifecycle, registry *realtime.Registry) {
				lc.Append(fx.Hook{
					OnStop: func(ctx context.Context) error {
						registry.Shutdown()
						return nil
					},
				})
			},
			InitializeIndexes,
		),
	)

	app.Run()
}
