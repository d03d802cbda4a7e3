package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-dashboard/internal/application/dto"
	"github.com/jhoicas/Inventario-dashboard/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName        string
	Dashboard      DashboardView
	Session        SessionContext
	RefreshLimiter *RateLimiter // nil = sin límite
	JWTSecret      string       // vacío = /api/dashboard sin autenticación
	JWTIssuer      string
	Log            *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(RequestID())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{
			Status:        "ok",
			Service:       deps.AppName,
			PushConnected: deps.Dashboard.Connected(),
		})
	})

	api := app.Group("/api")

	// Sesión (pública)
	sessionHandler := NewSessionHandler(deps.Session)
	sess := api.Group("/session")
	sess.Post("/login", sessionHandler.Login)
	sess.Post("/logout", sessionHandler.Logout)
	sess.Get("/me", sessionHandler.Me)
	sess.Put("/sidebar", sessionHandler.Sidebar)

	// Dashboard (protegido si hay secret)
	dash := api.Group("/dashboard")
	if deps.JWTSecret != "" {
		dash.Use(AuthMiddleware(deps.JWTSecret, deps.JWTIssuer), RequirePermission(PermissionDashboard))
	}
	dashboardHandler := NewDashboardHandler(deps.Dashboard, deps.Log)
	dash.Get("/", dashboardHandler.Get)
	dash.Get("/stats", dashboardHandler.GetStats)
	dash.Get("/chart", dashboardHandler.GetChart)
	dash.Get("/receiving-list", dashboardHandler.GetReceivingList)
	dash.Get("/shipping-list", dashboardHandler.GetShippingList)

	refresh := []fiber.Handler{}
	if deps.RefreshLimiter != nil {
		refresh = append(refresh, deps.RefreshLimiter.Middleware())
	}
	refresh = append(refresh, dashboardHandler.Refresh)
	dash.Post("/refresh", refresh...)
}
