package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-dashboard/internal/application/dashboard"
	"github.com/jhoicas/Inventario-dashboard/internal/application/dto"
	"github.com/jhoicas/Inventario-dashboard/internal/domain"
	"github.com/jhoicas/Inventario-dashboard/pkg/logger"
)

// DashboardView lo que el handler necesita de la vista montada.
type DashboardView interface {
	Snapshot() dashboard.Snapshot
	Refresh(ctx context.Context) error
	Connected() bool
}

// DashboardHandler maneja los endpoints del dashboard de bodega.
type DashboardHandler struct {
	view DashboardView
	log  *logger.Logger
}

func NewDashboardHandler(view DashboardView, log *logger.Logger) *DashboardHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &DashboardHandler{view: view, log: log.Component("http.dashboard")}
}

// Get devuelve el Snapshot completo.
// GET /api/dashboard
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	return c.JSON(toDashboardDTO(h.view.Snapshot(), h.view.Connected()))
}

// GET /api/dashboard/stats
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	return c.JSON(toStatsDTO(h.view.Snapshot().Stats))
}

// GetChart devuelve la serie diaria como {labels, datasets}.
// GET /api/dashboard/chart
func (h *DashboardHandler) GetChart(c *fiber.Ctx) error {
	return c.JSON(toChartDTO(h.view.Snapshot().ChartSeries))
}

// GET /api/dashboard/receiving-list
func (h *DashboardHandler) GetReceivingList(c *fiber.Ctx) error {
	return c.JSON(toScanRecords(h.view.Snapshot().ReceivingList))
}

// GET /api/dashboard/shipping-list
func (h *DashboardHandler) GetShippingList(c *fiber.Ctx) error {
	return c.JSON(toScanRecords(h.view.Snapshot().ShippingList))
}

// Refresh ejecuta una recarga completa y devuelve el Snapshot resultante.
// POST /api/dashboard/refresh
//
// 502 si alguna de las lecturas falla (el Snapshot anterior se conserva).
func (h *DashboardHandler) Refresh(c *fiber.Ctx) error {
	if err := h.view.Refresh(c.UserContext()); err != nil {
		h.log.Warn().Err(err).Str("request_id", GetRequestID(c)).Msg("recarga manual fallida")
		if errors.Is(err, domain.ErrViewClosed) {
			return errorResponse(c, err)
		}
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Code: "REFRESH_FAILED", Message: err.Error(),
		})
	}
	return c.JSON(toDashboardDTO(h.view.Snapshot(), h.view.Connected()))
}
