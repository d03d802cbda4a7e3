package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-dashboard/internal/application/dto"
	"github.com/jhoicas/Inventario-dashboard/internal/domain/entity"
	"github.com/jhoicas/Inventario-dashboard/pkg/jwt"
)

// SessionContext contexto de aplicación (lo implementa *session.AppContext).
type SessionContext interface {
	Login(ctx context.Context, username, password string) (*entity.User, error)
	Logout(ctx context.Context) error
	CurrentUser() *entity.User
	IsAuthenticated() bool
	SidebarCollapsed() bool
	ToggleSidebar(ctx context.Context) (bool, error)
	SetSidebarCollapsed(ctx context.Context, collapsed bool) error
	Claims() (*jwt.Claims, error)
}

type SessionHandler struct {
	session SessionContext
}

func NewSessionHandler(session SessionContext) *SessionHandler {
	return &SessionHandler{session: session}
}

// Login POST /api/session/login
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: err.Error()})
	}
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "username y password son requeridos"})
	}
	if _, err := h.session.Login(c.UserContext(), in.Username, in.Password); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(h.current())
}

// Logout POST /api/session/logout
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	if err := h.session.Logout(c.UserContext()); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Me GET /api/session/me
func (h *SessionHandler) Me(c *fiber.Ctx) error {
	return c.JSON(h.current())
}

// Sidebar PUT /api/session/sidebar. Sin collapsed en el cuerpo invierte el valor.
func (h *SessionHandler) Sidebar(c *fiber.Ctx) error {
	var in dto.SidebarRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: err.Error()})
		}
	}
	var err error
	if in.Collapsed == nil {
		_, err = h.session.ToggleSidebar(c.UserContext())
	} else {
		err = h.session.SetSidebarCollapsed(c.UserContext(), *in.Collapsed)
	}
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(h.current())
}

func (h *SessionHandler) current() dto.SessionDTO {
	out := dto.SessionDTO{
		Authenticated:    h.session.IsAuthenticated(),
		User:             toUserDTO(h.session.CurrentUser()),
		SidebarCollapsed: h.session.SidebarCollapsed(),
	}
	if out.Authenticated {
		if claims, err := h.session.Claims(); err == nil && claims.ExpiresAt != nil {
			t := claims.ExpiresAt.Time
			out.ExpiresAt = &t
		}
	}
	return out
}
