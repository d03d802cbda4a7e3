package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-dashboard/internal/application/dto"
	"github.com/jhoicas/Inventario-dashboard/internal/domain/entity"
	"github.com/jhoicas/Inventario-dashboard/pkg/jwt"
)

// Locals keys con los datos del token.
const (
	LocalUserID      = "user_id"
	LocalUsername    = "username"
	LocalPosition    = "position"
	LocalPermissions = "permissions"
)

// PermissionDashboard permiso que habilita la pantalla del dashboard.
const PermissionDashboard = "dashboard"

// AuthMiddleware valida el Bearer Token JWT emitido por el backend y deja las claims en c.Locals.
func AuthMiddleware(jwtSecret, issuer string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		claims, err := jwt.Parse(jwtSecret, issuer, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalUsername, claims.Username)
		c.Locals(LocalPosition, claims.Position)
		c.Locals(LocalPermissions, claims.Permissions)
		return c.Next()
	}
}

// RequirePermission exige que el usuario del token tenga el permiso (IT y ADMIN
// tienen todos). Debe usarse DESPUÉS de AuthMiddleware.
func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetUsername(c) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code: "MISSING_CLAIMS", Message: "username no encontrado en el token",
			})
		}
		user := &entity.User{Position: GetPosition(c), Permissions: GetPermissions(c)}
		if !user.HasPermission(permission) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code: "FORBIDDEN", Message: "sin permiso '" + permission + "'",
			})
		}
		return c.Next()
	}
}

// GetUserID devuelve el id del usuario (después del middleware de auth).
func GetUserID(c *fiber.Ctx) int64 {
	v, _ := c.Locals(LocalUserID).(int64)
	return v
}

func GetUsername(c *fiber.Ctx) string {
	v, _ := c.Locals(LocalUsername).(string)
	return v
}

func GetPosition(c *fiber.Ctx) string {
	v, _ := c.Locals(LocalPosition).(string)
	return v
}

func GetPermissions(c *fiber.Ctx) []string {
	v, _ := c.Locals(LocalPermissions).([]string)
	return v
}
