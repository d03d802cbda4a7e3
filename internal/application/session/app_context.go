// Package session contexto de aplicación: usuario autenticado, token y preferencias
// de la interfaz. Se persiste en un SessionStorage inyectado (Redis o memoria) y se
// pasa explícitamente a quien lo necesite.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/jhoicas/Inventario-dashboard/internal/domain"
	"github.com/jhoicas/Inventario-dashboard/internal/domain/entity"
	"github.com/jhoicas/Inventario-dashboard/internal/domain/repository"
	"github.com/jhoicas/Inventario-dashboard/pkg/jwt"
	"github.com/jhoicas/Inventario-dashboard/pkg/logger"
)

// Claves de almacenamiento, las mismas que usaba el frontend en localStorage.
const (
	KeyToken   = "token"
	KeyUser    = "user"
	KeySidebar = "sidebarCollapsed"
)

// AuthGateway emite tokens a partir de credenciales (el backend del inventario).
type AuthGateway interface {
	Login(ctx context.Context, username, password string) (string, *entity.User, error)
}

// JWTConfig verificación opcional de los tokens del backend. Sin Secret las claims
// se leen sin verificar la firma.
type JWTConfig struct {
	Secret string
	Issuer string
}

type AppContext struct {
	storage repository.SessionStorage
	auth    AuthGateway
	jwtCfg  JWTConfig
	log     *logger.Logger
	now     func() time.Time

	mu               sync.RWMutex
	token            string
	user             *entity.User
	sidebarCollapsed bool
}

func NewAppContext(storage repository.SessionStorage, auth AuthGateway, jwtCfg JWTConfig, log *logger.Logger) *AppContext {
	if log == nil {
		log = logger.Nop()
	}
	return &AppContext{
		storage: storage,
		auth:    auth,
		jwtCfg:  jwtCfg,
		log:     log.Component("session"),
		now:     time.Now,
	}
}

// Restore recarga la sesión persistida. Un token vencido o un usuario ilegible se
// descartan.
func (a *AppContext) Restore(ctx context.Context) error {
	token, _, err := a.storage.Get(ctx, KeyToken)
	if err != nil {
		return fmt.Errorf("session: restaurar token: %w", err)
	}
	rawUser, _, err := a.storage.Get(ctx, KeyUser)
	if err != nil {
		return fmt.Errorf("session: restaurar usuario: %w", err)
	}
	rawSidebar, _, err := a.storage.Get(ctx, KeySidebar)
	if err != nil {
		return fmt.Errorf("session: restaurar sidebar: %w", err)
	}

	collapsed, _ := strconv.ParseBool(rawSidebar)

	var user *entity.User
	if rawUser != "" {
		var u entity.User
		if err := json.Unmarshal([]byte(rawUser), &u); err != nil {
			a.log.Warn().Err(err).Msg("usuario persistido ilegible; se descarta la sesión")
			token = ""
		} else {
			user = &u
		}
	}
	if token != "" && a.expired(token) {
		a.log.Info().Msg("sesión persistida vencida")
		token = ""
	}
	if token == "" {
		user = nil
		if err := a.storage.Delete(ctx, KeyToken, KeyUser); err != nil {
			return fmt.Errorf("session: limpiar: %w", err)
		}
	}

	a.mu.Lock()
	a.token, a.user, a.sidebarCollapsed = token, user, collapsed
	a.mu.Unlock()
	return nil
}

// Login autentica contra el backend y persiste token y usuario.
func (a *AppContext) Login(ctx context.Context, username, password string) (*entity.User, error) {
	token, user, err := a.auth.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &entity.User{Username: username}
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("session: serializar usuario: %w", err)
	}
	if err := a.storage.Set(ctx, KeyToken, token); err != nil {
		return nil, fmt.Errorf("session: guardar token: %w", err)
	}
	if err := a.storage.Set(ctx, KeyUser, string(raw)); err != nil {
		return nil, fmt.Errorf("session: guardar usuario: %w", err)
	}

	a.mu.Lock()
	a.token, a.user = token, user
	a.mu.Unlock()

	a.log.Info().Str("username", user.Username).Str("position", user.Position).Msg("login")
	return cloneUser(user), nil
}

// Logout borra token y usuario; la preferencia del sidebar se conserva.
func (a *AppContext) Logout(ctx context.Context) error {
	a.mu.Lock()
	a.token, a.user = "", nil
	a.mu.Unlock()
	if err := a.storage.Delete(ctx, KeyToken, KeyUser); err != nil {
		return fmt.Errorf("session: logout: %w", err)
	}
	return nil
}

// Token devuelve el token vigente o ErrNoSession.
func (a *AppContext) Token(ctx context.Context) (string, error) {
	a.mu.RLock()
	token := a.token
	a.mu.RUnlock()
	if token == "" {
		return "", domain.ErrNoSession
	}
	if a.expired(token) {
		if err := a.Invalidate(ctx); err != nil {
			a.log.Warn().Err(err).Msg("no se pudo limpiar la sesión vencida")
		}
		return "", domain.ErrNoSession
	}
	return token, nil
}

// Invalidate cierra la sesión tras un 401 del backend.
func (a *AppContext) Invalidate(ctx context.Context) error {
	a.log.Info().Msg("sesión invalidada")
	return a.Logout(ctx)
}

func (a *AppContext) CurrentUser() *entity.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return cloneUser(a.user)
}

func (a *AppContext) IsAuthenticated() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token != ""
}

// HasPermission false sin sesión.
func (a *AppContext) HasPermission(p string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user.HasPermission(p)
}

func (a *AppContext) SidebarCollapsed() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sidebarCollapsed
}

// ToggleSidebar invierte la preferencia y devuelve el nuevo valor.
func (a *AppContext) ToggleSidebar(ctx context.Context) (bool, error) {
	a.mu.Lock()
	next := !a.sidebarCollapsed
	a.sidebarCollapsed = next
	a.mu.Unlock()
	if err := a.storage.Set(ctx, KeySidebar, strconv.FormatBool(next)); err != nil {
		return next, fmt.Errorf("session: guardar sidebar: %w", err)
	}
	return next, nil
}

func (a *AppContext) SetSidebarCollapsed(ctx context.Context, collapsed bool) error {
	a.mu.Lock()
	a.sidebarCollapsed = collapsed
	a.mu.Unlock()
	if err := a.storage.Set(ctx, KeySidebar, strconv.FormatBool(collapsed)); err != nil {
		return fmt.Errorf("session: guardar sidebar: %w", err)
	}
	return nil
}

// Claims del token actual; verificadas si hay secret configurado.
func (a *AppContext) Claims() (*jwt.Claims, error) {
	a.mu.RLock()
	token := a.token
	a.mu.RUnlock()
	if token == "" {
		return nil, domain.ErrNoSession
	}
	if a.jwtCfg.Secret != "" {
		claims, err := jwt.Parse(a.jwtCfg.Secret, a.jwtCfg.Issuer, token)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
		}
		return claims, nil
	}
	return jwt.ParseUnverified(token)
}

// expired solo aplica a tokens JWT con exp; los tokens opacos nunca vencen aquí.
func (a *AppContext) expired(token string) bool {
	claims, err := jwt.ParseUnverified(token)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.Time.After(a.now())
}

func cloneUser(u *entity.User) *entity.User {
	if u == nil {
		return nil
	}
	c := *u
	c.Permissions = append([]string(nil), u.Permissions...)
	return &c
}
