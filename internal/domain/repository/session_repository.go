package repository

import "context"

// SessionStorage persistencia clave/valor del contexto de aplicación
// (equivalente al localStorage del navegador: token, user, sidebarCollapsed).
type SessionStorage interface {
	// Get devuelve ("", false, nil) si la clave no existe.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
