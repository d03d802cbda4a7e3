package dto

import "time"

// LoginRequest cuerpo de POST /api/session/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserDTO usuario de la sesión actual.
type UserDTO struct {
	ID          int64    `json:"id_user"`
	Username    string   `json:"username"`
	Position    string   `json:"position"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
}

// SessionDTO respuesta de login y de GET /api/session/me.
type SessionDTO struct {
	Authenticated    bool       `json:"authenticated"`
	User             *UserDTO   `json:"user,omitempty"`
	SidebarCollapsed bool       `json:"sidebar_collapsed"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
}

// SidebarRequest cuerpo de PUT /api/session/sidebar. Sin collapsed se invierte el valor actual.
type SidebarRequest struct {
	Collapsed *bool `json:"collapsed"`
}
