package entity

import "strings"

// Posiciones conocidas del backend. IT y ADMIN ven todo.
const (
	PositionIT       = "IT"
	PositionAdmin    = "ADMIN"
	PositionOperator = "OPERATOR"
)

// User usuario autenticado tal como lo devuelve POST /auth/login.
type User struct {
	ID          int64    `json:"id_user"`
	Username    string   `json:"username"`
	Position    string   `json:"position"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// HasPermission indica si el usuario puede usar la pantalla/permiso indicado.
func (u *User) HasPermission(p string) bool {
	if u == nil {
		return false
	}
	switch strings.ToUpper(u.Position) {
	case PositionIT, PositionAdmin:
		return true
	}
	for _, have := range u.Permissions {
		if strings.EqualFold(have, p) {
			return true
		}
	}
	return false
}
