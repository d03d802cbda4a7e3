package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("sesión expirada, inicie sesión de nuevo")
	ErrForbidden    = errors.New("no tiene permiso para acceder a este recurso")
	ErrServer       = errors.New("error del servidor, intente más tarde")
	ErrNetwork      = errors.New("error de red, verifique la conexión")

	// Canal push
	ErrNotConnected   = errors.New("canal push no conectado")
	ErrChannelClosed  = errors.New("canal push cerrado")
	ErrMalformedEvent = errors.New("evento malformado")

	// Vista del dashboard
	ErrViewClosed = errors.New("vista del dashboard cerrada")
	ErrNoSession  = errors.New("no hay sesión activa")
)

// StatusError error HTTP del backend con su código original.
type StatusError struct {
	Status  int
	Message string
	Err     error // uno de los sentinelas de arriba
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *StatusError) Unwrap() error { return e.Err }
