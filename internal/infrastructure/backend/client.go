// Package backend adaptador HTTP hacia la API REST del inventario: las seis lecturas
// del dashboard y el login. Usa net/http de la librería estándar.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/Inventario-dashboard/internal/domain"
	"github.com/jhoicas/Inventario-dashboard/pkg/logger"
)

const maxResponseBytes = 4 << 20

// TokenProvider fuente del Bearer token. Invalidate se llama ante un 401 (sesión expirada).
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
	Invalidate(ctx context.Context) error
}

// Client cliente de la API del inventario.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
	log        *logger.Logger
}

// NewClient construye el cliente. timeout 0 = sin timeout propio (manda el contexto).
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log.Component("backend"),
	}
}

// UseTokens conecta la fuente de tokens (normalmente el AppContext de sesión).
func (c *Client) UseTokens(tp TokenProvider) { c.tokens = tp }

// envelope respuesta {success, data, message, error} que usan algunos endpoints del backend.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}, auth bool) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("backend: serializar request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("backend: crear request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth && c.tokens != nil {
		tok, err := c.tokens.Token(ctx)
		switch {
		case err == nil && tok != "":
			req.Header.Set("Authorization", "Bearer "+tok)
		case errors.Is(err, domain.ErrNoSession), err == nil:
			c.log.Debug().Str("path", path).Msg("request sin token de sesión")
		default:
			return fmt.Errorf("backend: token: %w", err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("backend %s: %w", path, ctx.Err())
		}
		return &domain.StatusError{Status: 0, Err: domain.ErrNetwork, Message: fmt.Sprintf("%s: %s", domain.ErrNetwork, err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("backend %s: leer respuesta: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := statusError(resp.StatusCode, raw)
		if resp.StatusCode == http.StatusUnauthorized && auth && c.tokens != nil {
			if ierr := c.tokens.Invalidate(ctx); ierr != nil {
				c.log.Warn().Err(ierr).Msg("no se pudo cerrar la sesión expirada")
			}
		}
		c.log.Warn().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("request fallido")
		return serr
	}

	if out == nil {
		return nil
	}
	if err := decodeBody(raw, out); err != nil {
		return fmt.Errorf("backend %s: %w", path, err)
	}
	return nil
}

// decodeBody acepta el cuerpo plano o envuelto en {success, data}.
func decodeBody(raw []byte, out interface{}) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err == nil && env.Success != nil {
			if !*env.Success {
				return fmt.Errorf("%w: %s", domain.ErrServer, firstNonEmpty(env.Error, env.Message))
			}
			if len(env.Data) > 0 {
				trimmed = env.Data
			}
		}
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("deserializar respuesta: %w", err)
	}
	return nil
}

// statusError traduce el status HTTP a los errores de dominio (mismos mensajes que
// muestra el frontend).
func statusError(status int, raw []byte) *domain.StatusError {
	var env envelope
	_ = json.Unmarshal(raw, &env)
	serverMsg := firstNonEmpty(env.Error, env.Message)

	switch {
	case status == http.StatusUnauthorized:
		return &domain.StatusError{Status: status, Err: domain.ErrUnauthorized}
	case status == http.StatusForbidden:
		return &domain.StatusError{Status: status, Err: domain.ErrForbidden}
	case status == http.StatusNotFound:
		return &domain.StatusError{Status: status, Err: domain.ErrNotFound}
	case status == http.StatusBadRequest:
		if serverMsg == "" {
			serverMsg = "solicitud inválida"
		}
		return &domain.StatusError{Status: status, Err: domain.ErrInvalidInput, Message: serverMsg}
	case status >= 500:
		return &domain.StatusError{Status: status, Err: domain.ErrServer}
	default:
		if serverMsg == "" {
			serverMsg = "error inesperado"
		}
		return &domain.StatusError{Status: status, Err: domain.ErrServer, Message: serverMsg}
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
