package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse respuesta de GET /health.
type HealthResponse struct {
	Status        string `json:"status"`
	Service       string `json:"service"`
	PushConnected bool   `json:"push_connected"`
}
