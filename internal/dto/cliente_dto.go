package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// ClienteFilter is bound from query string of GET /v1/clientes.
// The service clamps Page to >= 1 and Limit to [1, 200].
type ClienteFilter struct {
	// Q matches against nombre completo or telefono (substring).
	Q     string `form:"q"`
	Page  int    `form:"page,default=1"`
	Limit int    `form:"limit,default=50"`
}

type ClienteListResponse struct {
	Data  []ClienteResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearClienteRequest struct {
	Nombre          string  `json:"nombre"           validate:"required,min=1"`
	ApellidoPaterno string  `json:"apellido_paterno"`
	ApellidoMaterno string  `json:"apellido_materno"`
	Telefono        string  `json:"telefono"         validate:"required,len=10,numeric"`
	Email           *string `json:"email"            validate:"omitempty,email"`
}

// ActualizarClienteRequest updates identity fields only; the points state
// (puntos, sobrante, visitas) is owned by the settlement flow.
type ActualizarClienteRequest struct {
	Nombre          string  `json:"nombre"           validate:"omitempty,min=1"`
	ApellidoPaterno *string `json:"apellido_paterno"`
	ApellidoMaterno *string `json:"apellido_materno"`
	Telefono        string  `json:"telefono"         validate:"omitempty,len=10,numeric"`
	Email           *string `json:"email"            validate:"omitempty,email"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ClienteResponse struct {
	ID              string          `json:"id"`
	Nombre          string          `json:"nombre"`
	ApellidoPaterno string          `json:"apellido_paterno"`
	ApellidoMaterno string          `json:"apellido_materno"`
	NombreCompleto  string          `json:"nombre_completo"`
	Telefono        string          `json:"telefono"`
	Email           *string         `json:"email,omitempty"`
	Puntos          int             `json:"puntos"`
	Sobrante        decimal.Decimal `json:"sobrante"`
	Visitas         int             `json:"visitas"`
	UltimaVisita    *string         `json:"ultima_visita,omitempty"`
	CreatedAt       string          `json:"created_at"`
}

type VisitaResponse struct {
	Fecha      string `json:"fecha"`
	RecordedAt string `json:"recorded_at"`
}
