package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from query string of GET /v1/clientes/:id/ventas.
// The service clamps Page to >= 1 and Limit to [1, 200].
type VentaFilter struct {
	Page  int `form:"page,default=1"`
	Limit int `form:"limit,default=50"`
}

type VentaListResponse struct {
	Data  []VentaHistorialItem `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

type VentaHistorialItem struct {
	ID            string          `json:"id"`
	Total         decimal.Decimal `json:"total"`
	TotalPagado   decimal.Decimal `json:"total_pagado"`
	PuntosUsados  int             `json:"puntos_usados"`
	PuntosGanados int             `json:"puntos_ganados"`
	Fecha         string          `json:"fecha"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// RegistrarVentaRequest settles one sale against the cliente's ledger.
// Total is a pointer so a missing field fails validation while an explicit
// zero (full redemption, nothing owed) goes through to the engine; a
// negative total is the engine's call, not the validator's.
// PuntosUsar may come in fractional or out of range — the engine clamps it,
// it is never a validation error.
type RegistrarVentaRequest struct {
	Total      *decimal.Decimal `json:"total"       validate:"required"`
	PuntosUsar decimal.Decimal  `json:"puntos_usar"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type VentaResponse struct {
	ID               string          `json:"id"`
	Total            decimal.Decimal `json:"total"`
	TotalPagado      decimal.Decimal `json:"total_pagado"`
	PuntosUsados     int             `json:"puntos_usados"`
	PuntosGanados    int             `json:"puntos_ganados"`
	PuntosNuevos     int             `json:"puntos_nuevos"`
	SobranteNuevo    decimal.Decimal `json:"sobrante_nuevo"`
	VisitaRegistrada bool            `json:"visita_registrada"`
	Fecha            string          `json:"fecha"`
}
