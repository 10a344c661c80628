package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cliente is the per-customer loyalty ledger: identity plus the points state
// the settlement engine operates on.
// Invariants maintained by the venta service: Puntos >= 0, Sobrante in [0, 20).
type Cliente struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre          string    `gorm:"not null"`
	ApellidoPaterno string
	ApellidoMaterno string
	// Telefono is the operator-facing lookup key: exactly 10 digits, unique.
	Telefono string `gorm:"uniqueIndex;not null"`
	Email    *string
	Puntos   int `gorm:"not null;default:0"`
	// Sobrante is the fractional payment (< $20) carried forward between
	// sales, not yet converted into a point.
	Sobrante decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	// Visitas counts distinct calendar days with at least one venta.
	Visitas      int `gorm:"not null;default:0"`
	UltimaVisita *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NombreCompleto joins the name parts the way the front desk displays them.
func (c *Cliente) NombreCompleto() string {
	s := c.Nombre
	if c.ApellidoPaterno != "" {
		s += " " + c.ApellidoPaterno
	}
	if c.ApellidoMaterno != "" {
		s += " " + c.ApellidoMaterno
	}
	return s
}
