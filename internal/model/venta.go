package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venta is the immutable record of one settled sale. Created once at
// settlement time, never updated, deleted only when its cliente is deleted.
type Venta struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClienteID uuid.UUID `gorm:"type:uuid;index;not null"`
	// Total is the amount the operator rang up; TotalPagado is what the
	// cliente actually paid after redeeming points.
	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TotalPagado   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PuntosUsados  int             `gorm:"not null;default:0"`
	PuntosGanados int             `gorm:"not null;default:0"`
	CreatedAt     time.Time       `gorm:"index"`

	Cliente *Cliente `gorm:"foreignKey:ClienteID;constraint:OnDelete:CASCADE"`
}
