package model

import (
	"time"

	"github.com/google/uuid"
)

// Visita marks calendar-day activity: at most one per cliente per day,
// regardless of how many ventas that day had. Fecha is the UTC day key
// (YYYY-MM-DD); the composite unique index backs up the check-then-insert
// done by the venta service.
type Visita struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClienteID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cliente_fecha"`
	Fecha     string    `gorm:"type:date;not null;uniqueIndex:idx_cliente_fecha"`
	CreatedAt time.Time

	Cliente *Cliente `gorm:"foreignKey:ClienteID;constraint:OnDelete:CASCADE"`
}
