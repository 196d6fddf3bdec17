package pharmacy

import (
	"time"

	"github.com/google/uuid"
)

// Stock adjustment kinds.
const (
	AdjustRestock  = "RESTOCK"
	AdjustDispense = "DISPENSE"
)

type Medicine struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	Name           string     `db:"name" json:"name"`
	GenericName    *string    `db:"generic_name" json:"generic_name,omitempty"`
	Category       *string    `db:"category" json:"category,omitempty"`
	UnitPriceCents int64      `db:"unit_price_cents" json:"unit_price_cents"`
	StockQuantity  int        `db:"stock_quantity" json:"stock_quantity"`
	ReorderLevel   int        `db:"reorder_level" json:"reorder_level"`
	ExpiresAt      *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// LowStock reports whether the medicine is at or below its reorder level.
func (m *Medicine) LowStock() bool {
	return m.StockQuantity <= m.ReorderLevel
}
