package ward

import (
	"time"

	"github.com/google/uuid"
)

// Ward kinds.
const (
	KindGeneral  = "GENERAL"
	KindICU      = "ICU"
	KindPrivate  = "PRIVATE"
	KindMaternal = "MATERNITY"
	KindPeds     = "PEDIATRIC"
)

// Bed statuses. A bed is OCCUPIED exactly when an active admission
// references it; all writers go through the service, never a raw update.
const (
	BedAvailable   = "AVAILABLE"
	BedOccupied    = "OCCUPIED"
	BedMaintenance = "MAINTENANCE"
	BedBlocked     = "BLOCKED"
)

// Ward maps to the ward table.
type Ward struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Kind      string    `db:"kind" json:"kind"`
	Floor     *int      `db:"floor" json:"floor,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Amenities is the typed amenity list for a bed type.
type Amenities struct {
	List []string `json:"list"`
}

// BedType maps to the bed_type table. Daily rate is carried in minor
// currency units so per-day accruals sum exactly.
type BedType struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	DailyRateCents int64     `db:"daily_rate_cents" json:"daily_rate_cents"`
	MaxOccupancy   int       `db:"max_occupancy" json:"max_occupancy"`
	Amenities      Amenities `db:"amenities" json:"amenities"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Bed maps to the bed table.
type Bed struct {
	ID        uuid.UUID `db:"id" json:"id"`
	WardID    uuid.UUID `db:"ward_id" json:"ward_id"`
	BedTypeID uuid.UUID `db:"bed_type_id" json:"bed_type_id"`
	Number    string    `db:"number" json:"number"`
	Status    string    `db:"status" json:"status"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// OccupancyStats is a derived view over a ward's beds, recomputed on read.
type OccupancyStats struct {
	WardID      uuid.UUID `json:"ward_id"`
	Total       int       `json:"total"`
	Available   int       `json:"available"`
	Occupied    int       `json:"occupied"`
	Maintenance int       `json:"maintenance"`
	Blocked     int       `json:"blocked"`
}

// ValidBedStatus reports whether s is one of the four bed statuses.
func ValidBedStatus(s string) bool {
	switch s {
	case BedAvailable, BedOccupied, BedMaintenance, BedBlocked:
		return true
	}
	return false
}
