package settings

import (
	"time"

	"github.com/google/uuid"
)

// Hours is the facility's daily operating window. Times are wall-clock
// "HH:MM" strings; the lunch break is optional.
type Hours struct {
	BusinessStart string `db:"business_start" json:"business_start"`
	BusinessEnd   string `db:"business_end" json:"business_end"`
	LunchStart    string `db:"lunch_start" json:"lunch_start,omitempty"`
	LunchEnd      string `db:"lunch_end" json:"lunch_end,omitempty"`
}

// SessionTemplate is a named time window partitioning the business day for
// scheduling and token numbering.
type SessionTemplate struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	ShortCode string    `db:"short_code" json:"short_code"`
	Start     string    `db:"start_time" json:"start"`
	End       string    `db:"end_time" json:"end"`
	MaxTokens int       `db:"max_tokens" json:"max_tokens"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Schedule is the unit of validation and saving: the hours plus the full
// session template set.
type Schedule struct {
	Hours    Hours             `json:"hours"`
	Sessions []SessionTemplate `json:"sessions"`
}

// BillingDefaults are the preset fee components of an OT or imaging
// service. Explicit fields rather than a free-form blob.
type BillingDefaults struct {
	SurgeonFeeCents    int64 `json:"surgeon_fee_cents"`
	AssistantFeeCents  int64 `json:"assistant_fee_cents"`
	AnesthesiaFeeCents int64 `json:"anesthesia_fee_cents"`
	OtChargeCents      int64 `json:"ot_charge_cents"`
}

// Service item categories.
const (
	ItemCategoryOT      = "OT"
	ItemCategoryImaging = "IMAGING"
	ItemCategoryLab     = "LAB"
)

// ServiceItem is a configurable billable service: an OT procedure, an
// imaging study, a lab panel.
type ServiceItem struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	Name            string          `db:"name" json:"name"`
	Category        string          `db:"category" json:"category"`
	BasePriceCents  int64           `db:"base_price_cents" json:"base_price_cents"`
	TaxRateBps      int             `db:"tax_rate_bps" json:"tax_rate_bps"`
	BillingDefaults BillingDefaults `db:"billing_defaults" json:"billing_defaults"`
	Active          bool            `db:"active" json:"active"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

func validItemCategory(c string) bool {
	switch c {
	case ItemCategoryOT, ItemCategoryImaging, ItemCategoryLab:
		return true
	}
	return false
}
