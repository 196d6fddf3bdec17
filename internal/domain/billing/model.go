package billing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Ledger transaction types.
const (
	TypeCharge  = "CHARGE"
	TypePayment = "PAYMENT"
)

// Reference tags. Bed charges carry a per-day tag so reposting within the
// same day is a no-op; deposits carry RefDeposit so the summary can split
// them out of total payments.
const (
	RefDeposit      = "deposit"
	bedDayRefPrefix = "bed-day:"
)

// BedDayRef builds the reference tag for the nth day of a stay (1-based).
func BedDayRef(day int) string {
	return bedDayRefPrefix + strconv.Itoa(day)
}

// ParseBedDayRef extracts the day number from a bed-charge reference tag.
func ParseBedDayRef(ref string) (int, bool) {
	rest, ok := strings.CutPrefix(ref, bedDayRefPrefix)
	if !ok {
		return 0, false
	}
	day, err := strconv.Atoi(rest)
	if err != nil || day < 1 {
		return 0, false
	}
	return day, true
}

// Transaction is one row of the append-only ledger. Amounts are stored in
// minor currency units. A deposit is recorded against the admission request
// before the admission exists, so AdmissionID is optional and RequestID
// links the payment to the stay it funded.
type Transaction struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	AdmissionID *uuid.UUID `db:"admission_id" json:"admission_id,omitempty"`
	RequestID   *uuid.UUID `db:"request_id" json:"request_id,omitempty"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	Type        string     `db:"type" json:"type"`
	AmountCents int64      `db:"amount_cents" json:"amount_cents"`
	Description string     `db:"description" json:"description"`
	Reference   *string    `db:"reference" json:"reference,omitempty"`
	TaxRateBps  int        `db:"tax_rate_bps" json:"tax_rate_bps"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// IsDeposit reports whether the transaction is a deposit payment.
func (t *Transaction) IsDeposit() bool {
	return t.Type == TypePayment && t.Reference != nil && *t.Reference == RefDeposit
}

// Summary is the derived financial position of an admission. It is a pure
// fold over the transaction list, recomputed on every read.
type Summary struct {
	AdmissionID       uuid.UUID `json:"admission_id"`
	TotalChargesCents int64     `json:"total_charges_cents"`
	TotalDepositCents int64     `json:"total_deposit_cents"`
	TotalPaidCents    int64     `json:"total_paid_cents"`
	BalanceCents      int64     `json:"balance_cents"`
	Count             int       `json:"count"`
}

// ChargeItem is a manual charge line: a lab test, a procedure, a pharmacy
// issue. Tax is carried through, not computed here.
type ChargeItem struct {
	ItemType       string `json:"item_type"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	TaxRateBps     int    `json:"tax_rate_bps"`
}

func (i *ChargeItem) describe() string {
	if i.ItemType == "" {
		return fmt.Sprintf("%s x%d", i.Name, i.Quantity)
	}
	return fmt.Sprintf("%s: %s x%d", i.ItemType, i.Name, i.Quantity)
}
