package admission

import (
	"time"

	"github.com/google/uuid"
)

// Admission request statuses.
const (
	StatusPending         = "PENDING"
	StatusApproved        = "APPROVED"
	StatusAwaitingDeposit = "AWAITING_DEPOSIT"
	StatusDepositPaid     = "DEPOSIT_PAID"
	StatusConverted       = "CONVERTED"
	StatusRejected        = "REJECTED"
)

// Urgency levels.
const (
	UrgencyLow       = "LOW"
	UrgencyNormal    = "NORMAL"
	UrgencyHigh      = "HIGH"
	UrgencyEmergency = "EMERGENCY"
)

// Admission statuses.
const (
	AdmissionActive     = "ACTIVE"
	AdmissionDischarged = "DISCHARGED"
)

// transitions is the admission-request state machine. CONVERTED is reachable
// only through bed allocation; SetStatus refuses it as a target so the
// conversion can never happen outside the allocation transaction.
var transitions = map[string][]string{
	StatusPending:         {StatusAwaitingDeposit, StatusRejected},
	StatusApproved:        {StatusAwaitingDeposit},
	StatusAwaitingDeposit: {StatusDepositPaid},
	StatusDepositPaid:     {StatusConverted},
}

// CanTransition reports whether the state machine permits from -> to.
func CanTransition(from, to string) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// TerminalStatus reports whether a request status admits no further moves.
func TerminalStatus(s string) bool {
	return s == StatusConverted || s == StatusRejected
}

func validUrgency(u string) bool {
	switch u {
	case UrgencyLow, UrgencyNormal, UrgencyHigh, UrgencyEmergency:
		return true
	}
	return false
}

// Request maps to the admission_request table. Requests are retained for
// audit and never deleted.
type Request struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PatientID      uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID       uuid.UUID `db:"doctor_id" json:"doctor_id"`
	WardKind       *string   `db:"ward_kind" json:"ward_kind,omitempty"`
	BedTypeName    *string   `db:"bed_type_name" json:"bed_type_name,omitempty"`
	Urgency        string    `db:"urgency" json:"urgency"`
	Diagnosis      string    `db:"diagnosis" json:"diagnosis"`
	ChiefComplaint string    `db:"chief_complaint" json:"chief_complaint"`
	EstimatedDays  *int      `db:"estimated_days" json:"estimated_days,omitempty"`
	Status         string    `db:"status" json:"status"`
	RequestedAt    time.Time `db:"requested_at" json:"requested_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Admission maps to the admission table. Exactly one ACTIVE admission may
// reference a bed at any time.
type Admission struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	RequestID      *uuid.UUID `db:"request_id" json:"request_id,omitempty"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	BedID          uuid.UUID  `db:"bed_id" json:"bed_id"`
	DoctorID       uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	AdmittedByID   uuid.UUID  `db:"admitted_by_id" json:"admitted_by_id"`
	Diagnosis      string     `db:"diagnosis" json:"diagnosis"`
	ChiefComplaint string     `db:"chief_complaint" json:"chief_complaint"`
	EstimatedDays  *int       `db:"estimated_days" json:"estimated_days,omitempty"`
	Status         string     `db:"status" json:"status"`
	AdmittedAt     time.Time  `db:"admitted_at" json:"admitted_at"`
	DischargedAt   *time.Time `db:"discharged_at" json:"discharged_at,omitempty"`
}

// Change identifies an entity mutated by an engine operation. The handler
// layer forwards changes to the realtime feed so dependent views recompute.
type Change struct {
	Entity string    `json:"entity"`
	ID     uuid.UUID `json:"id"`
}

// AllocationResult is everything produced by a successful bed allocation.
type AllocationResult struct {
	Admission *Admission `json:"admission"`
	BedID     uuid.UUID  `json:"bed_id"`
	Request   *Request   `json:"request"`
	Changed   []Change   `json:"changed"`
}
