package billing

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/admission"
	"github.com/hms/hms/internal/domain/ward"
)

// -- in-memory stores --

type memRequestRepo struct {
	requests map[uuid.UUID]*admission.Request
}

func (r *memRequestRepo) Create(_ context.Context, req *admission.Request) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *memRequestRepo) GetByID(_ context.Context, id uuid.UUID) (*admission.Request, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, fmt.Errorf("request %s not found", id)
	}
	cp := *req
	return &cp, nil
}

func (r *memRequestRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*admission.Request, error) {
	return r.GetByID(ctx, id)
}

func (r *memRequestRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	req, ok := r.requests[id]
	if !ok {
		return fmt.Errorf("request %s not found", id)
	}
	req.Status = status
	return nil
}

func (r *memRequestRepo) List(context.Context, int, int) ([]*admission.Request, int, error) {
	return nil, 0, nil
}

func (r *memRequestRepo) ListByStatus(context.Context, string, int, int) ([]*admission.Request, int, error) {
	return nil, 0, nil
}

type memAdmissionRepo struct {
	admissions map[uuid.UUID]*admission.Admission
}

func (r *memAdmissionRepo) Create(_ context.Context, a *admission.Admission) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	r.admissions[a.ID] = &cp
	return nil
}

func (r *memAdmissionRepo) GetByID(_ context.Context, id uuid.UUID) (*admission.Admission, error) {
	a, ok := r.admissions[id]
	if !ok {
		return nil, fmt.Errorf("admission %s not found", id)
	}
	cp := *a
	return &cp, nil
}

func (r *memAdmissionRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*admission.Admission, error) {
	return r.GetByID(ctx, id)
}

func (r *memAdmissionRepo) Discharge(_ context.Context, id uuid.UUID) error {
	a, ok := r.admissions[id]
	if !ok {
		return fmt.Errorf("admission %s not found", id)
	}
	a.Status = admission.AdmissionDischarged
	return nil
}

func (r *memAdmissionRepo) ListActive(context.Context, int, int) ([]*admission.Admission, int, error) {
	return nil, 0, nil
}

func (r *memAdmissionRepo) ListByPatient(context.Context, uuid.UUID, int, int) ([]*admission.Admission, int, error) {
	return nil, 0, nil
}

type memBedRepo struct {
	beds     map[uuid.UUID]*ward.Bed
	bedTypes map[uuid.UUID]*ward.BedType
}

func (r *memBedRepo) Create(_ context.Context, b *ward.Bed) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	cp := *b
	r.beds[b.ID] = &cp
	return nil
}

func (r *memBedRepo) GetByID(_ context.Context, id uuid.UUID) (*ward.Bed, error) {
	b, ok := r.beds[id]
	if !ok {
		return nil, fmt.Errorf("bed %s not found", id)
	}
	cp := *b
	return &cp, nil
}

func (r *memBedRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*ward.Bed, error) {
	return r.GetByID(ctx, id)
}

func (r *memBedRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	b, ok := r.beds[id]
	if !ok {
		return fmt.Errorf("bed %s not found", id)
	}
	b.Status = status
	return nil
}

func (r *memBedRepo) UpdateNotes(context.Context, uuid.UUID, *string) error { return nil }

func (r *memBedRepo) ListByWard(context.Context, uuid.UUID, int, int) ([]*ward.Bed, int, error) {
	return nil, 0, nil
}

func (r *memBedRepo) ListByStatus(context.Context, string, int, int) ([]*ward.Bed, int, error) {
	return nil, 0, nil
}

func (r *memBedRepo) CountByWard(context.Context, uuid.UUID) (map[string]int, error) {
	return nil, nil
}

type memBedTypeRepo struct{ beds *memBedRepo }

func (r *memBedTypeRepo) Create(_ context.Context, bt *ward.BedType) error {
	if bt.ID == uuid.Nil {
		bt.ID = uuid.New()
	}
	cp := *bt
	r.beds.bedTypes[bt.ID] = &cp
	return nil
}

func (r *memBedTypeRepo) GetByID(_ context.Context, id uuid.UUID) (*ward.BedType, error) {
	bt, ok := r.beds.bedTypes[id]
	if !ok {
		return nil, fmt.Errorf("bed type %s not found", id)
	}
	cp := *bt
	return &cp, nil
}

func (r *memBedTypeRepo) Update(context.Context, *ward.BedType) error { return nil }

func (r *memBedTypeRepo) List(context.Context, int, int) ([]*ward.BedType, int, error) {
	return nil, 0, nil
}

type memLedger struct {
	txns       []*Transaction
	admissions *memAdmissionRepo
}

func (r *memLedger) Append(_ context.Context, t *Transaction) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = time.Now()
	cp := *t
	r.txns = append(r.txns, &cp)
	return nil
}

func (r *memLedger) GetByID(_ context.Context, id uuid.UUID) (*Transaction, error) {
	for _, t := range r.txns {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("transaction %s not found", id)
}

func (r *memLedger) ListForAdmission(_ context.Context, admissionID uuid.UUID) ([]*Transaction, error) {
	var requestID *uuid.UUID
	if a, ok := r.admissions.admissions[admissionID]; ok {
		requestID = a.RequestID
	}
	var out []*Transaction
	for _, t := range r.txns {
		match := t.AdmissionID != nil && *t.AdmissionID == admissionID
		if !match && requestID != nil && t.RequestID != nil && *t.RequestID == *requestID {
			match = true
		}
		if match {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memLedger) ListByRequest(_ context.Context, requestID uuid.UUID) ([]*Transaction, error) {
	var out []*Transaction
	for _, t := range r.txns {
		if t.RequestID != nil && *t.RequestID == requestID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memLedger) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Transaction, int, error) {
	var out []*Transaction
	for _, t := range r.txns {
		if t.PatientID == patientID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

// -- fixture --

type fixture struct {
	svc      *Service
	ledger   *memLedger
	requests *memRequestRepo
	adms     *memAdmissionRepo
	beds     *memBedRepo
}

func newFixture() *fixture {
	requests := &memRequestRepo{requests: make(map[uuid.UUID]*admission.Request)}
	adms := &memAdmissionRepo{admissions: make(map[uuid.UUID]*admission.Admission)}
	beds := &memBedRepo{
		beds:     make(map[uuid.UUID]*ward.Bed),
		bedTypes: make(map[uuid.UUID]*ward.BedType),
	}
	ledger := &memLedger{admissions: adms}

	admSvc := admission.NewService(requests, adms, beds, nil)
	svc := NewService(ledger, admSvc, beds, &memBedTypeRepo{beds: beds}, nil)
	return &fixture{svc: svc, ledger: ledger, requests: requests, adms: adms, beds: beds}
}

// seedAdmission creates a bed type at the given daily rate, a bed, and an
// active admission that started admittedAgo before now.
func (f *fixture) seedAdmission(t *testing.T, dailyRateCents int64, admittedAgo time.Duration) *admission.Admission {
	t.Helper()
	ctx := context.Background()

	bt := &ward.BedType{Name: "General", DailyRateCents: dailyRateCents, MaxOccupancy: 1}
	if err := (&memBedTypeRepo{beds: f.beds}).Create(ctx, bt); err != nil {
		t.Fatalf("seed bed type: %v", err)
	}
	bed := &ward.Bed{WardID: uuid.New(), BedTypeID: bt.ID, Number: "B-7", Status: ward.BedOccupied}
	if err := f.beds.Create(ctx, bed); err != nil {
		t.Fatalf("seed bed: %v", err)
	}
	reqID := uuid.New()
	adm := &admission.Admission{
		RequestID:    &reqID,
		PatientID:    uuid.New(),
		BedID:        bed.ID,
		DoctorID:     uuid.New(),
		AdmittedByID: uuid.New(),
		Diagnosis:    "fracture",
		Status:       admission.AdmissionActive,
		AdmittedAt:   time.Now().Add(-admittedAgo),
	}
	if err := f.adms.Create(ctx, adm); err != nil {
		t.Fatalf("seed admission: %v", err)
	}
	return f.adms.admissions[adm.ID]
}

// -- tests --

func TestElapsedDays(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{0, 1},
		{time.Hour, 1},
		{23 * time.Hour, 1},
		{24 * time.Hour, 1},
		{25 * time.Hour, 2},
		{48 * time.Hour, 2},
		{60 * time.Hour, 3},
	}
	for _, tt := range tests {
		if got := elapsedDays(base, base.Add(tt.elapsed)); got != tt.want {
			t.Errorf("elapsedDays(+%v) = %d, want %d", tt.elapsed, got, tt.want)
		}
	}
}

func TestPostBedChargeIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	adm := f.seedAdmission(t, 150000, 2*time.Hour)

	first, err := f.svc.PostBedCharge(ctx, adm.ID)
	if err != nil {
		t.Fatalf("first PostBedCharge: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("first call posted %d charges, want 1", len(first))
	}
	if first[0].AmountCents != 150000 {
		t.Errorf("charge amount = %d, want 150000", first[0].AmountCents)
	}

	second, err := f.svc.PostBedCharge(ctx, adm.ID)
	if err != nil {
		t.Fatalf("second PostBedCharge: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("second call posted %d charges, want 0", len(second))
	}

	sum, err := f.svc.GetSummary(ctx, adm.ID)
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if sum.TotalChargesCents != 150000 {
		t.Errorf("total charges = %d, want 150000 after repeat posting", sum.TotalChargesCents)
	}
}

func TestPostBedChargeCoversMissedDays(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	// Admitted 2.5 days ago: days 1..3 are owed.
	adm := f.seedAdmission(t, 100000, 60*time.Hour)

	posted, err := f.svc.PostBedCharge(ctx, adm.ID)
	if err != nil {
		t.Fatalf("PostBedCharge: %v", err)
	}
	if len(posted) != 3 {
		t.Fatalf("posted %d charges, want 3", len(posted))
	}
	seen := make(map[int]bool)
	for _, txn := range posted {
		day, ok := ParseBedDayRef(*txn.Reference)
		if !ok {
			t.Fatalf("charge reference %q is not a bed-day tag", *txn.Reference)
		}
		seen[day] = true
	}
	for day := 1; day <= 3; day++ {
		if !seen[day] {
			t.Errorf("day %d not charged", day)
		}
	}
}

func TestPostBedChargeInactiveAdmission(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	adm := f.seedAdmission(t, 100000, time.Hour)
	f.adms.admissions[adm.ID].Status = admission.AdmissionDischarged

	_, err := f.svc.PostBedCharge(ctx, adm.ID)
	if !errors.Is(err, admission.ErrInactiveAdmission) {
		t.Fatalf("err = %v, want ErrInactiveAdmission", err)
	}
	if len(f.ledger.txns) != 0 {
		t.Errorf("ledger entries = %d, want 0", len(f.ledger.txns))
	}
}

func TestAddCharge(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	adm := f.seedAdmission(t, 100000, time.Hour)

	txn, err := f.svc.AddCharge(ctx, adm.ID, ChargeItem{
		ItemType:       "lab",
		Name:           "CBC",
		Quantity:       3,
		UnitPriceCents: 2500,
		TaxRateBps:     500,
	})
	if err != nil {
		t.Fatalf("AddCharge: %v", err)
	}
	if txn.AmountCents != 7500 {
		t.Errorf("amount = %d, want 7500", txn.AmountCents)
	}
	if txn.TaxRateBps != 500 {
		t.Errorf("tax rate = %d, want pass-through 500", txn.TaxRateBps)
	}
}

func TestAddChargeInvalidInput(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	adm := f.seedAdmission(t, 100000, time.Hour)

	tests := []struct {
		name string
		item ChargeItem
	}{
		{"zero quantity", ChargeItem{Name: "CBC", Quantity: 0, UnitPriceCents: 2500}},
		{"negative quantity", ChargeItem{Name: "CBC", Quantity: -1, UnitPriceCents: 2500}},
		{"zero price", ChargeItem{Name: "CBC", Quantity: 1, UnitPriceCents: 0}},
		{"negative price", ChargeItem{Name: "CBC", Quantity: 1, UnitPriceCents: -100}},
		{"missing name", ChargeItem{Quantity: 1, UnitPriceCents: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.AddCharge(ctx, adm.ID, tt.item); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
	if len(f.ledger.txns) != 0 {
		t.Errorf("ledger entries = %d, want 0 after rejected charges", len(f.ledger.txns))
	}
}

func TestRecordDeposit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := &admission.Request{
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		Diagnosis: "appendicitis",
		Urgency:   admission.UrgencyHigh,
		Status:    admission.StatusAwaitingDeposit,
	}
	if err := f.requests.Create(ctx, req); err != nil {
		t.Fatalf("seed request: %v", err)
	}

	txn, err := f.svc.RecordDeposit(ctx, req.ID, 500000)
	if err != nil {
		t.Fatalf("RecordDeposit: %v", err)
	}
	if !txn.IsDeposit() {
		t.Error("transaction not tagged as deposit")
	}
	stored, _ := f.requests.GetByID(ctx, req.ID)
	if stored.Status != admission.StatusDepositPaid {
		t.Errorf("request status = %s, want %s", stored.Status, admission.StatusDepositPaid)
	}
}

func TestRecordDepositWrongStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := &admission.Request{
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		Diagnosis: "appendicitis",
		Urgency:   admission.UrgencyNormal,
		Status:    admission.StatusPending,
	}
	if err := f.requests.Create(ctx, req); err != nil {
		t.Fatalf("seed request: %v", err)
	}

	_, err := f.svc.RecordDeposit(ctx, req.ID, 500000)
	if !errors.Is(err, admission.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
	if len(f.ledger.txns) != 0 {
		t.Errorf("ledger entries = %d, want 0", len(f.ledger.txns))
	}
}

func TestGetSummary(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	adm := f.seedAdmission(t, 100000, time.Hour)

	// Deposit recorded against the originating request before admission.
	ref := RefDeposit
	mustAppend := func(t *testing.T, txn *Transaction) {
		t.Helper()
		if err := f.ledger.Append(ctx, txn); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	mustAppend(t, &Transaction{
		RequestID: adm.RequestID, PatientID: adm.PatientID,
		Type: TypePayment, AmountCents: 500000, Reference: &ref,
	})
	mustAppend(t, &Transaction{
		AdmissionID: &adm.ID, PatientID: adm.PatientID,
		Type: TypeCharge, AmountCents: 100000,
	})
	mustAppend(t, &Transaction{
		AdmissionID: &adm.ID, PatientID: adm.PatientID,
		Type: TypeCharge, AmountCents: 32550,
	})
	mustAppend(t, &Transaction{
		AdmissionID: &adm.ID, PatientID: adm.PatientID,
		Type: TypePayment, AmountCents: 20000,
	})

	sum, err := f.svc.GetSummary(ctx, adm.ID)
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if sum.TotalChargesCents != 132550 {
		t.Errorf("charges = %d, want 132550", sum.TotalChargesCents)
	}
	if sum.TotalDepositCents != 500000 {
		t.Errorf("deposits = %d, want 500000", sum.TotalDepositCents)
	}
	if sum.TotalPaidCents != 520000 {
		t.Errorf("paid = %d, want 520000", sum.TotalPaidCents)
	}
	if sum.BalanceCents != 132550-520000 {
		t.Errorf("balance = %d, want %d", sum.BalanceCents, 132550-520000)
	}
	if sum.Count != 4 {
		t.Errorf("count = %d, want 4", sum.Count)
	}
}
