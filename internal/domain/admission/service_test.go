package admission

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/ward"
)

// -- in-memory repositories --

type memRequestRepo struct {
	requests map[uuid.UUID]*Request
}

func newMemRequestRepo() *memRequestRepo {
	return &memRequestRepo{requests: make(map[uuid.UUID]*Request)}
}

func (r *memRequestRepo) Create(_ context.Context, req *Request) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *memRequestRepo) GetByID(_ context.Context, id uuid.UUID) (*Request, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, fmt.Errorf("request %s not found", id)
	}
	cp := *req
	return &cp, nil
}

func (r *memRequestRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*Request, error) {
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

func (r *memRequestRepo) List(_ context.Context, limit, offset int) ([]*Request, int, error) {
	var items []*Request
	for _, req := range r.requests {
		cp := *req
		items = append(items, &cp)
	}
	return items, len(r.requests), nil
}

func (r *memRequestRepo) ListByStatus(_ context.Context, status string, limit, offset int) ([]*Request, int, error) {
	var items []*Request
	for _, req := range r.requests {
		if req.Status == status {
			cp := *req
			items = append(items, &cp)
		}
	}
	return items, len(items), nil
}

type memAdmissionRepo struct {
	admissions map[uuid.UUID]*Admission
}

func newMemAdmissionRepo() *memAdmissionRepo {
	return &memAdmissionRepo{admissions: make(map[uuid.UUID]*Admission)}
}

func (r *memAdmissionRepo) Create(_ context.Context, a *Admission) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	r.admissions[a.ID] = &cp
	return nil
}

func (r *memAdmissionRepo) GetByID(_ context.Context, id uuid.UUID) (*Admission, error) {
	a, ok := r.admissions[id]
	if !ok {
		return nil, fmt.Errorf("admission %s not found", id)
	}
	cp := *a
	return &cp, nil
}

func (r *memAdmissionRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*Admission, error) {
	return r.GetByID(ctx, id)
}

func (r *memAdmissionRepo) Discharge(_ context.Context, id uuid.UUID) error {
	a, ok := r.admissions[id]
	if !ok {
		return fmt.Errorf("admission %s not found", id)
	}
	a.Status = AdmissionDischarged
	return nil
}

func (r *memAdmissionRepo) ListActive(_ context.Context, limit, offset int) ([]*Admission, int, error) {
	var items []*Admission
	for _, a := range r.admissions {
		if a.Status == AdmissionActive {
			cp := *a
			items = append(items, &cp)
		}
	}
	return items, len(items), nil
}

func (r *memAdmissionRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Admission, int, error) {
	var items []*Admission
	for _, a := range r.admissions {
		if a.PatientID == patientID {
			cp := *a
			items = append(items, &cp)
		}
	}
	return items, len(items), nil
}

type memBedRepo struct {
	beds map[uuid.UUID]*ward.Bed
	// failStatusUpdate forces UpdateStatus to fail, for rollback tests.
	failStatusUpdate bool
}

func newMemBedRepo() *memBedRepo {
	return &memBedRepo{beds: make(map[uuid.UUID]*ward.Bed)}
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
	if r.failStatusUpdate {
		return errors.New("forced failure")
	}
	b, ok := r.beds[id]
	if !ok {
		return fmt.Errorf("bed %s not found", id)
	}
	b.Status = status
	return nil
}

func (r *memBedRepo) UpdateNotes(_ context.Context, id uuid.UUID, notes *string) error { return nil }

func (r *memBedRepo) ListByWard(_ context.Context, wardID uuid.UUID, limit, offset int) ([]*ward.Bed, int, error) {
	return nil, 0, nil
}

func (r *memBedRepo) ListByStatus(_ context.Context, status string, limit, offset int) ([]*ward.Bed, int, error) {
	return nil, 0, nil
}

func (r *memBedRepo) CountByWard(_ context.Context, wardID uuid.UUID) (map[string]int, error) {
	return nil, nil
}

// snapshotTx mimics transaction semantics over the in-memory repositories:
// it copies their state before fn runs and restores it when fn fails.
func snapshotTx(requests *memRequestRepo, admissions *memAdmissionRepo, beds *memBedRepo) TxRunner {
	return func(ctx context.Context, fn func(ctx context.Context) error) error {
		reqSnap := make(map[uuid.UUID]*Request, len(requests.requests))
		for k, v := range requests.requests {
			cp := *v
			reqSnap[k] = &cp
		}
		admSnap := make(map[uuid.UUID]*Admission, len(admissions.admissions))
		for k, v := range admissions.admissions {
			cp := *v
			admSnap[k] = &cp
		}
		bedSnap := make(map[uuid.UUID]*ward.Bed, len(beds.beds))
		for k, v := range beds.beds {
			cp := *v
			bedSnap[k] = &cp
		}

		if err := fn(ctx); err != nil {
			requests.requests = reqSnap
			admissions.admissions = admSnap
			beds.beds = bedSnap
			return err
		}
		return nil
	}
}

type fixture struct {
	svc        *Service
	requests   *memRequestRepo
	admissions *memAdmissionRepo
	beds       *memBedRepo
}

func newFixture() *fixture {
	requests := newMemRequestRepo()
	admissions := newMemAdmissionRepo()
	beds := newMemBedRepo()
	svc := NewService(requests, admissions, beds, snapshotTx(requests, admissions, beds))
	return &fixture{svc: svc, requests: requests, admissions: admissions, beds: beds}
}

func (f *fixture) seedRequest(t *testing.T, status string) *Request {
	t.Helper()
	req := &Request{
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		Diagnosis: "acute appendicitis",
		Urgency:   UrgencyHigh,
		Status:    status,
	}
	if err := f.requests.Create(context.Background(), req); err != nil {
		t.Fatalf("seed request: %v", err)
	}
	return req
}

func (f *fixture) seedBed(t *testing.T, status string) *ward.Bed {
	t.Helper()
	bed := &ward.Bed{
		WardID:    uuid.New(),
		BedTypeID: uuid.New(),
		Number:    "A-101",
		Status:    status,
	}
	if err := f.beds.Create(context.Background(), bed); err != nil {
		t.Fatalf("seed bed: %v", err)
	}
	return bed
}

// -- tests --

func TestCreateRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	req := &Request{PatientID: uuid.New(), DoctorID: uuid.New(), Diagnosis: "pneumonia"}
	if err := f.svc.CreateRequest(ctx, req); err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if req.Status != StatusPending {
		t.Errorf("status = %s, want %s", req.Status, StatusPending)
	}
	if req.Urgency != UrgencyNormal {
		t.Errorf("urgency = %s, want default %s", req.Urgency, UrgencyNormal)
	}
}

func TestCreateRequestValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	bad := -1

	tests := []struct {
		name string
		req  *Request
	}{
		{"missing patient", &Request{DoctorID: uuid.New(), Diagnosis: "x"}},
		{"missing doctor", &Request{PatientID: uuid.New(), Diagnosis: "x"}},
		{"missing diagnosis", &Request{PatientID: uuid.New(), DoctorID: uuid.New()}},
		{"bad urgency", &Request{PatientID: uuid.New(), DoctorID: uuid.New(), Diagnosis: "x", Urgency: "SEVERE"}},
		{"bad estimated days", &Request{PatientID: uuid.New(), DoctorID: uuid.New(), Diagnosis: "x", EstimatedDays: &bad}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := f.svc.CreateRequest(ctx, tt.req); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSetStatusTransitions(t *testing.T) {
	statuses := []string{
		StatusPending, StatusApproved, StatusAwaitingDeposit,
		StatusDepositPaid, StatusConverted, StatusRejected,
	}
	legal := map[string]bool{
		StatusPending + ">" + StatusAwaitingDeposit:  true,
		StatusPending + ">" + StatusRejected:         true,
		StatusApproved + ">" + StatusAwaitingDeposit: true,
		StatusAwaitingDeposit + ">" + StatusDepositPaid: true,
		// DEPOSIT_PAID -> CONVERTED exists in the machine but only
		// AllocateBed may take it.
	}

	for _, from := range statuses {
		for _, to := range statuses {
			t.Run(from+"_to_"+to, func(t *testing.T) {
				f := newFixture()
				req := f.seedRequest(t, from)

				got, err := f.svc.SetStatus(context.Background(), req.ID, to)
				if legal[from+">"+to] {
					if err != nil {
						t.Fatalf("SetStatus(%s -> %s): %v", from, to, err)
					}
					if got.Status != to {
						t.Errorf("status = %s, want %s", got.Status, to)
					}
					return
				}
				if !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("SetStatus(%s -> %s): err = %v, want ErrInvalidTransition", from, to, err)
				}
				stored, _ := f.requests.GetByID(context.Background(), req.ID)
				if stored.Status != from {
					t.Errorf("stored status = %s, want unchanged %s", stored.Status, from)
				}
			})
		}
	}
}

func TestAllocateBed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := f.seedRequest(t, StatusDepositPaid)
	bed := f.seedBed(t, ward.BedAvailable)
	admittedBy := uuid.New()

	res, err := f.svc.AllocateBed(ctx, req.ID, bed.ID, admittedBy)
	if err != nil {
		t.Fatalf("AllocateBed: %v", err)
	}

	if res.Admission.Status != AdmissionActive {
		t.Errorf("admission status = %s, want %s", res.Admission.Status, AdmissionActive)
	}
	if res.Admission.PatientID != req.PatientID {
		t.Errorf("admission patient = %s, want %s", res.Admission.PatientID, req.PatientID)
	}
	if res.Admission.AdmittedByID != admittedBy {
		t.Errorf("admitted_by = %s, want %s", res.Admission.AdmittedByID, admittedBy)
	}

	storedBed, _ := f.beds.GetByID(ctx, bed.ID)
	if storedBed.Status != ward.BedOccupied {
		t.Errorf("bed status = %s, want %s", storedBed.Status, ward.BedOccupied)
	}
	storedReq, _ := f.requests.GetByID(ctx, req.ID)
	if storedReq.Status != StatusConverted {
		t.Errorf("request status = %s, want %s", storedReq.Status, StatusConverted)
	}

	if len(res.Changed) != 3 {
		t.Fatalf("changed entities = %d, want 3", len(res.Changed))
	}
	want := map[string]uuid.UUID{
		"admission_request": req.ID,
		"bed":               bed.ID,
		"admission":         res.Admission.ID,
	}
	for _, ch := range res.Changed {
		if want[ch.Entity] != ch.ID {
			t.Errorf("changed %s = %s, want %s", ch.Entity, ch.ID, want[ch.Entity])
		}
	}
}

func TestAllocateBedUnavailable(t *testing.T) {
	for _, status := range []string{ward.BedOccupied, ward.BedMaintenance, ward.BedBlocked} {
		t.Run(status, func(t *testing.T) {
			f := newFixture()
			ctx := context.Background()
			req := f.seedRequest(t, StatusDepositPaid)
			bed := f.seedBed(t, status)

			_, err := f.svc.AllocateBed(ctx, req.ID, bed.ID, uuid.New())
			if !errors.Is(err, ErrBedUnavailable) {
				t.Fatalf("err = %v, want ErrBedUnavailable", err)
			}

			storedReq, _ := f.requests.GetByID(ctx, req.ID)
			if storedReq.Status != StatusDepositPaid {
				t.Errorf("request status = %s, want unchanged %s", storedReq.Status, StatusDepositPaid)
			}
			if n := len(f.admissions.admissions); n != 0 {
				t.Errorf("admissions created = %d, want 0", n)
			}
		})
	}
}

func TestAllocateBedWrongRequestStatus(t *testing.T) {
	for _, status := range []string{StatusPending, StatusApproved, StatusAwaitingDeposit, StatusConverted, StatusRejected} {
		t.Run(status, func(t *testing.T) {
			f := newFixture()
			req := f.seedRequest(t, status)
			bed := f.seedBed(t, ward.BedAvailable)

			_, err := f.svc.AllocateBed(context.Background(), req.ID, bed.ID, uuid.New())
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("err = %v, want ErrInvalidTransition", err)
			}
		})
	}
}

func TestAllocateBedRollsBackOnFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := f.seedRequest(t, StatusDepositPaid)
	bed := f.seedBed(t, ward.BedAvailable)
	f.beds.failStatusUpdate = true

	_, err := f.svc.AllocateBed(ctx, req.ID, bed.ID, uuid.New())
	if err == nil {
		t.Fatal("expected allocation failure")
	}

	storedBed, _ := f.beds.GetByID(ctx, bed.ID)
	if storedBed.Status != ward.BedAvailable {
		t.Errorf("bed status = %s, want %s after rollback", storedBed.Status, ward.BedAvailable)
	}
	storedReq, _ := f.requests.GetByID(ctx, req.ID)
	if storedReq.Status != StatusDepositPaid {
		t.Errorf("request status = %s, want %s after rollback", storedReq.Status, StatusDepositPaid)
	}
	if n := len(f.admissions.admissions); n != 0 {
		t.Errorf("admissions after rollback = %d, want 0", n)
	}
}

func TestDischarge(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := f.seedRequest(t, StatusDepositPaid)
	bed := f.seedBed(t, ward.BedAvailable)

	res, err := f.svc.AllocateBed(ctx, req.ID, bed.ID, uuid.New())
	if err != nil {
		t.Fatalf("AllocateBed: %v", err)
	}

	adm, changed, err := f.svc.Discharge(ctx, res.Admission.ID)
	if err != nil {
		t.Fatalf("Discharge: %v", err)
	}
	if adm.Status != AdmissionDischarged {
		t.Errorf("admission status = %s, want %s", adm.Status, AdmissionDischarged)
	}
	if len(changed) != 2 {
		t.Errorf("changed entities = %d, want 2", len(changed))
	}

	storedBed, _ := f.beds.GetByID(ctx, bed.ID)
	if storedBed.Status != ward.BedAvailable {
		t.Errorf("bed status = %s, want %s after discharge", storedBed.Status, ward.BedAvailable)
	}

	// A second discharge must fail.
	if _, _, err := f.svc.Discharge(ctx, res.Admission.ID); !errors.Is(err, ErrInactiveAdmission) {
		t.Errorf("second discharge err = %v, want ErrInactiveAdmission", err)
	}
}
