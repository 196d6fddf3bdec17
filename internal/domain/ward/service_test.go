package ward

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

type memBedRepo struct {
	beds map[uuid.UUID]*Bed
}

func newMemBedRepo() *memBedRepo {
	return &memBedRepo{beds: make(map[uuid.UUID]*Bed)}
}

func (r *memBedRepo) Create(_ context.Context, b *Bed) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	cp := *b
	r.beds[b.ID] = &cp
	return nil
}

func (r *memBedRepo) GetByID(_ context.Context, id uuid.UUID) (*Bed, error) {
	b, ok := r.beds[id]
	if !ok {
		return nil, fmt.Errorf("bed %s not found", id)
	}
	cp := *b
	return &cp, nil
}

func (r *memBedRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*Bed, error) {
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

func (r *memBedRepo) ListByWard(_ context.Context, wardID uuid.UUID, limit, offset int) ([]*Bed, int, error) {
	var items []*Bed
	for _, b := range r.beds {
		if b.WardID == wardID {
			cp := *b
			items = append(items, &cp)
		}
	}
	return items, len(items), nil
}

func (r *memBedRepo) ListByStatus(_ context.Context, status string, limit, offset int) ([]*Bed, int, error) {
	var items []*Bed
	for _, b := range r.beds {
		if b.Status == status {
			cp := *b
			items = append(items, &cp)
		}
	}
	return items, len(items), nil
}

func (r *memBedRepo) CountByWard(_ context.Context, wardID uuid.UUID) (map[string]int, error) {
	counts := make(map[string]int)
	for _, b := range r.beds {
		if b.WardID == wardID {
			counts[b.Status]++
		}
	}
	return counts, nil
}

func seedBed(t *testing.T, repo *memBedRepo, wardID uuid.UUID, number, status string) *Bed {
	t.Helper()
	b := &Bed{WardID: wardID, BedTypeID: uuid.New(), Number: number, Status: status}
	if err := repo.Create(context.Background(), b); err != nil {
		t.Fatalf("seed bed: %v", err)
	}
	return b
}

func TestToggleMaintenance(t *testing.T) {
	repo := newMemBedRepo()
	svc := NewService(nil, nil, repo)
	bed := seedBed(t, repo, uuid.New(), "A-1", BedAvailable)

	got, err := svc.ToggleMaintenance(context.Background(), bed.ID, BedMaintenance)
	if err != nil {
		t.Fatalf("ToggleMaintenance: %v", err)
	}
	if got.Status != BedMaintenance {
		t.Errorf("status = %s, want %s", got.Status, BedMaintenance)
	}

	got, err = svc.ToggleMaintenance(context.Background(), bed.ID, BedAvailable)
	if err != nil {
		t.Fatalf("ToggleMaintenance back: %v", err)
	}
	if got.Status != BedAvailable {
		t.Errorf("status = %s, want %s", got.Status, BedAvailable)
	}
}

func TestToggleMaintenanceOccupiedGuard(t *testing.T) {
	repo := newMemBedRepo()
	svc := NewService(nil, nil, repo)
	bed := seedBed(t, repo, uuid.New(), "A-2", BedOccupied)

	_, err := svc.ToggleMaintenance(context.Background(), bed.ID, BedMaintenance)
	if !errors.Is(err, ErrBedOccupied) {
		t.Fatalf("err = %v, want ErrBedOccupied", err)
	}
	stored, _ := repo.GetByID(context.Background(), bed.ID)
	if stored.Status != BedOccupied {
		t.Errorf("status = %s, want unchanged %s", stored.Status, BedOccupied)
	}
}

func TestToggleMaintenanceInvalidTarget(t *testing.T) {
	repo := newMemBedRepo()
	svc := NewService(nil, nil, repo)
	bed := seedBed(t, repo, uuid.New(), "A-3", BedAvailable)

	if _, err := svc.ToggleMaintenance(context.Background(), bed.ID, BedOccupied); err == nil {
		t.Error("expected error for OCCUPIED target")
	}
	if _, err := svc.ToggleMaintenance(context.Background(), bed.ID, "RETIRED"); err == nil {
		t.Error("expected error for unknown target")
	}
}

func TestOccupancy(t *testing.T) {
	repo := newMemBedRepo()
	svc := NewService(nil, nil, repo)
	wardID := uuid.New()

	seedBed(t, repo, wardID, "A-1", BedAvailable)
	seedBed(t, repo, wardID, "A-2", BedAvailable)
	seedBed(t, repo, wardID, "A-3", BedOccupied)
	seedBed(t, repo, wardID, "A-4", BedMaintenance)
	seedBed(t, repo, uuid.New(), "B-1", BedOccupied)

	stats, err := svc.Occupancy(context.Background(), wardID)
	if err != nil {
		t.Fatalf("Occupancy: %v", err)
	}
	if stats.Available != 2 || stats.Occupied != 1 || stats.Maintenance != 1 || stats.Blocked != 0 {
		t.Errorf("stats = %+v, want 2 available, 1 occupied, 1 maintenance", stats)
	}
	if stats.Total != 4 {
		t.Errorf("total = %d, want 4", stats.Total)
	}
}
