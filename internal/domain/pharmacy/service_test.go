package pharmacy

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

type memRepo struct {
	medicines map[uuid.UUID]*Medicine
}

func newMemRepo() *memRepo {
	return &memRepo{medicines: make(map[uuid.UUID]*Medicine)}
}

func (r *memRepo) Create(_ context.Context, m *Medicine) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	cp := *m
	r.medicines[m.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id uuid.UUID) (*Medicine, error) {
	m, ok := r.medicines[id]
	if !ok {
		return nil, fmt.Errorf("medicine %s not found", id)
	}
	cp := *m
	return &cp, nil
}

func (r *memRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	return r.GetByID(ctx, id)
}

func (r *memRepo) Update(_ context.Context, m *Medicine) error {
	stored, ok := r.medicines[m.ID]
	if !ok {
		return fmt.Errorf("medicine %s not found", m.ID)
	}
	quantity := stored.StockQuantity
	cp := *m
	cp.StockQuantity = quantity
	r.medicines[m.ID] = &cp
	return nil
}

func (r *memRepo) UpdateStock(_ context.Context, id uuid.UUID, quantity int) error {
	m, ok := r.medicines[id]
	if !ok {
		return fmt.Errorf("medicine %s not found", id)
	}
	m.StockQuantity = quantity
	return nil
}

func (r *memRepo) List(context.Context, int, int) ([]*Medicine, int, error) { return nil, 0, nil }

func (r *memRepo) Search(context.Context, string, int, int) ([]*Medicine, int, error) {
	return nil, 0, nil
}

func (r *memRepo) ListLowStock(_ context.Context, limit, offset int) ([]*Medicine, int, error) {
	var items []*Medicine
	for _, m := range r.medicines {
		if m.LowStock() {
			cp := *m
			items = append(items, &cp)
		}
	}
	return items, len(items), nil
}

func seedMedicine(t *testing.T, repo *memRepo, stock, reorder int) *Medicine {
	t.Helper()
	m := &Medicine{Name: "Amoxicillin 500mg", UnitPriceCents: 1200, StockQuantity: stock, ReorderLevel: reorder}
	if err := repo.Create(context.Background(), m); err != nil {
		t.Fatalf("seed medicine: %v", err)
	}
	return m
}

func TestAdjustStockRestock(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil)
	m := seedMedicine(t, repo, 10, 5)

	got, err := svc.AdjustStock(context.Background(), m.ID, AdjustRestock, 25)
	if err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if got.StockQuantity != 35 {
		t.Errorf("stock = %d, want 35", got.StockQuantity)
	}
}

func TestAdjustStockDispense(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil)
	m := seedMedicine(t, repo, 10, 5)

	got, err := svc.AdjustStock(context.Background(), m.ID, AdjustDispense, 4)
	if err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if got.StockQuantity != 6 {
		t.Errorf("stock = %d, want 6", got.StockQuantity)
	}
}

func TestAdjustStockInsufficient(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil)
	m := seedMedicine(t, repo, 3, 5)

	_, err := svc.AdjustStock(context.Background(), m.ID, AdjustDispense, 4)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	stored, _ := repo.GetByID(context.Background(), m.ID)
	if stored.StockQuantity != 3 {
		t.Errorf("stock = %d, want unchanged 3", stored.StockQuantity)
	}
}

func TestAdjustStockValidation(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil)
	m := seedMedicine(t, repo, 10, 5)

	if _, err := svc.AdjustStock(context.Background(), m.ID, AdjustRestock, 0); err == nil {
		t.Error("expected error for zero quantity")
	}
	if _, err := svc.AdjustStock(context.Background(), m.ID, "TRANSFER", 5); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestLowStock(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil)
	low := seedMedicine(t, repo, 2, 5)
	seedMedicine(t, repo, 50, 5)

	items, total, err := svc.ListLowStock(context.Background(), 20, 0)
	if err != nil {
		t.Fatalf("ListLowStock: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != low.ID {
		t.Errorf("low stock = %d items, want only %s", len(items), low.Name)
	}
}
