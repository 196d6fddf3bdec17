package pharmacy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInsufficientStock is returned when a dispense would take stock below
// zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// TxRunner executes fn inside a database transaction.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

func passthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type Service struct {
	repo  Repository
	runTx TxRunner
}

func NewService(repo Repository, runTx TxRunner) *Service {
	if runTx == nil {
		runTx = passthroughTx
	}
	return &Service{repo: repo, runTx: runTx}
}

func (s *Service) Create(ctx context.Context, m *Medicine) error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if m.UnitPriceCents < 0 {
		return fmt.Errorf("unit price must not be negative")
	}
	if m.StockQuantity < 0 {
		return fmt.Errorf("stock quantity must not be negative")
	}
	if m.ReorderLevel < 0 {
		m.ReorderLevel = 0
	}
	return s.repo.Create(ctx, m)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, m *Medicine) error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if m.UnitPriceCents < 0 {
		return fmt.Errorf("unit price must not be negative")
	}
	return s.repo.Update(ctx, m)
}

func (s *Service) List(ctx context.Context, query string, limit, offset int) ([]*Medicine, int, error) {
	if query == "" {
		return s.repo.List(ctx, limit, offset)
	}
	return s.repo.Search(ctx, query, limit, offset)
}

func (s *Service) ListLowStock(ctx context.Context, limit, offset int) ([]*Medicine, int, error) {
	return s.repo.ListLowStock(ctx, limit, offset)
}

// AdjustStock applies a restock or dispense of the given quantity. The row
// is locked so concurrent dispenses cannot take stock below zero between
// the read and the write.
func (s *Service) AdjustStock(ctx context.Context, id uuid.UUID, kind string, quantity int) (*Medicine, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	var med *Medicine
	err := s.runTx(ctx, func(ctx context.Context) error {
		var err error
		med, err = s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("get medicine: %w", err)
		}

		switch kind {
		case AdjustRestock:
			med.StockQuantity += quantity
		case AdjustDispense:
			if med.StockQuantity < quantity {
				return fmt.Errorf("medicine %s has %d units: %w", med.Name, med.StockQuantity, ErrInsufficientStock)
			}
			med.StockQuantity -= quantity
		default:
			return fmt.Errorf("invalid adjustment kind: %s", kind)
		}
		return s.repo.UpdateStock(ctx, id, med.StockQuantity)
	})
	if err != nil {
		return nil, err
	}
	return med, nil
}
