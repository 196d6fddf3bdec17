package ward

import (
	"context"

	"github.com/google/uuid"
)

type WardRepository interface {
	Create(ctx context.Context, w *Ward) error
	GetByID(ctx context.Context, id uuid.UUID) (*Ward, error)
	Update(ctx context.Context, w *Ward) error
	List(ctx context.Context, limit, offset int) ([]*Ward, int, error)
}

type BedTypeRepository interface {
	Create(ctx context.Context, bt *BedType) error
	GetByID(ctx context.Context, id uuid.UUID) (*BedType, error)
	Update(ctx context.Context, bt *BedType) error
	List(ctx context.Context, limit, offset int) ([]*BedType, int, error)
}

type BedRepository interface {
	Create(ctx context.Context, b *Bed) error
	GetByID(ctx context.Context, id uuid.UUID) (*Bed, error)
	// GetForUpdate locks the bed row for the remainder of the enclosing
	// transaction so concurrent allocations serialize on it.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Bed, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) error
	ListByWard(ctx context.Context, wardID uuid.UUID, limit, offset int) ([]*Bed, int, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Bed, int, error)
	CountByWard(ctx context.Context, wardID uuid.UUID) (map[string]int, error)
}
