package pharmacy

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *Medicine) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medicine, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Medicine, error)
	Update(ctx context.Context, m *Medicine) error
	UpdateStock(ctx context.Context, id uuid.UUID, quantity int) error
	List(ctx context.Context, limit, offset int) ([]*Medicine, int, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*Medicine, int, error)
	ListLowStock(ctx context.Context, limit, offset int) ([]*Medicine, int, error)
}
