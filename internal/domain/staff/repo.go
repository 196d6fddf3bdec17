package staff

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*Member, error)
	GetByEmployeeCode(ctx context.Context, code string) (*Member, error)
	Update(ctx context.Context, m *Member) error
	List(ctx context.Context, limit, offset int) ([]*Member, int, error)
	ListByRole(ctx context.Context, role string, limit, offset int) ([]*Member, int, error)
}
