package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByMRN(ctx context.Context, mrn string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	// Search matches the query against MRN, first name and last name.
	Search(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error)
	NextMRNSequence(ctx context.Context) (int64, error)
}
