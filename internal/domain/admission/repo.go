package admission

import (
	"context"

	"github.com/google/uuid"
)

type RequestRepository interface {
	Create(ctx context.Context, r *Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)
	// GetForUpdate locks the request row for the enclosing transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Request, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	List(ctx context.Context, limit, offset int) ([]*Request, int, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Request, int, error)
}

type AdmissionRepository interface {
	Create(ctx context.Context, a *Admission) error
	GetByID(ctx context.Context, id uuid.UUID) (*Admission, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Admission, error)
	Discharge(ctx context.Context, id uuid.UUID) error
	ListActive(ctx context.Context, limit, offset int) ([]*Admission, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Admission, int, error)
}
