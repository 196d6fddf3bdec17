package billing

import (
	"context"

	"github.com/google/uuid"
)

// TransactionRepository is the append-only ledger store. There is no update
// or delete: corrections are posted as new transactions.
type TransactionRepository interface {
	Append(ctx context.Context, t *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	// ListForAdmission returns every transaction linked to the admission,
	// including deposits recorded against its originating request.
	ListForAdmission(ctx context.Context, admissionID uuid.UUID) ([]*Transaction, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*Transaction, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Transaction, int, error)
}
