package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type transactionRepoPG struct{ pool *pgxpool.Pool }

func NewTransactionRepoPG(pool *pgxpool.Pool) TransactionRepository {
	return &transactionRepoPG{pool: pool}
}

func (r *transactionRepoPG) conn(ctx context.Context) queryable {
	if q := db.QuerierFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const txnCols = `id, admission_id, request_id, patient_id, type, amount_cents,
	description, reference, tax_rate_bps, created_at`

func (r *transactionRepoPG) scanTxn(row pgx.Row) (*Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.AdmissionID, &t.RequestID, &t.PatientID, &t.Type,
		&t.AmountCents, &t.Description, &t.Reference, &t.TaxRateBps, &t.CreatedAt)
	return &t, err
}

func (r *transactionRepoPG) Append(ctx context.Context, t *Transaction) error {
	t.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO ledger_transaction
			(id, admission_id, request_id, patient_id, type, amount_cents,
			 description, reference, tax_rate_bps)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		t.ID, t.AdmissionID, t.RequestID, t.PatientID, t.Type, t.AmountCents,
		t.Description, t.Reference, t.TaxRateBps)
	return err
}

func (r *transactionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return r.scanTxn(r.conn(ctx).QueryRow(ctx,
		`SELECT `+txnCols+` FROM ledger_transaction WHERE id = $1`, id))
}

func (r *transactionRepoPG) ListForAdmission(ctx context.Context, admissionID uuid.UUID) ([]*Transaction, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+txnCols+` FROM ledger_transaction
		WHERE admission_id = $1
		   OR request_id = (SELECT request_id FROM admission WHERE id = $1)
		ORDER BY created_at, id`, admissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *transactionRepoPG) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*Transaction, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+txnCols+` FROM ledger_transaction
		WHERE request_id = $1 ORDER BY created_at, id`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *transactionRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Transaction, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM ledger_transaction WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+txnCols+` FROM ledger_transaction WHERE patient_id = $1
		ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := r.collect(rows)
	return items, total, err
}

func (r *transactionRepoPG) collect(rows pgx.Rows) ([]*Transaction, error) {
	var items []*Transaction
	for rows.Next() {
		t, err := r.scanTxn(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}
