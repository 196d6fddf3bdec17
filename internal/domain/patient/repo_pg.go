package patient

import (
	"context"
	"fmt"

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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if q := db.QuerierFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const patientCols = `id, mrn, first_name, last_name, gender, dob, phone, address,
	blood_group, allergies, created_at, updated_at`

func (r *repoPG) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.MRN, &p.FirstName, &p.LastName, &p.Gender, &p.DOB,
		&p.Phone, &p.Address, &p.BloodGroup, &p.Allergies, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient
			(id, mrn, first_name, last_name, gender, dob, phone, address, blood_group, allergies)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.MRN, p.FirstName, p.LastName, p.Gender, p.DOB, p.Phone,
		p.Address, p.BloodGroup, p.Allergies)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return r.scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *repoPG) GetByMRN(ctx context.Context, mrn string) (*Patient, error) {
	return r.scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE mrn = $1`, mrn))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET
			first_name=$2, last_name=$3, gender=$4, dob=$5, phone=$6,
			address=$7, blood_group=$8, allergies=$9, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.Gender, p.DOB, p.Phone,
		p.Address, p.BloodGroup, p.Allergies)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("patient %s not found", p.ID)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+patientCols+` FROM patient
		ORDER BY last_name, first_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *repoPG) Search(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	pattern := "%" + query + "%"
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM patient
		WHERE mrn ILIKE $1 OR first_name ILIKE $1 OR last_name ILIKE $1`, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+patientCols+` FROM patient
		WHERE mrn ILIKE $1 OR first_name ILIKE $1 OR last_name ILIKE $1
		ORDER BY last_name, first_name LIMIT $2 OFFSET $3`, pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *repoPG) NextMRNSequence(ctx context.Context) (int64, error) {
	var n int64
	err := r.conn(ctx).QueryRow(ctx, `SELECT nextval('patient_mrn_seq')`).Scan(&n)
	return n, err
}

func (r *repoPG) collect(rows pgx.Rows, total int) ([]*Patient, int, error) {
	var items []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
