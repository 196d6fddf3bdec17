package staff

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

const memberCols = `id, employee_code, first_name, last_name, role, department,
	specialization, phone, email, active, created_at, updated_at`

func (r *repoPG) scanMember(row pgx.Row) (*Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.EmployeeCode, &m.FirstName, &m.LastName, &m.Role,
		&m.Department, &m.Specialization, &m.Phone, &m.Email, &m.Active,
		&m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

func (r *repoPG) Create(ctx context.Context, m *Member) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO staff
			(id, employee_code, first_name, last_name, role, department,
			 specialization, phone, email, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		m.ID, m.EmployeeCode, m.FirstName, m.LastName, m.Role, m.Department,
		m.Specialization, m.Phone, m.Email, m.Active)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Member, error) {
	return r.scanMember(r.conn(ctx).QueryRow(ctx,
		`SELECT `+memberCols+` FROM staff WHERE id = $1`, id))
}

func (r *repoPG) GetByEmployeeCode(ctx context.Context, code string) (*Member, error) {
	return r.scanMember(r.conn(ctx).QueryRow(ctx,
		`SELECT `+memberCols+` FROM staff WHERE employee_code = $1`, code))
}

func (r *repoPG) Update(ctx context.Context, m *Member) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE staff SET
			first_name=$2, last_name=$3, role=$4, department=$5,
			specialization=$6, phone=$7, email=$8, active=$9, updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.FirstName, m.LastName, m.Role, m.Department,
		m.Specialization, m.Phone, m.Email, m.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("staff member %s not found", m.ID)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Member, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM staff`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+memberCols+` FROM staff
		ORDER BY last_name, first_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *repoPG) ListByRole(ctx context.Context, role string, limit, offset int) ([]*Member, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM staff WHERE role = $1 AND active`, role).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+memberCols+` FROM staff WHERE role = $1 AND active
		ORDER BY last_name, first_name LIMIT $2 OFFSET $3`, role, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *repoPG) collect(rows pgx.Rows, total int) ([]*Member, int, error) {
	var items []*Member
	for rows.Next() {
		m, err := r.scanMember(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}
