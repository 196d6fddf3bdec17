package pharmacy

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

const medicineCols = `id, name, generic_name, category, unit_price_cents,
	stock_quantity, reorder_level, expires_at, created_at, updated_at`

func (r *repoPG) scanMedicine(row pgx.Row) (*Medicine, error) {
	var m Medicine
	err := row.Scan(&m.ID, &m.Name, &m.GenericName, &m.Category, &m.UnitPriceCents,
		&m.StockQuantity, &m.ReorderLevel, &m.ExpiresAt, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

func (r *repoPG) Create(ctx context.Context, m *Medicine) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medicine
			(id, name, generic_name, category, unit_price_cents,
			 stock_quantity, reorder_level, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		m.ID, m.Name, m.GenericName, m.Category, m.UnitPriceCents,
		m.StockQuantity, m.ReorderLevel, m.ExpiresAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	return r.scanMedicine(r.conn(ctx).QueryRow(ctx,
		`SELECT `+medicineCols+` FROM medicine WHERE id = $1`, id))
}

func (r *repoPG) GetForUpdate(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	return r.scanMedicine(r.conn(ctx).QueryRow(ctx,
		`SELECT `+medicineCols+` FROM medicine WHERE id = $1 FOR UPDATE`, id))
}

func (r *repoPG) Update(ctx context.Context, m *Medicine) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medicine SET
			name=$2, generic_name=$3, category=$4, unit_price_cents=$5,
			reorder_level=$6, expires_at=$7, updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.Name, m.GenericName, m.Category, m.UnitPriceCents,
		m.ReorderLevel, m.ExpiresAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("medicine %s not found", m.ID)
	}
	return nil
}

func (r *repoPG) UpdateStock(ctx context.Context, id uuid.UUID, quantity int) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE medicine SET stock_quantity=$2, updated_at=NOW() WHERE id = $1`, id, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("medicine %s not found", id)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Medicine, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medicine`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+medicineCols+` FROM medicine ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *repoPG) Search(ctx context.Context, query string, limit, offset int) ([]*Medicine, int, error) {
	pattern := "%" + query + "%"
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM medicine
		WHERE name ILIKE $1 OR generic_name ILIKE $1`, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+medicineCols+` FROM medicine
		WHERE name ILIKE $1 OR generic_name ILIKE $1
		ORDER BY name LIMIT $2 OFFSET $3`, pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *repoPG) ListLowStock(ctx context.Context, limit, offset int) ([]*Medicine, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM medicine WHERE stock_quantity <= reorder_level`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+medicineCols+` FROM medicine
		WHERE stock_quantity <= reorder_level
		ORDER BY stock_quantity, name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *repoPG) collect(rows pgx.Rows, total int) ([]*Medicine, int, error) {
	var items []*Medicine
	for rows.Next() {
		m, err := r.scanMedicine(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}
