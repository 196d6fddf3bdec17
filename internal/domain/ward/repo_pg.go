package ward

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

// =========== Ward Repository ===========

type wardRepoPG struct{ pool *pgxpool.Pool }

func NewWardRepoPG(pool *pgxpool.Pool) WardRepository { return &wardRepoPG{pool: pool} }

func (r *wardRepoPG) conn(ctx context.Context) queryable {
	if q := db.QuerierFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const wardCols = `id, name, kind, floor, active, created_at, updated_at`

func (r *wardRepoPG) scanWard(row pgx.Row) (*Ward, error) {
	var w Ward
	err := row.Scan(&w.ID, &w.Name, &w.Kind, &w.Floor, &w.Active, &w.CreatedAt, &w.UpdatedAt)
	return &w, err
}

func (r *wardRepoPG) Create(ctx context.Context, w *Ward) error {
	w.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO ward (id, name, kind, floor, active)
		VALUES ($1,$2,$3,$4,$5)`,
		w.ID, w.Name, w.Kind, w.Floor, w.Active)
	return err
}

func (r *wardRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Ward, error) {
	return r.scanWard(r.conn(ctx).QueryRow(ctx, `SELECT `+wardCols+` FROM ward WHERE id = $1`, id))
}

func (r *wardRepoPG) Update(ctx context.Context, w *Ward) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE ward SET name=$2, kind=$3, floor=$4, active=$5, updated_at=NOW()
		WHERE id = $1`,
		w.ID, w.Name, w.Kind, w.Floor, w.Active)
	return err
}

func (r *wardRepoPG) List(ctx context.Context, limit, offset int) ([]*Ward, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM ward`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+wardCols+` FROM ward ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Ward
	for rows.Next() {
		w, err := r.scanWard(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, w)
	}
	return items, total, nil
}

// =========== BedType Repository ===========

type bedTypeRepoPG struct{ pool *pgxpool.Pool }

func NewBedTypeRepoPG(pool *pgxpool.Pool) BedTypeRepository { return &bedTypeRepoPG{pool: pool} }

func (r *bedTypeRepoPG) conn(ctx context.Context) queryable {
	if q := db.QuerierFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const bedTypeCols = `id, name, daily_rate_cents, max_occupancy, amenities, created_at, updated_at`

func (r *bedTypeRepoPG) scanBedType(row pgx.Row) (*BedType, error) {
	var bt BedType
	err := row.Scan(&bt.ID, &bt.Name, &bt.DailyRateCents, &bt.MaxOccupancy,
		&bt.Amenities.List, &bt.CreatedAt, &bt.UpdatedAt)
	return &bt, err
}

func (r *bedTypeRepoPG) Create(ctx context.Context, bt *BedType) error {
	bt.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO bed_type (id, name, daily_rate_cents, max_occupancy, amenities)
		VALUES ($1,$2,$3,$4,$5)`,
		bt.ID, bt.Name, bt.DailyRateCents, bt.MaxOccupancy, bt.Amenities.List)
	return err
}

func (r *bedTypeRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*BedType, error) {
	return r.scanBedType(r.conn(ctx).QueryRow(ctx, `SELECT `+bedTypeCols+` FROM bed_type WHERE id = $1`, id))
}

func (r *bedTypeRepoPG) Update(ctx context.Context, bt *BedType) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE bed_type SET name=$2, daily_rate_cents=$3, max_occupancy=$4, amenities=$5, updated_at=NOW()
		WHERE id = $1`,
		bt.ID, bt.Name, bt.DailyRateCents, bt.MaxOccupancy, bt.Amenities.List)
	return err
}

func (r *bedTypeRepoPG) List(ctx context.Context, limit, offset int) ([]*BedType, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM bed_type`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+bedTypeCols+` FROM bed_type ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*BedType
	for rows.Next() {
		bt, err := r.scanBedType(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, bt)
	}
	return items, total, nil
}

// =========== Bed Repository ===========

type bedRepoPG struct{ pool *pgxpool.Pool }

func NewBedRepoPG(pool *pgxpool.Pool) BedRepository { return &bedRepoPG{pool: pool} }

func (r *bedRepoPG) conn(ctx context.Context) queryable {
	if q := db.QuerierFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const bedCols = `id, ward_id, bed_type_id, number, status, notes, created_at, updated_at`

func (r *bedRepoPG) scanBed(row pgx.Row) (*Bed, error) {
	var b Bed
	err := row.Scan(&b.ID, &b.WardID, &b.BedTypeID, &b.Number, &b.Status, &b.Notes,
		&b.CreatedAt, &b.UpdatedAt)
	return &b, err
}

func (r *bedRepoPG) Create(ctx context.Context, b *Bed) error {
	b.ID = uuid.New()
	if b.Status == "" {
		b.Status = BedAvailable
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO bed (id, ward_id, bed_type_id, number, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		b.ID, b.WardID, b.BedTypeID, b.Number, b.Status, b.Notes)
	return err
}

func (r *bedRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Bed, error) {
	return r.scanBed(r.conn(ctx).QueryRow(ctx, `SELECT `+bedCols+` FROM bed WHERE id = $1`, id))
}

func (r *bedRepoPG) GetForUpdate(ctx context.Context, id uuid.UUID) (*Bed, error) {
	return r.scanBed(r.conn(ctx).QueryRow(ctx, `SELECT `+bedCols+` FROM bed WHERE id = $1 FOR UPDATE`, id))
}

func (r *bedRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE bed SET status=$2, updated_at=NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bed %s not found", id)
	}
	return nil
}

func (r *bedRepoPG) UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE bed SET notes=$2, updated_at=NOW() WHERE id = $1`, id, notes)
	return err
}

func (r *bedRepoPG) ListByWard(ctx context.Context, wardID uuid.UUID, limit, offset int) ([]*Bed, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM bed WHERE ward_id = $1`, wardID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+bedCols+` FROM bed WHERE ward_id = $1 ORDER BY number LIMIT $2 OFFSET $3`, wardID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Bed
	for rows.Next() {
		b, err := r.scanBed(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, nil
}

func (r *bedRepoPG) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Bed, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM bed WHERE status = $1`, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+bedCols+` FROM bed WHERE status = $1 ORDER BY number LIMIT $2 OFFSET $3`, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Bed
	for rows.Next() {
		b, err := r.scanBed(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, nil
}

func (r *bedRepoPG) CountByWard(ctx context.Context, wardID uuid.UUID) (map[string]int, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT status, COUNT(*) FROM bed WHERE ward_id = $1 GROUP BY status`, wardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
