package settings

import (
	"context"
	"errors"
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

// =========== Schedule Repository ===========

type scheduleRepoPG struct{ pool *pgxpool.Pool }

func NewScheduleRepoPG(pool *pgxpool.Pool) ScheduleRepository { return &scheduleRepoPG{pool: pool} }

func (r *scheduleRepoPG) conn(ctx context.Context) queryable {
	if q := db.QuerierFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

// Hours live in a single-row table keyed by a constant.

func (r *scheduleRepoPG) GetHours(ctx context.Context) (*Hours, error) {
	var h Hours
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT business_start, business_end,
		       COALESCE(lunch_start, ''), COALESCE(lunch_end, '')
		FROM facility_hours WHERE singleton = TRUE`).
		Scan(&h.BusinessStart, &h.BusinessEnd, &h.LunchStart, &h.LunchEnd)
	if errors.Is(err, pgx.ErrNoRows) {
		return &Hours{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *scheduleRepoPG) SaveHours(ctx context.Context, h *Hours) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO facility_hours (singleton, business_start, business_end, lunch_start, lunch_end)
		VALUES (TRUE, $1, $2, NULLIF($3,''), NULLIF($4,''))
		ON CONFLICT (singleton) DO UPDATE SET
			business_start = EXCLUDED.business_start,
			business_end   = EXCLUDED.business_end,
			lunch_start    = EXCLUDED.lunch_start,
			lunch_end      = EXCLUDED.lunch_end,
			updated_at     = NOW()`,
		h.BusinessStart, h.BusinessEnd, h.LunchStart, h.LunchEnd)
	return err
}

const sessionCols = `id, name, short_code, start_time, end_time, max_tokens, active, created_at, updated_at`

func (r *scheduleRepoPG) ListSessions(ctx context.Context) ([]*SessionTemplate, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+sessionCols+` FROM session_template ORDER BY start_time, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*SessionTemplate
	for rows.Next() {
		var s SessionTemplate
		if err := rows.Scan(&s.ID, &s.Name, &s.ShortCode, &s.Start, &s.End,
			&s.MaxTokens, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, &s)
	}
	return items, rows.Err()
}

func (r *scheduleRepoPG) ReplaceSessions(ctx context.Context, sessions []*SessionTemplate) error {
	if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM session_template`); err != nil {
		return err
	}
	for _, s := range sessions {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		if _, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO session_template (id, name, short_code, start_time, end_time, max_tokens, active)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			s.ID, s.Name, s.ShortCode, s.Start, s.End, s.MaxTokens, s.Active); err != nil {
			return err
		}
	}
	return nil
}

// =========== ServiceItem Repository ===========

type serviceItemRepoPG struct{ pool *pgxpool.Pool }

func NewServiceItemRepoPG(pool *pgxpool.Pool) ServiceItemRepository {
	return &serviceItemRepoPG{pool: pool}
}

func (r *serviceItemRepoPG) conn(ctx context.Context) queryable {
	if q := db.QuerierFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const itemCols = `id, name, category, base_price_cents, tax_rate_bps,
	surgeon_fee_cents, assistant_fee_cents, anesthesia_fee_cents, ot_charge_cents,
	active, created_at, updated_at`

func (r *serviceItemRepoPG) scanItem(row pgx.Row) (*ServiceItem, error) {
	var it ServiceItem
	err := row.Scan(&it.ID, &it.Name, &it.Category, &it.BasePriceCents, &it.TaxRateBps,
		&it.BillingDefaults.SurgeonFeeCents, &it.BillingDefaults.AssistantFeeCents,
		&it.BillingDefaults.AnesthesiaFeeCents, &it.BillingDefaults.OtChargeCents,
		&it.Active, &it.CreatedAt, &it.UpdatedAt)
	return &it, err
}

func (r *serviceItemRepoPG) Create(ctx context.Context, it *ServiceItem) error {
	it.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO service_item
			(id, name, category, base_price_cents, tax_rate_bps,
			 surgeon_fee_cents, assistant_fee_cents, anesthesia_fee_cents, ot_charge_cents, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		it.ID, it.Name, it.Category, it.BasePriceCents, it.TaxRateBps,
		it.BillingDefaults.SurgeonFeeCents, it.BillingDefaults.AssistantFeeCents,
		it.BillingDefaults.AnesthesiaFeeCents, it.BillingDefaults.OtChargeCents, it.Active)
	return err
}

func (r *serviceItemRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ServiceItem, error) {
	return r.scanItem(r.conn(ctx).QueryRow(ctx,
		`SELECT `+itemCols+` FROM service_item WHERE id = $1`, id))
}

func (r *serviceItemRepoPG) Update(ctx context.Context, it *ServiceItem) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE service_item SET
			name=$2, category=$3, base_price_cents=$4, tax_rate_bps=$5,
			surgeon_fee_cents=$6, assistant_fee_cents=$7, anesthesia_fee_cents=$8,
			ot_charge_cents=$9, active=$10, updated_at=NOW()
		WHERE id = $1`,
		it.ID, it.Name, it.Category, it.BasePriceCents, it.TaxRateBps,
		it.BillingDefaults.SurgeonFeeCents, it.BillingDefaults.AssistantFeeCents,
		it.BillingDefaults.AnesthesiaFeeCents, it.BillingDefaults.OtChargeCents, it.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("service item %s not found", it.ID)
	}
	return nil
}

func (r *serviceItemRepoPG) List(ctx context.Context, limit, offset int) ([]*ServiceItem, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM service_item`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+itemCols+` FROM service_item ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *serviceItemRepoPG) ListByCategory(ctx context.Context, category string, limit, offset int) ([]*ServiceItem, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM service_item WHERE category = $1`, category).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+itemCols+` FROM service_item WHERE category = $1
		ORDER BY name LIMIT $2 OFFSET $3`, category, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *serviceItemRepoPG) collect(rows pgx.Rows, total int) ([]*ServiceItem, int, error) {
	var items []*ServiceItem
	for rows.Next() {
		it, err := r.scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, it)
	}
	return items, total, rows.Err()
}
