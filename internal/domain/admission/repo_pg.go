package admission

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

// =========== Request Repository ===========

type requestRepoPG struct{ pool *pgxpool.Pool }

func NewRequestRepoPG(pool *pgxpool.Pool) RequestRepository { return &requestRepoPG{pool: pool} }

func (r *requestRepoPG) conn(ctx context.Context) queryable {
	if q := db.QuerierFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const requestCols = `id, patient_id, doctor_id, ward_kind, bed_type_name, urgency,
	diagnosis, chief_complaint, estimated_days, status, requested_at, updated_at`

func (r *requestRepoPG) scanRequest(row pgx.Row) (*Request, error) {
	var req Request
	err := row.Scan(&req.ID, &req.PatientID, &req.DoctorID, &req.WardKind, &req.BedTypeName,
		&req.Urgency, &req.Diagnosis, &req.ChiefComplaint, &req.EstimatedDays,
		&req.Status, &req.RequestedAt, &req.UpdatedAt)
	return &req, err
}

func (r *requestRepoPG) Create(ctx context.Context, req *Request) error {
	req.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO admission_request
			(id, patient_id, doctor_id, ward_kind, bed_type_name, urgency,
			 diagnosis, chief_complaint, estimated_days, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		req.ID, req.PatientID, req.DoctorID, req.WardKind, req.BedTypeName, req.Urgency,
		req.Diagnosis, req.ChiefComplaint, req.EstimatedDays, req.Status)
	return err
}

func (r *requestRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Request, error) {
	return r.scanRequest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+requestCols+` FROM admission_request WHERE id = $1`, id))
}

func (r *requestRepoPG) GetForUpdate(ctx context.Context, id uuid.UUID) (*Request, error) {
	return r.scanRequest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+requestCols+` FROM admission_request WHERE id = $1 FOR UPDATE`, id))
}

func (r *requestRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE admission_request SET status=$2, updated_at=NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("admission request %s not found", id)
	}
	return nil
}

func (r *requestRepoPG) List(ctx context.Context, limit, offset int) ([]*Request, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM admission_request`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+requestCols+` FROM admission_request
		ORDER BY requested_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *requestRepoPG) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Request, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM admission_request WHERE status = $1`, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+requestCols+` FROM admission_request WHERE status = $1
		ORDER BY requested_at DESC LIMIT $2 OFFSET $3`, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *requestRepoPG) collect(rows pgx.Rows, total int) ([]*Request, int, error) {
	var items []*Request
	for rows.Next() {
		req, err := r.scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, req)
	}
	return items, total, rows.Err()
}

// =========== Admission Repository ===========

type admissionRepoPG struct{ pool *pgxpool.Pool }

func NewAdmissionRepoPG(pool *pgxpool.Pool) AdmissionRepository { return &admissionRepoPG{pool: pool} }

func (r *admissionRepoPG) conn(ctx context.Context) queryable {
	if q := db.QuerierFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const admissionCols = `id, request_id, patient_id, bed_id, doctor_id, admitted_by_id,
	diagnosis, chief_complaint, estimated_days, status, admitted_at, discharged_at`

func (r *admissionRepoPG) scanAdmission(row pgx.Row) (*Admission, error) {
	var a Admission
	err := row.Scan(&a.ID, &a.RequestID, &a.PatientID, &a.BedID, &a.DoctorID, &a.AdmittedByID,
		&a.Diagnosis, &a.ChiefComplaint, &a.EstimatedDays, &a.Status, &a.AdmittedAt, &a.DischargedAt)
	return &a, err
}

func (r *admissionRepoPG) Create(ctx context.Context, a *Admission) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO admission
			(id, request_id, patient_id, bed_id, doctor_id, admitted_by_id,
			 diagnosis, chief_complaint, estimated_days, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		a.ID, a.RequestID, a.PatientID, a.BedID, a.DoctorID, a.AdmittedByID,
		a.Diagnosis, a.ChiefComplaint, a.EstimatedDays, a.Status)
	return err
}

func (r *admissionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Admission, error) {
	return r.scanAdmission(r.conn(ctx).QueryRow(ctx,
		`SELECT `+admissionCols+` FROM admission WHERE id = $1`, id))
}

func (r *admissionRepoPG) GetForUpdate(ctx context.Context, id uuid.UUID) (*Admission, error) {
	return r.scanAdmission(r.conn(ctx).QueryRow(ctx,
		`SELECT `+admissionCols+` FROM admission WHERE id = $1 FOR UPDATE`, id))
}

func (r *admissionRepoPG) Discharge(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE admission SET status=$2, discharged_at=NOW() WHERE id = $1`,
		id, AdmissionDischarged)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("admission %s not found", id)
	}
	return nil
}

func (r *admissionRepoPG) ListActive(ctx context.Context, limit, offset int) ([]*Admission, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM admission WHERE status = $1`, AdmissionActive).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+admissionCols+` FROM admission WHERE status = $1
		ORDER BY admitted_at DESC LIMIT $2 OFFSET $3`, AdmissionActive, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *admissionRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Admission, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM admission WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+admissionCols+` FROM admission WHERE patient_id = $1
		ORDER BY admitted_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *admissionRepoPG) collect(rows pgx.Rows, total int) ([]*Admission, int, error) {
	var items []*Admission
	for rows.Next() {
		a, err := r.scanAdmission(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}
