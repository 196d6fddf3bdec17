package admission

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/ward"
)

var (
	// ErrInvalidTransition is returned when a status change does not follow
	// the admission-request state machine.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrBedUnavailable is returned when allocation targets a bed that is
	// not AVAILABLE at commit time.
	ErrBedUnavailable = errors.New("bed is not available")

	// ErrInactiveAdmission is returned for operations that require an
	// ACTIVE admission.
	ErrInactiveAdmission = errors.New("admission is not active")
)

// TxRunner executes fn inside a database transaction. Repositories resolve
// the transaction from the context, so every repository call made by fn
// commits or rolls back together.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// PassthroughTx runs fn without a transaction. Used in tests.
func PassthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type Service struct {
	requests   RequestRepository
	admissions AdmissionRepository
	beds       ward.BedRepository
	runTx      TxRunner
}

func NewService(requests RequestRepository, admissions AdmissionRepository, beds ward.BedRepository, runTx TxRunner) *Service {
	if runTx == nil {
		runTx = PassthroughTx
	}
	return &Service{requests: requests, admissions: admissions, beds: beds, runTx: runTx}
}

// -- Requests --

func (s *Service) CreateRequest(ctx context.Context, req *Request) error {
	if req.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if req.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if req.Diagnosis == "" {
		return fmt.Errorf("diagnosis is required")
	}
	if req.Urgency == "" {
		req.Urgency = UrgencyNormal
	}
	if !validUrgency(req.Urgency) {
		return fmt.Errorf("invalid urgency: %s", req.Urgency)
	}
	if req.EstimatedDays != nil && *req.EstimatedDays <= 0 {
		return fmt.Errorf("estimated_days must be positive")
	}
	req.Status = StatusPending
	return s.requests.Create(ctx, req)
}

func (s *Service) GetRequest(ctx context.Context, id uuid.UUID) (*Request, error) {
	return s.requests.GetByID(ctx, id)
}

func (s *Service) ListRequests(ctx context.Context, status string, limit, offset int) ([]*Request, int, error) {
	if status == "" {
		return s.requests.List(ctx, limit, offset)
	}
	return s.requests.ListByStatus(ctx, status, limit, offset)
}

// SetStatus moves a request along the state machine. CONVERTED is not a
// legal target here: conversion happens only inside AllocateBed, where the
// bed, the admission and the request change in one transaction.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, target string) (*Request, error) {
	if target == StatusConverted {
		return nil, fmt.Errorf("%s is set by bed allocation: %w", StatusConverted, ErrInvalidTransition)
	}

	var req *Request
	err := s.runTx(ctx, func(ctx context.Context) error {
		var err error
		req, err = s.requests.GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("get request: %w", err)
		}
		if !CanTransition(req.Status, target) {
			return fmt.Errorf("%s -> %s: %w", req.Status, target, ErrInvalidTransition)
		}
		if err := s.requests.UpdateStatus(ctx, id, target); err != nil {
			return err
		}
		req.Status = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// AllocateBed converts a DEPOSIT_PAID request into an active admission. The
// request row and the bed row are locked, the bed is re-checked under the
// lock, and the admission insert, the bed status flip and the request
// conversion commit together or not at all. Two concurrent allocations of
// the same bed serialize on the row lock; the loser sees OCCUPIED and gets
// ErrBedUnavailable.
func (s *Service) AllocateBed(ctx context.Context, requestID, bedID, admittedBy uuid.UUID) (*AllocationResult, error) {
	var res *AllocationResult
	err := s.runTx(ctx, func(ctx context.Context) error {
		req, err := s.requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return fmt.Errorf("get request: %w", err)
		}
		if !CanTransition(req.Status, StatusConverted) {
			return fmt.Errorf("%s -> %s: %w", req.Status, StatusConverted, ErrInvalidTransition)
		}

		bed, err := s.beds.GetForUpdate(ctx, bedID)
		if err != nil {
			return fmt.Errorf("get bed: %w", err)
		}
		if bed.Status != ward.BedAvailable {
			return fmt.Errorf("bed %s is %s: %w", bed.Number, bed.Status, ErrBedUnavailable)
		}

		adm := &Admission{
			RequestID:      &req.ID,
			PatientID:      req.PatientID,
			BedID:          bedID,
			DoctorID:       req.DoctorID,
			AdmittedByID:   admittedBy,
			Diagnosis:      req.Diagnosis,
			ChiefComplaint: req.ChiefComplaint,
			EstimatedDays:  req.EstimatedDays,
			Status:         AdmissionActive,
		}
		if err := s.admissions.Create(ctx, adm); err != nil {
			return fmt.Errorf("create admission: %w", err)
		}
		if err := s.beds.UpdateStatus(ctx, bedID, ward.BedOccupied); err != nil {
			return fmt.Errorf("occupy bed: %w", err)
		}
		if err := s.requests.UpdateStatus(ctx, requestID, StatusConverted); err != nil {
			return fmt.Errorf("convert request: %w", err)
		}
		req.Status = StatusConverted

		res = &AllocationResult{
			Admission: adm,
			BedID:     bedID,
			Request:   req,
			Changed: []Change{
				{Entity: "admission_request", ID: req.ID},
				{Entity: "bed", ID: bedID},
				{Entity: "admission", ID: adm.ID},
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// -- Admissions --

func (s *Service) GetAdmission(ctx context.Context, id uuid.UUID) (*Admission, error) {
	return s.admissions.GetByID(ctx, id)
}

func (s *Service) ListActive(ctx context.Context, limit, offset int) ([]*Admission, int, error) {
	return s.admissions.ListActive(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Admission, int, error) {
	return s.admissions.ListByPatient(ctx, patientID, limit, offset)
}

// Discharge closes an active admission and frees its bed in one transaction.
func (s *Service) Discharge(ctx context.Context, id uuid.UUID) (*Admission, []Change, error) {
	var adm *Admission
	var changed []Change
	err := s.runTx(ctx, func(ctx context.Context) error {
		var err error
		adm, err = s.admissions.GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("get admission: %w", err)
		}
		if adm.Status != AdmissionActive {
			return fmt.Errorf("admission %s: %w", adm.ID, ErrInactiveAdmission)
		}
		if err := s.admissions.Discharge(ctx, id); err != nil {
			return err
		}
		if err := s.beds.UpdateStatus(ctx, adm.BedID, ward.BedAvailable); err != nil {
			return fmt.Errorf("free bed: %w", err)
		}
		adm.Status = AdmissionDischarged
		changed = []Change{
			{Entity: "admission", ID: adm.ID},
			{Entity: "bed", ID: adm.BedID},
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return adm, changed, nil
}
