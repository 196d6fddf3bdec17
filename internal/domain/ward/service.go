package ward

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrBedOccupied is returned when a maintenance toggle targets a bed that is
// currently occupied by an active admission.
var ErrBedOccupied = errors.New("bed is occupied")

type Service struct {
	wards    WardRepository
	bedTypes BedTypeRepository
	beds     BedRepository
}

func NewService(wards WardRepository, bedTypes BedTypeRepository, beds BedRepository) *Service {
	return &Service{wards: wards, bedTypes: bedTypes, beds: beds}
}

// -- Ward --

func (s *Service) CreateWard(ctx context.Context, w *Ward) error {
	if w.Name == "" {
		return fmt.Errorf("name is required")
	}
	if w.Kind == "" {
		w.Kind = KindGeneral
	}
	w.Active = true
	return s.wards.Create(ctx, w)
}

func (s *Service) GetWard(ctx context.Context, id uuid.UUID) (*Ward, error) {
	return s.wards.GetByID(ctx, id)
}

func (s *Service) UpdateWard(ctx context.Context, w *Ward) error {
	if w.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.wards.Update(ctx, w)
}

func (s *Service) ListWards(ctx context.Context, limit, offset int) ([]*Ward, int, error) {
	return s.wards.List(ctx, limit, offset)
}

// -- BedType --

func (s *Service) CreateBedType(ctx context.Context, bt *BedType) error {
	if bt.Name == "" {
		return fmt.Errorf("name is required")
	}
	if bt.DailyRateCents < 0 {
		return fmt.Errorf("daily rate must not be negative")
	}
	if bt.MaxOccupancy <= 0 {
		bt.MaxOccupancy = 1
	}
	return s.bedTypes.Create(ctx, bt)
}

func (s *Service) GetBedType(ctx context.Context, id uuid.UUID) (*BedType, error) {
	return s.bedTypes.GetByID(ctx, id)
}

func (s *Service) UpdateBedType(ctx context.Context, bt *BedType) error {
	if bt.DailyRateCents < 0 {
		return fmt.Errorf("daily rate must not be negative")
	}
	return s.bedTypes.Update(ctx, bt)
}

func (s *Service) ListBedTypes(ctx context.Context, limit, offset int) ([]*BedType, int, error) {
	return s.bedTypes.List(ctx, limit, offset)
}

// -- Bed --

func (s *Service) CreateBed(ctx context.Context, b *Bed) error {
	if b.WardID == uuid.Nil {
		return fmt.Errorf("ward_id is required")
	}
	if b.BedTypeID == uuid.Nil {
		return fmt.Errorf("bed_type_id is required")
	}
	if b.Number == "" {
		return fmt.Errorf("number is required")
	}
	if b.Status == "" {
		b.Status = BedAvailable
	}
	if !ValidBedStatus(b.Status) {
		return fmt.Errorf("invalid bed status: %s", b.Status)
	}
	return s.beds.Create(ctx, b)
}

func (s *Service) GetBed(ctx context.Context, id uuid.UUID) (*Bed, error) {
	return s.beds.GetByID(ctx, id)
}

func (s *Service) ListBedsByWard(ctx context.Context, wardID uuid.UUID, limit, offset int) ([]*Bed, int, error) {
	return s.beds.ListByWard(ctx, wardID, limit, offset)
}

func (s *Service) ListBedsByStatus(ctx context.Context, status string, limit, offset int) ([]*Bed, int, error) {
	if !ValidBedStatus(status) {
		return nil, 0, fmt.Errorf("invalid bed status: %s", status)
	}
	return s.beds.ListByStatus(ctx, status, limit, offset)
}

// ToggleMaintenance moves a bed between AVAILABLE and MAINTENANCE. An
// occupied bed cannot be put into maintenance; discharge frees it first.
func (s *Service) ToggleMaintenance(ctx context.Context, bedID uuid.UUID, target string) (*Bed, error) {
	if target != BedMaintenance && target != BedAvailable {
		return nil, fmt.Errorf("target must be %s or %s", BedMaintenance, BedAvailable)
	}

	bed, err := s.beds.GetByID(ctx, bedID)
	if err != nil {
		return nil, fmt.Errorf("get bed: %w", err)
	}
	if bed.Status == BedOccupied {
		return nil, fmt.Errorf("bed %s: %w", bed.Number, ErrBedOccupied)
	}

	if err := s.beds.UpdateStatus(ctx, bedID, target); err != nil {
		return nil, err
	}
	bed.Status = target
	return bed, nil
}

// Occupancy returns per-status bed counts for a ward, derived from the bed
// table on every call.
func (s *Service) Occupancy(ctx context.Context, wardID uuid.UUID) (*OccupancyStats, error) {
	counts, err := s.beds.CountByWard(ctx, wardID)
	if err != nil {
		return nil, err
	}
	stats := &OccupancyStats{
		WardID:      wardID,
		Available:   counts[BedAvailable],
		Occupied:    counts[BedOccupied],
		Maintenance: counts[BedMaintenance],
		Blocked:     counts[BedBlocked],
	}
	stats.Total = stats.Available + stats.Occupied + stats.Maintenance + stats.Blocked
	return stats, nil
}
