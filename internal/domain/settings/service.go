package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidSchedule is returned when a schedule save is rejected by the
// validator. The accompanying violations are returned alongside.
var ErrInvalidSchedule = errors.New("schedule failed validation")

// TxRunner executes fn inside a database transaction.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

func passthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type Service struct {
	schedule ScheduleRepository
	items    ServiceItemRepository
	runTx    TxRunner
}

func NewService(schedule ScheduleRepository, items ServiceItemRepository, runTx TxRunner) *Service {
	if runTx == nil {
		runTx = passthroughTx
	}
	return &Service{schedule: schedule, items: items, runTx: runTx}
}

// -- Schedule --

func (s *Service) GetSchedule(ctx context.Context) (*Schedule, error) {
	hours, err := s.schedule.GetHours(ctx)
	if err != nil {
		return nil, fmt.Errorf("get hours: %w", err)
	}
	sessions, err := s.schedule.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	sched := &Schedule{Hours: *hours}
	for _, t := range sessions {
		sched.Sessions = append(sched.Sessions, *t)
	}
	return sched, nil
}

// ValidateSchedule is the dry-run entry point: it returns the violation
// list without writing anything.
func (s *Service) ValidateSchedule(sched *Schedule) []string {
	return Validate(sched.Hours, activeSessions(sched.Sessions))
}

// SaveSchedule validates the schedule and, when clean, replaces the hours
// and the template set in one transaction. On violations it returns
// ErrInvalidSchedule along with the full list. Inactive templates are kept
// as drafts and excluded from validation.
func (s *Service) SaveSchedule(ctx context.Context, sched *Schedule) ([]string, error) {
	violations := s.ValidateSchedule(sched)
	if len(violations) > 0 {
		return violations, ErrInvalidSchedule
	}

	err := s.runTx(ctx, func(ctx context.Context) error {
		if err := s.schedule.SaveHours(ctx, &sched.Hours); err != nil {
			return fmt.Errorf("save hours: %w", err)
		}
		templates := make([]*SessionTemplate, len(sched.Sessions))
		for i := range sched.Sessions {
			templates[i] = &sched.Sessions[i]
		}
		if err := s.schedule.ReplaceSessions(ctx, templates); err != nil {
			return fmt.Errorf("replace sessions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return nil, nil
}

func activeSessions(sessions []SessionTemplate) []SessionTemplate {
	out := make([]SessionTemplate, 0, len(sessions))
	for _, s := range sessions {
		if s.Active {
			out = append(out, s)
		}
	}
	return out
}

// -- Service items --

func (s *Service) CreateItem(ctx context.Context, it *ServiceItem) error {
	if err := validateItem(it); err != nil {
		return err
	}
	return s.items.Create(ctx, it)
}

func (s *Service) GetItem(ctx context.Context, id uuid.UUID) (*ServiceItem, error) {
	return s.items.GetByID(ctx, id)
}

func (s *Service) UpdateItem(ctx context.Context, it *ServiceItem) error {
	if err := validateItem(it); err != nil {
		return err
	}
	return s.items.Update(ctx, it)
}

func (s *Service) ListItems(ctx context.Context, category string, limit, offset int) ([]*ServiceItem, int, error) {
	if category == "" {
		return s.items.List(ctx, limit, offset)
	}
	if !validItemCategory(category) {
		return nil, 0, fmt.Errorf("invalid category: %s", category)
	}
	return s.items.ListByCategory(ctx, category, limit, offset)
}

func validateItem(it *ServiceItem) error {
	if it.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !validItemCategory(it.Category) {
		return fmt.Errorf("invalid category: %s", it.Category)
	}
	if it.BasePriceCents < 0 {
		return fmt.Errorf("base price must not be negative")
	}
	bd := it.BillingDefaults
	if bd.SurgeonFeeCents < 0 || bd.AssistantFeeCents < 0 || bd.AnesthesiaFeeCents < 0 || bd.OtChargeCents < 0 {
		return fmt.Errorf("billing defaults must not be negative")
	}
	return nil
}
