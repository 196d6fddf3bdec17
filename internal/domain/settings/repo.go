package settings

import (
	"context"

	"github.com/google/uuid"
)

type ScheduleRepository interface {
	GetHours(ctx context.Context) (*Hours, error)
	SaveHours(ctx context.Context, h *Hours) error
	ListSessions(ctx context.Context) ([]*SessionTemplate, error)
	// ReplaceSessions swaps the full template set. The caller wraps this
	// and SaveHours in one transaction.
	ReplaceSessions(ctx context.Context, sessions []*SessionTemplate) error
}

type ServiceItemRepository interface {
	Create(ctx context.Context, item *ServiceItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*ServiceItem, error)
	Update(ctx context.Context, item *ServiceItem) error
	List(ctx context.Context, limit, offset int) ([]*ServiceItem, int, error)
	ListByCategory(ctx context.Context, category string, limit, offset int) ([]*ServiceItem, int, error)
}
