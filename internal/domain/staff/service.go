package staff

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, m *Member) error {
	if m.EmployeeCode == "" {
		return fmt.Errorf("employee_code is required")
	}
	if m.FirstName == "" || m.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	if !ValidRole(m.Role) {
		return fmt.Errorf("invalid role: %s", m.Role)
	}
	m.Active = true
	return s.repo.Create(ctx, m)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Member, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, m *Member) error {
	if m.FirstName == "" || m.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	if !ValidRole(m.Role) {
		return fmt.Errorf("invalid role: %s", m.Role)
	}
	return s.repo.Update(ctx, m)
}

func (s *Service) List(ctx context.Context, role string, limit, offset int) ([]*Member, int, error) {
	if role == "" {
		return s.repo.List(ctx, limit, offset)
	}
	if !ValidRole(role) {
		return nil, 0, fmt.Errorf("invalid role: %s", role)
	}
	return s.repo.ListByRole(ctx, role, limit, offset)
}
