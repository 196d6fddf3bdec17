package patient

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

// Create registers a patient and assigns an MRN of the form MRN-000042
// when none was supplied.
func (s *Service) Create(ctx context.Context, p *Patient) error {
	if p.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if p.LastName == "" {
		return fmt.Errorf("last_name is required")
	}
	if !validGender(p.Gender) {
		return fmt.Errorf("invalid gender: %s", p.Gender)
	}
	if p.MRN == "" {
		seq, err := s.repo.NextMRNSequence(ctx)
		if err != nil {
			return fmt.Errorf("allocate mrn: %w", err)
		}
		p.MRN = fmt.Sprintf("MRN-%06d", seq)
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByMRN(ctx context.Context, mrn string) (*Patient, error) {
	return s.repo.GetByMRN(ctx, mrn)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	if !validGender(p.Gender) {
		return fmt.Errorf("invalid gender: %s", p.Gender)
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) List(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	if query == "" {
		return s.repo.List(ctx, limit, offset)
	}
	return s.repo.Search(ctx, query, limit, offset)
}
