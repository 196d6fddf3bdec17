package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type memScheduleRepo struct {
	hours    Hours
	sessions []*SessionTemplate
}

func (r *memScheduleRepo) GetHours(context.Context) (*Hours, error) {
	cp := r.hours
	return &cp, nil
}

func (r *memScheduleRepo) SaveHours(_ context.Context, h *Hours) error {
	r.hours = *h
	return nil
}

func (r *memScheduleRepo) ListSessions(context.Context) ([]*SessionTemplate, error) {
	out := make([]*SessionTemplate, len(r.sessions))
	for i, s := range r.sessions {
		cp := *s
		out[i] = &cp
	}
	return out, nil
}

func (r *memScheduleRepo) ReplaceSessions(_ context.Context, sessions []*SessionTemplate) error {
	r.sessions = nil
	for _, s := range sessions {
		cp := *s
		if cp.ID == uuid.Nil {
			cp.ID = uuid.New()
		}
		r.sessions = append(r.sessions, &cp)
	}
	return nil
}

func TestSaveScheduleValid(t *testing.T) {
	repo := &memScheduleRepo{}
	svc := NewService(repo, nil, nil)

	sched := &Schedule{
		Hours: officeHours(),
		Sessions: []SessionTemplate{
			session("Morning", "M", "09:00", "13:00"),
			session("Evening", "E", "14:00", "17:00"),
		},
	}
	violations, err := svc.SaveSchedule(context.Background(), sched)
	if err != nil {
		t.Fatalf("SaveSchedule: %v (violations %v)", err, violations)
	}
	if repo.hours != sched.Hours {
		t.Errorf("hours = %+v, want %+v", repo.hours, sched.Hours)
	}
	if len(repo.sessions) != 2 {
		t.Errorf("saved sessions = %d, want 2", len(repo.sessions))
	}
}

func TestSaveScheduleRejected(t *testing.T) {
	repo := &memScheduleRepo{hours: Hours{BusinessStart: "08:00", BusinessEnd: "18:00"}}
	svc := NewService(repo, nil, nil)

	sched := &Schedule{
		Hours: officeHours(),
		Sessions: []SessionTemplate{
			session("First", "F", "09:00", "12:00"),
			session("Second", "S", "11:00", "13:00"),
		},
	}
	violations, err := svc.SaveSchedule(context.Background(), sched)
	if !errors.Is(err, ErrInvalidSchedule) {
		t.Fatalf("err = %v, want ErrInvalidSchedule", err)
	}
	if len(violations) == 0 {
		t.Error("expected violations with ErrInvalidSchedule")
	}
	if repo.hours.BusinessStart != "08:00" {
		t.Error("rejected save must not modify stored hours")
	}
	if len(repo.sessions) != 0 {
		t.Error("rejected save must not modify stored sessions")
	}
}

func TestSaveScheduleSkipsInactiveDrafts(t *testing.T) {
	repo := &memScheduleRepo{}
	svc := NewService(repo, nil, nil)

	draft := session("Draft", "D", "09:00", "12:30")
	draft.Active = false
	sched := &Schedule{
		Hours: officeHours(),
		Sessions: []SessionTemplate{
			session("Morning", "M", "09:00", "13:00"),
			draft,
		},
	}
	// Draft overlaps Morning but is inactive, so the save goes through and
	// the draft is persisted untouched.
	if violations, err := svc.SaveSchedule(context.Background(), sched); err != nil {
		t.Fatalf("SaveSchedule: %v (violations %v)", err, violations)
	}
	if len(repo.sessions) != 2 {
		t.Errorf("saved sessions = %d, want 2", len(repo.sessions))
	}
}
