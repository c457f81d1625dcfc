package complaint_test

import (
	"civicdesk/backend/internal/models"
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, ev models.ComplaintEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

type MockOfficerDirectory struct {
	mock.Mock
}

func (m *MockOfficerDirectory) ListApprovedOfficers(ctx context.Context, department models.Department) ([]models.Officer, error) {
	args := m.Called(ctx, department)
	return args.Get(0).([]models.Officer), args.Error(1)
}

func (m *MockOfficerDirectory) GetOfficer(ctx context.Context, id uint) (*models.Officer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Officer), args.Error(1)
}

// recordingNotifier keeps every event it receives.
type recordingNotifier struct {
	mu     sync.Mutex
	events []models.ComplaintEvent
}

func (r *recordingNotifier) Notify(_ context.Context, ev models.ComplaintEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingNotifier) types() []models.Operation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Operation, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}
