package storage_test

import (
	apperrors "civicdesk/backend/internal/errors"
	"civicdesk/backend/internal/models"
	"civicdesk/backend/internal/storage"
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func seedComplaint(t *testing.T, s *storage.MemoryStore, c models.Complaint) *models.Complaint {
	t.Helper()
	if c.Status == "" {
		c.Status = models.StatusPending
	}
	require.NoError(t, s.CreateComplaint(context.Background(), &c, &models.ComplaintHistory{Operation: models.OpFile, ToStatus: c.Status}))
	return &c
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	s := storage.NewMemoryStore()
	c := seedComplaint(t, s, models.Complaint{CitizenID: "u1", Department: models.DepartmentRoads, Description: "pothole", CreatedAt: base})

	require.NotEmpty(t, c.ID)
	got, err := s.GetComplaint(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "pothole", got.Description)
	assert.Equal(t, uint(1), got.Version)

	got.Description = "changed"
	again, _ := s.GetComplaint(context.Background(), c.ID)
	assert.Equal(t, "pothole", again.Description, "returned values must be copies")

	_, err = s.GetComplaint(context.Background(), "missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMemoryStore_UpdateComplaint(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()
	c := seedComplaint(t, s, models.Complaint{CitizenID: "u1", Department: models.DepartmentRoads, CreatedAt: base})

	updated, err := s.UpdateComplaint(ctx, c.ID, func(w *models.Complaint) (*models.ComplaintHistory, error) {
		w.Escalated = true
		return &models.ComplaintHistory{Operation: models.OpEscalate, ChangedFields: []string{"escalated"}}, nil
	})
	require.NoError(t, err)
	assert.True(t, updated.Escalated)
	assert.Equal(t, uint(2), updated.Version)

	history, err := s.ListHistory(ctx, c.ID, models.OpEscalate)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, c.ID, history[0].ComplaintID)

	all, err := s.ListHistory(ctx, c.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMemoryStore_UpdateComplaintFailureLeavesRowUnchanged(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()
	c := seedComplaint(t, s, models.Complaint{CitizenID: "u1", Department: models.DepartmentRoads, CreatedAt: base})

	boom := stderrors.New("guard failed")
	_, err := s.UpdateComplaint(ctx, c.ID, func(w *models.Complaint) (*models.ComplaintHistory, error) {
		w.Status = models.StatusResolved
		w.Escalated = true
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.GetComplaint(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.False(t, got.Escalated)
	assert.Equal(t, uint(1), got.Version)

	_, err = s.UpdateComplaint(ctx, "missing", func(*models.Complaint) (*models.ComplaintHistory, error) { return nil, nil })
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMemoryStore_FindComplaints(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()
	officer := uint(4)
	deadline := base.Add(2 * time.Hour)

	older := seedComplaint(t, s, models.Complaint{CitizenID: "u1", Department: models.DepartmentRoads, CreatedAt: base})
	newer := seedComplaint(t, s, models.Complaint{CitizenID: "u2", Department: models.DepartmentRoads, CreatedAt: base.Add(time.Hour),
		AssignedOfficerID: &officer, Deadline: &deadline, Escalated: true})
	seedComplaint(t, s, models.Complaint{CitizenID: "u1", Department: models.DepartmentParks, CreatedAt: base.Add(2 * time.Hour),
		Status: models.StatusResolved})

	roads, err := s.FindComplaints(ctx, storage.ComplaintQuery{Department: models.DepartmentRoads})
	require.NoError(t, err)
	require.Len(t, roads, 2)
	assert.Equal(t, newer.ID, roads[0].ID, "most recent first")
	assert.Equal(t, older.ID, roads[1].ID)

	mine, _ := s.FindComplaints(ctx, storage.ComplaintQuery{CitizenID: "u1"})
	assert.Len(t, mine, 2)

	assigned, _ := s.FindComplaints(ctx, storage.ComplaintQuery{OfficerID: &officer})
	require.Len(t, assigned, 1)
	assert.Equal(t, newer.ID, assigned[0].ID)

	active, _ := s.FindComplaints(ctx, storage.ComplaintQuery{Statuses: []models.Status{models.StatusPending, models.StatusInProgress}})
	assert.Len(t, active, 2)

	escalated := true
	esc, _ := s.FindComplaints(ctx, storage.ComplaintQuery{Escalated: &escalated})
	assert.Len(t, esc, 1)

	cutoff := base.Add(3 * time.Hour)
	overdue, _ := s.FindComplaints(ctx, storage.ComplaintQuery{DeadlineBefore: &cutoff})
	assert.Len(t, overdue, 1)

	after := base.Add(30 * time.Minute)
	recent, _ := s.FindComplaints(ctx, storage.ComplaintQuery{CreatedAfter: &after, Limit: 1})
	require.Len(t, recent, 1)
	assert.Equal(t, models.DepartmentParks, recent[0].Department)
}

func TestMemoryStore_CountActiveByOfficer(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()
	one, two := uint(1), uint(2)

	seedComplaint(t, s, models.Complaint{AssignedOfficerID: &one, Status: models.StatusPending, CreatedAt: base})
	seedComplaint(t, s, models.Complaint{AssignedOfficerID: &one, Status: models.StatusInProgress, CreatedAt: base})
	seedComplaint(t, s, models.Complaint{AssignedOfficerID: &one, Status: models.StatusResolved, CreatedAt: base})
	seedComplaint(t, s, models.Complaint{AssignedOfficerID: &two, Status: models.StatusRejected, CreatedAt: base})

	counts, err := s.CountActiveByOfficer(ctx, []uint{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{1: 2, 2: 0, 3: 0}, counts)
}

func TestMemoryStore_Officers(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()

	a := &models.Officer{Name: "Ana", Department: models.DepartmentRoads}
	b := &models.Officer{Name: "Bo", Department: models.DepartmentParks, Status: models.OfficerApproved}
	require.NoError(t, s.SaveOfficer(ctx, a))
	require.NoError(t, s.SaveOfficer(ctx, b))
	assert.Equal(t, uint(1), a.ID)
	assert.Equal(t, uint(2), b.ID)
	assert.Equal(t, models.OfficerPending, a.Status)

	approved, err := s.ListApprovedOfficers(ctx, "")
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, "Bo", approved[0].Name)

	_, err = s.ApproveOfficer(ctx, a.ID)
	require.NoError(t, err)
	roads, _ := s.ListApprovedOfficers(ctx, models.DepartmentRoads)
	require.Len(t, roads, 1)
	assert.Equal(t, a.ID, roads[0].ID)

	_, err = s.GetOfficer(ctx, 99)
	assert.True(t, apperrors.IsNotFound(err))
	_, err = s.ApproveOfficer(ctx, 99)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()
	l := storage.NewLocalLocker()

	release, err := l.Acquire(ctx, "c1", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "c1", time.Minute)
	assert.True(t, apperrors.IsConflict(err))

	other, err := l.Acquire(ctx, "c2", time.Minute)
	require.NoError(t, err, "different keys are independent")
	other()

	release()
	release()
	again, err := l.Acquire(ctx, "c1", time.Minute)
	require.NoError(t, err)
	again()
}

func TestLocalLocker_ExpiredLockCanBeTaken(t *testing.T) {
	ctx := context.Background()
	l := storage.NewLocalLocker()

	stale, err := l.Acquire(ctx, "c1", time.Nanosecond)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	fresh, err := l.Acquire(ctx, "c1", time.Minute)
	require.NoError(t, err)

	stale()
	_, err = l.Acquire(ctx, "c1", time.Minute)
	assert.True(t, apperrors.IsConflict(err), "stale release must not drop the new holder's lock")
	fresh()
}

func TestLocalLocker_MutualExclusion(t *testing.T) {
	ctx := context.Background()
	l := storage.NewLocalLocker()

	var wins int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := l.Acquire(ctx, "shared", time.Minute); err == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins)
}

func TestServiceWithoutRedisFallsBackToLocalLocks(t *testing.T) {
	svc := storage.NewStorageService(nil, nil)

	assert.IsType(t, &storage.LocalLocker{}, svc.Locker())
	assert.Nil(t, svc.Publisher())
}
