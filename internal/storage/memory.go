package storage

import (
	apperrors "civicdesk/backend/internal/errors"
	"civicdesk/backend/internal/models"
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps complaints, officers and history in process memory.
// It backs STORAGE_DRIVER=memory and the test suites. All reads return copies.
type MemoryStore struct {
	mu            sync.Mutex
	complaints    map[string]*models.Complaint
	officers      map[uint]*models.Officer
	history       []models.ComplaintHistory
	nextOfficerID uint
	nextHistoryID uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		complaints:    make(map[string]*models.Complaint),
		officers:      make(map[uint]*models.Officer),
		nextOfficerID: 1,
		nextHistoryID: 1,
	}
}

func (m *MemoryStore) CreateComplaint(_ context.Context, c *models.Complaint, h *models.ComplaintHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if _, exists := m.complaints[c.ID]; exists {
		return apperrors.NewConflictError(c.ID, nil)
	}
	if c.Version == 0 {
		c.Version = 1
	}
	m.complaints[c.ID] = c.Clone()
	if h != nil {
		h.ComplaintID = c.ID
		m.appendHistory(h)
	}
	return nil
}

func (m *MemoryStore) GetComplaint(_ context.Context, id string) (*models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.complaints[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("complaint", id)
	}
	return c.Clone(), nil
}

// UpdateComplaint holds the store lock for the whole read-modify-write, so
// mutate must not call back into the store.
func (m *MemoryStore) UpdateComplaint(_ context.Context, id string, mutate MutateFunc) (*models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.complaints[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("complaint", id)
	}

	working := stored.Clone()
	h, err := mutate(working)
	if err != nil {
		return nil, err
	}
	working.ID = stored.ID
	working.CreatedAt = stored.CreatedAt
	working.Version = stored.Version + 1

	m.complaints[id] = working
	if h != nil {
		h.ComplaintID = id
		m.appendHistory(h)
	}
	return working.Clone(), nil
}

func (m *MemoryStore) FindComplaints(_ context.Context, q ComplaintQuery) ([]models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Complaint, 0)
	for _, c := range m.complaints {
		if matchesQuery(c, q) {
			out = append(out, *c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func matchesQuery(c *models.Complaint, q ComplaintQuery) bool {
	if q.Department != "" && c.Department != q.Department {
		return false
	}
	if q.CitizenID != "" && c.CitizenID != q.CitizenID {
		return false
	}
	if q.OfficerID != nil && (c.AssignedOfficerID == nil || *c.AssignedOfficerID != *q.OfficerID) {
		return false
	}
	if len(q.Statuses) > 0 && !containsStatus(q.Statuses, c.Status) {
		return false
	}
	if q.CreatedAfter != nil && c.CreatedAt.Before(*q.CreatedAfter) {
		return false
	}
	if q.CreatedBefore != nil && c.CreatedAt.After(*q.CreatedBefore) {
		return false
	}
	if q.Escalated != nil && c.Escalated != *q.Escalated {
		return false
	}
	if q.DeadlineBefore != nil && (c.Deadline == nil || !c.Deadline.Before(*q.DeadlineBefore)) {
		return false
	}
	return true
}

func containsStatus(statuses []models.Status, s models.Status) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func (m *MemoryStore) CountActiveByOfficer(_ context.Context, officerIDs []uint) (map[uint]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[uint]int64, len(officerIDs))
	for _, id := range officerIDs {
		counts[id] = 0
	}
	for _, c := range m.complaints {
		if c.AssignedOfficerID == nil || !c.Status.IsActive() {
			continue
		}
		if _, tracked := counts[*c.AssignedOfficerID]; tracked {
			counts[*c.AssignedOfficerID]++
		}
	}
	return counts, nil
}

func (m *MemoryStore) ListHistory(_ context.Context, complaintID string, op models.Operation) ([]models.ComplaintHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.ComplaintHistory, 0)
	for _, h := range m.history {
		if h.ComplaintID != complaintID {
			continue
		}
		if op != "" && h.Operation != op {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

func (m *MemoryStore) appendHistory(h *models.ComplaintHistory) {
	h.ID = m.nextHistoryID
	m.nextHistoryID++
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	row := *h
	row.ChangedFields = append([]string(nil), h.ChangedFields...)
	m.history = append(m.history, row)
}

func (m *MemoryStore) ListApprovedOfficers(_ context.Context, department models.Department) ([]models.Officer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Officer, 0)
	for _, o := range m.officers {
		if !o.IsApproved() {
			continue
		}
		if department != "" && o.Department != department {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) GetOfficer(_ context.Context, id uint) (*models.Officer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.officers[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("officer", strconv.FormatUint(uint64(id), 10))
	}
	copied := *o
	return &copied, nil
}

// SaveOfficer stores the officer, assigning the next id when ID is zero.
func (m *MemoryStore) SaveOfficer(_ context.Context, officer *models.Officer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if officer.ID == 0 {
		officer.ID = m.nextOfficerID
	}
	if officer.ID >= m.nextOfficerID {
		m.nextOfficerID = officer.ID + 1
	}
	if officer.Status == "" {
		officer.Status = models.OfficerPending
	}
	now := time.Now()
	if officer.CreatedAt.IsZero() {
		officer.CreatedAt = now
	}
	officer.UpdatedAt = now
	copied := *officer
	m.officers[officer.ID] = &copied
	return nil
}

func (m *MemoryStore) ApproveOfficer(ctx context.Context, id uint) (*models.Officer, error) {
	m.mu.Lock()
	o, ok := m.officers[id]
	if ok {
		o.Status = models.OfficerApproved
		o.UpdatedAt = time.Now()
	}
	m.mu.Unlock()

	if !ok {
		return nil, apperrors.NewNotFoundError("officer", strconv.FormatUint(uint64(id), 10))
	}
	return m.GetOfficer(ctx, id)
}

// LocalLocker is the in-process Locker used when Redis is not configured.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]time.Time)}
}

func (l *LocalLocker) Acquire(_ context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if expires, ok := l.held[key]; ok && now.Before(expires) {
		return nil, apperrors.NewConflictError(key, errLockHeld)
	}
	expires := now.Add(ttl)
	l.held[key] = expires

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if current, ok := l.held[key]; ok && current.Equal(expires) {
				delete(l.held, key)
			}
		})
	}, nil
}
