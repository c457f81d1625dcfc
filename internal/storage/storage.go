package storage

import (
	"civicdesk/backend/internal/models"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MutateFunc applies a transition to the working copy of a complaint and
// returns the audit row to persist with it. Returning an error aborts the
// update and leaves the stored complaint untouched.
type MutateFunc func(c *models.Complaint) (*models.ComplaintHistory, error)

// ComplaintQuery filters complaints. Zero-valued fields do not constrain the result.
type ComplaintQuery struct {
	Department     models.Department
	CitizenID      string
	OfficerID      *uint
	Statuses       []models.Status
	CreatedAfter   *time.Time
	CreatedBefore  *time.Time
	Escalated      *bool
	DeadlineBefore *time.Time
	Limit          int
}

// Storage is the complaint persistence contract used by the lifecycle engine.
// Implementations are transactional at single-complaint granularity.
type Storage interface {
	CreateComplaint(ctx context.Context, c *models.Complaint, h *models.ComplaintHistory) error
	GetComplaint(ctx context.Context, id string) (*models.Complaint, error)
	UpdateComplaint(ctx context.Context, id string, mutate MutateFunc) (*models.Complaint, error)
	// FindComplaints returns matches ordered by creation time, most recent first.
	FindComplaints(ctx context.Context, q ComplaintQuery) ([]models.Complaint, error)
	// CountActiveByOfficer counts PENDING and IN_PROGRESS complaints per officer.
	// Officers without active complaints are present with a zero count.
	CountActiveByOfficer(ctx context.Context, officerIDs []uint) (map[uint]int64, error)
	// ListHistory returns audit rows oldest first; an empty op lists every operation.
	ListHistory(ctx context.Context, complaintID string, op models.Operation) ([]models.ComplaintHistory, error)
}

// OfficerDirectory is the read-only view of officer records.
type OfficerDirectory interface {
	// ListApprovedOfficers returns approved officers ordered by id. An empty
	// department lists every approved officer.
	ListApprovedOfficers(ctx context.Context, department models.Department) ([]models.Officer, error)
	GetOfficer(ctx context.Context, id uint) (*models.Officer, error)
}

// Locker provides per-key mutual exclusion. Acquiring a key that is already
// held fails with a ConflictError instead of blocking.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

// Connect opens the PostgreSQL connection with SQL logging limited to warnings.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// ConnectRedis parses a redis:// URL and verifies the connection.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect Redis: %w", err)
	}
	return rdb, nil
}

// Migrate creates or updates the complaint, officer and history tables.
func (s *Service) Migrate() error {
	if err := s.DB.AutoMigrate(
		&models.Officer{},
		&models.Complaint{},
		&models.ComplaintHistory{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Println("INFO: Database migrations complete.")
	return nil
}

// Locker returns a Redis-backed locker when the service has a Redis client and
// an in-process one otherwise.
func (s *Service) Locker() Locker {
	if s.Redis != nil {
		return NewRedisLocker(s.Redis)
	}
	return NewLocalLocker()
}

// Publisher returns the Redis event publisher, or nil without Redis.
func (s *Service) Publisher() *RedisPublisher {
	if s.Redis == nil {
		return nil
	}
	return NewRedisPublisher(s.Redis)
}
