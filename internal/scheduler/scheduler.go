// Package scheduler runs the periodic overdue-complaint escalation sweep.
package scheduler

import (
	"civicdesk/backend/internal/complaint"
	"context"
	"log"
	"sync"
	"time"
)

const defaultInterval = 15 * time.Minute

// Escalator is implemented by complaint.Service.
type Escalator interface {
	EscalateOverdue(ctx context.Context) (complaint.EscalationReport, error)
}

// EscalationScheduler calls EscalateOverdue on a fixed interval until stopped.
type EscalationScheduler struct {
	escalator Escalator
	interval  time.Duration

	mu         sync.Mutex
	running    bool
	runs       int
	lastRun    time.Time
	lastReport complaint.EscalationReport
	lastErr    error
	stopChan   chan struct{}
}

// NewEscalationScheduler creates a scheduler. A non-positive interval falls back to 15 minutes.
func NewEscalationScheduler(escalator Escalator, interval time.Duration) *EscalationScheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &EscalationScheduler{
		escalator: escalator,
		interval:  interval,
		stopChan:  make(chan struct{}),
	}
}

// Start sweeps once immediately and then on every tick. It blocks until ctx is
// cancelled or Stop is called; a second concurrent Start returns at once.
func (s *EscalationScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	stop := s.stopChan
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	log.Printf("INFO: Escalation scheduler started with interval %v", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Println("INFO: Escalation scheduler context cancelled, stopping")
			return
		case <-stop:
			log.Println("INFO: Escalation scheduler stop signal received")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// Stop ends a running Start loop.
func (s *EscalationScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		close(s.stopChan)
		s.stopChan = make(chan struct{})
		log.Println("INFO: Escalation scheduler stopped")
	}
}

// RunOnce performs a single sweep and records its outcome.
func (s *EscalationScheduler) RunOnce(ctx context.Context) (complaint.EscalationReport, error) {
	report, err := s.escalator.EscalateOverdue(ctx)
	if err != nil {
		log.Printf("ERROR: Escalation sweep failed: %v", err)
	} else if len(report.Escalated) > 0 || report.Failed > 0 {
		log.Printf("INFO: Escalation sweep checked %d, escalated %d, skipped %d, failed %d",
			report.Checked, len(report.Escalated), report.Skipped, report.Failed)
	}

	s.mu.Lock()
	s.runs++
	s.lastRun = time.Now()
	s.lastReport = report
	s.lastErr = err
	s.mu.Unlock()

	return report, err
}

// GetStatus returns current scheduler status
func (s *EscalationScheduler) GetStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]interface{}{
		"running":    s.running,
		"interval":   s.interval.String(),
		"runs":       s.runs,
		"lastReport": s.lastReport,
	}
	if !s.lastRun.IsZero() {
		status["lastRun"] = s.lastRun
	}
	if s.lastErr != nil {
		status["lastError"] = s.lastErr.Error()
	}
	return status
}
