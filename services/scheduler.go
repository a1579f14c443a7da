package services

import (
	"context"
	"log"
	"time"
)

type expiringStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Scheduler periodically purges expired sessions and sign-in codes.
type Scheduler struct {
	sessions expiringStore
	codes    expiringStore
	interval time.Duration
	now      func() time.Time
}

func NewScheduler(sessions, codes expiringStore, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{sessions: sessions, codes: codes, interval: interval, now: time.Now}
}

// Start runs the scheduler in the background until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	log.Println("Starting task scheduler...")
	go s.Run(ctx)
}

// Run cleans up once immediately and then every interval until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("Next cleanup scheduled in %v", s.interval)
	s.Cleanup(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Println("Task scheduler stopped")
			return
		case <-ticker.C:
			s.Cleanup(ctx)
		}
	}
}

// Cleanup deletes everything that expired before now. Failures are logged and
// retried on the next tick.
func (s *Scheduler) Cleanup(ctx context.Context) {
	now := s.now()

	if n, err := s.sessions.DeleteExpired(ctx, now); err != nil {
		log.Printf("Error purging expired sessions: %v", err)
	} else if n > 0 {
		log.Printf("Purged %d expired sessions", n)
	}

	if n, err := s.codes.DeleteExpired(ctx, now); err != nil {
		log.Printf("Error purging expired sign-in codes: %v", err)
	} else if n > 0 {
		log.Printf("Purged %d expired sign-in codes", n)
	}
}
