// Package scheduler runs blog generation on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/tradepilot/tradepilot/internal/models"
)

const defaultJobTimeout = 5 * time.Minute

// Schedules accept an optional leading seconds field.
var scheduleParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// BlogGenerator publishes one post per call.
type BlogGenerator interface {
	Generate(ctx context.Context, topic string) (*models.BlogPost, error)
}

// Scheduler manages scheduled blog generation jobs
type Scheduler struct {
	cron       *cron.Cron
	generator  BlogGenerator
	logger     *logrus.Entry
	jobTimeout time.Duration

	mu        sync.RWMutex
	isRunning bool
	jobIDs    []cron.EntryID
}

// NewScheduler creates a new scheduler. Overlapping runs of the same job are skipped.
func NewScheduler(generator BlogGenerator, log *logrus.Logger) *Scheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	entry := log.WithField("component", "scheduler")
	cronLogger := cron.VerbosePrintfLogger(entry)

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithParser(scheduleParser),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		generator:  generator,
		logger:     entry,
		jobTimeout: defaultJobTimeout,
		jobIDs:     make([]cron.EntryID, 0),
	}
}

// ScheduleBlogGeneration adds a job that generates a post from a rotating source.
func (s *Scheduler) ScheduleBlogGeneration(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, s.runBlogGeneration)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("schedule", cronExpression).Info("Scheduled blog generation job")
	return nil
}

// RunOnce generates a single post immediately.
func (s *Scheduler) RunOnce(ctx context.Context, topic string) (*models.BlogPost, error) {
	ctx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()
	return s.generator.Generate(ctx, topic)
}

func (s *Scheduler) runBlogGeneration() {
	post, err := s.RunOnce(context.Background(), "")
	if err != nil {
		s.logger.WithError(err).Error("Scheduled blog generation failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"slug":     post.Slug,
		"category": post.Category,
	}).Info("Scheduled blog generation completed")
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop waits for running jobs and stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the earliest upcoming run, or the zero time when stopped.
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}

	var next time.Time
	for _, id := range s.jobIDs {
		entry := s.cron.Entry(id)
		if entry.Valid() && (next.IsZero() || entry.Next.Before(next)) {
			next = entry.Next
		}
	}
	return next
}
