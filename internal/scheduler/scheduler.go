package scheduler

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"propfinder/server/internal/indexing"
	"propfinder/server/internal/models"
)

// ErrJobRunning is returned by Trigger while another sync job holds the lock
var ErrJobRunning = errors.New("a sync job is already running")

// JobType represents what started a sync job
type JobType int

const (
	JobTypeScheduled JobType = iota
	JobTypeManual
	JobTypeStartup
)

// String returns the string representation of a JobType
func (j JobType) String() string {
	switch j {
	case JobTypeScheduled:
		return "scheduled"
	case JobTypeManual:
		return "manual"
	case JobTypeStartup:
		return "startup"
	default:
		return "unknown"
	}
}

// Runner performs the actual index sync
type Runner interface {
	SyncAll(ctx context.Context, markets []models.Market) ([]indexing.SyncReport, error)
}

// Job describes one sync run
type Job struct {
	ID         string                `json:"id"`
	Type       string                `json:"type"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt *time.Time            `json:"finished_at,omitempty"`
	Reports    []indexing.SyncReport `json:"reports,omitempty"`
	Error      string                `json:"error,omitempty"`
}

// Scheduler runs search index syncs on a cron schedule and on demand
type Scheduler struct {
	cron      *cron.Cron
	runner    Runner
	markets   []models.Market
	spec      string
	onStartup bool
	logger    *logrus.Logger
	jobMutex  sync.Mutex // Ensures sequential job execution
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.RWMutex
	lastJob   *Job
	isRunning bool
}

// NewScheduler creates a new scheduler. An empty spec disables the cron
// schedule; Trigger keeps working.
func NewScheduler(runner Runner, markets []models.Market, spec string, onStartup bool, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:      cron.New(),
		runner:    runner,
		markets:   markets,
		spec:      spec,
		onStartup: onStartup,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start registers the cron job and optionally runs a startup sync
func (s *Scheduler) Start() error {
	if s.spec == "" {
		s.logger.Info("Scheduled index sync is disabled")
	} else {
		_, err := s.cron.AddFunc(s.spec, func() {
			if _, err := s.launch(JobTypeScheduled); errors.Is(err, ErrJobRunning) {
				s.logger.Debug("Skipping scheduled sync while another job runs")
			}
		})
		if err != nil {
			return err
		}
		s.cron.Start()
		s.mu.Lock()
		s.isRunning = true
		s.mu.Unlock()
		s.logger.WithField("cron", s.spec).Info("Scheduler started")
	}

	if s.onStartup {
		if _, err := s.launch(JobTypeStartup); err != nil {
			s.logger.WithError(err).Warn("Startup sync was not started")
		}
	}
	return nil
}

// Stop stops the cron schedule, cancels a running job and waits for it
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.isRunning {
		<-s.cron.Stop().Done()
		s.isRunning = false
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.logger.Info("Scheduler stopped")
}

// Trigger starts a manual sync in the background and returns its job id
func (s *Scheduler) Trigger() (string, error) {
	return s.launch(JobTypeManual)
}

// LastJob returns the most recent job, finished or not
func (s *Scheduler) LastJob() (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastJob == nil {
		return Job{}, false
	}
	job := *s.lastJob
	return job, true
}

func (s *Scheduler) launch(jobType JobType) (string, error) {
	if s.ctx.Err() != nil {
		return "", errors.New("scheduler is stopped")
	}
	if !s.jobMutex.TryLock() {
		return "", ErrJobRunning
	}

	job := &Job{
		ID:        uuid.NewString(),
		Type:      jobType.String(),
		StartedAt: time.Now(),
	}
	s.mu.Lock()
	s.lastJob = job
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.jobMutex.Unlock()
		s.run(job)
	}()
	return job.ID, nil
}

func (s *Scheduler) run(job *Job) {
	log := s.logger.WithFields(logrus.Fields{
		"job_id":   job.ID,
		"job_type": job.Type,
	})
	log.Info("Starting index sync job")

	reports, err := s.runner.SyncAll(s.ctx, s.markets)

	finished := time.Now()
	s.mu.Lock()
	job.FinishedAt = &finished
	job.Reports = reports
	if err != nil {
		job.Error = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		log.WithError(err).Error("Index sync job failed")
		return
	}
	log.WithField("duration", finished.Sub(job.StartedAt)).Info("Index sync job completed successfully")
}
