package watch

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Resync periodically requests a full pass, covering changes fsnotify misses
// such as edits on network filesystems.
type Resync struct {
	scheduler gocron.Scheduler
	jobID     string
}

// NewResync schedules trigger every interval. The scheduler is not started.
func NewResync(interval time.Duration, trigger func()) (*Resync, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	job, err := s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(trigger),
		gocron.WithName("docpathfix-resync"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create resync job: %w", err)
	}

	return &Resync{scheduler: s, jobID: job.ID().String()}, nil
}

// Start begins the scheduler.
func (r *Resync) Start() {
	slog.Info("Starting resync scheduler", slog.String("job_id", r.jobID))
	r.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (r *Resync) Stop() error {
	slog.Info("Stopping resync scheduler")
	return r.scheduler.Shutdown()
}
