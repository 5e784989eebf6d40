package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/edgard/complimentbot/internal/bot/tasks"
	"github.com/edgard/complimentbot/internal/config"
)

// Scheduler runs the enabled scheduled tasks using gocron.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	cfg       *config.SchedulerConfig
	taskMap   map[string]tasks.ScheduledTaskFunc
	jobNames  []string

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// NewScheduler creates a scheduler for the tasks in taskMap, configured by cfg.
func NewScheduler(logger *slog.Logger, cfg *config.SchedulerConfig, taskMap map[string]tasks.ScheduledTaskFunc) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		logger:    logger.With("component", "scheduler"),
		cfg:       cfg,
		taskMap:   taskMap,
	}, nil
}

// Start registers every enabled task and starts ticking. Jobs receive a
// context derived from ctx that is cancelled by Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("scheduler is already running")
	}

	jobCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.jobNames = nil

	var names []string
	if s.cfg != nil {
		for name := range s.cfg.Tasks {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		s.logger.Warn("No scheduler tasks configured")
	}

	for _, name := range names {
		taskCfg := s.cfg.Tasks[name]
		if !taskCfg.Enabled {
			s.logger.Info("Skipping disabled task", "task_name", name)
			continue
		}

		taskFunc, exists := s.taskMap[name]
		if !exists {
			s.logger.Warn("Scheduled task configured but not registered, skipping", "task_name", name)
			continue
		}

		definition, desc := jobDefinition(taskCfg)
		if definition == nil {
			s.logger.Warn("Scheduled task enabled without interval or schedule, skipping", "task_name", name)
			continue
		}

		_, err := s.scheduler.NewJob(
			definition,
			gocron.NewTask(s.runTask, jobCtx, name, taskFunc),
			gocron.WithName(name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			s.logger.Error("Failed to schedule task", "task_name", name, "trigger", desc, "error", err)
			continue
		}

		s.logger.Info("Scheduled task", "task_name", name, "trigger", desc)
		s.jobNames = append(s.jobNames, name)
	}

	s.scheduler.Start()
	s.running = true
	s.logger.Info("Scheduler started", "tasks_scheduled", len(s.jobNames))
	return nil
}

// runTask wraps a task with logging. Task errors are logged and never stop the job.
func (s *Scheduler) runTask(ctx context.Context, name string, task tasks.ScheduledTaskFunc) {
	if ctx.Err() != nil {
		return
	}
	s.logger.Debug("Running scheduled task", "task_name", name)
	startTime := time.Now()
	if err := task(ctx); err != nil {
		s.logger.Error("Scheduled task failed", "task_name", name, "error", err)
	}
	s.logger.Debug("Finished scheduled task", "task_name", name, "duration", time.Since(startTime))
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.cancel()
	err := s.scheduler.Shutdown()
	if err != nil {
		s.logger.Error("Error during scheduler shutdown", "error", err)
	} else {
		s.logger.Info("Scheduler stopped")
	}

	s.running = false
	return err
}

// JobNames returns the names of the tasks scheduled by the last Start, sorted.
func (s *Scheduler) JobNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.jobNames...)
}

// jobDefinition prefers a fixed interval over a cron schedule. Intervals first
// fire one period after start.
func jobDefinition(taskCfg config.TaskConfig) (gocron.JobDefinition, string) {
	switch {
	case taskCfg.Interval > 0:
		return gocron.DurationJob(taskCfg.Interval), "every " + taskCfg.Interval.String()
	case taskCfg.Schedule != "":
		return gocron.CronJob(taskCfg.Schedule, true), taskCfg.Schedule
	default:
		return nil, ""
	}
}
