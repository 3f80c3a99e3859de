package mind

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
)

// Scheduler runs the battery recharge and the idle watchdog as singleton duration jobs.
// Neither job touches the message path beyond the component locks.
type Scheduler struct {
	cron   gocron.Scheduler
	runner *Runner
}

// NewScheduler registers the periodic jobs of runner. logger may be nil.
func NewScheduler(ctx context.Context, runner *Runner, clock clockwork.Clock, logger gocron.Logger) (*Scheduler, error) {
	opts := []gocron.SchedulerOption{gocron.WithLocation(time.UTC)}
	if clock != nil {
		opts = append(opts, gocron.WithClock(clock))
	}
	if logger != nil {
		opts = append(opts, gocron.WithLogger(logger))
	}
	cron, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	s := &Scheduler{cron: cron, runner: runner}

	settings := runner.Settings()
	if err := s.add("fatigue-recharge", settings.Fatigue.RechargeInterval, runner.RechargeTick); err != nil {
		_ = cron.Shutdown()
		return nil, err
	}
	if runner.Watchdog.Enabled() {
		check := func() { runner.WatchdogTick(ctx) }
		if err := s.add("idle-watchdog", settings.Watchdog.CheckInterval, check); err != nil {
			_ = cron.Shutdown()
			return nil, err
		}
	}
	return s, nil
}

func (s *Scheduler) add(name string, every time.Duration, task func()) error {
	if every <= 0 {
		return fmt.Errorf("job %s: interval must be positive, got %s", name, every)
	}
	_, err := s.cron.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to add job %s: %w", name, err)
	}
	return nil
}

// Jobs returns the registered job names.
func (s *Scheduler) Jobs() []string {
	var names []string
	for _, j := range s.cron.Jobs() {
		names = append(names, j.Name())
	}
	return names
}

// Start begins running the jobs.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop waits for running jobs and stops the scheduler.
func (s *Scheduler) Stop() error {
	if err := s.cron.Shutdown(); err != nil {
		return fmt.Errorf("scheduler shutdown: %w", err)
	}
	return nil
}
