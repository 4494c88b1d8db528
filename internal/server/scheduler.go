package server

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a scheduled unit of work.
type Job interface {
	Run() error
	Name() string
}

// Scheduler runs jobs on cron schedules (standard five-field specs).
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers job under schedule.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.log.Debug().Str("job", job.Name()).Msg("Running job")
		if err := job.Run(); err != nil {
			s.log.Error().Err(err).Str("job", job.Name()).Msg("Job failed")
			return
		}
		s.log.Debug().Str("job", job.Name()).Msg("Job completed")
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("schedule", schedule).Str("job", job.Name()).Msg("Job registered")
	return nil
}

// Entries returns the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// retuneTimeout bounds one scheduled optimizer run.
const retuneTimeout = 2 * time.Hour

// retuneJob reloads the history and re-optimizes weights with the tuning
// file's parameters, so new draws are picked up after each weekly draw.
type retuneJob struct {
	server *Server
}

func (j *retuneJob) Name() string { return "retune" }

func (j *retuneJob) Run() error {
	release, err := j.server.acquire()
	if err != nil {
		return err
	}
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), retuneTimeout)
	defer cancel()

	if _, err := j.server.orch.Refresh(ctx); err != nil {
		return err
	}
	req, err := j.server.orch.ScheduledRequest(ctx)
	if err != nil {
		return err
	}
	run, err := j.server.orch.Optimize(ctx, req)
	if err != nil {
		return err
	}
	j.server.log.Info().
		Str("run_id", run.RunID).
		Str("best", run.Best.String()).
		Float64("best_score", run.BestScore).
		Msg("scheduled retune complete")
	return nil
}
