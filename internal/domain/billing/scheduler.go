package billing

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs the settlement engine in-process on a cron schedule.
// Deployments that trigger billing externally (a platform cron hitting
// the internal endpoint) leave it disabled.
type Scheduler struct {
	cron   *cron.Cron
	engine *Engine
}

// NewScheduler creates a scheduler that fires RunCycle on the given
// cron expression, e.g. "0 2 1 * *" for 02:00 UTC on the 1st.
func NewScheduler(engine *Engine, schedule string) (*Scheduler, error) {
	c := cron.New(cron.WithLocation(time.UTC))

	s := &Scheduler{cron: c, engine: engine}
	if _, err := c.AddFunc(schedule, s.run); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	log.Info().Msg("Scheduled billing cycle starting")
	if _, err := s.engine.RunCycle(ctx, time.Now(), RunOptions{}); err != nil {
		log.Error().Err(err).Msg("Scheduled billing cycle failed")
	}
}

// Start begins firing on schedule
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running cycle to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
