package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/housedutyapp/houseduty/config"
	"github.com/housedutyapp/houseduty/internal/clock"
	"github.com/housedutyapp/houseduty/internal/engine"
	"github.com/robfig/cron/v3"
)

// Scheduler triggers the engine on household-local time: generation at
// midnight for the new day, lifecycle advancement on a fixed interval.
// Both operations are idempotent, so extra or missed firings are safe.
type Scheduler struct {
	cron *cron.Cron
	cfg  *config.Config
	eng  *engine.Engine
	clk  clock.Clock
}

func New(cfg *config.Config, eng *engine.Engine, clk clock.Clock) *Scheduler {
	c := cron.New(cron.WithLocation(cfg.Timezone))

	return &Scheduler{
		cron: c,
		cfg:  cfg,
		eng:  eng,
		clk:  clk,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc("0 0 * * *", s.generateToday); err != nil {
		return fmt.Errorf("add midnight generation: %w", err)
	}

	advanceSpec := fmt.Sprintf("@every %s", s.cfg.AdvanceInterval)
	if _, err := s.cron.AddFunc(advanceSpec, s.advance); err != nil {
		return fmt.Errorf("add lifecycle advancement: %w", err)
	}

	// Catch up immediately so a restart mid-day still has today's
	// instances and current statuses.
	s.generateToday()
	s.advance()

	s.cron.Start()
	log.Printf("Scheduler started (TZ: %s, advance every %s)", s.cfg.Timezone, s.cfg.AdvanceInterval)

	<-ctx.Done()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Scheduler stopped")
}

func (s *Scheduler) generateToday() {
	today := s.clk.Now().In(s.cfg.Timezone).Format("2006-01-02")
	if _, err := s.eng.GenerateForDate(today); err != nil {
		log.Printf("Error generating task instances for %s: %v", today, err)
	}
}

func (s *Scheduler) advance() {
	n, err := s.eng.Advance(s.clk.Now())
	if err != nil {
		log.Printf("Error advancing task lifecycle: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Advanced %d task instances", n)
	}
}
