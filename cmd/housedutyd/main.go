package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/housedutyapp/houseduty/config"
	"github.com/housedutyapp/houseduty/internal/clock"
	"github.com/housedutyapp/houseduty/internal/engine"
	"github.com/housedutyapp/houseduty/internal/scheduler"
	"github.com/housedutyapp/houseduty/internal/storage"
	"github.com/housedutyapp/houseduty/internal/tzconv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to init storage: %v", err)
	}
	defer store.Close()

	clk := clock.SystemClock{}
	conv := tzconv.New(cfg.Timezone)
	eng := engine.New(store, conv, cfg.Slots, clk)

	sched := scheduler.New(cfg, eng, clk)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := sched.Start(ctx); err != nil {
			log.Printf("Scheduler error: %v", err)
		}
	}()

	log.Printf("houseduty started (TZ: %s, db: %s)", cfg.Timezone, cfg.DatabasePath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")

	cancel()
	sched.Stop()

	log.Println("houseduty stopped")
}
