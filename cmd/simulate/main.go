package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/okian/birdie/internal/simulator"
	"github.com/okian/birdie/pkg/logger"
)

const simulationTimeout = 5 * time.Minute

func main() {
	var (
		devices      = flag.Int("devices", 4, "Number of virtual devices")
		players      = flag.Int("players", 4, "Number of players in the round")
		holes        = flag.Int("holes", 18, "Number of holes")
		disagreeRate = flag.Float64("disagree", 0, "Probability a device reports a conflicting score")
		syncRounds   = flag.Int("sync-rounds", 3, "Full sync cycles before convergence check")
		seed         = flag.Int64("seed", 0, "Random seed (0 = time-based)")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), simulationTimeout)
	defer cancel()

	sim := simulator.New(simulator.Config{
		Devices:      *devices,
		Players:      *players,
		Holes:        *holes,
		DisagreeRate: *disagreeRate,
		SyncRounds:   *syncRounds,
		Seed:         *seed,
	}, logger.Get().Named("simulator"))

	report, err := sim.Run(ctx)
	if err != nil {
		os.Stderr.WriteString("simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}

	fmt.Printf("devices:       %d\n", report.Devices)
	fmt.Printf("events:        %d\n", report.EventsTotal)
	fmt.Printf("discrepancies: %d\n", report.Discrepancies)
	fmt.Printf("converged:     %v\n", report.Converged)
	for _, f := range report.Failures {
		fmt.Printf("  FAIL: %s\n", f)
	}
	if !report.Converged {
		os.Exit(1)
	}
}
