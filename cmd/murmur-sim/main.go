// Package main runs the scripted stress scenarios against the engine and
// prints a summary with tuning recommendations.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/MRamiBalles/murmur/internal/platform/config"
	"github.com/MRamiBalles/murmur/internal/platform/logger"
	"github.com/MRamiBalles/murmur/internal/platform/optimization"
	"github.com/MRamiBalles/murmur/internal/sim"
)

func main() {
	seed := flag.Int64("seed", 42, "random seed for every scenario")
	verbose := flag.Bool("v", false, "print every utterance")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log := logger.NewNop()
	if *debug {
		log = logger.NewLogger()
	}

	fmt.Println("MURMUR - SCENARIO SUITE")
	fmt.Println(strings.Repeat("=", 60))

	passed, failed := 0, 0
	tuning := optimization.LowResource()
	for _, sc := range sim.Scenarios() {
		cfg := config.LowResource().Engine
		cfg.Seed = *seed

		fmt.Printf("\n> %s\n", sc.Name)
		run, err := sc.Run(cfg, log)
		if err != nil {
			fmt.Printf("   setup failed: %v\n", err)
			failed++
			continue
		}
		if *verbose {
			for _, u := range run.Said {
				fmt.Printf("   [%6d] %-7s %d: %s\n", u.Tick, u.Kind, u.Speaker, u.Text)
			}
		}
		for _, r := range run.Results {
			if r.Passed {
				passed++
				fmt.Printf("   PASS %s\n", r.Check)
			} else {
				failed++
				fmt.Printf("   FAIL %s: %s\n", r.Check, r.Reason)
			}
		}
		fmt.Printf("   opinions=%d remarks=%d stale=%d queue_drops=%d\n",
			run.Metrics.OpinionsLogged, run.Remarks(), run.Metrics.StaleDrops, run.Metrics.QueueDrops)

		rec := optimization.Analyze(run.Metrics.Snapshot())
		for _, note := range rec.Notes {
			fmt.Printf("   note: %s\n", note)
		}
		tuning = tuning.Apply(rec)
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Printf("Passed: %d  Failed: %d\n", passed, failed)
	fmt.Printf("Suggested tuning: queue=%d broadcast=%d db_conns=%d\n",
		tuning.QueueCapacity, tuning.BroadcastBuffer, tuning.DBMaxOpenConns)

	if failed > 0 {
		os.Exit(1)
	}
}
