package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/planrun/planrun/internal/config"
	"github.com/planrun/planrun/internal/events"
	"github.com/planrun/planrun/internal/history"
	"github.com/planrun/planrun/internal/metrics"
	"github.com/planrun/planrun/internal/orchestrator"
	"github.com/planrun/planrun/internal/plan"
	"github.com/planrun/planrun/internal/report"
	"github.com/planrun/planrun/internal/shellexec"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	planPath := flag.String("plan", "", "path to the plan JSON file (required)")
	maxConcurrent := flag.Int("max-concurrent", 0, "override max concurrent tasks")
	continueOnError := flag.Bool("continue-on-error", false, "keep running later levels after a failure")
	format := flag.String("format", "", "report format: text, markdown, or json")
	flag.Parse()

	if *planPath == "" {
		return fmt.Errorf("-plan is required")
	}

	// Create signal-aware context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadDefault()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *maxConcurrent > 0 {
		cfg.Scheduler.MaxConcurrentTasks = *maxConcurrent
	}
	if *continueOnError {
		cfg.Scheduler.ContinueOnError = true
	}
	if *format != "" {
		cfg.Report.Format = *format
	}

	data, err := os.ReadFile(*planPath)
	if err != nil {
		return fmt.Errorf("reading plan file: %w", err)
	}
	p, err := plan.Parse(data)
	if err != nil {
		return err
	}

	// Track subprocesses so a shutdown signal can terminate them all
	pm := shellexec.NewProcessManager()
	go func() {
		<-ctx.Done()
		if err := pm.KillAll(); err != nil {
			log.Printf("Error killing subprocesses: %v", err)
		}
	}()

	execute := shellexec.New(pm).Execute
	if cfg.Retry.Enabled {
		execute = orchestrator.WrapExecutor(execute, orchestrator.NewCircuitBreakerRegistry(), retryConfig(cfg.Retry))
	}

	bus := events.NewBus()
	defer bus.Close()

	agg := metrics.NewAggregator()
	collector := metrics.NewCollector(agg, 0, 0, 0)
	collector.Start(ctx)
	go metrics.ObserveBus(ctx, bus, collector)

	runner := orchestrator.NewRunner(orchestrator.Config{
		MaxConcurrentTasks: cfg.Scheduler.MaxConcurrentTasks,
		ContinueOnError:    cfg.Scheduler.ContinueOnError,
	}, execute)
	runner.SetBus(bus)

	result, err := runner.Run(ctx, p)
	if err != nil {
		return err
	}

	collector.Flush()

	out, err := report.Render(result, report.Format(cfg.Report.Format))
	if err != nil {
		return err
	}
	fmt.Println(out)

	if cfg.History.Enabled {
		if err := archiveRun(ctx, cfg.History, result); err != nil {
			log.Printf("WARNING: failed to archive run: %v", err)
		}
	}

	snap := agg.Snapshot()
	log.Printf("metrics: completed=%d failed=%d cancelled=%d",
		snap.Counters[metrics.KeyTasksCompleted],
		snap.Counters[metrics.KeyTasksFailed],
		snap.Counters[metrics.KeyTasksCancelled])

	if !result.AllSucceeded() {
		return fmt.Errorf("%d task(s) did not complete", len(result.Failed))
	}
	return nil
}

// archiveRun stores the finished run in the history database.
func archiveRun(ctx context.Context, cfg config.HistoryConfig, result *plan.Result) error {
	dbPath := cfg.DBPath
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("getting home directory: %w", err)
		}
		dbPath = filepath.Join(homeDir, ".planrun", "history.db")
	}

	store, err := history.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.SaveRun(ctx, result)
}

func retryConfig(cfg config.RetryConfig) orchestrator.RetryConfig {
	out := orchestrator.DefaultRetryConfig()
	if cfg.InitialIntervalMS > 0 {
		out.InitialInterval = time.Duration(cfg.InitialIntervalMS) * time.Millisecond
	}
	if cfg.MaxIntervalMS > 0 {
		out.MaxInterval = time.Duration(cfg.MaxIntervalMS) * time.Millisecond
	}
	if cfg.MaxElapsedTimeMS > 0 {
		out.MaxElapsedTime = time.Duration(cfg.MaxElapsedTimeMS) * time.Millisecond
	}
	if cfg.Multiplier > 0 {
		out.Multiplier = cfg.Multiplier
	}
	return out
}
