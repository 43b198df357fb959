package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"waypoint-route-service/internal/adapters/status"
	"waypoint-route-service/internal/adapters/tabular"
	"waypoint-route-service/internal/app"
	"waypoint-route-service/internal/config"
	"waypoint-route-service/internal/distmatrix"
	"waypoint-route-service/internal/domain"
	"waypoint-route-service/internal/services"
	"waypoint-route-service/internal/solver"

	"github.com/joho/godotenv"
)

var (
	inPath        = flag.String("in", "", "Input waypoints (.csv or .json records)")
	outPath       = flag.String("out", "-", "Reordered CSV output, - for stdout")
	statusOutPath = flag.String("status-out", "", "Write the status document to this path")
	session       = flag.String("session", "", "Resume statuses of this session from -status-dir")
	statusDir     = flag.String("status-dir", "statuses", "Directory of per-session status documents")
	start         = flag.String("start", "", "Fixed starting system (case-insensitive)")
	jumpRange     = flag.Float64("jump-range", 0, "Jump range in light years (0 = config default)")
	returnToStart = flag.Bool("return", false, "Close the route back to the first system")
	modeName      = flag.String("mode", "", "Distance strategy: auto, direct, broadcast, blocked")
	timeout       = flag.Duration("timeout", 0, "TSP time budget (0 = config default)")
)

func main() {
	solver.MaybeRunWorker()

	flag.Parse()
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ltime)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("op=routeopt.env err=%v", err)
	}

	if err := run(); err != nil {
		log.Printf("op=routeopt err=%v", err)
		if errors.Is(err, domain.ErrCancelled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

func run() error {
	if strings.TrimSpace(*inPath) == "" {
		flag.Usage()
		return errors.New("-in is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	opt := cfg.Optimizer
	if *jumpRange != 0 {
		opt.JumpRange = *jumpRange
	}
	if *timeout > 0 {
		opt.TSPTimeout = *timeout
	}
	if *modeName != "" {
		opt.DistanceMode = *modeName
	}
	if err := opt.Validate(); err != nil {
		return err
	}
	mode, err := distmatrix.ParseMode(opt.DistanceMode)
	if err != nil {
		return err
	}

	table, err := readTable(*inPath)
	if err != nil {
		return err
	}

	tsp, err := app.NewSolver(opt)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	optimizer := services.NewOptimizer(app.NewCalculator(opt), tsp)
	res, err := optimizer.Optimize(ctx, services.OptimizeRequest{
		Table:         table,
		StartSystem:   *start,
		JumpRange:     opt.JumpRange,
		ReturnToStart: *returnToStart || opt.ReturnToStart,
		DistanceMode:  mode,
	}, stderrProgress())
	if err != nil {
		return err
	}

	if res.StartSystem != "" && !res.FixedStartFound {
		if res.StartSuggestion != "" {
			log.Printf("start system %q not found, did you mean %q?", res.StartSystem, res.StartSuggestion)
		} else {
			log.Printf("start system %q not found, optimizing all systems", res.StartSystem)
		}
	}
	if res.Degraded != nil {
		log.Printf("solver degraded: %s", res.Degraded)
	}

	if *session != "" {
		store := status.NewFileStore(*statusDir)
		if err := services.SyncStatuses(ctx, store, *session, &res.Route); err != nil {
			return err
		}
	}

	if err := writeOutput(*outPath, func(w io.Writer) error {
		return tabular.WriteRouteCSV(w, table, res.Route)
	}); err != nil {
		return err
	}
	if *statusOutPath != "" {
		if err := writeOutput(*statusOutPath, func(w io.Writer) error {
			return tabular.WriteStatusDocument(w, tabular.NewStatusDocument(res.Route))
		}); err != nil {
			return err
		}
	}

	log.Printf("systems=%d distance=%.2f jumps=%d strategy=%s/%s total=%s",
		len(res.Route.Waypoints), res.Route.TotalDistance, res.Route.TotalJumps,
		res.Stats.DistanceStrategy, res.Stats.SolveStrategy, res.Stats.Total.Round(time.Millisecond))
	return nil
}

func readTable(path string) (domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("read input: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return tabular.ReadJSONRecords(f)
	}
	return tabular.ReadCSV(f)
}

func writeOutput(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// stderrProgress logs each stage once plus every tenth of blocked progress.
func stderrProgress() services.ProgressFunc {
	lastStage, lastTenth := "", -1
	return func(stage string, fraction float64) {
		if stage != lastStage {
			lastStage, lastTenth = stage, -1
			log.Printf("stage=%s", stage)
		}
		if fraction <= 0 || fraction >= 1 {
			return
		}
		if tenth := int(fraction * 10); tenth > lastTenth {
			lastTenth = tenth
			log.Printf("stage=%s progress=%d%%", stage, tenth*10)
		}
	}
}
