// Package report parses report command flags and runs the narrative
// quality batch.
package report

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	enginerrors "github.com/duskmere/worldengine/internal/errors"
	entrypoint "github.com/duskmere/worldengine/internal/platform/cmd"
	"github.com/duskmere/worldengine/internal/random"
	"github.com/duskmere/worldengine/internal/reference"
	enginereport "github.com/duskmere/worldengine/internal/report"
	"github.com/duskmere/worldengine/internal/storage"
	"github.com/duskmere/worldengine/internal/storage/sqlite"
)

// Config holds report command configuration.
type Config struct {
	StoragePath  string `env:"WORLDENGINE_REPORT_STORAGE_PATH"`
	BaseSeed     int64  `env:"WORLDENGINE_REPORT_BASE_SEED"`
	SeedCount    int    `env:"WORLDENGINE_REPORT_SEED_COUNT" envDefault:"3"`
	Ticks        int    `env:"WORLDENGINE_REPORT_TICKS" envDefault:"25"`
	Profile      string `env:"WORLDENGINE_REPORT_PROFILE" envDefault:"balanced"`
	SeverityPath string `env:"WORLDENGINE_SEVERITY_DATASET"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.StoragePath, "storage-path", cfg.StoragePath, "SQLite path for persisted report rows (optional)")
	fs.Int64Var(&cfg.BaseSeed, "base-seed", cfg.BaseSeed, "base seed for the batch (0 = random)")
	fs.IntVar(&cfg.SeedCount, "seeds", cfg.SeedCount, "number of derived world seeds to simulate")
	fs.IntVar(&cfg.Ticks, "ticks", cfg.Ticks, "turns to simulate per seed")
	fs.StringVar(&cfg.Profile, "profile", cfg.Profile, "gate profile (strict, balanced, exploratory)")
	fs.StringVar(&cfg.SeverityPath, "severity-dataset", cfg.SeverityPath, "biome severity yaml path (optional)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.Ticks < 1 || cfg.SeedCount < 1 {
		return Config{}, enginerrors.New(enginerrors.CodeConfigInvalid, "ticks and seeds must be at least 1")
	}
	return cfg, nil
}

// Run executes the narrative quality batch and returns an error when the
// gate verdict is hold.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceReport, func(ctx context.Context) error {
		var reportStore storage.ReportStore
		if strings.TrimSpace(cfg.StoragePath) != "" {
			store, err := sqlite.Open(cfg.StoragePath)
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			defer store.Close()
			reportStore = store
		}
		return runBatch(ctx, cfg, reportStore)
	})
}

func runBatch(ctx context.Context, cfg Config, reportStore storage.ReportStore) error {
	baseSeed := cfg.BaseSeed
	if baseSeed == 0 {
		generated, err := random.NewWorldSeed()
		if err != nil {
			return fmt.Errorf("generate base seed: %w", err)
		}
		baseSeed = generated
	}

	var severity reference.SeverityIndex
	if cfg.SeverityPath != "" {
		index, err := reference.LoadSeverityIndex(cfg.SeverityPath)
		if err != nil {
			log.Printf("severity dataset: %v", err)
		} else {
			severity = index
		}
	}

	seeds := enginereport.SeedList(baseSeed, cfg.SeedCount)
	summaries := make([]enginereport.Summary, 0, len(seeds))
	for _, seedValue := range seeds {
		summary, err := enginereport.SimulateArc(ctx, seedValue, cfg.Ticks, severity)
		if err != nil {
			return fmt.Errorf("simulate seed %d: %w", seedValue, err)
		}
		log.Printf("seed %d: score %d (%s) tension %d injections %d status %s",
			summary.Seed, summary.SemanticScore, summary.SemanticBand,
			summary.FinalTension, summary.Injections, summary.Status)
		if reportStore != nil {
			if err := reportStore.AppendReportRow(ctx, summary.Row()); err != nil {
				return fmt.Errorf("persist report row: %w", err)
			}
		}
		summaries = append(summaries, summary)
	}

	gate := enginereport.BatchGate(summaries, enginereport.ResolveProfile(cfg.Profile))
	log.Printf("gate %s: %d/%d pass (%.0f%%) warns %d fails %d verdict %s",
		gate.Profile, gate.Passes, gate.Total, gate.PassRate*100, gate.Warns, gate.Fails, gate.Verdict)
	if gate.Verdict == enginereport.VerdictHold {
		return fmt.Errorf("quality gate hold: %s", strings.Join(gate.Blockers, ", "))
	}
	return nil
}
