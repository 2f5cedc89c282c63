// Package engine parses engine command flags and runs the simulation loop.
package engine

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duskmere/worldengine/internal/director"
	enginerrors "github.com/duskmere/worldengine/internal/errors"
	"github.com/duskmere/worldengine/internal/event"
	entrypoint "github.com/duskmere/worldengine/internal/platform/cmd"
	"github.com/duskmere/worldengine/internal/progression"
	"github.com/duskmere/worldengine/internal/quest"
	"github.com/duskmere/worldengine/internal/random"
	"github.com/duskmere/worldengine/internal/reference"
	"github.com/duskmere/worldengine/internal/seed"
	"github.com/duskmere/worldengine/internal/storage"
	"github.com/duskmere/worldengine/internal/storage/sqlite"
	"github.com/duskmere/worldengine/internal/telemetry"
	"github.com/duskmere/worldengine/internal/world"
)

// tracerName identifies the engine's spans to the tracer provider.
const tracerName = "worldengine/engine"

// Config holds engine command configuration.
type Config struct {
	StoragePath    string `env:"WORLDENGINE_STORAGE_PATH" envDefault:"worldengine.db"`
	WorldName      string `env:"WORLDENGINE_WORLD_NAME" envDefault:"duskmere"`
	Seed           int64  `env:"WORLDENGINE_SEED"`
	ThreatLevel    int    `env:"WORLDENGINE_THREAT_LEVEL" envDefault:"3"`
	Ticks          int    `env:"WORLDENGINE_TICKS" envDefault:"25"`
	CadenceTurns   int    `env:"WORLDENGINE_CADENCE_TURNS" envDefault:"3"`
	SeverityPath   string `env:"WORLDENGINE_SEVERITY_DATASET"`
	CataclysmKind  string `env:"WORLDENGINE_CATACLYSM_KIND"`
	CataclysmFocus string `env:"WORLDENGINE_CATACLYSM_FOCUS"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.StoragePath, "storage-path", cfg.StoragePath, "SQLite database path")
	fs.StringVar(&cfg.WorldName, "world-name", cfg.WorldName, "name for a bootstrapped world")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "world seed for bootstrap (0 = random)")
	fs.IntVar(&cfg.ThreatLevel, "threat", cfg.ThreatLevel, "threat level for a bootstrapped world")
	fs.IntVar(&cfg.Ticks, "ticks", cfg.Ticks, "number of turns to simulate")
	fs.IntVar(&cfg.CadenceTurns, "cadence", cfg.CadenceTurns, "minimum turns between story injections")
	fs.StringVar(&cfg.SeverityPath, "severity-dataset", cfg.SeverityPath, "biome severity yaml path (optional)")
	fs.StringVar(&cfg.CataclysmKind, "cataclysm-kind", cfg.CataclysmKind, "hazard kind to arm the cataclysm clock with (empty = inactive)")
	fs.StringVar(&cfg.CataclysmFocus, "cataclysm-focus", cfg.CataclysmFocus, "focus biome for cataclysm severity pressure (optional)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.Ticks < 1 {
		return Config{}, enginerrors.New(enginerrors.CodeConfigInvalid, "ticks must be at least 1")
	}
	return cfg, nil
}

// Run executes the engine simulation loop.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceEngine, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.StoragePath)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer store.Close()
		return runLoop(ctx, cfg, store, store)
	})
}

// runLoop drives the simulation against any world store. Split from Run so
// tests can use in-memory storage.
func runLoop(ctx context.Context, cfg Config, store storage.WorldStore, telemetryStore storage.TelemetryStore) error {
	severity := loadSeverity(cfg.SeverityPath)
	emitter := telemetry.NewEmitter(telemetryStore)
	tracer := otel.Tracer(tracerName)

	bus := event.NewBus()
	quest.New(store).Register(bus)
	director.New(store, cfg.CadenceTurns).Register(bus)
	p := progression.New(store, bus, severity)

	w, err := bootstrapWorld(ctx, cfg, store)
	if err != nil {
		return err
	}
	if err := activateCataclysm(ctx, cfg, store, w); err != nil {
		return err
	}
	log.Printf("world %q at turn %d (seed %d, threat %d)", w.Name, w.CurrentTurn, w.RNGSeed, w.ThreatLevel)

	ticks := cfg.Ticks
	if ticks < 1 {
		ticks = 1
	}
	for i := 0; i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := runTick(ctx, tracer, store, p, bus, emitter); err != nil {
			return err
		}
	}

	final, err := store.LoadDefault(ctx)
	if err != nil {
		return fmt.Errorf("load final world: %w", err)
	}
	msg := fmt.Sprintf("run complete: turn %d tension %d", final.CurrentTurn, final.Narrative().TensionLevel)
	log.Print(msg)
	_ = emitter.Emit(ctx, telemetry.SeverityInfo, "engine", msg, final.CurrentTurn)
	return nil
}

// runTick advances the world one turn under its own span, so an exported
// trace carries one engine.tick span per simulated turn.
func runTick(ctx context.Context, tracer trace.Tracer, store storage.WorldStore, p *progression.Progression, bus *event.Bus, emitter *telemetry.Emitter) error {
	ctx, span := tracer.Start(ctx, "engine.tick")
	defer span.End()

	loaded, err := store.LoadDefault(ctx)
	if err != nil {
		return fmt.Errorf("load world: %w", err)
	}
	if err := p.Tick(ctx, loaded, 1, true); err != nil {
		return fmt.Errorf("tick %d: %w", loaded.CurrentTurn, err)
	}
	for _, handlerErr := range bus.LastPublishErrors() {
		log.Printf("tick %d handler: %v", loaded.CurrentTurn, handlerErr)
		_ = emitter.Emit(ctx, telemetry.SeverityWarn, "engine", handlerErr.Error(), loaded.CurrentTurn)
	}

	settled, err := store.LoadDefault(ctx)
	if err != nil {
		return fmt.Errorf("reload world: %w", err)
	}
	narrative := settled.Narrative()
	span.SetAttributes(
		attribute.Int("world.turn", settled.CurrentTurn),
		attribute.Int("narrative.tension", narrative.TensionLevel),
		attribute.Int("narrative.injections", len(narrative.Injections)),
	)
	line := fmt.Sprintf("turn %d tension %d injections %d", settled.CurrentTurn, narrative.TensionLevel, len(narrative.Injections))
	if clock := settled.Cataclysm(); clock.Active {
		span.SetAttributes(
			attribute.String("cataclysm.phase", clock.Phase),
			attribute.Int("cataclysm.progress", clock.Progress),
		)
		line += fmt.Sprintf(" cataclysm %s/%d", clock.Phase, clock.Progress)
	}
	log.Print(line)
	return nil
}

// bootstrapWorld loads the default world, creating one when the store is
// empty. An explicit seed wins over a random one.
func bootstrapWorld(ctx context.Context, cfg Config, store storage.WorldStore) (*world.World, error) {
	w, err := store.LoadDefault(ctx)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("load world: %w", err)
	}
	if strings.TrimSpace(cfg.WorldName) == "" {
		return nil, enginerrors.New(enginerrors.CodeWorldNameEmpty, "world name is required")
	}

	seedValue := cfg.Seed
	if seedValue == 0 {
		seedValue, err = random.NewWorldSeed()
		if err != nil {
			return nil, fmt.Errorf("generate world seed: %w", err)
		}
	}
	w = &world.World{Name: cfg.WorldName, RNGSeed: seedValue, ThreatLevel: cfg.ThreatLevel}
	if err := store.Save(ctx, w); err != nil {
		return nil, fmt.Errorf("bootstrap world: %w", err)
	}
	log.Printf("bootstrapped world %q with seed %d", w.Name, w.RNGSeed)
	return w, nil
}

// activateCataclysm arms the hazard clock when a kind is configured and no
// clock is already running. The clock seed is derived from the world seed
// once, so pushback contract seed keys stay stable across resumed runs.
func activateCataclysm(ctx context.Context, cfg Config, store storage.WorldStore, w *world.World) error {
	kind := strings.TrimSpace(cfg.CataclysmKind)
	if kind == "" {
		return nil
	}
	clock := w.Cataclysm()
	if clock.Active {
		return nil
	}

	clock.Active = true
	clock.Kind = kind
	clock.Phase = world.PhaseWhispers
	clock.StartedTurn = w.CurrentTurn
	clock.FocusBiome = reference.NormalizeSlug(cfg.CataclysmFocus)
	clock.Seed = seed.Derive("world.cataclysm.clock", map[string]any{
		"world_seed":   w.RNGSeed,
		"kind":         kind,
		"started_turn": w.CurrentTurn,
	})
	if err := store.Save(ctx, w); err != nil {
		return fmt.Errorf("save world: %w", err)
	}
	log.Printf("cataclysm %q armed at turn %d", kind, w.CurrentTurn)
	return nil
}

// loadSeverity reads the optional biome severity dataset. Reference data is
// advisory, so a load failure logs and falls back to neutral pressure.
func loadSeverity(path string) reference.SeverityIndex {
	if path == "" {
		return nil
	}
	index, err := reference.LoadSeverityIndex(path)
	if err != nil {
		log.Printf("severity dataset: %v", err)
		return nil
	}
	return index
}
