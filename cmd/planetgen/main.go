// Command planetgen generates a planet surface, stores it, and optionally
// serves it over the HTTP API.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/talgya/mini-planet/internal/api"
	"github.com/talgya/mini-planet/internal/entropy"
	"github.com/talgya/mini-planet/internal/noise"
	"github.com/talgya/mini-planet/internal/persistence"
	"github.com/talgya/mini-planet/internal/world"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(os.Getenv("PLANET_LOG_LEVEL")),
	}))
	slog.SetDefault(logger)

	// ── Configuration ─────────────────────────────────────────────────
	cfg := world.DefaultGenConfig()
	cfg.Size = envIntOrDefault("PLANET_SIZE", cfg.Size)
	cfg.SeaLevel = envFloatOrDefault("PLANET_SEA_LEVEL", cfg.SeaLevel)
	cfg.Scale = envFloatOrDefault("PLANET_SCALE", cfg.Scale)
	cfg.Octaves = envIntOrDefault("PLANET_OCTAVES", cfg.Octaves)
	cfg.NumTerritories = envIntOrDefault("PLANET_TERRITORIES", cfg.NumTerritories)
	cfg.GenerateTerritories = cfg.NumTerritories > 0
	cfg.Seed = envInt64OrDefault("PLANET_SEED", 0)
	cfg.Workers = envIntOrDefault("PLANET_WORKERS", 0)

	kind, err := noise.ParseKind(os.Getenv("PLANET_NOISE"))
	if err != nil {
		slog.Error("invalid PLANET_NOISE", "error", err)
		os.Exit(1)
	}
	cfg.Noise = kind

	dbPath := envOrDefault("PLANET_DB", "data/planet.db")
	apiPort := envIntOrDefault("PLANET_PORT", 0)

	// ── Database ──────────────────────────────────────────────────────
	var db *persistence.DB
	if dbPath != "" && dbPath != "none" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			slog.Error("failed to create data directory", "error", err)
			os.Exit(1)
		}
		db, err = persistence.Open(dbPath)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("database opened", "path", dbPath)
	}

	entropyClient := entropy.NewClient(os.Getenv("RANDOM_ORG_KEY"))
	if entropyClient.Enabled() {
		slog.Info("random.org seeding enabled")
	}

	// ── Load or Generate World ────────────────────────────────────────
	// An explicit seed always regenerates; otherwise resume the latest
	// stored world unless PLANET_FRESH is set.
	store := world.NewStore(nil)
	var w *world.World
	if db != nil && cfg.Seed == 0 && !envBoolOrDefault("PLANET_FRESH", false) {
		w = restoreLatest(db)
		if w != nil {
			store.Publish(w)
		}
	}

	if w == nil {
		if cfg.Seed == 0 {
			cfg.Seed = entropy.Seed(entropyClient)
			slog.Info("drew seed", "seed", cfg.Seed)
		}
		w, err = store.Regenerate(cfg)
		if err != nil {
			slog.Error("world generation failed", "error", err)
			os.Exit(1)
		}
		if db != nil {
			if err := db.SaveWorld(w); err != nil {
				slog.Error("save failed", "error", err)
			}
		}
	}

	counts := world.BiomeCounts(w)
	land := 0
	for _, b := range world.AllBiomes {
		if b != world.BiomeOcean {
			land += counts[b]
		}
		slog.Debug("biome", "type", b.String(), "cells", humanize.Comma(int64(counts[b])))
	}

	territories := w.Territories[1:]
	sorted := make([]world.Territory, len(territories))
	copy(sorted, territories)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Cells > sorted[j].Cells })
	for _, t := range sorted {
		slog.Info("territory",
			"id", t.ID,
			"name", t.Name,
			"capital", fmt.Sprintf("%d,%d", t.Capital.X, t.Capital.Y),
			"cells", humanize.Comma(int64(t.Cells)),
		)
	}

	fmt.Printf("\nPlanet %s: %s cells, %s land, %d territories (seed %d).\n",
		w.ID, humanize.Comma(int64(w.CellCount())), humanize.Comma(int64(land)),
		len(territories), w.Seed)

	if apiPort <= 0 {
		return
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("PLANET_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("PLANET_ADMIN_KEY not set, POST /api/v1/generate will be disabled")
	}

	apiServer := &api.Server{
		Store:    store,
		DB:       db,
		Entropy:  entropyClient,
		Base:     cfg,
		Port:     apiPort,
		AdminKey: adminKey,
	}
	apiServer.Start()
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", apiPort)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)
}

// restoreLatest loads the most recently saved world, or returns nil if there
// is none or it cannot be read.
func restoreLatest(db *persistence.DB) *world.World {
	id, err := db.LatestWorldID()
	if errors.Is(err, persistence.ErrNotFound) {
		slog.Info("no saved world found, generating new world")
		return nil
	}
	if err != nil {
		slog.Warn("failed to read latest world, generating new world", "error", err)
		return nil
	}
	w, err := db.LoadWorld(id)
	if err != nil {
		slog.Warn("failed to load saved world, generating new world", "id", id, "error", err)
		return nil
	}
	slog.Info("world restored", "id", w.ID, "seed", w.Seed, "size", w.Size)
	return w
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("ignoring malformed integer", "key", key, "value", v)
	}
	return defaultVal
}

func envInt64OrDefault(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
		slog.Warn("ignoring malformed integer", "key", key, "value", v)
	}
	return defaultVal
}

func envBoolOrDefault(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		slog.Warn("ignoring malformed boolean", "key", key, "value", v)
	}
	return defaultVal
}

func envFloatOrDefault(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		slog.Warn("ignoring malformed number", "key", key, "value", v)
	}
	return defaultVal
}
