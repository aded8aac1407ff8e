// Package persistence provides SQLite-based storage for generated worlds.
// The generator itself never touches storage; callers save finished snapshots.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/mini-planet/internal/noise"
	"github.com/talgya/mini-planet/internal/world"
)

// ErrNotFound is returned when a requested world is not stored.
var ErrNotFound = errors.New("world not found")

const latestWorldKey = "latest_world"

// DB wraps a SQLite connection for world storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS worlds (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		size INTEGER NOT NULL,
		sea_level REAL NOT NULL,
		scale REAL NOT NULL,
		octaves INTEGER NOT NULL,
		noise TEXT NOT NULL,
		generate_territories INTEGER NOT NULL,
		num_territories INTEGER NOT NULL,
		plains_cost REAL NOT NULL,
		mountain_cost REAL NOT NULL,
		generated_at INTEGER NOT NULL,
		elapsed_ns INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS cells (
		world_id TEXT NOT NULL,
		idx INTEGER NOT NULL,
		elevation REAL NOT NULL,
		temperature REAL NOT NULL,
		humidity REAL NOT NULL,
		biome INTEGER NOT NULL,
		territory_id INTEGER NOT NULL,
		PRIMARY KEY (world_id, idx)
	);

	CREATE TABLE IF NOT EXISTS territories (
		world_id TEXT NOT NULL,
		id INTEGER NOT NULL,
		name TEXT NOT NULL,
		color TEXT NOT NULL,
		capital_x INTEGER NOT NULL,
		capital_y INTEGER NOT NULL,
		cells INTEGER NOT NULL,
		PRIMARY KEY (world_id, id)
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_worlds_generated ON worlds(generated_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// WorldSummary describes a stored world without its cell data.
type WorldSummary struct {
	ID                  string  `db:"id" json:"id"`
	Seed                int64   `db:"seed" json:"seed"`
	Size                int     `db:"size" json:"size"`
	SeaLevel            float64 `db:"sea_level" json:"sea_level"`
	Scale               float64 `db:"scale" json:"scale"`
	Octaves             int     `db:"octaves" json:"octaves"`
	Noise               string  `db:"noise" json:"noise"`
	GenerateTerritories bool    `db:"generate_territories" json:"generate_territories"`
	NumTerritories      int     `db:"num_territories" json:"num_territories"`
	PlainsCost          float64 `db:"plains_cost" json:"plains_cost"`
	MountainCost        float64 `db:"mountain_cost" json:"mountain_cost"`
	GeneratedAt         int64   `db:"generated_at" json:"generated_at"`
	ElapsedNS           int64   `db:"elapsed_ns" json:"elapsed_ns"`
}

type cellRow struct {
	Idx         int     `db:"idx"`
	Elevation   float64 `db:"elevation"`
	Temperature float64 `db:"temperature"`
	Humidity    float64 `db:"humidity"`
	Biome       uint8   `db:"biome"`
	TerritoryID int     `db:"territory_id"`
}

type territoryRow struct {
	ID       int    `db:"id"`
	Name     string `db:"name"`
	Color    string `db:"color"`
	CapitalX int    `db:"capital_x"`
	CapitalY int    `db:"capital_y"`
	Cells    int    `db:"cells"`
}

// SaveWorld writes a world and marks it as the latest (full replace of any
// previous copy with the same ID).
func (db *DB) SaveWorld(w *world.World) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	id := w.ID.String()
	for _, table := range []string{"cells", "territories"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE world_id = ?", id); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	cfg := w.Config
	_, err = tx.Exec(`INSERT OR REPLACE INTO worlds
		(id, seed, size, sea_level, scale, octaves, noise, generate_territories,
		 num_territories, plains_cost, mountain_cost, generated_at, elapsed_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, w.Seed, w.Size, w.SeaLevel, cfg.Scale, cfg.Octaves, cfg.Noise.String(),
		cfg.GenerateTerritories, cfg.NumTerritories, cfg.PlainsCost, cfg.MountainCost,
		w.GeneratedAt.UnixNano(), int64(w.Elapsed),
	)
	if err != nil {
		return fmt.Errorf("insert world: %w", err)
	}

	stmt, err := tx.Preparex(`INSERT INTO cells
		(world_id, idx, elevation, temperature, humidity, biome, territory_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range w.Elevation {
		_, err := stmt.Exec(id, i, w.Elevation[i], w.Temperature[i], w.Humidity[i],
			uint8(w.Biomes[i]), w.TerritoryIDs[i])
		if err != nil {
			return fmt.Errorf("insert cell %d: %w", i, err)
		}
	}

	for _, t := range w.Territories {
		if t.ID == 0 {
			continue
		}
		_, err := tx.Exec(`INSERT INTO territories
			(world_id, id, name, color, capital_x, capital_y, cells)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, t.ID, t.Name, t.Color.Hex(), t.Capital.X, t.Capital.Y, t.Cells,
		)
		if err != nil {
			return fmt.Errorf("insert territory %d: %w", t.ID, err)
		}
	}

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		latestWorldKey, id,
	); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("world saved", "id", id, "cells", humanize.Comma(int64(len(w.Elevation))))
	return nil
}

// LoadWorld reads a stored world by ID.
func (db *DB) LoadWorld(id uuid.UUID) (*world.World, error) {
	var sum WorldSummary
	err := db.conn.Get(&sum, "SELECT * FROM worlds WHERE id = ?", id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load world: %w", err)
	}

	kind, err := noise.ParseKind(sum.Noise)
	if err != nil {
		return nil, fmt.Errorf("load world: %w", err)
	}

	n := sum.Size * sum.Size
	w := &world.World{
		ID:   id,
		Seed: sum.Seed,
		Config: world.GenConfig{
			Size:                sum.Size,
			SeaLevel:            sum.SeaLevel,
			Scale:               sum.Scale,
			Octaves:             sum.Octaves,
			GenerateTerritories: sum.GenerateTerritories,
			NumTerritories:      sum.NumTerritories,
			Seed:                sum.Seed,
			Noise:               kind,
			PlainsCost:          sum.PlainsCost,
			MountainCost:        sum.MountainCost,
		},
		GeneratedAt: time.Unix(0, sum.GeneratedAt),
		Elapsed:     time.Duration(sum.ElapsedNS),
		ClimateGrid: world.ClimateGrid{
			ElevationGrid: world.ElevationGrid{
				Size:      sum.Size,
				SeaLevel:  sum.SeaLevel,
				Elevation: make([]float64, n),
			},
			Temperature: make([]float64, n),
			Humidity:    make([]float64, n),
		},
		Biomes:       make([]world.Biome, n),
		TerritoryIDs: make([]int, n),
	}

	var cells []cellRow
	if err := db.conn.Select(&cells,
		"SELECT idx, elevation, temperature, humidity, biome, territory_id FROM cells WHERE world_id = ?",
		id.String(),
	); err != nil {
		return nil, fmt.Errorf("load cells: %w", err)
	}
	if len(cells) != n {
		return nil, fmt.Errorf("load cells: got %d, want %d", len(cells), n)
	}
	for _, c := range cells {
		if c.Idx < 0 || c.Idx >= n {
			return nil, fmt.Errorf("load cells: index %d out of range", c.Idx)
		}
		w.Elevation[c.Idx] = c.Elevation
		w.Temperature[c.Idx] = c.Temperature
		w.Humidity[c.Idx] = c.Humidity
		w.Biomes[c.Idx] = world.Biome(c.Biome)
		w.TerritoryIDs[c.Idx] = c.TerritoryID
	}

	var rows []territoryRow
	if err := db.conn.Select(&rows,
		"SELECT id, name, color, capital_x, capital_y, cells FROM territories WHERE world_id = ? ORDER BY id",
		id.String(),
	); err != nil {
		return nil, fmt.Errorf("load territories: %w", err)
	}
	w.Territories = make([]world.Territory, len(rows)+1)
	for _, r := range rows {
		if r.ID < 1 || r.ID > len(rows) {
			return nil, fmt.Errorf("load territories: id %d out of range", r.ID)
		}
		var color world.Color
		if err := color.UnmarshalText([]byte(r.Color)); err != nil {
			return nil, fmt.Errorf("load territory %d: %w", r.ID, err)
		}
		w.Territories[r.ID] = world.Territory{
			ID:      r.ID,
			Name:    r.Name,
			Color:   color,
			Capital: world.Coord{X: r.CapitalX, Y: r.CapitalY},
			Cells:   r.Cells,
		}
	}

	return w, nil
}

// ListWorlds returns stored worlds, most recent first.
func (db *DB) ListWorlds(limit int) ([]WorldSummary, error) {
	var worlds []WorldSummary
	err := db.conn.Select(&worlds,
		"SELECT * FROM worlds ORDER BY generated_at DESC LIMIT ?",
		limit,
	)
	return worlds, err
}

// LatestWorldID returns the ID of the most recently saved world.
func (db *DB) LatestWorldID() (uuid.UUID, error) {
	value, err := db.GetMeta(latestWorldKey)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(value)
}

// DeleteWorld removes a stored world with its cells and territories. If it
// was the latest world, the latest marker moves to the next most recent one.
func (db *DB) DeleteWorld(id uuid.UUID) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM cells WHERE world_id = ?",
		"DELETE FROM territories WHERE world_id = ?",
	} {
		if _, err := tx.Exec(q, id.String()); err != nil {
			return err
		}
	}
	res, err := tx.Exec("DELETE FROM worlds WHERE id = ?", id.String())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	var latest string
	err = tx.Get(&latest, "SELECT value FROM world_meta WHERE key = ?", latestWorldKey)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read meta: %w", err)
	}
	if latest == id.String() {
		var next string
		err := tx.Get(&next, "SELECT id FROM worlds ORDER BY generated_at DESC LIMIT 1")
		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = tx.Exec("DELETE FROM world_meta WHERE key = ?", latestWorldKey)
		case err == nil:
			_, err = tx.Exec("UPDATE world_meta SET value = ? WHERE key = ?", next, latestWorldKey)
		}
		if err != nil {
			return fmt.Errorf("update meta: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("world deleted", "id", id)
	return nil
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}
