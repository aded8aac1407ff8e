// Package api provides the HTTP API over the published world and stored runs.
// GET endpoints are public. POST and DELETE endpoints require a bearer token;
// regeneration and publishing replace the published world atomically.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/mini-planet/internal/entropy"
	"github.com/talgya/mini-planet/internal/noise"
	"github.com/talgya/mini-planet/internal/persistence"
	"github.com/talgya/mini-planet/internal/world"
)

// Server serves the published world over HTTP.
type Server struct {
	Store    *world.Store
	DB       *persistence.DB // Optional; regenerated worlds are saved when set
	Entropy  *entropy.Client // Optional seed source for unseeded regeneration
	Base     world.GenConfig // Defaults for POST /api/v1/generate
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	// GenerateLimit caps regenerations per client per hour (0 = 10).
	GenerateLimit int
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	limit := s.GenerateLimit
	if limit <= 0 {
		limit = 10
	}
	generateLimiter := NewRateLimiter(limit, time.Hour)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.withWorld(s.handleStatus))
	mux.HandleFunc("/api/v1/map", s.withWorld(s.handleMap))
	mux.HandleFunc("/api/v1/cell/", s.withWorld(s.handleCell))
	mux.HandleFunc("/api/v1/territories", s.withWorld(s.handleTerritories))
	mux.HandleFunc("/api/v1/biomes", s.withWorld(s.handleBiomes))
	mux.HandleFunc("/api/v1/worlds", s.handleWorlds)
	mux.HandleFunc("/api/v1/worlds/", s.adminOnly(s.handleStoredWorld))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/generate", s.adminOnly(RateLimitMiddleware(generateLimiter, s.handleGenerate)))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	handler := s.Handler()
	go func() {
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST and DELETE requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodDelete {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no PLANET_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

// worldHandler receives the snapshot loaded once for the request.
type worldHandler func(w http.ResponseWriter, r *http.Request, snap *world.World)

// withWorld loads the published world once so a concurrent regeneration
// cannot change it halfway through a response.
func (s *Server) withWorld(next worldHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		snap := s.Store.Load()
		if snap == nil {
			http.Error(w, "no world generated yet", http.StatusServiceUnavailable)
			return
		}
		next(w, r, snap)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request, snap *world.World) {
	writeJSON(w, statusOf(snap))
}

func statusOf(snap *world.World) map[string]any {
	land := 0
	for i := range snap.Elevation {
		if !snap.IsOcean(i) {
			land++
		}
	}
	return map[string]any{
		"id":           snap.ID,
		"seed":         snap.Seed,
		"size":         snap.Size,
		"sea_level":    snap.SeaLevel,
		"scale":        snap.Config.Scale,
		"octaves":      snap.Config.Octaves,
		"noise":        snap.Config.Noise.String(),
		"cells":        snap.CellCount(),
		"land_cells":   land,
		"territories":  len(snap.Territories) - 1,
		"generated_at": snap.GeneratedAt.UTC().Format(time.RFC3339),
		"elapsed_ms":   snap.Elapsed.Milliseconds(),
	}
}

// handleMap returns one layer as a flat row-major array (index y*size+x).
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request, snap *world.World) {
	layer := r.URL.Query().Get("layer")
	if layer == "" {
		layer = "biome"
	}

	var values any
	switch layer {
	case "elevation":
		values = snap.Elevation
	case "temperature":
		values = snap.Temperature
	case "humidity":
		values = snap.Humidity
	case "biome":
		biomes := make([]int, len(snap.Biomes))
		for i, b := range snap.Biomes {
			biomes[i] = int(b)
		}
		values = biomes
	case "territory":
		values = snap.TerritoryIDs
	default:
		http.Error(w, "layer must be one of elevation, temperature, humidity, biome, territory", http.StatusBadRequest)
		return
	}

	writeJSON(w, map[string]any{
		"id":     snap.ID,
		"size":   snap.Size,
		"layer":  layer,
		"values": values,
	})
}

// handleCell returns one cell: GET /api/v1/cell/:x/:y. Longitude wraps.
func (s *Server) handleCell(w http.ResponseWriter, r *http.Request, snap *world.World) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// api/v1/cell/:x/:y → parts[3]=x parts[4]=y
	if len(parts) != 5 {
		http.Error(w, "usage: /api/v1/cell/:x/:y", http.StatusBadRequest)
		return
	}
	x, err1 := strconv.Atoi(parts[3])
	y, err2 := strconv.Atoi(parts[4])
	if err1 != nil || err2 != nil {
		http.Error(w, "invalid coordinates", http.StatusBadRequest)
		return
	}
	x = ((x % snap.Size) + snap.Size) % snap.Size

	cell, ok := snap.Cell(x, y)
	if !ok {
		http.Error(w, "cell not found", http.StatusNotFound)
		return
	}

	resp := map[string]any{
		"cell":       cell,
		"biome_name": cell.Biome.String(),
		"border":     snap.IsBorder(x, y),
	}
	if t, ok := snap.Territory(cell.TerritoryID); ok {
		resp["territory"] = t
	}
	writeJSON(w, resp)
}

func (s *Server) handleTerritories(w http.ResponseWriter, r *http.Request, snap *world.World) {
	list := make([]world.Territory, 0, len(snap.Territories))
	for _, t := range snap.Territories {
		if t.ID != 0 {
			list = append(list, t)
		}
	}
	writeJSON(w, list)
}

func (s *Server) handleBiomes(w http.ResponseWriter, r *http.Request, snap *world.World) {
	type biomeEntry struct {
		ID    int    `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
		Cells int    `json:"cells"`
	}

	counts := world.BiomeCounts(snap)
	entries := make([]biomeEntry, 0, len(world.AllBiomes))
	for _, b := range world.AllBiomes {
		entries = append(entries, biomeEntry{
			ID:    int(b),
			Name:  b.String(),
			Color: biomeColor(b).Hex(),
			Cells: counts[b],
		})
	}
	writeJSON(w, entries)
}

func (s *Server) handleWorlds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "persistence disabled", http.StatusNotFound)
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	worlds, err := s.DB.ListWorlds(limit)
	if err != nil {
		slog.Error("list worlds failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, worlds)
}

// handleStoredWorld serves one persisted world:
//
//	GET    /api/v1/worlds/:id          summary of the stored world
//	POST   /api/v1/worlds/:id/publish  load it and make it the published world
//	DELETE /api/v1/worlds/:id          remove it from storage
func (s *Server) handleStoredWorld(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "persistence disabled", http.StatusNotFound)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// api/v1/worlds/:id[/publish] → parts[3]=id
	if len(parts) < 4 || len(parts) > 5 || (len(parts) == 5 && parts[4] != "publish") {
		http.Error(w, "usage: /api/v1/worlds/:id[/publish]", http.StatusNotFound)
		return
	}
	id, err := uuid.Parse(parts[3])
	if err != nil {
		http.Error(w, "invalid world id", http.StatusBadRequest)
		return
	}
	publish := len(parts) == 5

	switch {
	case r.Method == http.MethodGet && !publish:
		stored, err := s.DB.LoadWorld(id)
		if err != nil {
			s.storageError(w, err)
			return
		}
		writeJSON(w, statusOf(stored))

	case r.Method == http.MethodPost && publish:
		stored, err := s.DB.LoadWorld(id)
		if err != nil {
			s.storageError(w, err)
			return
		}
		s.Store.Publish(stored)
		slog.Info("stored world published", "id", stored.ID, "seed", stored.Seed)
		writeJSON(w, statusOf(stored))

	case r.Method == http.MethodDelete && !publish:
		if err := s.DB.DeleteWorld(id); err != nil {
			s.storageError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) storageError(w http.ResponseWriter, err error) {
	if errors.Is(err, persistence.ErrNotFound) {
		http.Error(w, "world not found", http.StatusNotFound)
		return
	}
	slog.Error("storage request failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// generateRequest overrides fields of the server's base config.
type generateRequest struct {
	Size           *int     `json:"size"`
	SeaLevel       *float64 `json:"sea_level"`
	Scale          *float64 `json:"scale"`
	Octaves        *int     `json:"octaves"`
	Territories    *int     `json:"territories"`
	TerritoryNames []string `json:"territory_names"`
	Seed           *int64   `json:"seed"`
	Noise          *string  `json:"noise"`
}

func (req generateRequest) apply(cfg world.GenConfig) (world.GenConfig, error) {
	if req.Size != nil {
		cfg.Size = *req.Size
	}
	if req.SeaLevel != nil {
		cfg.SeaLevel = *req.SeaLevel
	}
	if req.Scale != nil {
		cfg.Scale = *req.Scale
	}
	if req.Octaves != nil {
		cfg.Octaves = *req.Octaves
	}
	if req.Territories != nil {
		cfg.NumTerritories = *req.Territories
		cfg.GenerateTerritories = *req.Territories > 0
	}
	if req.TerritoryNames != nil {
		cfg.TerritoryNames = req.TerritoryNames
	}
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	}
	if req.Noise != nil {
		kind, err := noise.ParseKind(*req.Noise)
		if err != nil {
			return cfg, fmt.Errorf("%w: %v", world.ErrInvalidConfig, err)
		}
		cfg.Noise = kind
	}
	return cfg, nil
}

// handleGenerate regenerates and publishes a new world: POST /api/v1/generate.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	cfg, err := req.apply(s.Base)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if cfg.Seed == 0 && s.Entropy.Enabled() {
		cfg.Seed = entropy.Seed(s.Entropy)
	}

	snap, err := s.Store.Regenerate(cfg)
	switch {
	case errors.Is(err, world.ErrInvalidConfig):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, world.ErrNoLand):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	case err != nil:
		slog.Error("generation failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if s.DB != nil {
		if err := s.DB.SaveWorld(snap); err != nil {
			slog.Error("save world failed", "id", snap.ID, "error", err)
		}
	}

	writeJSON(w, statusOf(snap))
}

// biomeColor is the display palette for biome maps.
func biomeColor(b world.Biome) world.Color {
	switch b {
	case world.BiomeOcean:
		return world.Color{R: 0, G: 105, B: 148, A: 255}
	case world.BiomeTundra:
		return world.Color{R: 221, G: 221, B: 187, A: 255}
	case world.BiomeTaiga:
		return world.Color{R: 153, G: 170, B: 119, A: 255}
	case world.BiomeGrassland:
		return world.Color{R: 196, G: 212, B: 170, A: 255}
	case world.BiomeTemperateForest:
		return world.Color{R: 136, G: 170, B: 85, A: 255}
	case world.BiomeTropicalRainforest:
		return world.Color{R: 61, G: 130, B: 61, A: 255}
	case world.BiomeDesert:
		return world.Color{R: 238, G: 218, B: 130, A: 255}
	case world.BiomeSavanna:
		return world.Color{R: 177, G: 209, B: 110, A: 255}
	case world.BiomeMediterranean:
		return world.Color{R: 200, G: 200, B: 120, A: 255}
	case world.BiomeMountain:
		return world.Color{R: 158, G: 158, B: 158, A: 255}
	default:
		return world.Color{A: 255}
	}
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
