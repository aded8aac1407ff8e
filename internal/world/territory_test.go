package world

import (
	"errors"
	"math"
	"testing"
)

// gridFromRows builds a square elevation grid: '~' ocean, '.' plains, '^' mountain.
func gridFromRows(t *testing.T, rows ...string) ElevationGrid {
	t.Helper()
	size := len(rows)
	g := ElevationGrid{Size: size, SeaLevel: 0.5, Elevation: make([]float64, size*size)}
	for y, row := range rows {
		if len(row) != size {
			t.Fatalf("row %d has %d cells, want %d", y, len(row), size)
		}
		for x, c := range row {
			switch c {
			case '~':
				g.Elevation[g.Index(x, y)] = 0.2
			case '.':
				g.Elevation[g.Index(x, y)] = 0.6
			case '^':
				g.Elevation[g.Index(x, y)] = 0.9
			default:
				t.Fatalf("unknown cell %q", c)
			}
		}
	}
	return g
}

func defaultOpts() TerritoryOptions {
	return TerritoryOptions{PlainsCost: defaultPlainsCost, MountainCost: defaultMountainCost}
}

func TestNeighborsWrapLongitude(t *testing.T) {
	const size = 8
	for y := 0; y < size; y++ {
		found := false
		for _, n := range Neighbors(size-1, y, size) {
			if n == (Coord{X: 0, Y: y}) {
				found = true
			}
		}
		if !found {
			t.Errorf("(%d, %d) is not adjacent to (0, %d)", size-1, y, y)
		}

		found = false
		for _, n := range Neighbors(0, y, size) {
			if n == (Coord{X: size - 1, Y: y}) {
				found = true
			}
		}
		if !found {
			t.Errorf("(0, %d) is not adjacent to (%d, %d)", y, size-1, y)
		}
	}
}

func TestNeighborsPolesDoNotWrap(t *testing.T) {
	const size = 8
	for x := 0; x < size; x++ {
		top := Neighbors(x, 0, size)
		if len(top) != 3 {
			t.Errorf("(%d, 0) has %d neighbors, want 3", x, len(top))
		}
		for _, n := range top {
			if n.Y < 0 || n.Y == size-1 {
				t.Errorf("(%d, 0) has neighbor %v across the pole", x, n)
			}
		}

		bottom := Neighbors(x, size-1, size)
		if len(bottom) != 3 {
			t.Errorf("(%d, %d) has %d neighbors, want 3", x, size-1, len(bottom))
		}
		for _, n := range bottom {
			if n.Y >= size || n.Y == 0 {
				t.Errorf("(%d, %d) has neighbor %v across the pole", x, size-1, n)
			}
		}
	}
	if got := len(Neighbors(3, 4, size)); got != 4 {
		t.Errorf("interior cell has %d neighbors, want 4", got)
	}
}

func TestNeighborsTinyGrids(t *testing.T) {
	if got := Neighbors(0, 0, 1); len(got) != 0 {
		t.Errorf("size 1 neighbors = %v, want none", got)
	}
	got := Neighbors(0, 0, 2)
	want := []Coord{{X: 1, Y: 0}, {X: 0, Y: 1}}
	if len(got) != len(want) {
		t.Fatalf("size 2 neighbors = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("size 2 neighbor %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestGrowWrapsAcrossLongitude(t *testing.T) {
	g := gridFromRows(t,
		"......",
		"......",
		"......",
		"......",
		"......",
		"......",
	)
	capitals := []int{g.Index(0, 0), g.Index(3, 0)}
	ids := growTerritories(g, capitals, defaultOpts())

	// Column 5 is one step from column 0 through the seam.
	want := []int{1, 1, 2, 2, 2, 1}
	for y := 0; y < g.Size; y++ {
		for x := 0; x < g.Size; x++ {
			if got := ids[g.Index(x, y)]; got != want[x] {
				t.Errorf("cell (%d, %d) = %d, want %d", x, y, got, want[x])
			}
		}
	}
}

func TestGrowOceanBlocksAndPolesDoNotWrap(t *testing.T) {
	g := gridFromRows(t,
		".....",
		".....",
		"~~~~~",
		".....",
		".....",
	)
	ids := growTerritories(g, []int{g.Index(2, 0)}, defaultOpts())

	for y := 0; y < g.Size; y++ {
		for x := 0; x < g.Size; x++ {
			got := ids[g.Index(x, y)]
			want := 0
			if y < 2 {
				want = 1
			}
			if got != want {
				t.Errorf("cell (%d, %d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestGrowMountainsCostMore(t *testing.T) {
	g := gridFromRows(t,
		"~~~~~~~",
		"~~~~~~~",
		"~~~~~~~",
		".^...~~",
		"~~~~~~~",
		"~~~~~~~",
		"~~~~~~~",
	)
	ids := growTerritories(g, []int{g.Index(0, 3), g.Index(4, 3)}, defaultOpts())

	// Through the mountain, territory 1 reaches (2,3) at cost 5; territory 2 at cost 2.
	want := []int{1, 1, 2, 2, 2, 0, 0}
	for x, w := range want {
		if got := ids[g.Index(x, 3)]; got != w {
			t.Errorf("cell (%d, 3) = %d, want %d", x, got, w)
		}
	}
}

func TestGrowCheaperRouteAroundMountains(t *testing.T) {
	g := gridFromRows(t,
		".....",
		".^^^.",
		".^..^",
		".^^^.",
		".....",
	)
	// The pocket at (2,2) and (3,2) is walled in by mountains; the only way in
	// costs one mountain step from any side.
	ids := growTerritories(g, []int{g.Index(0, 0)}, defaultOpts())
	for i, id := range ids {
		if id != 1 {
			t.Errorf("cell %d = %d, want 1 (single territory reaches all land)", i, id)
		}
	}
}

func TestGrowTerritoriesCoverage(t *testing.T) {
	cfg := SmallTestConfig()
	cfg.Size = 64
	cfg.Octaves = 4
	f := mustSimplex(7)
	g := GenerateElevation(cfg, f)

	const k = 6
	tm, err := GrowTerritories(g, TerritoryOptions{Count: k, Seed: 107})
	if err != nil {
		t.Fatalf("GrowTerritories: %v", err)
	}
	if len(tm.Territories) != k+1 {
		t.Fatalf("registry has %d entries, want %d", len(tm.Territories), k+1)
	}
	if tm.Territories[0] != (Territory{}) {
		t.Errorf("entry 0 = %+v, want zero value", tm.Territories[0])
	}

	counts := make(map[int]int)
	for i, id := range tm.IDs {
		if id < 0 || id > k {
			t.Fatalf("cell %d has territory %d outside 0..%d", i, id, k)
		}
		if g.IsOcean(i) && id != 0 {
			t.Errorf("ocean cell %d owned by %d", i, id)
		}
		counts[id]++
	}

	seenCapitals := make(map[Coord]bool)
	for id := 1; id <= k; id++ {
		tr := tm.Territories[id]
		if tr.ID != id {
			t.Errorf("territory %d has ID %d", id, tr.ID)
		}
		if tr.Name == "" {
			t.Errorf("territory %d has no name", id)
		}
		if got := tm.IDs[g.Index(tr.Capital.X, tr.Capital.Y)]; got != id {
			t.Errorf("capital of territory %d owned by %d", id, got)
		}
		if g.IsOcean(g.Index(tr.Capital.X, tr.Capital.Y)) {
			t.Errorf("capital of territory %d is ocean", id)
		}
		if seenCapitals[tr.Capital] {
			t.Errorf("capital %v used twice", tr.Capital)
		}
		seenCapitals[tr.Capital] = true
		if tr.Cells != counts[id] {
			t.Errorf("territory %d reports %d cells, counted %d", id, tr.Cells, counts[id])
		}
	}
}

func TestGrowTerritoriesDeterministic(t *testing.T) {
	cfg := SmallTestConfig()
	g := GenerateElevation(cfg, mustSimplex(21))
	opts := TerritoryOptions{Count: 4, Seed: 121}

	a, err := GrowTerritories(g, opts)
	if err != nil {
		t.Fatalf("GrowTerritories: %v", err)
	}
	b, err := GrowTerritories(g, opts)
	if err != nil {
		t.Fatalf("GrowTerritories: %v", err)
	}
	for i := range a.IDs {
		if a.IDs[i] != b.IDs[i] {
			t.Fatalf("cell %d differs between runs: %d vs %d", i, a.IDs[i], b.IDs[i])
		}
	}
	for id := range a.Territories {
		if a.Territories[id] != b.Territories[id] {
			t.Errorf("territory %d differs: %+v vs %+v", id, a.Territories[id], b.Territories[id])
		}
	}
}

func TestGrowTerritoriesNoLand(t *testing.T) {
	g := gridFromRows(t,
		"~~~",
		"~.~",
		"~~~",
	)
	if _, err := GrowTerritories(g, TerritoryOptions{Count: 2}); !errors.Is(err, ErrNoLand) {
		t.Errorf("2 capitals on 1 land cell: error = %v, want ErrNoLand", err)
	}

	tm, err := GrowTerritories(g, TerritoryOptions{Count: 1})
	if err != nil {
		t.Fatalf("1 capital on 1 land cell: %v", err)
	}
	if got := tm.IDs[g.Index(1, 1)]; got != 1 {
		t.Errorf("only land cell owned by %d, want 1", got)
	}
}

func TestGrowTerritoriesZeroCount(t *testing.T) {
	g := gridFromRows(t, "..", "..")
	tm, err := GrowTerritories(g, TerritoryOptions{Count: 0})
	if err != nil {
		t.Fatalf("GrowTerritories: %v", err)
	}
	for i, id := range tm.IDs {
		if id != 0 {
			t.Errorf("cell %d owned by %d with no territories", i, id)
		}
	}
	if len(tm.Territories) != 1 {
		t.Errorf("registry has %d entries, want 1", len(tm.Territories))
	}
}

func TestTerritoryNamesOverride(t *testing.T) {
	g := gridFromRows(t,
		"....",
		"....",
		"....",
		"....",
	)
	tm, err := GrowTerritories(g, TerritoryOptions{
		Count: 3,
		Names: []string{"Aldmark", "", "Corvel"},
		Seed:  5,
	})
	if err != nil {
		t.Fatalf("GrowTerritories: %v", err)
	}
	if got := tm.Territories[1].Name; got != "Aldmark" {
		t.Errorf("territory 1 name = %q, want Aldmark", got)
	}
	if got := tm.Territories[2].Name; got == "" {
		t.Error("territory 2 should fall back to a generated name")
	}
	if got := tm.Territories[3].Name; got != "Corvel" {
		t.Errorf("territory 3 name = %q, want Corvel", got)
	}
}

func TestGenerateNamesUnique(t *testing.T) {
	names := generateNames(newTestRand(3), 2000)
	seen := make(map[string]bool)
	for _, n := range names {
		if seen[n] {
			t.Fatalf("name %q generated twice", n)
		}
		seen[n] = true
	}
}

func TestCostQueueOrder(t *testing.T) {
	q := costQueue{}
	for _, e := range []queueEntry{
		{cell: 4, cost: 3},
		{cell: 1, cost: 1},
		{cell: 9, cost: 2},
		{cell: 2, cost: 1, id: 2},
		{cell: 0, cost: 1, id: 1},
	} {
		pushEntry(&q, e)
	}
	var got []int
	for q.Len() > 0 {
		got = append(got, popEntry(&q).cell)
	}
	want := []int{1, 0, 2, 9, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pop order = %v, want %v", got, want)
		}
	}
}

func TestGrowUnusableCostsFallBackToDefaults(t *testing.T) {
	g := gridFromRows(t,
		"....",
		".^^.",
		"....",
		"~~~~",
	)
	tm, err := GrowTerritories(g, TerritoryOptions{
		Count:        1,
		PlainsCost:   math.NaN(),
		MountainCost: math.Inf(1),
		Seed:         3,
	})
	if err != nil {
		t.Fatalf("GrowTerritories: %v", err)
	}
	for i, id := range tm.IDs {
		want := 1
		if g.IsOcean(i) {
			want = 0
		}
		if id != want {
			t.Errorf("cell %d owner = %d, want %d", i, id, want)
		}
	}
	if tm.Territories[1].Cells != 12 {
		t.Errorf("territory cells = %d, want 12", tm.Territories[1].Cells)
	}
}
