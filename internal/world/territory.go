// Territory growth: multi-source Dijkstra from randomly placed land capitals.
// Each land cell is claimed by whichever capital reaches it at the lowest
// accumulated terrain cost. Ocean is impassable.
package world

import (
	"container/heap"
	"fmt"
	"math"
	"math/rand"

	"github.com/talgya/mini-planet/internal/phi"
)

const (
	defaultPlainsCost   = 1.0
	defaultMountainCost = 4.0

	// Rejection-sampling budget per cell of the grid.
	placementAttemptsPerCell = 64
)

// Territory is one grown region.
type Territory struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Color   Color  `json:"color"`
	Capital Coord  `json:"capital"`
	Cells   int    `json:"cells"`
}

// TerritoryOptions parameterizes GrowTerritories.
type TerritoryOptions struct {
	Count        int
	Names        []string // Optional; Names[i-1] names territory i
	PlainsCost   float64  // <= 0, NaN or Inf uses the default
	MountainCost float64  // <= 0, NaN or Inf uses the default
	Seed         int64
}

// TerritoryMap is the result of territory growth.
type TerritoryMap struct {
	IDs         []int       // Per cell, 0 = ocean or unreached
	Territories []Territory // Indexed by ID; entry 0 is reserved
}

// GrowTerritories places opts.Count capitals on distinct land cells and grows
// them across land by terrain-weighted shortest path. It fails with ErrNoLand
// when there are not enough land cells to place every capital.
func GrowTerritories(g ElevationGrid, opts TerritoryOptions) (TerritoryMap, error) {
	if opts.Count < 0 {
		return TerritoryMap{}, fmt.Errorf("%w: territory count %d < 0", ErrInvalidConfig, opts.Count)
	}
	opts.PlainsCost = usableCost(opts.PlainsCost, defaultPlainsCost)
	opts.MountainCost = usableCost(opts.MountainCost, defaultMountainCost)

	rng := rand.New(rand.NewSource(opts.Seed))
	capitals, err := placeCapitals(g, opts.Count, rng)
	if err != nil {
		return TerritoryMap{}, err
	}

	ids := growTerritories(g, capitals, opts)
	territories := buildRegistry(g.Size, capitals, ids, opts.Names, rng)
	return TerritoryMap{IDs: ids, Territories: territories}, nil
}

// growTerritories runs multi-source Dijkstra from the capitals. Capital k gets
// territory ID k+1. Costs are taken from opts and must be positive.
func growTerritories(g ElevationGrid, capitals []int, opts TerritoryOptions) []int {
	n := g.CellCount()
	ids := make([]int, n)
	best := make([]float64, n)
	for i := range best {
		best[i] = math.Inf(1)
	}

	pq := make(costQueue, 0, len(capitals))
	for k, idx := range capitals {
		id := k + 1
		ids[idx] = id
		best[idx] = 0
		heap.Push(&pq, queueEntry{cell: idx, cost: 0, id: id})
	}

	var buf [4]int
	for pq.Len() > 0 {
		cur := heap.Pop(&pq).(queueEntry)
		if cur.cost > best[cur.cell] {
			continue // Stale entry; a cheaper path was found after it was queued.
		}
		for _, next := range appendNeighbors(buf[:0], cur.cell, g.Size) {
			step, ok := moveCost(g, next, opts)
			if !ok {
				continue
			}
			c := cur.cost + step
			if c < best[next] {
				best[next] = c
				ids[next] = cur.id
				heap.Push(&pq, queueEntry{cell: next, cost: c, id: cur.id})
			}
		}
	}
	return ids
}

// moveCost returns the cost of entering cell i, or false if it cannot be entered.
func moveCost(g ElevationGrid, i int, opts TerritoryOptions) (float64, bool) {
	elev := g.Elevation[i]
	switch {
	case elev < g.SeaLevel:
		return 0, false
	case elev > MountainLevel:
		return opts.MountainCost, true
	default:
		return opts.PlainsCost, true
	}
}

// usableCost returns c if it is a positive finite cost, otherwise def.
func usableCost(c, def float64) float64 {
	if !(c > 0) || math.IsInf(c, 0) {
		return def
	}
	return c
}

// placeCapitals picks count distinct land cells by rejection sampling.
func placeCapitals(g ElevationGrid, count int, rng *rand.Rand) ([]int, error) {
	n := g.CellCount()

	land := 0
	for i := 0; i < n; i++ {
		if !g.IsOcean(i) {
			land++
		}
	}
	if land < count {
		return nil, fmt.Errorf("%w: %d land cells for %d territories", ErrNoLand, land, count)
	}

	capitals := make([]int, 0, count)
	taken := make(map[int]bool, count)
	attempts := placementAttemptsPerCell * n
	for len(capitals) < count {
		if attempts == 0 {
			return nil, fmt.Errorf("%w: placed %d of %d capitals", ErrNoLand, len(capitals), count)
		}
		attempts--

		i := rng.Intn(n)
		if g.IsOcean(i) || taken[i] {
			continue
		}
		taken[i] = true
		capitals = append(capitals, i)
	}
	return capitals, nil
}

// Neighbors returns the axis-aligned neighbors of (x, y). Longitude wraps;
// latitude does not, so the first and last rows have three neighbors.
func Neighbors(x, y, size int) []Coord {
	var buf [4]int
	idx := appendNeighbors(buf[:0], y*size+x, size)
	out := make([]Coord, len(idx))
	for k, i := range idx {
		out[k] = Coord{X: i % size, Y: i / size}
	}
	return out
}

// appendNeighbors appends the flat indices of the neighbors of cell i.
func appendNeighbors(dst []int, i, size int) []int {
	x, y := i%size, i/size
	if size > 1 {
		dst = append(dst, y*size+(x+1)%size)
	}
	if size > 2 {
		dst = append(dst, y*size+(x-1+size)%size)
	}
	if y > 0 {
		dst = append(dst, i-size)
	}
	if y < size-1 {
		dst = append(dst, i+size)
	}
	return dst
}

// buildRegistry assigns names, colors, capitals and cell counts.
func buildRegistry(size int, capitals []int, ids []int, names []string, rng *rand.Rand) []Territory {
	territories := make([]Territory, len(capitals)+1)

	generated := generateNames(rng, len(capitals))
	hue := rng.Float64() * 360
	for k, idx := range capitals {
		id := k + 1
		name := generated[k]
		if k < len(names) && names[k] != "" {
			name = names[k]
		}
		territories[id] = Territory{
			ID:      id,
			Name:    name,
			Color:   hsvColor(math.Mod(hue+float64(k)*phi.GoldenAngle, 360), 0.55, 0.85),
			Capital: Coord{X: idx % size, Y: idx / size},
		}
	}

	for _, id := range ids {
		if id > 0 {
			territories[id].Cells++
		}
	}
	return territories
}

type queueEntry struct {
	cell int
	cost float64
	id   int
}

// costQueue is a min-heap of queue entries ordered by accumulated cost.
type costQueue []queueEntry

func (q costQueue) Len() int { return len(q) }

func (q costQueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	if q[i].id != q[j].id {
		return q[i].id < q[j].id
	}
	return q[i].cell < q[j].cell
}

func (q costQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *costQueue) Push(x any) { *q = append(*q, x.(queueEntry)) }

func (q *costQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}
