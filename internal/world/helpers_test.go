package world

import (
	"container/heap"
	"math/rand"

	"github.com/talgya/mini-planet/internal/noise"
)

func mustSimplex(seed int64) noise.Field {
	return noise.NewSimplex(seed)
}

func newTestRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func pushEntry(q *costQueue, e queueEntry) {
	heap.Push(q, e)
}

func popEntry(q *costQueue) queueEntry {
	return heap.Pop(q).(queueEntry)
}
