package partition

import "fmt"

// Grid is a workers x buckets table of ints stored row-major.
//
// As a count table, cell (w, b) is the number of keys worker w classified
// into bucket b. During classification worker w writes only row w; after
// the barrier the whole grid is read-only.
type Grid struct {
	workers int
	buckets int
	cells   []int
}

// NewGrid allocates a zeroed grid.
func NewGrid(workers, buckets int) *Grid {
	return &Grid{
		workers: workers,
		buckets: buckets,
		cells:   make([]int, workers*buckets),
	}
}

// Workers returns the number of rows.
func (g *Grid) Workers() int { return g.workers }

// Buckets returns the number of columns.
func (g *Grid) Buckets() int { return g.buckets }

// Row returns worker w's row. The slice aliases the grid.
func (g *Grid) Row(w int) []int {
	return g.cells[w*g.buckets : (w+1)*g.buckets]
}

// At returns cell (w, b).
func (g *Grid) At(w, b int) int {
	return g.cells[w*g.buckets+b]
}

// BucketTotals returns the column sums: the final size of every bucket.
func (g *Grid) BucketTotals() []int {
	totals := make([]int, g.buckets)
	for w := range g.workers {
		for b, c := range g.Row(w) {
			totals[b] += c
		}
	}
	return totals
}

// PlacementRow returns, for every bucket b, the output index where worker w
// writes its first bucket-b key:
//
//	offset(w, b) = sum of totals of buckets < b + sum of count(w', b) for w' < w
func (g *Grid) PlacementRow(w int) []int {
	offsets := BucketStarts(g.BucketTotals())
	for prev := range w {
		for b, c := range g.Row(prev) {
			offsets[b] += c
		}
	}
	return offsets
}

// Placement returns the full output placement table derived from a count
// grid. Cell (w, b) is offset(w, b).
func (g *Grid) Placement() *Grid {
	p := NewGrid(g.workers, g.buckets)
	starts := BucketStarts(g.BucketTotals())
	for b := range g.buckets {
		off := starts[b]
		for w := range g.workers {
			p.cells[w*g.buckets+b] = off
			off += g.At(w, b)
		}
	}
	return p
}

// String renders the grid one row per line, for test failure messages.
func (g *Grid) String() string {
	s := ""
	for w := range g.workers {
		s += fmt.Sprintln(g.Row(w))
	}
	return s
}
