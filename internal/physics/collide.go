package physics

import (
	"slices"

	"github.com/san-kum/kinetic/internal/dynamo"
)

// Collider resolves pairwise elastic collisions in place and returns the
// number of resolved pairs.
type Collider interface {
	Name() string
	Resolve(g *dynamo.Gas, radius float64) int
}

// resolvePair exchanges the normal velocity components of i and j when
// they are closer than the radius. Coincident particles have no normal
// and are skipped.
func resolvePair(g *dynamo.Gas, i, j int, r2 float64, approachingOnly bool) bool {
	diff := g.Pos[i].Sub(g.Pos[j])
	d2 := diff.Norm2()
	if d2 >= r2 || d2 == 0 {
		return false
	}

	n := diff.Scale(1 / diff.Norm())
	v1, v2 := g.Vel[i], g.Vel[j]
	k := v1.Sub(v2).Dot(n)
	if approachingOnly && k >= 0 {
		return false
	}

	g.Vel[i] = v1.Sub(n.Scale(k))
	g.Vel[j] = v2.Add(n.Scale(k))
	return true
}

// PairSweep tests every pair i<j in index order.
type PairSweep struct {
	ApproachingOnly bool
}

func NewPairSweep() *PairSweep { return &PairSweep{} }

func (p *PairSweep) Name() string { return "pair" }

func (p *PairSweep) Resolve(g *dynamo.Gas, radius float64) int {
	r2 := radius * radius
	n := g.Len()
	count := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if resolvePair(g, i, j, r2, p.ApproachingOnly) {
				count++
			}
		}
	}
	return count
}

// maxCellsPerAxis caps the grid at 64^3 cells.
const maxCellsPerAxis = 64

// forward holds the 13 neighbour offsets that follow (0,0,0) in z,y,x
// order, so every pair of adjacent cells is visited once.
var forward = func() [][3]int {
	offs := make([][3]int, 0, 13)
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dz > 0 || (dz == 0 && dy > 0) || (dz == 0 && dy == 0 && dx > 0) {
					offs = append(offs, [3]int{dx, dy, dz})
				}
			}
		}
	}
	return offs
}()

// GridSweep buckets particles into cells no smaller than the radius and
// only tests neighbouring cells. Candidate pairs are sorted into (i, j)
// order before resolution so the outcome equals PairSweep's.
type GridSweep struct {
	ApproachingOnly bool

	head  []int32
	next  []int32
	pairs []uint64
}

func NewGridSweep() *GridSweep { return &GridSweep{} }

func (s *GridSweep) Name() string { return "grid" }

func (s *GridSweep) Resolve(g *dynamo.Gas, radius float64) int {
	n := g.Len()
	if n < 2 || radius <= 0 {
		return 0
	}

	side := g.Box.Side()
	cells := int(side / radius)
	if cells < 1 {
		cells = 1
	}
	if cells > maxCellsPerAxis {
		cells = maxCellsPerAxis
	}
	size := side / float64(cells)

	s.bucket(g, cells, size)

	r2 := radius * radius
	s.pairs = s.pairs[:0]

	for cz := 0; cz < cells; cz++ {
		for cy := 0; cy < cells; cy++ {
			for cx := 0; cx < cells; cx++ {
				c := (cz*cells+cy)*cells + cx

				for a := s.head[c]; a >= 0; a = s.next[a] {
					for b := s.next[a]; b >= 0; b = s.next[b] {
						s.addCandidate(g, int(a), int(b), r2)
					}
				}

				for _, off := range forward {
					nx, ny, nz := cx+off[0], cy+off[1], cz+off[2]
					if nx < 0 || ny < 0 || nz < 0 || nx >= cells || ny >= cells || nz >= cells {
						continue
					}
					nc := (nz*cells+ny)*cells + nx
					for a := s.head[c]; a >= 0; a = s.next[a] {
						for b := s.head[nc]; b >= 0; b = s.next[b] {
							s.addCandidate(g, int(a), int(b), r2)
						}
					}
				}
			}
		}
	}

	slices.Sort(s.pairs)

	count := 0
	for _, key := range s.pairs {
		i, j := int(key>>32), int(key&0xffffffff)
		if resolvePair(g, i, j, r2, s.ApproachingOnly) {
			count++
		}
	}
	return count
}

func (s *GridSweep) bucket(g *dynamo.Gas, cells int, size float64) {
	total := cells * cells * cells
	if cap(s.head) < total {
		s.head = make([]int32, total)
	}
	s.head = s.head[:total]
	for i := range s.head {
		s.head[i] = -1
	}

	n := g.Len()
	if cap(s.next) < n {
		s.next = make([]int32, n)
	}
	s.next = s.next[:n]

	lo := g.Box.Lo
	for i := n - 1; i >= 0; i-- {
		p := g.Pos[i]
		c := (cellIndex(p.Z, lo, size, cells)*cells+cellIndex(p.Y, lo, size, cells))*cells + cellIndex(p.X, lo, size, cells)
		s.next[i] = s.head[c]
		s.head[c] = int32(i)
	}
}

// addCandidate keeps pairs already inside the radius. Positions do not
// change while collisions are resolved, so the filter is exact.
func (s *GridSweep) addCandidate(g *dynamo.Gas, a, b int, r2 float64) {
	if g.Pos[a].Sub(g.Pos[b]).Norm2() >= r2 {
		return
	}
	if a > b {
		a, b = b, a
	}
	s.pairs = append(s.pairs, uint64(a)<<32|uint64(b))
}

func cellIndex(x, lo, size float64, cells int) int {
	c := int((x - lo) / size)
	if c < 0 {
		return 0
	}
	if c >= cells {
		return cells - 1
	}
	return c
}
