package layout

import (
	"cmp"
	"slices"

	"github.com/Gaurav-Gosain/gridboard/internal/widget"
)

// maxPasses bounds the fixed-point iteration in solve. Real layouts settle in
// two or three passes.
const maxPasses = 64

type pin struct {
	idx  int
	rect widget.Rect
}

// Arrange resolves collisions and compacts nodes. Pinned ids keep their
// current rectangles and are placed first, in the order given; every other
// node is placed in reading order around them. The result is a fixed point:
// arranging it again with the same pins returns it unchanged.
func Arrange(nodes []Node, pinned []string, cfg Config) []Node {
	cols := cfg.columns()
	cur := make([]Node, len(nodes))
	for i, n := range nodes {
		cur[i] = n.Fit(cols)
	}
	var pins []pin
	for _, id := range pinned {
		i := IndexOf(cur, id)
		if i < 0 || slices.ContainsFunc(pins, func(p pin) bool { return p.idx == i }) {
			continue
		}
		pins = append(pins, pin{idx: i, rect: cur[i].Rect()})
	}
	return solve(cur, pins, cfg)
}

// solve repeats a placement pass until the arrangement stops changing. A
// pass can move the pinned node away from its target during compaction,
// which changes what the next pass sees, so a single pass is not stable. If
// the passes cycle, the smallest arrangement in the cycle is returned so
// that every member of the cycle maps to the same answer.
func solve(cur []Node, pins []pin, cfg Config) []Node {
	history := [][]Node{cur}
	for range maxPasses {
		next := place(cur, pins, cfg)
		if sameRects(next, cur) {
			return next
		}
		for i, seen := range history {
			if sameRects(seen, next) {
				return smallest(history[i:])
			}
		}
		history = append(history, next)
		cur = next
	}
	return cur
}

// place runs one pass: pins, then collision resolution in reading order,
// then compaction.
func place(in []Node, pins []pin, cfg Config) []Node {
	out := slices.Clone(in)
	pinned := make([]bool, len(out))
	placed := make([]int, 0, len(out))

	for _, p := range pins {
		out[p.idx] = out[p.idx].setRect(p.rect)
		pinned[p.idx] = true
		pushDown(out, p.idx, placed)
		placed = append(placed, p.idx)
	}

	order := make([]int, 0, len(out))
	for i := range out {
		if !pinned[i] {
			order = append(order, i)
		}
	}
	sortReading(out, order)

	for _, i := range order {
		if len(pins) > 0 && cfg.compact() == widget.CompactVertical {
			tryAbove(out, i, pins[0].idx, placed)
		}
		pushDown(out, i, placed)
		placed = append(placed, i)
	}

	compact(out, cfg.compact())
	return out
}

// tryAbove moves a node that collides with the moved node to just above it,
// when that spot is free. Without this a node dragged down onto a neighbour
// could never get past it once compaction pulls it back up.
func tryAbove(nodes []Node, i, moved int, placed []int) {
	m := nodes[moved]
	if !nodes[i].Rect().Overlaps(m.Rect()) {
		return
	}
	above := nodes[i]
	above.Y = max(m.Y-above.H, 0)
	if collides(nodes, above.Rect(), placed) < 0 {
		nodes[i] = above
	}
}

// pushDown moves node i below every placed node it collides with, until it
// collides with none.
func pushDown(nodes []Node, i int, placed []int) {
	for {
		bottom := -1
		r := nodes[i].Rect()
		for _, j := range placed {
			if r.Overlaps(nodes[j].Rect()) {
				bottom = max(bottom, nodes[j].Y+nodes[j].H)
			}
		}
		if bottom < 0 {
			return
		}
		nodes[i].Y = bottom
	}
}

// collides returns the first index in set whose node overlaps r, or -1.
func collides(nodes []Node, r widget.Rect, set []int) int {
	for _, j := range set {
		if r.Overlaps(nodes[j].Rect()) {
			return j
		}
	}
	return -1
}

func collidesAny(nodes []Node, i int, r widget.Rect) bool {
	for j := range nodes {
		if j != i && r.Overlaps(nodes[j].Rect()) {
			return true
		}
	}
	return false
}

// compact closes gaps. Vertical pulls nodes up in reading order, horizontal
// pulls them left in column order. The input must be overlap-free.
func compact(nodes []Node, mode widget.CompactMode) {
	order := make([]int, len(nodes))
	for i := range order {
		order[i] = i
	}
	switch mode {
	case widget.CompactVertical:
		sortReading(nodes, order)
		for _, i := range order {
			r := nodes[i].Rect()
			for r.Y > 0 {
				r.Y--
				if collidesAny(nodes, i, r) {
					r.Y++
					break
				}
			}
			nodes[i].Y = r.Y
		}
	case widget.CompactHorizontal:
		sortColumns(nodes, order)
		for _, i := range order {
			r := nodes[i].Rect()
			for r.X > 0 {
				r.X--
				if collidesAny(nodes, i, r) {
					r.X++
					break
				}
			}
			nodes[i].X = r.X
		}
	}
}

// sortReading orders indices top to bottom, then left to right, then by
// input position.
func sortReading(nodes []Node, order []int) {
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Or(
			cmp.Compare(nodes[a].Y, nodes[b].Y),
			cmp.Compare(nodes[a].X, nodes[b].X),
			cmp.Compare(a, b),
		)
	})
}

func sortColumns(nodes []Node, order []int) {
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Or(
			cmp.Compare(nodes[a].X, nodes[b].X),
			cmp.Compare(nodes[a].Y, nodes[b].Y),
			cmp.Compare(a, b),
		)
	})
}

func sameRects(a, b []Node) bool {
	return slices.EqualFunc(a, b, func(x, y Node) bool { return x.Rect() == y.Rect() })
}

func compareRects(a, b []Node) int {
	for i := range min(len(a), len(b)) {
		ra, rb := a[i].Rect(), b[i].Rect()
		if c := cmp.Or(
			cmp.Compare(ra.Y, rb.Y),
			cmp.Compare(ra.X, rb.X),
			cmp.Compare(ra.H, rb.H),
			cmp.Compare(ra.W, rb.W),
		); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

func smallest(states [][]Node) []Node {
	return slices.MinFunc(states, compareRects)
}
