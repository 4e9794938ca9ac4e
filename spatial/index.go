// Package spatial implements the bulk-loaded R-tree and the
// three-stage crossing-query pipeline of spec §4.5. No STR/R-tree
// library appears anywhere in the retrieved example pack, so the
// bulk-load tree itself is hand-rolled directly over
// github.com/paulmach/orb's Bound/Point types, which is the algorithm
// this spec asks to be built, not an ambient concern a library would
// otherwise cover.
package spatial

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// FanOut is the STR bulk-load fan-out named in §4.5.
const FanOut = 16

type node struct {
	bound    orb.Bound
	id       int64 // valid only when this is a leaf
	isLeaf   bool
	children []*node
}

// Index is an immutable, bulk-loaded Sort-Tile-Recursive R-tree over
// airspace bounding rectangles. It is built once by BuildSTR and never
// modified afterwards; readers hold a stable snapshot (§4.5, §5).
type Index struct {
	root  *node
	count int
}

// Item is one airspace's minimum bounding rectangle, in (lon, lat).
type Item struct {
	ID    int64
	Bound orb.Bound
}

// BuildSTR bulk-loads an R-tree over items using the Sort-Tile-Recursive
// algorithm with the fixed fan-out of §4.5.
func BuildSTR(items []Item) *Index {
	if len(items) == 0 {
		return &Index{}
	}
	leaves := make([]*node, len(items))
	for i, it := range items {
		leaves[i] = &node{bound: it.Bound, id: it.ID, isLeaf: true}
	}
	root := buildLevel(leaves)
	return &Index{root: root, count: len(items)}
}

func buildLevel(nodes []*node) *node {
	if len(nodes) == 1 {
		return nodes[0]
	}
	groups := strPartition(nodes)
	parents := make([]*node, len(groups))
	for i, g := range groups {
		parents[i] = &node{bound: unionBounds(g), children: g}
	}
	return buildLevel(parents)
}

// strPartition implements one Sort-Tile-Recursive pass: sort by X
// center into vertical slices sized so each slice holds ~sqrt(pages)
// pages, then within each slice sort by Y center and cut into
// FanOut-sized pages.
func strPartition(nodes []*node) [][]*node {
	n := len(nodes)
	pages := int(math.Ceil(float64(n) / float64(FanOut)))
	slices := int(math.Ceil(math.Sqrt(float64(pages))))
	if slices < 1 {
		slices = 1
	}
	sliceCapacity := slices * FanOut

	sorted := make([]*node, n)
	copy(sorted, nodes)
	sort.Slice(sorted, func(i, j int) bool { return centerX(sorted[i].bound) < centerX(sorted[j].bound) })

	var groups [][]*node
	for i := 0; i < n; i += sliceCapacity {
		end := i + sliceCapacity
		if end > n {
			end = n
		}
		slice := make([]*node, end-i)
		copy(slice, sorted[i:end])
		sort.Slice(slice, func(a, b int) bool { return centerY(slice[a].bound) < centerY(slice[b].bound) })

		for j := 0; j < len(slice); j += FanOut {
			e := j + FanOut
			if e > len(slice) {
				e = len(slice)
			}
			groups = append(groups, slice[j:e])
		}
	}
	return groups
}

func centerX(b orb.Bound) float64 { return (b.Min[0] + b.Max[0]) / 2 }
func centerY(b orb.Bound) float64 { return (b.Min[1] + b.Max[1]) / 2 }

func unionBounds(nodes []*node) orb.Bound {
	b := nodes[0].bound
	for _, n := range nodes[1:] {
		b = b.Union(n.bound)
	}
	return b
}

// Candidates returns the ids of every item whose bound intersects
// rect: the stage-1 bbox prune of §4.5. Complexity is O(log N + k).
func (idx *Index) Candidates(rect orb.Bound) []int64 {
	if idx.root == nil {
		return nil
	}
	var out []int64
	var walk func(n *node)
	walk = func(n *node) {
		if !n.bound.Intersects(rect) {
			return
		}
		if n.isLeaf {
			out = append(out, n.id)
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(idx.root)
	return out
}

// Len is the number of items indexed.
func (idx *Index) Len() int { return idx.count }
