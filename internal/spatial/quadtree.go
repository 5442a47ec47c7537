package spatial

import (
	"sort"

	"github.com/fight-club/lockstep/internal/ecs"
	"github.com/fight-club/lockstep/internal/fixedmath"
)

// QuadtreeConfig bounds how aggressively a node splits before it is
// considered saturated.
type QuadtreeConfig struct {
	MaxObjectsPerNode int
	MaxDepth          int
}

// growthFactor is the 1.5x margin applied when the root must grow to
// contain an out-of-bounds insert.
var growthFactor = fixedmath.FromInt(3).Div(fixedmath.Two)

// quadEntry is one tracked (entity, bounds) pair.
type quadEntry struct {
	id     ecs.Entity
	bounds AABB2
}

// quadNode is one cell of the tree. Entries live in leaves only; an entry
// whose bounds straddle a split line is stored in every child it overlaps,
// so Query must deduplicate its result.
type quadNode struct {
	bounds   AABB2
	depth    int
	entries  []quadEntry
	children [4]*quadNode // nil until split; order LU, RU, LD, RD
}

func (n *quadNode) isLeaf() bool { return n.children[0] == nil }

// Quadtree is the 2D broad-phase index. It auto-resizes its root bounds to
// the union of everything ever inserted (scaled by 1.5) rather than
// rejecting out-of-bounds entries, and it never merges nodes back down on
// removal — a node that becomes sparse simply stays split, trading a little
// query overhead for a much simpler, deterministic removal path.
type Quadtree struct {
	cfg   QuadtreeConfig
	root  *quadNode
	index map[ecs.Entity]AABB2 // last known bounds, for Update/Remove
}

// NewQuadtree creates a tree whose root starts at initialBounds; the root
// will grow via the auto-resize pass as entries outside it are inserted.
func NewQuadtree(initialBounds AABB2, cfg QuadtreeConfig) *Quadtree {
	if cfg.MaxObjectsPerNode <= 0 {
		cfg.MaxObjectsPerNode = 8
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 6
	}
	return &Quadtree{
		cfg:   cfg,
		root:  &quadNode{bounds: initialBounds},
		index: make(map[ecs.Entity]AABB2),
	}
}

// resizeToFit grows the root to the union of every tracked AABB plus the
// incoming bounds, scaled by 1.5x about the union's center, then rebuilds
// the tree from scratch — resizing is rare (only when an entry moves
// outside all prior bounds) so an O(n) rebuild is acceptable.
func (q *Quadtree) resizeToFit(bounds AABB2) {
	if q.root.bounds.Contains(bounds) {
		return
	}
	union := bounds
	ids := make([]ecs.Entity, 0, len(q.index))
	for id, b := range q.index {
		union = union.Union(b)
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	center := union.Center()
	half := union.Max.Sub(union.Min).Scale(fixedmath.Half)
	grownHalf := half.Scale(growthFactor)
	grown := AABB2{Min: center.Sub(grownHalf), Max: center.Add(grownHalf)}

	q.root = &quadNode{bounds: grown}
	for _, id := range ids {
		q.insertInto(q.root, quadEntry{id: id, bounds: q.index[id]})
	}
}

// Insert adds or moves id to bounds.
func (q *Quadtree) Insert(id ecs.Entity, bounds AABB2) {
	if prev, ok := q.index[id]; ok {
		if prev == bounds {
			return
		}
		q.Remove(id)
	}
	q.resizeToFit(bounds)
	q.insertInto(q.root, quadEntry{id: id, bounds: bounds})
	q.index[id] = bounds
}

// insertInto descends to every leaf whose rectangle overlaps the entry's
// AABB and stores the entry there; entries straddling a split line live in
// more than one leaf.
func (q *Quadtree) insertInto(n *quadNode, e quadEntry) {
	if !n.isLeaf() {
		for _, c := range n.children {
			if c.bounds.Intersects(e.bounds) {
				q.insertInto(c, e)
			}
		}
		return
	}

	n.entries = append(n.entries, e)
	if len(n.entries) > q.cfg.MaxObjectsPerNode && n.depth < q.cfg.MaxDepth {
		q.split(n)
	}
}

// split turns a saturated leaf into an internal node: four equal quadrants
// (LU, RU, LD, RD), every held entry re-inserted into each child it
// overlaps.
func (q *Quadtree) split(n *quadNode) {
	center := n.bounds.Center()
	quads := [4]AABB2{
		{Min: n.bounds.Min, Max: center}, // LU
		{Min: fixedmath.NewVec2(center.X, n.bounds.Min.Y), Max: fixedmath.NewVec2(n.bounds.Max.X, center.Y)}, // RU
		{Min: fixedmath.NewVec2(n.bounds.Min.X, center.Y), Max: fixedmath.NewVec2(center.X, n.bounds.Max.Y)}, // LD
		{Min: center, Max: n.bounds.Max}, // RD
	}
	for i, qb := range quads {
		n.children[i] = &quadNode{bounds: qb, depth: n.depth + 1}
	}

	entries := n.entries
	n.entries = nil
	for _, e := range entries {
		q.insertInto(n, e)
	}
}

// Remove deletes id from every leaf holding it.
func (q *Quadtree) Remove(id ecs.Entity) bool {
	prev, ok := q.index[id]
	if !ok {
		return false
	}
	delete(q.index, id)
	removeFrom(q.root, id, prev)
	return true
}

func removeFrom(n *quadNode, id ecs.Entity, bounds AABB2) {
	if !n.bounds.Intersects(bounds) {
		return
	}
	if n.isLeaf() {
		for i := 0; i < len(n.entries); i++ {
			if n.entries[i].id == id {
				n.entries = append(n.entries[:i], n.entries[i+1:]...)
				i--
			}
		}
		return
	}
	for _, c := range n.children {
		removeFrom(c, id, bounds)
	}
}

// Query returns every distinct entity whose stored bounds intersect
// region. An entry straddling a split line lives in several leaves and is
// collected more than once, so the result is deduplicated (and thereby
// ordered) by an O(k log k) sort+unique post-pass.
func (q *Quadtree) Query(region AABB2) []ecs.Entity {
	var out []ecs.Entity
	var walk func(n *quadNode)
	walk = func(n *quadNode) {
		if !n.bounds.Intersects(region) {
			return
		}
		if n.isLeaf() {
			for _, e := range n.entries {
				if e.bounds.Intersects(region) {
					out = append(out, e.id)
				}
			}
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(q.root)

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	dedup := out[:0]
	for i, id := range out {
		if i == 0 || id != out[i-1] {
			dedup = append(dedup, id)
		}
	}
	return dedup
}

// Bounds returns the current root bounds, primarily for tests asserting
// resize behavior.
func (q *Quadtree) Bounds() AABB2 { return q.root.bounds }

// Len returns the number of tracked entries.
func (q *Quadtree) Len() int { return len(q.index) }
