package spatial

import (
	"sort"

	"github.com/fight-club/lockstep/internal/ecs"
	"github.com/fight-club/lockstep/internal/fixedmath"
)

// BVHConfig bounds a leaf's capacity before it splits.
type BVHConfig struct {
	LeafCapacity int
	MaxDepth     int
}

type bvhEntry struct {
	id     ecs.Entity
	bounds AABB3
}

// bvhNode is a leaf while entries is non-nil; once split, entries is
// cleared, axis/splitVal record the partition used for that split, and
// children holds the two subtrees. Parent lets Remove/Update refresh
// ancestor bounds in O(depth) without walking the whole tree.
type bvhNode struct {
	parent   *bvhNode
	bounds   AABB3
	depth    int
	entries  []bvhEntry
	axis     int
	splitVal fixedmath.Fixed64
	children [2]*bvhNode
}

func (n *bvhNode) isLeaf() bool { return n.children[0] == nil }

// BVH is the 3D broad-phase index: an incremental binary hierarchy where
// each object lives in exactly one leaf and an entity→leaf index makes
// Remove and the contained-update fast path O(1)/O(depth) rather than a
// full rebuild (§4.5).
type BVH struct {
	cfg   BVHConfig
	root  *bvhNode
	index map[ecs.Entity]*bvhNode
}

func NewBVH(cfg BVHConfig) *BVH {
	if cfg.LeafCapacity <= 0 {
		cfg.LeafCapacity = 8
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 12
	}
	return &BVH{cfg: cfg, index: make(map[ecs.Entity]*bvhNode)}
}

// Insert adds id at bounds, bubbling ancestor bounds up by encapsulation as
// it descends into the child selected by center-vs-split-value, per §4.5.
// Inserting an already-tracked id is treated as an Update.
func (t *BVH) Insert(id ecs.Entity, bounds AABB3) {
	if _, ok := t.index[id]; ok {
		t.Update(id, bounds)
		return
	}
	if t.root == nil {
		t.root = &bvhNode{bounds: bounds, entries: []bvhEntry{{id: id, bounds: bounds}}}
		t.index[id] = t.root
		return
	}

	node := t.root
	for !node.isLeaf() {
		node.bounds = node.bounds.Union(bounds)
		if bounds.Center().Component(node.axis).Cmp(node.splitVal) < 0 {
			node = node.children[0]
		} else {
			node = node.children[1]
		}
	}

	node.entries = append(node.entries, bvhEntry{id: id, bounds: bounds})
	node.bounds = node.bounds.Union(bounds)
	t.index[id] = node

	if len(node.entries) > t.cfg.LeafCapacity && node.depth < t.cfg.MaxDepth {
		t.split(node)
	}
}

// split turns a saturated leaf into an internal node in place (preserving
// its identity, so the parent's child pointer and the ancestor chain stay
// valid): longest axis of the leaf's bounds, median index of centers along
// that axis (§4.5).
func (t *BVH) split(leaf *bvhNode) {
	items := leaf.entries
	axis := longestAxis(leaf.bounds)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].bounds.Center().Component(axis).Cmp(items[j].bounds.Center().Component(axis)) < 0
	})
	mid := len(items) / 2
	splitVal := items[mid].bounds.Center().Component(axis)

	left := &bvhNode{parent: leaf, depth: leaf.depth + 1, entries: append([]bvhEntry(nil), items[:mid]...)}
	right := &bvhNode{parent: leaf, depth: leaf.depth + 1, entries: append([]bvhEntry(nil), items[mid:]...)}
	recomputeLeafBounds(left)
	recomputeLeafBounds(right)

	leaf.entries = nil
	leaf.axis = axis
	leaf.splitVal = splitVal
	leaf.children = [2]*bvhNode{left, right}

	for _, e := range left.entries {
		t.index[e.id] = left
	}
	for _, e := range right.entries {
		t.index[e.id] = right
	}
}

// Update moves id to bounds. If bounds is still fully contained in the
// leaf's current bounds, only the leaf (and its ancestors) are
// recomputed; otherwise id is removed and reinserted from the root
// (§4.5).
func (t *BVH) Update(id ecs.Entity, bounds AABB3) {
	leaf, ok := t.index[id]
	if !ok {
		t.Insert(id, bounds)
		return
	}

	if leaf.bounds.Contains(bounds) {
		for i := range leaf.entries {
			if leaf.entries[i].id == id {
				leaf.entries[i].bounds = bounds
				break
			}
		}
		recomputeLeafBounds(leaf)
		refreshAncestors(leaf)
		return
	}

	t.Remove(id)
	t.Insert(id, bounds)
}

// Remove locates id's leaf via the index in O(1), recomputes that leaf's
// bounds, and refreshes every ancestor. Empty leaves are tolerated rather
// than pruned (§4.5).
func (t *BVH) Remove(id ecs.Entity) bool {
	leaf, ok := t.index[id]
	if !ok {
		return false
	}
	for i, e := range leaf.entries {
		if e.id == id {
			leaf.entries = append(leaf.entries[:i], leaf.entries[i+1:]...)
			break
		}
	}
	delete(t.index, id)
	recomputeLeafBounds(leaf)
	refreshAncestors(leaf)
	return true
}

func (t *BVH) Len() int { return len(t.index) }

// Config returns the tree's leaf-capacity/depth tuning, used to rebuild an
// equivalently-configured empty tree (e.g. after a rollback Clone, since
// spatial-index nodes are derived data and are not themselves snapshotted).
func (t *BVH) Config() BVHConfig { return t.cfg }

// Entities returns every currently-tracked entity, in no particular order.
// Callers use it to reconcile the index against the live entity set (an
// entity destroyed outside the tree still needs an explicit Remove).
func (t *BVH) Entities() []ecs.Entity {
	out := make([]ecs.Entity, 0, len(t.index))
	for id := range t.index {
		out = append(out, id)
	}
	return out
}

// recomputeLeafBounds rebuilds a leaf's bounds from its current entries.
// An emptied leaf keeps its last bounds (tolerated, not pruned).
func recomputeLeafBounds(leaf *bvhNode) {
	if len(leaf.entries) == 0 {
		return
	}
	b := leaf.entries[0].bounds
	for _, e := range leaf.entries[1:] {
		b = b.Union(e.bounds)
	}
	leaf.bounds = b
}

func refreshAncestors(node *bvhNode) {
	for p := node.parent; p != nil; p = p.parent {
		p.bounds = p.children[0].bounds.Union(p.children[1].bounds)
	}
}

func longestAxis(b AABB3) int {
	d := b.Max.Sub(b.Min)
	best, bestLen := 0, d.X
	if d.Y.Cmp(bestLen) > 0 {
		best, bestLen = 1, d.Y
	}
	if d.Z.Cmp(bestLen) > 0 {
		best = 2
	}
	return best
}

// Query returns every distinct entity whose stored bounds intersect
// region, sorted for deterministic output order.
func (t *BVH) Query(region AABB3) []ecs.Entity {
	var out []ecs.Entity
	if t.root == nil {
		return out
	}
	var walk func(n *bvhNode)
	walk = func(n *bvhNode) {
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
			if c != nil {
				walk(c)
			}
		}
	}
	walk(t.root)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
