package ecs

import (
	"reflect"
	"sort"

	"github.com/fight-club/lockstep/internal/container"
)

// World owns entity lifecycle and every component store. Cloning a World
// must produce a value-independent state whose future evolution under
// identical inputs is bit-identical to the original's (§3 World state
// invariants).
type World struct {
	nextEntityID Entity
	live         *container.OrderedSet[Entity]
	stores       map[reflect.Type]typeErasedStore
}

// NewWorld creates an empty World.
func NewWorld() *World {
	return &World{
		live:   container.NewOrderedSet[Entity](),
		stores: make(map[reflect.Type]typeErasedStore),
	}
}

// CreateEntity allocates the next monotonic entity ID.
func (w *World) CreateEntity() Entity {
	w.nextEntityID++
	e := w.nextEntityID
	w.live.Add(e)
	return e
}

// Alive reports whether e is a live entity in this world.
func (w *World) Alive(e Entity) bool { return w.live.Contains(e) }

// LiveEntities returns live entities ordered by creation.
func (w *World) LiveEntities() []Entity {
	return w.live.Items()
}

// Destroy removes the entity and every component tied to it. Only
// DeathSystem is expected to call this per the lifecycle rules in §3, but
// World itself does not enforce that — it is a convention, not a
// mechanism.
func (w *World) Destroy(e Entity) {
	if !w.live.Contains(e) {
		return
	}
	w.live.Remove(e)
	for _, s := range w.stores {
		s.removeEntity(e)
	}
}

func storeFor[T any](w *World) *store[T] {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if s, ok := w.stores[t]; ok {
		return s.(*store[T])
	}
	s := newStore[T]()
	w.stores[t] = s
	return s
}

// Add installs or overwrites component T on entity e.
func Add[T any](w *World, e Entity, v T) {
	storeFor[T](w).add(e, v)
}

// Remove deletes component T from entity e, returning whether it was
// present.
func Remove[T any](w *World, e Entity) bool {
	return storeFor[T](w).remove(e)
}

// Get returns component T on e and whether it was present.
func Get[T any](w *World, e Entity) (T, bool) {
	return storeFor[T](w).get(e)
}

// GetPtr returns a mutable pointer into the dense store for in-place
// mutation by the owning system, avoiding a copy-mutate-writeback cycle.
// The pointer is invalidated by any Add/Remove on the same store (it may
// reallocate or be swapped); systems must not retain it across those
// calls.
func GetPtr[T any](w *World, e Entity) (*T, bool) {
	return storeFor[T](w).getPtr(e)
}

// Has reports whether e carries component T.
func Has[T any](w *World, e Entity) bool {
	return storeFor[T](w).has(e)
}

// Count returns the number of live T components.
func Count[T any](w *World) int {
	return storeFor[T](w).len()
}

// Each iterates (Entity, *T) pairs for every live holder of T, in dense
// (insertion-with-swap) order.
func Each[T any](w *World, fn func(e Entity, v *T) bool) {
	storeFor[T](w).each(fn)
}

// Iter1 is an alias of Each kept for symmetry with Iter2/Iter3/Iter4.
func Iter1[T any](w *World, fn func(e Entity, a *T) bool) {
	Each[T](w, fn)
}

// Iter2 yields the intersection of T1,T2 by iterating whichever store is
// smaller and probing the other, per §4.3's "iterate the smallest store"
// requirement — this keeps ordering deterministic (it always follows one
// store's dense order) and performance independent of the other store's
// sparsity.
func Iter2[T1, T2 any](w *World, fn func(e Entity, a *T1, b *T2) bool) {
	s1, s2 := storeFor[T1](w), storeFor[T2](w)
	if s1.len() <= s2.len() {
		s1.each(func(e Entity, a *T1) bool {
			b, ok := s2.getPtr(e)
			if !ok {
				return true
			}
			return fn(e, a, b)
		})
	} else {
		s2.each(func(e Entity, b *T2) bool {
			a, ok := s1.getPtr(e)
			if !ok {
				return true
			}
			return fn(e, a, b)
		})
	}
}

// Iter3 yields the intersection of T1,T2,T3 iterating the smallest of the
// three stores and probing the rest.
func Iter3[T1, T2, T3 any](w *World, fn func(e Entity, a *T1, b *T2, c *T3) bool) {
	s1, s2, s3 := storeFor[T1](w), storeFor[T2](w), storeFor[T3](w)
	sizes := []int{s1.len(), s2.len(), s3.len()}
	smallest := argmin(sizes)

	probe := func(e Entity) (*T1, *T2, *T3, bool) {
		a, ok1 := s1.getPtr(e)
		b, ok2 := s2.getPtr(e)
		c, ok3 := s3.getPtr(e)
		return a, b, c, ok1 && ok2 && ok3
	}

	switch smallest {
	case 0:
		s1.each(func(e Entity, _ *T1) bool {
			a, b, c, ok := probe(e)
			if !ok {
				return true
			}
			return fn(e, a, b, c)
		})
	case 1:
		s2.each(func(e Entity, _ *T2) bool {
			a, b, c, ok := probe(e)
			if !ok {
				return true
			}
			return fn(e, a, b, c)
		})
	default:
		s3.each(func(e Entity, _ *T3) bool {
			a, b, c, ok := probe(e)
			if !ok {
				return true
			}
			return fn(e, a, b, c)
		})
	}
}

// Iter4 mirrors Iter3 for four component types.
func Iter4[T1, T2, T3, T4 any](w *World, fn func(e Entity, a *T1, b *T2, c *T3, d *T4) bool) {
	s1, s2, s3, s4 := storeFor[T1](w), storeFor[T2](w), storeFor[T3](w), storeFor[T4](w)
	sizes := []int{s1.len(), s2.len(), s3.len(), s4.len()}
	smallest := argmin(sizes)

	probe := func(e Entity) (*T1, *T2, *T3, *T4, bool) {
		a, ok1 := s1.getPtr(e)
		b, ok2 := s2.getPtr(e)
		c, ok3 := s3.getPtr(e)
		d, ok4 := s4.getPtr(e)
		return a, b, c, d, ok1 && ok2 && ok3 && ok4
	}

	run := func(each func(fn func(e Entity) bool)) {
		each(func(e Entity) bool {
			a, b, c, d, ok := probe(e)
			if !ok {
				return true
			}
			return fn(e, a, b, c, d)
		})
	}

	switch smallest {
	case 0:
		run(func(fn func(e Entity) bool) { s1.each(func(e Entity, _ *T1) bool { return fn(e) }) })
	case 1:
		run(func(fn func(e Entity) bool) { s2.each(func(e Entity, _ *T2) bool { return fn(e) }) })
	case 2:
		run(func(fn func(e Entity) bool) { s3.each(func(e Entity, _ *T3) bool { return fn(e) }) })
	default:
		run(func(fn func(e Entity) bool) { s4.each(func(e Entity, _ *T4) bool { return fn(e) }) })
	}
}

func argmin(sizes []int) int {
	best := 0
	for i, v := range sizes {
		if v < sizes[best] {
			best = i
		}
	}
	return best
}

// Clone deep-copies every component store and all metadata.
func (w *World) Clone() *World {
	out := &World{
		nextEntityID: w.nextEntityID,
		live:         w.live.Clone(),
		stores:       make(map[reflect.Type]typeErasedStore, len(w.stores)),
	}
	for t, s := range w.stores {
		out.stores[t] = s.cloneErased()
	}
	return out
}

// RestoreFrom overwrites w in place with a deep copy of other's state, so
// existing references to w see the restored state. The copy is built with
// Clone, so it allocates fresh stores.
func (w *World) RestoreFrom(other *World) {
	clone := other.Clone()
	w.nextEntityID = clone.nextEntityID
	w.live = clone.live
	w.stores = clone.stores
}

// DebugTypeNames returns the registered component type names, sorted, for
// test assertions that want to check "clone touched every store".
func (w *World) DebugTypeNames() []string {
	names := make([]string, 0, len(w.stores))
	for t := range w.stores {
		names = append(names, t.String())
	}
	sort.Strings(names)
	return names
}
