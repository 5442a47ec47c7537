// Package ecs implements the typed component-store world described in the
// simulation's data model: dense per-type storage with O(1) swap-on-remove,
// insertion-ordered iteration, and cheap whole-world cloning for the
// rollback controller's snapshot ring.
package ecs

// Entity is an opaque identifier; zero is the invalid sentinel. IDs are
// monotonically allocated per World and are never reused within a session.
type Entity uint32

// Invalid is the zero-value sentinel entity.
const Invalid Entity = 0
