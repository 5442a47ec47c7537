// Package physics implements the substep integration and narrow-phase
// collision resolution the simulation step runs every tick: semi-implicit
// Euler integration, SAT-based narrow phase for circle/box pairs, and
// impulse-based resolution with restitution and Coulomb friction.
package physics

import (
	"github.com/fight-club/lockstep/internal/components"
	"github.com/fight-club/lockstep/internal/ecs"
	"github.com/fight-club/lockstep/internal/fixedmath"
)

// Contact is one narrow-phase collision result between two bodies. Normal
// points from A toward B.
type Contact struct {
	A, B        ecs.Entity
	Normal      fixedmath.Vec2
	Penetration fixedmath.Fixed64
}

// LayerMatrix records which collision-layer pairs should never generate
// contacts (e.g. bullets ignoring their own owner's layer). It is
// symmetric: Ignore(a, b) == Ignore(b, a).
type LayerMatrix struct {
	ignored map[[2]uint32]struct{}
}

func NewLayerMatrix() *LayerMatrix {
	return &LayerMatrix{ignored: make(map[[2]uint32]struct{})}
}

func layerKey(a, b uint32) [2]uint32 {
	if a > b {
		a, b = b, a
	}
	return [2]uint32{a, b}
}

func (m *LayerMatrix) SetIgnored(a, b uint32, ignored bool) {
	key := layerKey(a, b)
	if ignored {
		m.ignored[key] = struct{}{}
	} else {
		delete(m.ignored, key)
	}
}

func (m *LayerMatrix) Ignored(a, b uint32) bool {
	_, ok := m.ignored[layerKey(a, b)]
	return ok
}

// Body is the narrow phase's view of one entity: the data needed to build
// a Contact without reaching back into the ECS mid-pass.
type Body struct {
	Entity ecs.Entity
	Pos    fixedmath.Vec2
	Shape  components.CollisionShape
	Layer  uint32
}
