package physics

import "github.com/fight-club/lockstep/internal/fixedmath"

// MaterialPair is the per-body material data resolve needs: inverse mass,
// restitution, friction, and current velocity.
type MaterialPair struct {
	InvMassA, InvMassB         fixedmath.Fixed64
	RestitutionA, RestitutionB fixedmath.Fixed64
	FrictionA, FrictionB       fixedmath.Fixed64
	VelA, VelB                 fixedmath.Vec2
}

// ResolveImpulse computes the velocity delta to apply to each body for one
// contact: restitution uses e = min(eA, eB); Coulomb friction is clamped to
// |j| * sqrt(muA * muB) along the tangent.
func ResolveImpulse(c Contact, m MaterialPair) (deltaA, deltaB fixedmath.Vec2) {
	invMassSum := m.InvMassA.Add(m.InvMassB)
	if invMassSum.Sign() == 0 {
		return fixedmath.Vec2{}, fixedmath.Vec2{}
	}

	relVel := m.VelB.Sub(m.VelA)
	velAlongNormal := relVel.Dot(c.Normal)
	if velAlongNormal.Sign() > 0 {
		// Already separating.
		return fixedmath.Vec2{}, fixedmath.Vec2{}
	}

	restitution := fixedmath.Min(m.RestitutionA, m.RestitutionB)
	j := restitution.Add(fixedmath.One).Neg().Mul(velAlongNormal).Div(invMassSum)

	impulse := c.Normal.Scale(j)
	deltaA = impulse.Scale(m.InvMassA).Neg()
	deltaB = impulse.Scale(m.InvMassB)

	// Coulomb friction along the tangent.
	tangent := relVel.Sub(c.Normal.Scale(relVel.Dot(c.Normal)))
	if tangent.SqrMagnitude().Sign() == 0 {
		return deltaA, deltaB
	}
	tangent = tangent.Normalize().Neg()

	jt := relVel.Dot(tangent).Neg().Div(invMassSum)
	mu := fixedmath.Sqrt(m.FrictionA.Mul(m.FrictionB))
	maxFriction := j.Abs().Mul(mu)
	jt = fixedmath.Clamp(jt, maxFriction.Neg(), maxFriction)

	frictionImpulse := tangent.Scale(jt)
	deltaA = deltaA.Sub(frictionImpulse.Scale(m.InvMassA))
	deltaB = deltaB.Add(frictionImpulse.Scale(m.InvMassB))
	return deltaA, deltaB
}

// PositionalCorrection returns the position offset each body should be
// nudged by to resolve inter-penetration in a single pass, split by mass
// ratio: moveA = mB/(mA+mB), symmetric, which in terms of inverse mass is
// moveA = invMassA/(invMassA+invMassB) — if one body is static (invMass
// zero), the dynamic body absorbs the entire separation.
func PositionalCorrection(c Contact, invMassA, invMassB fixedmath.Fixed64) (corrA, corrB fixedmath.Vec2) {
	invMassSum := invMassA.Add(invMassB)
	if invMassSum.Sign() == 0 {
		return fixedmath.Vec2{}, fixedmath.Vec2{}
	}

	moveA := invMassA.Div(invMassSum)
	moveB := invMassB.Div(invMassSum)

	corrA = c.Normal.Scale(c.Penetration.Mul(moveA)).Neg()
	corrB = c.Normal.Scale(c.Penetration.Mul(moveB))
	return corrA, corrB
}
