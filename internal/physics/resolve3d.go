package physics

import "github.com/fight-club/lockstep/internal/fixedmath"

// MaterialPair3D mirrors MaterialPair one dimension up.
type MaterialPair3D struct {
	InvMassA, InvMassB         fixedmath.Fixed64
	RestitutionA, RestitutionB fixedmath.Fixed64
	FrictionA, FrictionB       fixedmath.Fixed64
	VelA, VelB                 fixedmath.Vec3
}

// ResolveImpulse3D is ResolveImpulse generalized to Vec3, same restitution
// and Coulomb-friction formulas.
func ResolveImpulse3D(c Contact3D, m MaterialPair3D) (deltaA, deltaB fixedmath.Vec3) {
	invMassSum := m.InvMassA.Add(m.InvMassB)
	if invMassSum.Sign() == 0 {
		return fixedmath.Vec3{}, fixedmath.Vec3{}
	}

	relVel := m.VelB.Sub(m.VelA)
	velAlongNormal := relVel.Dot(c.Normal)
	if velAlongNormal.Sign() > 0 {
		return fixedmath.Vec3{}, fixedmath.Vec3{}
	}

	restitution := fixedmath.Min(m.RestitutionA, m.RestitutionB)
	j := restitution.Add(fixedmath.One).Neg().Mul(velAlongNormal).Div(invMassSum)

	impulse := c.Normal.Scale(j)
	deltaA = impulse.Scale(m.InvMassA).Neg()
	deltaB = impulse.Scale(m.InvMassB)

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

// PositionalCorrection3D is PositionalCorrection's literal full-separation
// mass-ratio formula generalized to Vec3.
func PositionalCorrection3D(c Contact3D, invMassA, invMassB fixedmath.Fixed64) (corrA, corrB fixedmath.Vec3) {
	invMassSum := invMassA.Add(invMassB)
	if invMassSum.Sign() == 0 {
		return fixedmath.Vec3{}, fixedmath.Vec3{}
	}

	moveA := invMassA.Div(invMassSum)
	moveB := invMassB.Div(invMassSum)

	corrA = c.Normal.Scale(c.Penetration.Mul(moveA)).Neg()
	corrB = c.Normal.Scale(c.Penetration.Mul(moveB))
	return corrA, corrB
}
