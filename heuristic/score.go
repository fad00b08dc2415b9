package heuristic

import (
	"thrustersim/allocator"
	"thrustersim/geometry"
	"thrustersim/numeric"
)

// bodyTubeHalfLength is the fixed half-length (metres) the bounding-box
// seed widens from along the body's long axis, independent of any
// configurable radius (spec section 4.E: "seed min/max with (+-tube_radius,
// +-0.17, +-tube_radius)").
const bodyTubeHalfLength = 0.17

// flowEpsilon keeps the flow-exclusion term finite when two thrusters'
// orientations place one directly on the other's axial line.
const flowEpsilon = 1e-6

// Terms holds one value per named scoring term, shared by the unscaled
// (raw) and scaled (weighted) halves of a Breakdown.
type Terms struct {
	AvgLinear numeric.Dual
	AvgTorque numeric.Dual
	MinLinear numeric.Dual
	MinTorque numeric.Dual
	MesLinear numeric.Dual
	MesTorque numeric.Dual

	X    numeric.Dual
	Y    numeric.Dual
	Z    numeric.Dual
	XRot numeric.Dual
	YRot numeric.Dual
	ZRot numeric.Dual

	CenterOfMassLoss numeric.Dual
	CenterLoss       numeric.Dual
	SurfaceAreaScore numeric.Dual
	DimensionLoss    numeric.Dual

	TubeExclusionLoss         numeric.Dual
	ThrusterExclusionLoss     numeric.Dual
	ThrusterFlowExclusionLoss numeric.Dual
	CardinalityLoss           numeric.Dual
}

// Breakdown is the full scorer output (spec section 4.E): every named term
// before and after its weight is applied, plus their sum.
type Breakdown struct {
	Unscaled Terms
	Scaled   Terms
	Total    numeric.Dual
}

// Score folds a configuration's axis-maxima performance vector and its
// geometry through Settings, producing the full term-by-term breakdown and
// the scalar total the Adam step ascends (spec section 4.E). Grounded on
// the generic score<D: Number>() function in the original heuristic
// evaluator this was distilled from.
func Score(pv allocator.PerformanceVector, cfg *geometry.Config, settings Settings) Breakdown {
	u := Terms{
		AvgLinear: avg3(pv[geometry.X], pv[geometry.Y], pv[geometry.Z]),
		AvgTorque: avg3(pv[geometry.XRot], pv[geometry.YRot], pv[geometry.ZRot]),
		MinLinear: min3(pv[geometry.X], pv[geometry.Y], pv[geometry.Z]),
		MinTorque: min3(pv[geometry.XRot], pv[geometry.YRot], pv[geometry.ZRot]),

		MesLinear: mesTerm(pv, []axisOffset{
			{geometry.X, settings.MesXOff},
			{geometry.Y, settings.MesYOff},
			{geometry.Z, settings.MesZOff},
		}),
		MesTorque: mesTerm(pv, []axisOffset{
			{geometry.XRot, settings.MesXRotOff},
			{geometry.YRot, settings.MesYRotOff},
			{geometry.ZRot, settings.MesZRotOff},
		}),

		X:    pv[geometry.X],
		Y:    pv[geometry.Y],
		Z:    pv[geometry.Z],
		XRot: pv[geometry.XRot],
		YRot: pv[geometry.YRot],
		ZRot: pv[geometry.ZRot],
	}

	lo, hi := aabbBounds(cfg, settings)
	lx, ly, lz := halfExtent(lo, hi)

	u.CenterOfMassLoss = centerOfMassLoss(cfg)
	u.CenterLoss = aabbMidpoint(lo, hi).NormSquared()
	u.SurfaceAreaScore = surfaceAreaScore(u.X, u.Y, u.Z, lx, ly, lz)
	u.DimensionLoss = dimensionLoss(lx, ly, lz)

	u.TubeExclusionLoss = tubeExclusionLoss(cfg, settings)
	u.ThrusterExclusionLoss = thrusterExclusionLoss(cfg, settings)
	u.ThrusterFlowExclusionLoss = thrusterFlowExclusionLoss(cfg, settings)
	u.CardinalityLoss = cardinalityLoss(cfg)

	s := Terms{
		AvgLinear: u.AvgLinear.MulFloat(settings.AvgLinear),
		AvgTorque: u.AvgTorque.MulFloat(settings.AvgTorque),
		MinLinear: u.MinLinear.MulFloat(settings.MinLinear),
		MinTorque: u.MinTorque.MulFloat(settings.MinTorque),
		MesLinear: u.MesLinear.MulFloat(settings.MesLinear),
		MesTorque: u.MesTorque.MulFloat(settings.MesTorque),

		X:    u.X.MulFloat(settings.X),
		Y:    u.Y.MulFloat(settings.Y),
		Z:    u.Z.MulFloat(settings.Z),
		XRot: u.XRot.MulFloat(settings.XRot),
		YRot: u.YRot.MulFloat(settings.YRot),
		ZRot: u.ZRot.MulFloat(settings.ZRot),

		CenterOfMassLoss:          u.CenterOfMassLoss.MulFloat(settings.CenterOfMassLoss),
		CenterLoss:                u.CenterLoss.MulFloat(settings.CenterLoss),
		SurfaceAreaScore:          u.SurfaceAreaScore.MulFloat(settings.SurfaceAreaScore),
		DimensionLoss:             u.DimensionLoss.MulFloat(settings.DimensionLoss),
		TubeExclusionLoss:         u.TubeExclusionLoss.MulFloat(settings.TubeExclusionLoss),
		ThrusterExclusionLoss:     u.ThrusterExclusionLoss.MulFloat(settings.ThrusterExclusionLoss),
		ThrusterFlowExclusionLoss: u.ThrusterFlowExclusionLoss.MulFloat(settings.ThrusterFlowExclusionLoss),
		CardinalityLoss:           u.CardinalityLoss.MulFloat(settings.CardinalityLoss),
	}

	total := numeric.Const(0)
	for _, t := range []numeric.Dual{
		s.AvgLinear, s.AvgTorque, s.MinLinear, s.MinTorque, s.MesLinear, s.MesTorque,
		s.X, s.Y, s.Z, s.XRot, s.YRot, s.ZRot,
		s.CenterOfMassLoss, s.CenterLoss, s.SurfaceAreaScore, s.DimensionLoss,
		s.TubeExclusionLoss, s.ThrusterExclusionLoss, s.ThrusterFlowExclusionLoss, s.CardinalityLoss,
	} {
		total = total.Add(t)
	}

	return Breakdown{Unscaled: u, Scaled: s, Total: total}
}

func avg3(a, b, c numeric.Dual) numeric.Dual {
	return a.Add(b).Add(c).DivFloat(3)
}

func min3(a, b, c numeric.Dual) numeric.Dual {
	return numeric.Min(numeric.Min(a, b), c)
}

type axisOffset struct {
	axis   geometry.Axis
	offset float64
}

// mesTerm is the mean-excess-squared term (spec section 4.E): for each
// axis, the goal is the configured offset when positive, otherwise the
// axis value itself, which vanishes that axis's contribution.
func mesTerm(pv allocator.PerformanceVector, offsets []axisOffset) numeric.Dual {
	sum := numeric.Const(0)
	for _, ao := range offsets {
		val := pv[ao.axis]
		goal := val
		if ao.offset > 0 {
			goal = numeric.Const(ao.offset)
		}
		diff := val.Sub(goal)
		sum = sum.Add(diff.Mul(diff))
	}
	return sum
}

// motorCentroid is the mean motor position (spec section 4.E:
// "center_of_mass_loss" is keyed off this, not the AABB).
func motorCentroid(cfg *geometry.Config) geometry.Vec3 {
	motors := cfg.Motors()
	sum := geometry.V3Const(0, 0, 0)
	for _, id := range cfg.IDs() {
		sum = sum.Add(motors[id].Position)
	}
	n := float64(len(cfg.IDs()))
	if n == 0 {
		return sum
	}
	return sum.DivFloatVec(n)
}

// centerOfMassLoss is the squared norm of the mean motor position, clamped
// below by 10*‖mean_position‖ so the term doesn't vanish (and its gradient
// with it) as the mean collapses toward zero (spec section 4.E).
func centerOfMassLoss(cfg *geometry.Config) numeric.Dual {
	mean := motorCentroid(cfg)
	r := mean.Norm()
	return numeric.Max(r.Mul(r), r.MulFloat(10))
}

// aabbBounds computes the motor-position AABB, seeded with (+-tube_radius,
// +-bodyTubeHalfLength, +-tube_radius) so the box never shrinks below the
// physical hull it must contain (spec section 4.E).
func aabbBounds(cfg *geometry.Config, settings Settings) (lo, hi geometry.Vec3) {
	minX, maxX := numeric.Const(-settings.TubeExclusionRadius), numeric.Const(settings.TubeExclusionRadius)
	minY, maxY := numeric.Const(-bodyTubeHalfLength), numeric.Const(bodyTubeHalfLength)
	minZ, maxZ := numeric.Const(-settings.TubeExclusionRadius), numeric.Const(settings.TubeExclusionRadius)

	motors := cfg.Motors()
	for _, id := range cfg.IDs() {
		pos := motors[id].Position
		minX, maxX = numeric.Min(minX, pos.X), numeric.Max(maxX, pos.X)
		minY, maxY = numeric.Min(minY, pos.Y), numeric.Max(maxY, pos.Y)
		minZ, maxZ = numeric.Min(minZ, pos.Z), numeric.Max(maxZ, pos.Z)
	}

	return geometry.V3(minX, minY, minZ), geometry.V3(maxX, maxY, maxZ)
}

func halfExtent(lo, hi geometry.Vec3) (numeric.Dual, numeric.Dual, numeric.Dual) {
	lx := hi.X.Sub(lo.X).DivFloat(2)
	ly := hi.Y.Sub(lo.Y).DivFloat(2)
	lz := hi.Z.Sub(lo.Z).DivFloat(2)
	return lx, ly, lz
}

// aabbMidpoint is the center_loss basis (spec section 4.E, confirmed by
// the original source's "AABB center offset loss" label): the midpoint of
// the motor-position bounding box, distinct from the mean motor position
// centerOfMassLoss penalises.
func aabbMidpoint(lo, hi geometry.Vec3) geometry.Vec3 {
	return geometry.V3(
		lo.X.Add(hi.X).DivFloat(2),
		lo.Y.Add(hi.Y).DivFloat(2),
		lo.Z.Add(hi.Z).DivFloat(2),
	)
}

// surfaceAreaScore rewards the configuration whose axis-maxima are large
// relative to the face it must push through (spec section 4.E).
func surfaceAreaScore(px, py, pz, lx, ly, lz numeric.Dual) numeric.Dual {
	sum := px.Div(ly.Mul(lz)).Add(py.Div(lz.Mul(lx))).Add(pz.Div(lx.Mul(ly)))
	return sum.MulFloat(4).MulFloat(1e-4)
}

func dimensionLoss(lx, ly, lz numeric.Dual) numeric.Dual {
	sum := lx.Powi(4).Add(ly.Powi(4)).Add(lz.Powi(4))
	return sum.MulFloat(4)
}

// tubeExclusionLoss penalises motors placed inside the central pressure
// tube's clearance envelope, measured in the body's X-Z cross-section
// (spec section 4.E).
func tubeExclusionLoss(cfg *geometry.Config, settings Settings) numeric.Dual {
	motors := cfg.Motors()
	threshold := settings.TubeExclusionRadius + settings.ThrusterExclusionRadius

	loss := numeric.Const(0)
	for _, id := range cfg.IDs() {
		pos := motors[id].Position
		radial := pos.X.Mul(pos.X).Add(pos.Z.Mul(pos.Z)).Sqrt()
		s := numeric.Const(threshold).Sub(radial).MaxFloat(0)
		loss = loss.Add(s.Mul(s))
	}
	return loss
}

// thrusterExclusionLoss penalises any pair of motors placed closer than
// twice the thruster radius (spec section 4.E).
func thrusterExclusionLoss(cfg *geometry.Config, settings Settings) numeric.Dual {
	ids := cfg.IDs()
	motors := cfg.Motors()
	threshold := 2 * settings.ThrusterExclusionRadius

	loss := numeric.Const(0)
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			d := motors[ids[i]].Position.Sub(motors[ids[j]].Position).Norm()
			s := numeric.Const(threshold).Sub(d).MaxFloat(0)
			loss = loss.Add(s.Mul(s))
		}
	}
	return loss
}

// thrusterFlowExclusionLoss penalises a motor sitting in another motor's
// wash: the perpendicular distance from motor i's position to the infinite
// line through motor j along j's orientation (spec section 4.E).
func thrusterFlowExclusionLoss(cfg *geometry.Config, settings Settings) numeric.Dual {
	ids := cfg.IDs()
	motors := cfg.Motors()
	radiusSquared := settings.ThrusterExclusionRadius * settings.ThrusterExclusionRadius

	loss := numeric.Const(0)
	for _, i := range ids {
		for _, j := range ids {
			if i == j {
				continue
			}
			mi, mj := motors[i], motors[j]
			v := mi.Position.Sub(mj.Position)
			along := v.Dot(mj.Orientation)
			perp := v.Sub(mj.Orientation.Scale(along))
			dist := perp.Norm()
			term := numeric.Const(radiusSquared).Div(dist.AddFloat(flowEpsilon)).MulFloat(0.5)
			loss = loss.Add(term)
		}
	}
	return loss
}

// cardinalityLoss rewards configurations whose orientations cluster around
// a single body axis (spec section 4.E). Each orientation is folded into a
// running sum with whichever sign maximises the sum's norm (greedy, since
// mirrored motors otherwise cancel out a naive sum); the loss is zero when
// the resulting unit vector's infinity norm is 1 (perfectly axis-aligned).
func cardinalityLoss(cfg *geometry.Config) numeric.Dual {
	motors := cfg.Motors()
	ids := cfg.IDs()
	n := float64(len(ids))
	if n == 0 {
		return numeric.Const(0)
	}

	running := geometry.V3Const(0, 0, 0)
	for _, id := range ids {
		o := motors[id].Orientation
		plus := running.Add(o)
		minus := running.Sub(o)
		if plus.NormSquared().Value >= minus.NormSquared().Value {
			running = plus
		} else {
			running = minus
		}
	}
	avgVec := running.DivFloatVec(n)
	unit := avgVec.Normalized()

	maxAbs := numeric.Max(numeric.Max(unit.X.Abs(), unit.Y.Abs()), unit.Z.Abs())
	diff := numeric.Const(1).Sub(maxAbs)
	return diff.Mul(diff)
}
