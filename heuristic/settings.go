// Package heuristic implements the differentiable scalar scorer over a
// performance vector and motor-configuration geometry (spec section 4.E):
// the closed-form objective the Adam step ascends.
package heuristic

// Settings is the flat record of weights the scorer folds the performance
// vector and configuration geometry through (spec section 3). Field names
// follow the original ScoreSettings/ToggleableScoreSettings split this was
// distilled from (see SPEC_FULL.md section 3): two fields,
// TubeExclusionRadius and ThrusterExclusionRadius, are radii consumed
// directly by their loss terms rather than multiplicative weights.
type Settings struct {
	MesLinear  float64
	MesXOff    float64
	MesYOff    float64
	MesZOff    float64
	MesTorque  float64
	MesXRotOff float64
	MesYRotOff float64
	MesZRotOff float64

	AvgLinear float64
	AvgTorque float64

	MinLinear float64
	MinTorque float64

	X float64
	Y float64
	Z float64

	XRot float64
	YRot float64
	ZRot float64

	CenterOfMassLoss float64
	CenterLoss       float64
	SurfaceAreaScore float64
	DimensionLoss    float64

	TubeExclusionRadius     float64
	TubeExclusionLoss       float64
	ThrusterExclusionRadius float64
	ThrusterExclusionLoss   float64

	ThrusterFlowExclusionLoss float64
	CardinalityLoss           float64
}

// DefaultSettings mirrors the original ScoreSettings::default (spec
// section 9 / SPEC_FULL.md section 3): everything zero except the six
// explicit axis weights.
func DefaultSettings() Settings {
	return Settings{
		X:    0.5,
		Y:    0.5,
		Z:    0.5,
		XRot: 0.35,
		YRot: 0.2,
		ZRot: 0.25,
	}
}

// Toggle pairs a weight with an enable bit; a disabled weight collapses to
// its disable sentinel (spec section 6: 0.0 for most terms, -1.0 for the
// five MES-offset terms, meaning "use the axis value itself as target").
type Toggle struct {
	Enabled bool
	Value   float64
}

// NewToggle builds a Toggle directly; exported so callers outside this
// package (config) can construct ToggleableSettings field by field.
func NewToggle(enabled bool, value float64) Toggle {
	return Toggle{Enabled: enabled, Value: value}
}

func (t Toggle) resolve(disabled float64) float64 {
	if t.Enabled {
		return t.Value
	}
	return disabled
}

// ToggleableSettings is the external, UI/API-facing form: every weight
// paired with an enable bit (spec section 6: "Heuristic Toggle form").
// The arena never sees this directly -- callers flatten it first.
type ToggleableSettings struct {
	MesLinear  Toggle
	MesXOff    Toggle
	MesYOff    Toggle
	MesZOff    Toggle
	MesTorque  Toggle
	MesXRotOff Toggle
	MesYRotOff Toggle
	MesZRotOff Toggle

	AvgLinear Toggle
	AvgTorque Toggle

	MinLinear Toggle
	MinTorque Toggle

	X Toggle
	Y Toggle
	Z Toggle

	XRot Toggle
	YRot Toggle
	ZRot Toggle

	CenterOfMassLoss Toggle
	CenterLoss       Toggle
	SurfaceAreaLoss  Toggle
	DimensionLoss    Toggle

	TubeExclusionRadius     Toggle
	TubeExclusionLoss       Toggle
	ThrusterExclusionRadius Toggle
	ThrusterExclusionLoss   Toggle

	ThrusterFlowExclusionLoss Toggle
	CardinalityLoss           Toggle
}

// DefaultToggleableSettings mirrors
// ToggleableScoreSettings::default from the original source: the six raw
// axis weights and mes_torque start disabled, everything else enabled.
func DefaultToggleableSettings() ToggleableSettings {
	base := DefaultSettings()
	enabled := func(v float64) Toggle { return Toggle{Enabled: true, Value: v} }
	disabled := func(v float64) Toggle { return Toggle{Enabled: false, Value: v} }

	return ToggleableSettings{
		MesLinear:  enabled(base.MesLinear),
		MesXOff:    enabled(base.MesXOff),
		MesYOff:    enabled(base.MesYOff),
		MesZOff:    enabled(base.MesZOff),
		MesTorque:  disabled(base.MesTorque),
		MesXRotOff: enabled(base.MesXRotOff),
		MesYRotOff: enabled(base.MesYRotOff),
		MesZRotOff: enabled(base.MesZRotOff),

		AvgLinear: enabled(base.AvgLinear),
		AvgTorque: enabled(base.AvgTorque),
		MinLinear: enabled(base.MinLinear),
		MinTorque: enabled(base.MinTorque),

		X:    disabled(base.X),
		Y:    disabled(base.Y),
		Z:    disabled(base.Z),
		XRot: disabled(base.XRot),
		YRot: disabled(base.YRot),
		ZRot: disabled(base.ZRot),

		CenterOfMassLoss: enabled(base.CenterOfMassLoss),
		CenterLoss:       enabled(base.CenterLoss),
		SurfaceAreaLoss:  enabled(base.SurfaceAreaScore),
		DimensionLoss:    enabled(base.DimensionLoss),

		TubeExclusionRadius:     enabled(0.08),
		TubeExclusionLoss:       enabled(base.TubeExclusionLoss),
		ThrusterExclusionRadius: enabled(0.08),
		ThrusterExclusionLoss:   enabled(base.ThrusterExclusionLoss),

		ThrusterFlowExclusionLoss: enabled(base.ThrusterFlowExclusionLoss),
		CardinalityLoss:           enabled(base.CardinalityLoss),
	}
}

// Flatten resolves every Toggle to its effective weight, producing the
// Settings the arena and scorer actually consume.
func (t ToggleableSettings) Flatten() Settings {
	return Settings{
		MesLinear:  t.MesLinear.resolve(0),
		MesXOff:    t.MesXOff.resolve(-1),
		MesYOff:    t.MesYOff.resolve(-1),
		MesZOff:    t.MesZOff.resolve(-1),
		MesTorque:  t.MesTorque.resolve(0),
		MesXRotOff: t.MesXRotOff.resolve(-1),
		MesYRotOff: t.MesYRotOff.resolve(-1),
		MesZRotOff: t.MesZRotOff.resolve(-1),

		AvgLinear: t.AvgLinear.resolve(0),
		AvgTorque: t.AvgTorque.resolve(0),
		MinLinear: t.MinLinear.resolve(0),
		MinTorque: t.MinTorque.resolve(0),

		X:    t.X.resolve(0),
		Y:    t.Y.resolve(0),
		Z:    t.Z.resolve(0),
		XRot: t.XRot.resolve(0),
		YRot: t.YRot.resolve(0),
		ZRot: t.ZRot.resolve(0),

		CenterOfMassLoss: t.CenterOfMassLoss.resolve(0),
		CenterLoss:       t.CenterLoss.resolve(0),
		SurfaceAreaScore: t.SurfaceAreaLoss.resolve(0),
		DimensionLoss:    t.DimensionLoss.resolve(0),

		TubeExclusionRadius:     t.TubeExclusionRadius.resolve(0),
		TubeExclusionLoss:       t.TubeExclusionLoss.resolve(0),
		ThrusterExclusionRadius: t.ThrusterExclusionRadius.resolve(0),
		ThrusterExclusionLoss:   t.ThrusterExclusionLoss.resolve(0),

		ThrusterFlowExclusionLoss: t.ThrusterFlowExclusionLoss.resolve(0),
		CardinalityLoss:           t.CardinalityLoss.resolve(0),
	}
}
