// Package config loads the arena's runtime configuration from YAML (spec
// section 6: "External interfaces" -- the runtime knobs for the allocator,
// Adam, the heuristic, and the chosen parameterisation), grounded on the
// viper + yaml.v3 two-hop pattern this was distilled from: viper decodes
// the document's generic shape, and the polymorphic parameterisation
// section is re-marshalled and decoded a second time once its kind is
// known, since a single mapstructure pass can't select a concrete Go type
// from a string field.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"thrustersim/adamstep"
	"thrustersim/allocator"
	"thrustersim/geometry"
	"thrustersim/heuristic"
	"thrustersim/paramspec"
)

// ParameterisationKind selects one of the three structural priors a
// ParameterisationSpec decodes into (spec section 4.F).
type ParameterisationKind string

const (
	KindFixedX3D        ParameterisationKind = "fixedX3D"
	KindSymmetricalHalf ParameterisationKind = "symmetricalHalf"
	KindUnconstrained   ParameterisationKind = "unconstrained"
)

// ParameterisationSpec is the polymorphic section of the document: a kind
// tag plus a kind-specific payload, decoded in two passes the way
// FromYaml's OuterConfig/TrainingConfig split does.
type ParameterisationSpec struct {
	Kind ParameterisationKind `mapstructure:"kind"`
	Def  interface{}          `mapstructure:"def"`
}

type fixedX3DDef struct {
	Width        float64    `yaml:"width"`
	Length       float64    `yaml:"length"`
	Height       float64    `yaml:"height"`
	CentreOfMass [3]float64 `yaml:"centreOfMass"`
}

type symmetricalHalfDef struct {
	K            int        `yaml:"k"`
	CentreOfMass [3]float64 `yaml:"centreOfMass"`
}

type unconstrainedDef struct {
	N            int        `yaml:"n"`
	CentreOfMass [3]float64 `yaml:"centreOfMass"`
}

// AllocatorSpec mirrors allocator.Settings for YAML decoding.
type AllocatorSpec struct {
	AmperageCap float64 `mapstructure:"amperageCap"`
	Epsilon     float64 `mapstructure:"epsilon"`
}

func (s AllocatorSpec) orDefault() allocator.Settings {
	if s.AmperageCap == 0 && s.Epsilon == 0 {
		return allocator.DefaultSettings()
	}
	return allocator.Settings{AmperageCap: s.AmperageCap, Epsilon: s.Epsilon}
}

// AdamSpec mirrors adamstep.Config for YAML decoding.
type AdamSpec struct {
	Beta1                  float64 `mapstructure:"beta1"`
	Beta2                  float64 `mapstructure:"beta2"`
	Epsilon                float64 `mapstructure:"epsilon"`
	StepSize               float64 `mapstructure:"stepSize"`
	FrontierRatioThreshold float64 `mapstructure:"frontierRatioThreshold"`
	FrontierTimeLimit      int     `mapstructure:"frontierTimeLimit"`
	CriticalPointEpsilon   float64 `mapstructure:"criticalPointEpsilon"`
}

func (s AdamSpec) orDefault() adamstep.Config {
	cfg := adamstep.DefaultConfig()
	if s.Beta1 != 0 {
		cfg.Beta1 = s.Beta1
	}
	if s.Beta2 != 0 {
		cfg.Beta2 = s.Beta2
	}
	if s.Epsilon != 0 {
		cfg.Epsilon = s.Epsilon
	}
	if s.StepSize != 0 {
		cfg.StepSize = s.StepSize
	}
	if s.FrontierRatioThreshold != 0 {
		cfg.FrontierRatioThreshold = s.FrontierRatioThreshold
	}
	if s.FrontierTimeLimit != 0 {
		cfg.FrontierTimeLimit = s.FrontierTimeLimit
	}
	if s.CriticalPointEpsilon != 0 {
		cfg.CriticalPointEpsilon = s.CriticalPointEpsilon
	}
	return cfg
}

// toggleSpec mirrors heuristic's internal toggle shape for YAML decoding.
type toggleSpec struct {
	Enabled bool    `mapstructure:"enabled" yaml:"enabled"`
	Value   float64 `mapstructure:"value" yaml:"value"`
}

// HeuristicSpec mirrors heuristic.ToggleableSettings field-for-field.
type HeuristicSpec struct {
	MesLinear  toggleSpec `mapstructure:"mesLinear"`
	MesXOff    toggleSpec `mapstructure:"mesXOff"`
	MesYOff    toggleSpec `mapstructure:"mesYOff"`
	MesZOff    toggleSpec `mapstructure:"mesZOff"`
	MesTorque  toggleSpec `mapstructure:"mesTorque"`
	MesXRotOff toggleSpec `mapstructure:"mesXRotOff"`
	MesYRotOff toggleSpec `mapstructure:"mesYRotOff"`
	MesZRotOff toggleSpec `mapstructure:"mesZRotOff"`

	AvgLinear toggleSpec `mapstructure:"avgLinear"`
	AvgTorque toggleSpec `mapstructure:"avgTorque"`
	MinLinear toggleSpec `mapstructure:"minLinear"`
	MinTorque toggleSpec `mapstructure:"minTorque"`

	X    toggleSpec `mapstructure:"x"`
	Y    toggleSpec `mapstructure:"y"`
	Z    toggleSpec `mapstructure:"z"`
	XRot toggleSpec `mapstructure:"xRot"`
	YRot toggleSpec `mapstructure:"yRot"`
	ZRot toggleSpec `mapstructure:"zRot"`

	CenterOfMassLoss toggleSpec `mapstructure:"centerOfMassLoss"`
	CenterLoss       toggleSpec `mapstructure:"centerLoss"`
	SurfaceAreaLoss  toggleSpec `mapstructure:"surfaceAreaLoss"`
	DimensionLoss    toggleSpec `mapstructure:"dimensionLoss"`

	TubeExclusionRadius     toggleSpec `mapstructure:"tubeExclusionRadius"`
	TubeExclusionLoss       toggleSpec `mapstructure:"tubeExclusionLoss"`
	ThrusterExclusionRadius toggleSpec `mapstructure:"thrusterExclusionRadius"`
	ThrusterExclusionLoss   toggleSpec `mapstructure:"thrusterExclusionLoss"`

	ThrusterFlowExclusionLoss toggleSpec `mapstructure:"thrusterFlowExclusionLoss"`
	CardinalityLoss           toggleSpec `mapstructure:"cardinalityLoss"`
}

func (t toggleSpec) toggle() heuristic.Toggle { return heuristic.NewToggle(t.Enabled, t.Value) }

// ToSettings converts the decoded spec into heuristic's flattened runtime
// Settings, resolving every Toggle.
func (h HeuristicSpec) ToSettings() heuristic.Settings {
	return heuristic.ToggleableSettings{
		MesLinear:  h.MesLinear.toggle(),
		MesXOff:    h.MesXOff.toggle(),
		MesYOff:    h.MesYOff.toggle(),
		MesZOff:    h.MesZOff.toggle(),
		MesTorque:  h.MesTorque.toggle(),
		MesXRotOff: h.MesXRotOff.toggle(),
		MesYRotOff: h.MesYRotOff.toggle(),
		MesZRotOff: h.MesZRotOff.toggle(),

		AvgLinear: h.AvgLinear.toggle(),
		AvgTorque: h.AvgTorque.toggle(),
		MinLinear: h.MinLinear.toggle(),
		MinTorque: h.MinTorque.toggle(),

		X:    h.X.toggle(),
		Y:    h.Y.toggle(),
		Z:    h.Z.toggle(),
		XRot: h.XRot.toggle(),
		YRot: h.YRot.toggle(),
		ZRot: h.ZRot.toggle(),

		CenterOfMassLoss: h.CenterOfMassLoss.toggle(),
		CenterLoss:       h.CenterLoss.toggle(),
		SurfaceAreaLoss:  h.SurfaceAreaLoss.toggle(),
		DimensionLoss:    h.DimensionLoss.toggle(),

		TubeExclusionRadius:     h.TubeExclusionRadius.toggle(),
		TubeExclusionLoss:       h.TubeExclusionLoss.toggle(),
		ThrusterExclusionRadius: h.ThrusterExclusionRadius.toggle(),
		ThrusterExclusionLoss:   h.ThrusterExclusionLoss.toggle(),

		ThrusterFlowExclusionLoss: h.ThrusterFlowExclusionLoss.toggle(),
		CardinalityLoss:           h.CardinalityLoss.toggle(),
	}.Flatten()
}

// ArenaSpec is the full document shape this package decodes (spec section
// 6: the arena's `reset`/`new` inputs plus the allocator and Adam knobs).
type ArenaSpec struct {
	Parameterisation ParameterisationSpec `mapstructure:"parameterisation"`
	PointCount       int                  `mapstructure:"pointCount"`
	Workers          int                  `mapstructure:"workers"`
	RNGSeed          int64                `mapstructure:"rngSeed"`
	Allocator        AllocatorSpec        `mapstructure:"allocator"`
	Adam             AdamSpec             `mapstructure:"adam"`
	Heuristic        HeuristicSpec        `mapstructure:"heuristic"`
}

// Load reads an ArenaSpec from a YAML file at path.
func Load(path string) (*ArenaSpec, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	if err := vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	spec := &ArenaSpec{}
	if err := vp.Unmarshal(spec); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return spec, nil
}

// BuildParameterisation resolves a ParameterisationSpec's polymorphic Kind
// into a concrete paramspec.Parameterisation, re-marshalling Def through
// yaml so its shape can vary by Kind (spec section 4.F: three distinct
// structural priors, one spec document).
func BuildParameterisation(spec ParameterisationSpec) (paramspec.Parameterisation, error) {
	raw, err := yaml.Marshal(spec.Def)
	if err != nil {
		return nil, fmt.Errorf("config: re-marshal parameterisation def: %w", err)
	}

	switch spec.Kind {
	case KindFixedX3D:
		var def fixedX3DDef
		if err := yaml.Unmarshal(raw, &def); err != nil {
			return nil, fmt.Errorf("config: decode fixedX3D def: %w", err)
		}
		return paramspec.FixedX3D{
			Width: def.Width, Length: def.Length, Height: def.Height,
			CentreOfMass: geometry.V3Const(def.CentreOfMass[0], def.CentreOfMass[1], def.CentreOfMass[2]),
		}, nil

	case KindSymmetricalHalf:
		var def symmetricalHalfDef
		if err := yaml.Unmarshal(raw, &def); err != nil {
			return nil, fmt.Errorf("config: decode symmetricalHalf def: %w", err)
		}
		return paramspec.SymmetricalHalf{
			K:            def.K,
			CentreOfMass: geometry.V3Const(def.CentreOfMass[0], def.CentreOfMass[1], def.CentreOfMass[2]),
		}, nil

	case KindUnconstrained:
		var def unconstrainedDef
		if err := yaml.Unmarshal(raw, &def); err != nil {
			return nil, fmt.Errorf("config: decode unconstrained def: %w", err)
		}
		return paramspec.Unconstrained{
			N:            def.N,
			CentreOfMass: geometry.V3Const(def.CentreOfMass[0], def.CentreOfMass[1], def.CentreOfMass[2]),
		}, nil

	default:
		return nil, fmt.Errorf("config: unknown parameterisation kind %q", spec.Kind)
	}
}

// AllocatorSettings resolves the spec's allocator section to its effective
// runtime form.
func (s *ArenaSpec) AllocatorSettings() allocator.Settings { return s.Allocator.orDefault() }

// AdamConfig resolves the spec's Adam section to its effective runtime
// form.
func (s *ArenaSpec) AdamConfig() adamstep.Config { return s.Adam.orDefault() }

// HeuristicSettings resolves the spec's heuristic section to its
// effective flattened weights.
func (s *ArenaSpec) HeuristicSettings() heuristic.Settings { return s.Heuristic.ToSettings() }
