// Package motordata holds the per-thruster performance curve: the ordered
// sample table mapping signed current/force to the rest of a motor's
// operating point, and the interpolated lookups the allocator drives
// (spec section 4.A).
package motordata

import (
	"errors"
	"sort"
)

// Record is one measured motor operating point. Force and Current are
// signed: positive is forward thrust, with Current signed in the same
// sense (spec section 3).
type Record struct {
	PWM        float64
	RPM        float64
	Current    float64
	Voltage    float64
	Power      float64
	Force      float64
	Efficiency float64
}

func lerpRecord(a, b Record, alpha float64) Record {
	lerp := func(x, y float64) float64 { return x + alpha*(y-x) }
	return Record{
		PWM:        lerp(a.PWM, b.PWM),
		RPM:        lerp(a.RPM, b.RPM),
		Current:    lerp(a.Current, b.Current),
		Voltage:    lerp(a.Voltage, b.Voltage),
		Power:      lerp(a.Power, b.Power),
		Force:      lerp(a.Force, b.Force),
		Efficiency: lerp(a.Efficiency, b.Efficiency),
	}
}

func (r Record) negated() Record {
	return Record{
		PWM:        -r.PWM,
		RPM:        -r.RPM,
		Current:    -r.Current,
		Voltage:    -r.Voltage,
		Power:      r.Power,
		Force:      -r.Force,
		Efficiency: r.Efficiency,
	}
}

// ErrEmptyTable is returned when a Table is constructed from zero records
// (spec section 4.A: "Reject empty tables").
var ErrEmptyTable = errors.New("motordata: table has no records")

// Table is the in-memory motor curve, indexed two ways: ascending by
// signed force, and ascending by signed current (spec section 3: "Two
// parallel concerns").
type Table struct {
	byForce   []Record
	byCurrent []Record
}

// NewTable builds a Table from unordered records, sorting both internal
// views. Returns ErrEmptyTable for an empty input.
func NewTable(records []Record) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrEmptyTable
	}

	byForce := make([]Record, len(records))
	copy(byForce, records)
	sort.Slice(byForce, func(i, j int) bool { return byForce[i].Force < byForce[j].Force })

	byCurrent := make([]Record, len(records))
	copy(byCurrent, records)
	sort.Slice(byCurrent, func(i, j int) bool { return byCurrent[i].Current < byCurrent[j].Current })

	return &Table{byForce: byForce, byCurrent: byCurrent}, nil
}

// interp locates the bracket around key in a key-ascending slice (keyed by
// key()) and linearly interpolates between the bracket's endpoints,
// clamping to the endpoint record at either extreme (spec section 4.A).
func interp(samples []Record, key func(Record) float64, target float64) Record {
	if target <= key(samples[0]) {
		return samples[0]
	}
	last := len(samples) - 1
	if target >= key(samples[last]) {
		return samples[last]
	}

	// First index whose key is >= target; samples[idx-1] < target <= samples[idx].
	idx := sort.Search(len(samples), func(i int) bool { return key(samples[i]) >= target })
	if idx == 0 {
		return samples[0]
	}
	lo, hi := samples[idx-1], samples[idx]
	loKey, hiKey := key(lo), key(hi)
	if hiKey == loKey {
		return lo
	}
	alpha := (target - loKey) / (hiKey - loKey)
	return lerpRecord(lo, hi, alpha)
}

// LookupByForce returns the interpolated Record at signed force f,
// clamping to the endpoint record outside the table's range.
func (t *Table) LookupByForce(f float64) Record {
	return interp(t.byForce, func(r Record) float64 { return r.Force }, f)
}

// LookupByCurrent returns the interpolated Record at signed current c.
func (t *Table) LookupByCurrent(c float64) Record {
	return interp(t.byCurrent, func(r Record) float64 { return r.Current }, c)
}

// Direction mirrors geometry.Direction without importing geometry, so this
// package has no dependency on the motor-configuration layer it feeds.
type Direction int

const (
	Clockwise Direction = iota
	CounterClockwise
)

// Records returns the table's samples sorted ascending by force, for
// callers that need to display or re-export the curve (spec section 6:
// the API's read-only `/motors` listing).
func (t *Table) Records() []Record {
	out := make([]Record, len(t.byForce))
	copy(out, t.byForce)
	return out
}

// LookupByForceDirectional is the direction-aware variant used by the
// allocator (spec section 4.A): a CounterClockwise motor's propeller
// reaction reverses the force/current handedness of the curve, so the
// lookup is performed against the negated force and the resulting record
// is negated back.
func (t *Table) LookupByForceDirectional(f float64, dir Direction) Record {
	if dir == Clockwise {
		return t.LookupByForce(f)
	}
	return t.LookupByForce(-f).negated()
}
