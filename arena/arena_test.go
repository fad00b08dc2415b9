package arena

import (
	"testing"

	"thrustersim/heuristic"
	"thrustersim/motordata"
	"thrustersim/paramspec"

	. "github.com/smartystreets/goconvey/convey"
)

func testTable(t *testing.T) *motordata.Table {
	t.Helper()
	records := []motordata.Record{
		{PWM: 1500, RPM: 0, Current: 0, Voltage: 16, Power: 0, Force: 0, Efficiency: 0},
		{PWM: 1600, RPM: 2000, Current: 5, Voltage: 16, Power: 80, Force: 5, Efficiency: 0.5},
		{PWM: 1700, RPM: 4000, Current: 15, Voltage: 16, Power: 240, Force: 12, Efficiency: 0.6},
		{PWM: 1800, RPM: 6000, Current: 30, Voltage: 16, Power: 480, Force: 20, Efficiency: 0.6},
	}
	table, err := motordata.NewTable(records)
	if err != nil {
		t.Fatalf("unexpected error building test table: %v", err)
	}
	return table
}

func testParam() paramspec.FixedX3D {
	return paramspec.FixedX3D{Width: 0.325, Length: 0.355, Height: 0.241}
}

func TestSerialStepDeterminism(t *testing.T) {
	Convey("Given two independently constructed Serial arenas with the same seed", t, func() {
		data := testTable(t)
		settings := DefaultSettings()
		heuristicSettings := heuristic.DefaultToggleableSettings().Flatten()

		a := NewSerial(testParam(), settings, 42)
		b := NewSerial(testParam(), settings, 42)
		a.Reset(5, heuristicSettings)
		b.Reset(5, heuristicSettings)

		Convey("stepping both 10 times produces identical ranked outputs", func() {
			var outA, outB []OptimizationOutput
			for i := 0; i < 10; i++ {
				outA = a.Step(data)
				outB = b.Step(data)
			}
			So(len(outA), ShouldEqual, len(outB))
			for i := range outA {
				So(outA[i].ID, ShouldEqual, outB[i].ID)
				So(outA[i].ScaledScore, ShouldEqual, outB[i].ScaledScore)
			}
		})
	})
}

func TestParallelMatchesSerial(t *testing.T) {
	Convey("Given a Serial and a DataParallel arena with identical seeds", t, func() {
		data := testTable(t)
		settings := DefaultSettings()
		heuristicSettings := heuristic.DefaultToggleableSettings().Flatten()

		serial := NewSerial(testParam(), settings, 7)
		parallel := NewDataParallel(testParam(), settings, 7, 4)
		serial.Reset(8, heuristicSettings)
		parallel.Reset(8, heuristicSettings)

		Convey("stepping both once produces equal scores per corresponding seed to 1e-9", func() {
			outSerial := serial.Step(data)
			outParallel := parallel.Step(data)

			byID := make(map[int]float64, len(outParallel))
			for _, o := range outParallel {
				byID[o.ID] = o.ScaledScore
			}
			for _, o := range outSerial {
				So(byID[o.ID], ShouldAlmostEqual, o.ScaledScore, 1e-9)
			}
		})
	})
}

func TestLookupIndexAfterStep(t *testing.T) {
	Convey("Given a Serial arena that has been stepped", t, func() {
		data := testTable(t)
		settings := DefaultSettings()
		a := NewSerial(testParam(), settings, 3)
		a.Reset(4, heuristic.DefaultToggleableSettings().Flatten())

		outputs := a.Step(data)

		Convey("LookupIndex resolves every seed id to its ranked position", func() {
			for _, o := range outputs {
				idx, ok := a.LookupIndex(o.ID)
				So(ok, ShouldBeTrue)
				So(idx, ShouldEqual, o.Index)
			}
		})
	})
}

func TestRankExcludesNaNSeeds(t *testing.T) {
	Convey("Given a population containing one seed marked invalid", t, func() {
		seeds := []seed{
			{id: 1, score: 5, validRank: true},
			{id: 2, score: 10, validRank: false},
			{id: 3, score: 3, validRank: true},
		}

		Convey("rank drops the invalid seed and orders the rest by score descending", func() {
			outputs, ranking := rank(seeds)
			So(len(outputs), ShouldEqual, 2)
			So(outputs[0].ID, ShouldEqual, 1)
			So(outputs[1].ID, ShouldEqual, 3)
			So(ranking[1], ShouldEqual, 0)
			So(ranking[3], ShouldEqual, 1)
			_, ok := ranking[2]
			So(ok, ShouldBeFalse)
		})
	})
}
