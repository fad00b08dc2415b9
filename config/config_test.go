package config

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const sampleYAML = `
pointCount: 12
workers: 4
rngSeed: 7
allocator:
  amperageCap: 25.0
  epsilon: 0.001
adam:
  stepSize: 0.02
heuristic:
  x:
    enabled: true
    value: 0.5
  mesXOff:
    enabled: false
    value: 0
parameterisation:
  kind: fixedX3D
  def:
    width: 0.325
    length: 0.355
    height: 0.241
`

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "arena.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadDecodesArenaSpec(t *testing.T) {
	Convey("Given a YAML document describing a full arena configuration", t, func() {
		path := writeTempConfig(t, sampleYAML)

		Convey("Load decodes the flat fields and the polymorphic parameterisation section", func() {
			spec, err := Load(path)
			So(err, ShouldBeNil)
			So(spec.PointCount, ShouldEqual, 12)
			So(spec.Workers, ShouldEqual, 4)
			So(spec.RNGSeed, ShouldEqual, 7)
			So(spec.Parameterisation.Kind, ShouldEqual, KindFixedX3D)

			Convey("and BuildParameterisation resolves it to a FixedX3D with the right dimensions", func() {
				param, err := BuildParameterisation(spec.Parameterisation)
				So(err, ShouldBeNil)
				So(param.Dim(), ShouldEqual, 3)
			})

			Convey("and AdamConfig overrides only the fields the document set", func() {
				adamCfg := spec.AdamConfig()
				So(adamCfg.StepSize, ShouldEqual, 0.02)
				So(adamCfg.Beta1, ShouldEqual, 0.9) // default, untouched
			})

			Convey("and HeuristicSettings resolves the disabled MES offset to its -1 sentinel", func() {
				hs := spec.HeuristicSettings()
				So(hs.X, ShouldEqual, 0.5)
				So(hs.MesXOff, ShouldEqual, -1)
			})
		})
	})
}

func TestBuildParameterisationRejectsUnknownKind(t *testing.T) {
	Convey("Given a parameterisation spec with an unrecognised kind", t, func() {
		spec := ParameterisationSpec{Kind: "bogus", Def: map[string]interface{}{}}

		Convey("BuildParameterisation returns an error", func() {
			_, err := BuildParameterisation(spec)
			So(err, ShouldNotBeNil)
		})
	})
}
