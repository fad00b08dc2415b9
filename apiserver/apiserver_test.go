package apiserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	. "github.com/smartystreets/goconvey/convey"

	"thrustersim/arena"
	"thrustersim/heuristic"
	"thrustersim/motordata"
)

// fakeArena is a minimal in-memory stand-in for arena.Arena, enough to
// exercise the HTTP layer without running the optimiser.
type fakeArena struct {
	resetCalls int
	lastPoints int
	outputs    []arena.OptimizationOutput
	ranking    map[int]int
}

func (f *fakeArena) Reset(pointCount int, settings heuristic.Settings) {
	f.resetCalls++
	f.lastPoints = pointCount
}
func (f *fakeArena) SetHeuristic(settings heuristic.Settings) {}
func (f *fakeArena) Step(data *motordata.Table) []arena.OptimizationOutput {
	return f.outputs
}
func (f *fakeArena) LookupIndex(id int) (int, bool) {
	idx, ok := f.ranking[id]
	return idx, ok
}

func newTestServer() (*Server, *fakeArena) {
	fa := &fakeArena{
		outputs: []arena.OptimizationOutput{
			{Index: 0, ID: 7, ScaledScore: 1.5},
			{Index: 1, ID: 3, ScaledScore: 0.5},
		},
		ranking: map[int]int{7: 0, 3: 1},
	}
	records := []motordata.Record{
		{PWM: 1500, RPM: 0, Current: 0, Voltage: 16, Power: 0, Force: 0, Efficiency: 0},
		{PWM: 1800, RPM: 6000, Current: 30, Voltage: 16, Power: 480, Force: 20, Efficiency: 0.6},
	}
	table, err := motordata.NewTable(records)
	if err != nil {
		panic(err)
	}
	return NewServer(":0", fa, table), fa
}

func router(s *Server) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/arena/reset", s.handleReset).Methods(http.MethodPost)
	r.HandleFunc("/arena/step", s.handleStep).Methods(http.MethodPost)
	r.HandleFunc("/arena/{id:[0-9]+}", s.handleLookup).Methods(http.MethodGet)
	r.HandleFunc("/motors", s.handleMotors).Methods(http.MethodGet)
	return r
}

func TestHandleReset(t *testing.T) {
	Convey("Given a reset request with a point count", t, func() {
		s, fa := newTestServer()
		body, _ := json.Marshal(resetRequest{PointCount: 16})
		req := httptest.NewRequest(http.MethodPost, "/arena/reset", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		Convey("the server forwards it to the arena and responds 204", func() {
			router(s).ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusNoContent)
			So(fa.resetCalls, ShouldEqual, 1)
			So(fa.lastPoints, ShouldEqual, 16)
		})
	})
}

func TestHandleStepReturnsRankedOutputs(t *testing.T) {
	Convey("Given a server with a populated arena", t, func() {
		s, _ := newTestServer()
		req := httptest.NewRequest(http.MethodPost, "/arena/step", nil)
		rec := httptest.NewRecorder()

		Convey("stepping returns the ranked outputs as JSON, best score first", func() {
			router(s).ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusOK)

			var outputs []arena.OptimizationOutput
			err := json.Unmarshal(rec.Body.Bytes(), &outputs)
			So(err, ShouldBeNil)
			So(len(outputs), ShouldEqual, 2)
			So(outputs[0].ID, ShouldEqual, 7)
		})
	})
}

func TestHandleLookup(t *testing.T) {
	Convey("Given a server that has already stepped once", t, func() {
		s, _ := newTestServer()
		stepReq := httptest.NewRequest(http.MethodPost, "/arena/step", nil)
		router(s).ServeHTTP(httptest.NewRecorder(), stepReq)

		Convey("looking up a known id returns its ranked output", func() {
			req := httptest.NewRequest(http.MethodGet, "/arena/7", nil)
			rec := httptest.NewRecorder()
			router(s).ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusOK)

			var out arena.OptimizationOutput
			So(json.Unmarshal(rec.Body.Bytes(), &out), ShouldBeNil)
			So(out.ID, ShouldEqual, 7)
		})

		Convey("looking up an unknown id returns 404", func() {
			req := httptest.NewRequest(http.MethodGet, "/arena/999", nil)
			rec := httptest.NewRecorder()
			router(s).ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestHandleMotors(t *testing.T) {
	Convey("Given a server backed by a small motor table", t, func() {
		s, _ := newTestServer()
		req := httptest.NewRequest(http.MethodGet, "/motors", nil)
		rec := httptest.NewRecorder()

		Convey("the motors endpoint lists every sample ascending by force", func() {
			router(s).ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusOK)

			var records []motordata.Record
			So(json.Unmarshal(rec.Body.Bytes(), &records), ShouldBeNil)
			So(len(records), ShouldEqual, 2)
			So(records[0].Force, ShouldBeLessThanOrEqualTo, records[1].Force)
		})
	})
}
