package atomicfloat

import (
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAtomicAdd(t *testing.T) {
	Convey("When AtomicAdd is called by many concurrent writers", t, func() {
		f64 := float64(0.0)
		numOps := 3000
		numWriters := 200

		start := make(chan struct{})
		wg := sync.WaitGroup{}
		wg.Add(numWriters)
		adder := func() {
			<-start
			for i := 0; i < numOps; i++ {
				AtomicAdd(&f64, 1.0)
			}
			wg.Done()
		}

		for i := 0; i < numWriters; i++ {
			go adder()
		}

		time.Sleep(time.Millisecond * 10)
		close(start)
		wg.Wait()

		Convey("every add lands with no lost updates", func() {
			So(f64, ShouldEqual, float64(numOps*numWriters))
		})
	})
}

func TestAtomicMax(t *testing.T) {
	Convey("Given a shared gauge at zero", t, func() {
		gauge := 0.0

		Convey("AtomicMax raises it only when the candidate is larger", func() {
			AtomicMax(&gauge, 3.0)
			So(gauge, ShouldEqual, 3.0)
			AtomicMax(&gauge, 1.0)
			So(gauge, ShouldEqual, 3.0)
			AtomicMax(&gauge, 9.5)
			So(gauge, ShouldEqual, 9.5)
		})

		Convey("concurrent writers converge on the largest candidate offered", func() {
			wg := sync.WaitGroup{}
			wg.Add(100)
			for i := 0; i < 100; i++ {
				go func(candidate float64) {
					defer wg.Done()
					AtomicMax(&gauge, candidate)
				}(float64(i))
			}
			wg.Wait()
			So(gauge, ShouldEqual, 99.0)
		})
	})
}
