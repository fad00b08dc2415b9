// Command thrustersim loads a motor-performance table and an arena
// configuration, builds the requested arena, and serves it over HTTP
// (spec section 6: the CLI/file-system glue that is explicitly out of
// scope for the library packages themselves).
package main

import (
	"flag"
	"log"
	"os"

	"thrustersim/apiserver"
	"thrustersim/arena"
	"thrustersim/config"
	"thrustersim/motordata"
)

func main() {
	motorCSVPath := flag.String("motors", "motors.csv", "path to the motor performance curve CSV")
	configPath := flag.String("config", "arena.yaml", "path to the arena configuration YAML")
	addr := flag.String("addr", ":8080", "address to serve the API on")
	flag.Parse()

	table, err := loadMotorData(*motorCSVPath)
	if err != nil {
		log.Fatalf("thrustersim: %v", err)
	}

	spec, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("thrustersim: %v", err)
	}

	a, pointCount, err := buildArena(spec)
	if err != nil {
		log.Fatalf("thrustersim: %v", err)
	}

	a.Reset(pointCount, spec.HeuristicSettings())
	log.Printf("thrustersim: arena ready with %d seeds, serving on %s", pointCount, *addr)

	srv := apiserver.NewServer(*addr, a, table)
	if err := srv.Serve(); err != nil {
		log.Fatalf("thrustersim: serve: %v", err)
	}
}

func loadMotorData(path string) (*motordata.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return motordata.Load(f)
}

// buildArena resolves the config's parameterisation, allocator, and Adam
// sections into a running arena. Workers > 1 selects the data-parallel
// stepper; otherwise the arena steps every seed serially (spec section 5).
func buildArena(spec *config.ArenaSpec) (arena.Arena, int, error) {
	param, err := config.BuildParameterisation(spec.Parameterisation)
	if err != nil {
		return nil, 0, err
	}

	settings := arena.Settings{
		Allocator: spec.AllocatorSettings(),
		Adam:      spec.AdamConfig(),
	}

	pointCount := spec.PointCount
	if pointCount <= 0 {
		pointCount = 32
	}

	if spec.Workers > 1 {
		return arena.NewDataParallel(param, settings, spec.RNGSeed, spec.Workers), pointCount, nil
	}
	return arena.NewSerial(param, settings, spec.RNGSeed), pointCount, nil
}
