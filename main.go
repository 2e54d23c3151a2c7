package main

import (
	"flag"
	"log"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tottergame/totter/components"
	"github.com/tottergame/totter/config"
	"github.com/tottergame/totter/physics"
	"github.com/tottergame/totter/sim"
	"github.com/tottergame/totter/systems"
	"github.com/tottergame/totter/systems/factory"
)

var (
	configPath = flag.String("config", "", "optional YAML tuning override file")
	pieces     = flag.Int("pieces", 5, "stack height")
	seconds    = flag.Float64("seconds", 10, "simulated time to run")
)

type logShaker struct{}

func (logShaker) Shake(duration, magnitude float64) {
	log.Printf("camera shake: %.2fs at %.2f", duration, magnitude)
}

// main runs a scripted headless scenario: a stack gets built, picked up and
// dragged by a carrier, put back down, and left to settle.
func main() {
	flag.Parse()

	if *configPath != "" {
		if err := config.LoadFile(*configPath); err != nil {
			log.Fatalf("config: %v", err)
		}
	}

	world := physics.NewWorld()
	s := sim.New(world, sim.WithShaker(logShaker{}))

	base := factory.CreatePiece(s.ECS(), mgl64.Vec3{}, 0.5)
	for i := 1; i < *pieces; i++ {
		p := factory.CreatePiece(s.ECS(), mgl64.Vec3{0, float64(i), 0}, 0.5)
		systems.AttachOnTop(s.ECS(), base, p)
	}
	factory.AddWobble(s.ECS(), base)

	carrier := factory.CreateCarrier(s.ECS(), mgl64.Vec3{0.5, 0, 0})
	cd := components.Carrier.Get(carrier)

	factory.CreateMagnet(s.ECS(), mgl64.Vec3{3, 0, 0}, 0.3)
	factory.CreateMagnet(s.ECS(), mgl64.Vec3{-3, 0, 0}, 0.3)

	delta := s.Delta()
	ticks := int(*seconds / delta)
	for tick := 0; tick < ticks; tick++ {
		switch {
		case tick == ticks/4:
			cd.ToggleRequested = true
			log.Printf("t=%.2fs: pickup toggle", float64(tick)*delta)
		case tick > ticks/4 && tick < ticks/2:
			cd.Pose.Pos = cd.Pose.Pos.Add(mgl64.Vec3{1.5 * delta, 0, 0})
		case tick == ticks/2:
			cd.ToggleRequested = true
			log.Printf("t=%.2fs: putdown toggle", float64(tick)*delta)
		}
		s.Step()
	}

	rootPos := world.Pose(components.Body.Get(base).ID).Pos
	height := 1
	for n := systems.Child(s.ECS().World, base); n != nil; n = systems.Child(s.ECS().World, n) {
		height++
	}
	log.Printf("after %.1fs: root at %v, chain height %d", *seconds, rootPos, height)
}
