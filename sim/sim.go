// Package sim owns the simulation root: the ECS world, the fixed-step loop,
// and the tick ordering contract between the chain controllers.
package sim

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"

	"github.com/tottergame/totter/components"
	"github.com/tottergame/totter/physics"
	"github.com/tottergame/totter/systems"
	"github.com/tottergame/totter/systems/factory"
)

// Shaker is the camera collaborator. The simulation only ever calls it;
// smoothing and actual shaking live outside.
type Shaker interface {
	Shake(duration, magnitude float64)
}

// NopShaker ignores all shake requests.
type NopShaker struct{}

func (NopShaker) Shake(float64, float64) {}

// Simulation drives the chain controllers against a physics engine at a
// fixed tick rate. All structural mutations happen inside a tick, so they are
// atomic with respect to the physics step.
type Simulation struct {
	ecs    *ecs.ECS
	engine physics.Engine
	shaker Shaker

	delta       float64
	accumulator float64
}

// Option configures a Simulation at construction.
type Option func(*Simulation)

// WithShaker routes break-off shake requests to the given camera
// collaborator.
func WithShaker(s Shaker) Option {
	return func(sim *Simulation) {
		sim.shaker = s
	}
}

// New builds a simulation around the given engine. The tick order is fixed:
// carry toggles, relink refresh, follow forces, wobble, break-off,
// attraction, dissolve — then the physics step (for owned engines) and the
// deferred-spawn drain.
func New(engine physics.Engine, opts ...Option) *Simulation {
	e := ecs.NewECS(donburi.NewWorld())

	rt := factory.CreateRuntime(e, engine)
	sim := &Simulation{
		ecs:    e,
		engine: engine,
		shaker: NopShaker{},
		delta:  components.Tuning.Get(rt).Delta,
	}
	for _, opt := range opts {
		opt(sim)
	}

	e.AddSystem(systems.UpdateCarry)
	e.AddSystem(systems.UpdateChainLinks)
	e.AddSystem(systems.UpdateFollow)
	e.AddSystem(systems.UpdateWobble)
	e.AddSystem(systems.UpdateBreakOff)
	e.AddSystem(systems.UpdateAttraction)
	e.AddSystem(systems.UpdateDissolve)

	return sim
}

// ECS exposes the world for entity construction and queries.
func (s *Simulation) ECS() *ecs.ECS {
	return s.ecs
}

// Engine returns the physics engine the simulation was built on.
func (s *Simulation) Engine() physics.Engine {
	return s.engine
}

// Delta returns the fixed tick duration in seconds.
func (s *Simulation) Delta() float64 {
	return s.delta
}

// Update accumulates elapsed wall time and runs as many whole fixed ticks as
// it covers. The visual tick (rendering, interpolation) runs at the caller's
// rate and only ever reads component data.
func (s *Simulation) Update(elapsed float64) {
	s.accumulator += elapsed
	for s.accumulator >= s.delta {
		s.Step()
		s.accumulator -= s.delta
	}
}

// Step runs exactly one fixed tick.
func (s *Simulation) Step() {
	s.ecs.Update()

	if stepper, ok := s.engine.(physics.Stepper); ok {
		stepper.Step(s.delta)
	}

	systems.DrainSpawnQueue(s.ecs)
	for _, shake := range systems.TakeShakeRequests(s.ecs) {
		s.shaker.Shake(shake.Duration, shake.Magnitude)
	}
}
