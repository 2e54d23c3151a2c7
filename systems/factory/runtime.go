package factory

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"

	"github.com/tottergame/totter/archetypes"
	"github.com/tottergame/totter/components"
	"github.com/tottergame/totter/config"
	"github.com/tottergame/totter/physics"
)

// CreateRuntime spawns the singleton entity carrying the physics engine, the
// injected tuning snapshot and the deferred-spawn queue. Every system resolves
// these through it; a world without a runtime entity degrades to no-ops.
func CreateRuntime(ecs *ecs.ECS, engine physics.Engine) *donburi.Entry {
	rt := archetypes.Runtime.Spawn(ecs)

	components.Engine.Set(rt, &components.EngineData{Physics: engine})
	components.Tuning.Set(rt, &components.TuningData{
		Delta:  config.Sim.Delta(),
		Chain:  config.Chain,
		Wobble: config.Wobble,
		Carry:  config.Carry,
		Break:  config.Break,
		Magnet: config.Magnet,
	})
	components.SpawnQueue.Set(rt, &components.SpawnQueueData{})

	return rt
}
