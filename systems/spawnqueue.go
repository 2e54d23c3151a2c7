package systems

import (
	"github.com/yohamta/donburi/ecs"

	"github.com/tottergame/totter/components"
	"github.com/tottergame/totter/systems/factory"
)

// DrainSpawnQueue executes due deferred spawns. It runs at the end of the
// tick, after the physics step, so a replacement body never coexists with the
// piece that scheduled it: entries wait out their delay and then spawn
// exactly once.
func DrainSpawnQueue(ecs *ecs.ECS) {
	rt, ok := components.SpawnQueue.First(ecs.World)
	if !ok {
		return
	}
	queue := components.SpawnQueue.Get(rt)

	remaining := queue.Pending[:0]
	for _, p := range queue.Pending {
		p.DelaySteps--
		if p.DelaySteps < 0 {
			factory.CreateFallenPiece(ecs, p.Snapshot)
			continue
		}
		remaining = append(remaining, p)
	}
	queue.Pending = remaining
}

// TakeShakeRequests hands the accumulated camera-shake requests to the caller
// and clears them.
func TakeShakeRequests(ecs *ecs.ECS) []components.ShakeRequest {
	rt, ok := components.SpawnQueue.First(ecs.World)
	if !ok {
		return nil
	}
	queue := components.SpawnQueue.Get(rt)
	shakes := queue.Shakes
	queue.Shakes = nil
	return shakes
}
