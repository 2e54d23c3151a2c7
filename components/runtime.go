package components

import (
	"github.com/yohamta/donburi"

	"github.com/tottergame/totter/config"
	"github.com/tottergame/totter/physics"
)

// EngineData holds the physics engine the whole simulation talks to, stored
// on the runtime singleton entity.
type EngineData struct {
	Physics physics.Engine
}

var Engine = donburi.NewComponentType[EngineData]()

// TuningData is the injected configuration snapshot: controllers read it from
// the runtime singleton instead of global registry state, so two simulations
// can coexist with different tuning.
type TuningData struct {
	Delta  float64
	Chain  config.ChainConfig
	Wobble config.WobbleConfig
	Carry  config.CarryConfig
	Break  config.BreakConfig
	Magnet config.MagnetConfig
}

var Tuning = donburi.NewComponentType[TuningData]()

// ShakeRequest asks the camera collaborator for a shake.
type ShakeRequest struct {
	Duration  float64
	Magnitude float64
}

// PendingSpawn is one scheduled replacement body. DelaySteps counts whole
// ticks beyond the current one before the spawn executes.
type PendingSpawn struct {
	Snapshot   BreakSnapshot
	DelaySteps int
}

// SpawnQueueData is the deferred-spawn service: it outlives any piece that
// feeds it, and every entry executes exactly once.
type SpawnQueueData struct {
	Pending []PendingSpawn
	Shakes  []ShakeRequest
}

var SpawnQueue = donburi.NewComponentType[SpawnQueueData]()
