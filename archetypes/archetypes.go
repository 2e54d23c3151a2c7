package archetypes

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"

	"github.com/tottergame/totter/components"
	cfg "github.com/tottergame/totter/config"
	"github.com/tottergame/totter/tags"
)

var (
	Piece = newArchetype(
		tags.Piece,
		components.ChainLink,
		components.Body,
		components.Visual,
		components.Carry,
		components.BreakOff,
	)
	Magnet = newArchetype(
		tags.Magnet,
		components.Magnet,
		components.Body,
		components.Visual,
	)
	Carrier = newArchetype(
		tags.Carrier,
		components.Carrier,
		components.Body,
	)
	Fallen = newArchetype(
		tags.Fallen,
		components.Body,
		components.Visual,
	)
	Runtime = newArchetype(
		tags.Runtime,
		components.Engine,
		components.Tuning,
		components.SpawnQueue,
	)
)

type archetype struct {
	components []donburi.IComponentType
}

func newArchetype(cs ...donburi.IComponentType) *archetype {
	return &archetype{
		components: cs,
	}
}

func (a *archetype) Spawn(ecs *ecs.ECS, cs ...donburi.IComponentType) *donburi.Entry {
	e := ecs.World.Entry(ecs.Create(
		cfg.Default,
		append(a.components, cs...)...,
	))
	return e
}
