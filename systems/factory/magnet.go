package factory

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"

	"github.com/tottergame/totter/archetypes"
	"github.com/tottergame/totter/components"
	"github.com/tottergame/totter/physics"
	"github.com/tottergame/totter/tags"
)

// nextMagnetID hands out the stable identities that order attraction pairs.
var nextMagnetID int

// CreateMagnet spawns a body participating in the attraction field.
func CreateMagnet(ecs *ecs.ECS, pos mgl64.Vec3, radius float64) *donburi.Entry {
	rt, ok := components.Engine.First(ecs.World)
	if !ok {
		return nil
	}
	eng := components.Engine.Get(rt).Physics

	magnet := archetypes.Magnet.Spawn(ecs)

	id := eng.CreateBody(physics.BodyDef{
		Pose:    physics.Pose{Pos: pos, Rot: mgl64.QuatIdent()},
		Radius:  radius,
		Layer:   tags.MaskMagnet,
		Dynamic: true,
	})
	components.Body.Set(magnet, &components.BodyData{
		ID:     id,
		Radius: radius,
		Layer:  tags.MaskMagnet,
	})

	nextMagnetID++
	components.Magnet.Set(magnet, &components.MagnetData{ID: nextMagnetID})

	visual := components.NewVisual()
	components.Visual.Set(magnet, &visual)

	return magnet
}

// CreateStaticBody spawns a plain non-dynamic body (ground, obstacle) that
// only participates in spatial queries.
func CreateStaticBody(ecs *ecs.ECS, pos mgl64.Vec3, radius float64, layer physics.Mask) physics.BodyID {
	rt, ok := components.Engine.First(ecs.World)
	if !ok {
		return 0
	}
	eng := components.Engine.Get(rt).Physics
	return eng.CreateBody(physics.BodyDef{
		Pose:   physics.Pose{Pos: pos, Rot: mgl64.QuatIdent()},
		Radius: radius,
		Layer:  layer,
	})
}
