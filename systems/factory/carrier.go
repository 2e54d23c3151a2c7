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

// CreateCarrier spawns the external actor that can pick stacks up. Its body
// is kinematic: the locomotion collaborator drives the pose, the carry system
// mirrors it into the engine so overlap queries can find it.
func CreateCarrier(ecs *ecs.ECS, pos mgl64.Vec3) *donburi.Entry {
	rt, ok := components.Engine.First(ecs.World)
	if !ok {
		return nil
	}
	eng := components.Engine.Get(rt).Physics
	tuning := components.Tuning.Get(rt)

	carrier := archetypes.Carrier.Spawn(ecs)

	id := eng.CreateBody(physics.BodyDef{
		Pose:      physics.Pose{Pos: pos, Rot: mgl64.QuatIdent()},
		Radius:    0.4,
		Layer:     tags.MaskCarrier,
		Dynamic:   false,
		Kinematic: true,
	})
	components.Body.Set(carrier, &components.BodyData{
		ID:     id,
		Radius: 0.4,
		Layer:  tags.MaskCarrier,
	})

	components.Carrier.Set(carrier, &components.CarrierData{
		Pose:        physics.Pose{Pos: pos, Rot: mgl64.QuatIdent()},
		PickupRange: tuning.Carry.PickupRange,
	})

	return carrier
}
