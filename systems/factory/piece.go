package factory

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"

	"github.com/tottergame/totter/archetypes"
	"github.com/tottergame/totter/components"
	"github.com/tottergame/totter/physics"
	"github.com/tottergame/totter/tags"
)

// CreatePiece spawns a stack piece with a dynamic body at the given position.
// Anchors default to the top and bottom of the body sphere.
func CreatePiece(ecs *ecs.ECS, pos mgl64.Vec3, radius float64) *donburi.Entry {
	rt, ok := components.Engine.First(ecs.World)
	if !ok {
		return nil
	}
	eng := components.Engine.Get(rt).Physics
	tuning := components.Tuning.Get(rt)

	piece := archetypes.Piece.Spawn(ecs)

	id := eng.CreateBody(physics.BodyDef{
		Pose:    physics.Pose{Pos: pos, Rot: mgl64.QuatIdent()},
		Radius:  radius,
		Layer:   tags.MaskPiece,
		Dynamic: true,
	})
	components.Body.Set(piece, &components.BodyData{
		ID:     id,
		Radius: radius,
		Layer:  tags.MaskPiece,
	})

	components.ChainLink.Set(piece, &components.ChainLinkData{
		BottomAnchor: mgl64.Vec3{0, -radius, 0},
		TopAnchor:    mgl64.Vec3{0, radius, 0},
	})

	visual := components.NewVisual()
	components.Visual.Set(piece, &visual)

	components.Carry.Set(piece, &components.CarryData{
		LocalOffset:    tuning.Carry.HoldOffset,
		LocalRotOffset: mgl64.QuatIdent(),
	})

	components.BreakOff.Set(piece, &components.BreakOffData{})

	return piece
}

// AddWobble attaches the secondary-motion solver to a chain root.
func AddWobble(ecs *ecs.ECS, root *donburi.Entry) {
	rt, ok := components.Tuning.First(ecs.World)
	if !ok || root == nil {
		return
	}
	tuning := components.Tuning.Get(rt)

	damping := tuning.Wobble.DampingRatio
	if damping <= 0 {
		damping = 1
	}
	freq := tuning.Wobble.Frequency
	if freq <= 0 {
		freq = 2 * math.Pi
	}

	donburi.Add(root, components.Wobble, &components.WobbleData{
		Dirty:  true,
		Spring: harmonica.NewSpring(tuning.Delta, freq, damping),
	})
}

// CreateFallenPiece materializes a break snapshot as an independent free
// body. Called by the spawn-queue drain, never directly by the piece that
// broke.
func CreateFallenPiece(ecs *ecs.ECS, snap components.BreakSnapshot) *donburi.Entry {
	rt, ok := components.Engine.First(ecs.World)
	if !ok {
		return nil
	}
	eng := components.Engine.Get(rt).Physics

	fallen := archetypes.Fallen.Spawn(ecs)

	id := eng.CreateBody(physics.BodyDef{
		Pose:    snap.Pose,
		Radius:  snap.Radius,
		Layer:   snap.Layer,
		Dynamic: true,
	})
	vel := snap.Velocity
	if snap.ImpulseMagnitude > 0 {
		vel = vel.Add(snap.ImpulseDir.Mul(snap.ImpulseMagnitude))
	}
	eng.SetVelocity(id, vel)

	components.Body.Set(fallen, &components.BodyData{
		ID:     id,
		Radius: snap.Radius,
		Layer:  snap.Layer,
	})

	visual := components.NewVisual()
	visual.Scale = snap.Scale
	components.Visual.Set(fallen, &visual)

	return fallen
}
