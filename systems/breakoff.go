package systems

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"

	"github.com/tottergame/totter/components"
	"github.com/tottergame/totter/gamemath"
	"github.com/tottergame/totter/tags"
)

// UpdateBreakOff accumulates tilt against the parent for every attached
// piece and permanently breaks a piece off once the tilt sustains past the
// threshold. Attached -> Broken is one-shot; a broken piece is inert the same
// tick and replaced by a deferred free body.
func UpdateBreakOff(ecs *ecs.ECS) {
	eng, tuning, ok := runtime(ecs)
	if !ok {
		return
	}
	cfg := tuning.Break
	dt := tuning.Delta

	var broken []*donburi.Entry
	components.BreakOff.Each(ecs.World, func(e *donburi.Entry) {
		bo := components.BreakOff.Get(e)
		if bo.State == components.BreakBroken {
			return
		}
		if !e.HasComponent(components.ChainLink) || !e.HasComponent(components.Body) {
			return
		}

		parent := Parent(ecs.World, e)
		if parent == nil || !parent.HasComponent(components.Body) {
			bo.TiltTimer = 0
			bo.HasHistory = false
			return
		}

		parentPose := eng.Pose(components.Body.Get(parent).ID)

		// Smoothed finite-difference parent velocity, unless supplied.
		if bo.HasHistory {
			vel := parentPose.Pos.Sub(bo.PrevParentPos).Mul(1 / dt)
			blend := cfg.VelocityBlend
			if blend <= 0 {
				blend = 0.5
			}
			bo.SmoothedParentVel = bo.SmoothedParentVel.Add(vel.Sub(bo.SmoothedParentVel).Mul(blend))
		}
		bo.PrevParentPos = parentPose.Pos
		bo.HasHistory = true

		pose := eng.Pose(components.Body.Get(e).ID)
		ownUp := pose.Rot.Rotate(gamemath.WorldUp)
		parentUp := parentPose.Rot.Rotate(gamemath.WorldUp)
		tilt := math.Acos(mgl64.Clamp(ownUp.Dot(parentUp), -1, 1))

		if tilt >= mgl64.DegToRad(cfg.AngleDeg) {
			bo.TiltTimer += dt
		} else {
			bo.TiltTimer = 0
		}

		if bo.TiltTimer >= cfg.SustainSeconds {
			broken = append(broken, e)
		}
	})

	for _, e := range broken {
		breakOff(ecs, e)
	}
}

// breakOff performs the terminal transition: snapshot, unlink, full inerting,
// deferred spawn. The snapshot outlives the destroyed piece.
func breakOff(ecs *ecs.ECS, e *donburi.Entry) {
	eng, tuning, ok := runtime(ecs)
	if !ok {
		return
	}
	cfg := tuning.Break

	bo := components.BreakOff.Get(e)
	bo.State = components.BreakBroken

	body := components.Body.Get(e)
	pose := eng.Pose(body.ID)

	inherited := bo.SmoothedParentVel
	if bo.ExternalVelocity != nil {
		inherited = *bo.ExternalVelocity
	}

	// Outward impulse along the piece's own flattened down-lean direction.
	ownUp := pose.Rot.Rotate(gamemath.WorldUp)
	leanDir := gamemath.SafeNormalize(
		gamemath.Flatten(ownUp, gamemath.WorldUp),
		gamemath.DefaultForward,
	)

	scale := 1.0
	if e.HasComponent(components.Visual) {
		scale = components.Visual.Get(e).Scale
	}
	snapshot := components.BreakSnapshot{
		Pose:             pose,
		Velocity:         inherited,
		ImpulseDir:       leanDir,
		ImpulseMagnitude: cfg.ImpulseMagnitude,
		Radius:           body.Radius,
		Scale:            scale,
		Layer:            tags.MaskFallen,
	}

	// Invalidate cached chain views before the graph changes.
	MarkChainDirty(ecs.World, e, tuning.Chain.MaxLength)
	DropFromWobble(ecs, e)

	// Unlink from the parent. Links above keep their handles; the relink
	// refresh clears them once this entity is gone.
	if parent := Parent(ecs.World, e); parent != nil {
		components.ChainLink.Get(parent).Child = 0
	}
	components.ChainLink.Get(e).Parent = 0

	// Fully inert before destruction so no stale force is applied this tick.
	flags := eng.Flags(body.ID)
	flags.Kinematic = true
	flags.CollisionOff = true
	eng.SetFlags(body.ID, flags)
	eng.SetVelocity(body.ID, mgl64.Vec3{})
	eng.SetAngularVelocity(body.ID, mgl64.Vec3{})
	if e.HasComponent(components.Visual) {
		components.Visual.Get(e).Hidden = true
	}

	if rt, found := components.SpawnQueue.First(ecs.World); found {
		queue := components.SpawnQueue.Get(rt)
		queue.Pending = append(queue.Pending, components.PendingSpawn{
			Snapshot:   snapshot,
			DelaySteps: cfg.SpawnDelaySteps,
		})
		if cfg.ShakeDuration > 0 {
			queue.Shakes = append(queue.Shakes, components.ShakeRequest{
				Duration:  cfg.ShakeDuration,
				Magnitude: cfg.ShakeMagnitude,
			})
		}
	}

	eng.RemoveBody(body.ID)
	e.Remove()
}
