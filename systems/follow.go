package systems

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"

	"github.com/tottergame/totter/components"
	"github.com/tottergame/totter/gamemath"
	"github.com/tottergame/totter/physics"
)

// UpdateFollow applies the spring-damper follow force pulling every linked
// piece's bottom anchor toward its parent's top anchor. Pieces without a
// parent (or without a body) are skipped for the tick.
func UpdateFollow(ecs *ecs.ECS) {
	eng, tuning, ok := runtime(ecs)
	if !ok {
		return
	}
	dt := tuning.Delta

	components.ChainLink.Each(ecs.World, func(e *donburi.Entry) {
		link := components.ChainLink.Get(e)
		parent := linkEntry(ecs.World, link.Parent)
		if parent == nil || !e.HasComponent(components.Body) || !parent.HasComponent(components.Body) {
			return
		}
		if e.HasComponent(components.Carry) && components.Carry.Get(e).Following {
			// A held piece is glued to the carrier; the spring would fight it.
			return
		}

		id := components.Body.Get(e).ID
		params := resolveFollow(link, tuning)

		parentLink := components.ChainLink.Get(parent)
		parentPose := eng.Pose(components.Body.Get(parent).ID)
		target := parentPose.Pos.
			Add(parentPose.Rot.Rotate(parentLink.TopAnchor)).
			Add(params.Gap)

		pose := eng.Pose(id)
		anchor := pose.Pos.Add(pose.Rot.Rotate(link.BottomAnchor))

		if params.BreakDistance > 0 && anchor.Sub(target).Len() > params.BreakDistance {
			// Soft detach: the piece silently stops following. The rest of
			// the chain bookkeeping is intentionally left alone; only the
			// cached wobble view is invalidated.
			link.Parent = 0
			MarkChainDirty(ecs.World, e, tuning.Chain.MaxLength)
			return
		}

		if eng.IsDynamic(id) && !eng.Flags(id).Kinematic {
			followDynamic(eng, id, link, parentPose, target, anchor, pose, params.Spring, params.Damping, params.Orient, dt)
		} else {
			followKinematic(eng, id, parentPose, target, anchor, pose, params.Damping, params.Orient, dt)
		}
	})
}

func followDynamic(eng physics.Engine, id physics.BodyID, link *components.ChainLinkData,
	parentPose physics.Pose, target, anchor mgl64.Vec3, pose physics.Pose,
	spring, damping, orient, dt float64) {

	// Position control: drive the anchor-point velocity toward the value
	// that closes the error in 1/spring seconds.
	desired := target.Sub(anchor).Mul(spring)
	r := anchor.Sub(eng.CenterOfMass(id))
	actual := eng.Velocity(id).Add(eng.AngularVelocity(id).Cross(r))
	force := desired.Sub(actual).Mul(damping)
	eng.ApplyForce(id, force, anchor)

	if orient <= 0 {
		return
	}

	// Orientation control: yaw-only upright target halfway between the own
	// and parent flattened facings.
	targetRot := uprightBlend(pose.Rot, parentPose.Rot)
	needed := gamemath.DeltaAngularVelocity(pose.Rot, targetRot, dt)
	torque := needed.Sub(eng.AngularVelocity(id)).Mul(orient)
	eng.ApplyTorque(id, torque)
}

// followKinematic is the path for bodies without simulated dynamics: an
// exponential position blend using damping as the rate constant and a direct
// slerp toward the upright target scaled by orient*dt.
func followKinematic(eng physics.Engine, id physics.BodyID,
	parentPose physics.Pose, target, anchor mgl64.Vec3, pose physics.Pose,
	damping, orient, dt float64) {

	alpha := 1 - math.Exp(-damping*dt)
	pose.Pos = pose.Pos.Add(target.Sub(anchor).Mul(alpha))

	if orient > 0 {
		targetRot := uprightBlend(pose.Rot, parentPose.Rot)
		pose.Rot = mgl64.QuatSlerp(pose.Rot, targetRot, mgl64.Clamp(orient*dt, 0, 1))
	}

	eng.SetKinematicPose(id, pose)
}

// uprightBlend builds the yaw-only orientation halfway (50/50 slerp) between
// the body's own flattened forward and the parent's flattened forward.
func uprightBlend(own, parent mgl64.Quat) mgl64.Quat {
	up := gamemath.WorldUp
	ownFacing := gamemath.UprightFacing(gamemath.FlatForward(own, up), up)
	parentFacing := gamemath.UprightFacing(gamemath.FlatForward(parent, up), up)
	return mgl64.QuatSlerp(ownFacing, parentFacing, 0.5)
}
