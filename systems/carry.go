package systems

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"

	"github.com/tottergame/totter/components"
	"github.com/tottergame/totter/gamemath"
	"github.com/tottergame/totter/physics"
	"github.com/tottergame/totter/tags"
)

// UpdateCarry mirrors carrier poses into the engine, keeps held pieces glued
// to their hold pose, and processes edge-triggered pickup/putdown toggles.
// Toggles run inside the tick, so a group teleport is never partially visible
// to the force passes.
func UpdateCarry(ecs *ecs.ECS) {
	eng, tuning, ok := runtime(ecs)
	if !ok {
		return
	}

	components.Carrier.Each(ecs.World, func(ce *donburi.Entry) {
		carrier := components.Carrier.Get(ce)

		if ce.HasComponent(components.Body) {
			eng.SetKinematicPose(components.Body.Get(ce).ID, carrier.Pose)
		}

		if held := heldEntry(ecs.World, carrier); held != nil {
			holdPose := holdPoseFor(carrier, components.Carry.Get(held))
			eng.SetKinematicPose(components.Body.Get(held).ID, holdPose)
		}

		if !carrier.ToggleRequested {
			return
		}
		carrier.ToggleRequested = false

		if held := heldEntry(ecs.World, carrier); held != nil {
			putDown(ecs, eng, tuning, carrier, held)
		} else if candidate := pickupCandidate(ecs, eng, carrier); candidate != nil {
			pickUp(ecs, eng, tuning, carrier, candidate)
		}
	})
}

// heldEntry resolves the carrier's held piece, or nil.
func heldEntry(w donburi.World, carrier *components.CarrierData) *donburi.Entry {
	e := linkEntry(w, carrier.Held)
	if e == nil || !e.HasComponent(components.Carry) || !e.HasComponent(components.Body) {
		return nil
	}
	if !components.Carry.Get(e).Following {
		return nil
	}
	return e
}

// pickupCandidate finds the closest holdable piece within pickup range of
// the carrier.
func pickupCandidate(ecs *ecs.ECS, eng physics.Engine, carrier *components.CarrierData) *donburi.Entry {
	hits := eng.OverlapSphere(carrier.Pose.Pos, carrier.PickupRange, tags.MaskPiece)
	if len(hits) == 0 {
		return nil
	}
	inRange := make(map[physics.BodyID]bool, len(hits))
	for _, id := range hits {
		inRange[id] = true
	}

	var best *donburi.Entry
	bestDist := carrier.PickupRange + 1
	components.Carry.Each(ecs.World, func(e *donburi.Entry) {
		if !e.HasComponent(components.Body) {
			return
		}
		id := components.Body.Get(e).ID
		if !inRange[id] {
			return
		}
		if d := eng.Pose(id).Pos.Sub(carrier.Pose.Pos).Len(); d < bestDist {
			best = e
			bestDist = d
		}
	})
	return best
}

func holdPoseFor(carrier *components.CarrierData, carry *components.CarryData) physics.Pose {
	return physics.Pose{
		Pos: carrier.Pose.Pos.Add(carrier.Pose.Rot.Rotate(carry.LocalOffset)),
		Rot: carrier.Pose.Rot.Mul(carry.LocalRotOffset).Normalize(),
	}
}

func pickUp(ecs *ecs.ECS, eng physics.Engine, tuning *components.TuningData,
	carrier *components.CarrierData, piece *donburi.Entry) {

	carry := components.Carry.Get(piece)
	id := components.Body.Get(piece).ID

	group := collectCarryGroup(ecs, eng, tuning, piece)
	teleportGroup(ecs, eng, piece, group, holdPoseFor(carrier, carry), tuning.Carry.RotateOthers)

	// The held piece stays kinematic for the duration of the hold.
	carry.SavedFlags = eng.Flags(id)
	flags := carry.SavedFlags
	flags.Kinematic = true
	eng.SetFlags(id, flags)
	eng.SetVelocity(id, mgl64.Vec3{})
	eng.SetAngularVelocity(id, mgl64.Vec3{})

	carry.Following = true
	carrier.Held = piece.Entity()
	carrier.Carrying = true
	if carrier.SetCarrying != nil {
		carrier.SetCarrying(true)
	}
}

func putDown(ecs *ecs.ECS, eng physics.Engine, tuning *components.TuningData,
	carrier *components.CarrierData, piece *donburi.Entry) {

	carry := components.Carry.Get(piece)
	id := components.Body.Get(piece).ID

	carry.Following = false
	eng.SetFlags(id, carry.SavedFlags)

	group := collectCarryGroup(ecs, eng, tuning, piece)
	target := eng.Pose(id)
	target.Pos = target.Pos.Sub(mgl64.Vec3{0, tuning.Carry.DropDistance, 0})
	teleportGroup(ecs, eng, piece, group, target, tuning.Carry.RotateOthers)

	carrier.Held = 0
	carrier.Carrying = false
	if carrier.SetCarrying != nil {
		carrier.SetCarrying(false)
	}
}

// collectCarryGroup gathers the held piece plus every link whose position
// lies within the bounded upward search volume above it, sorted by height
// ascending. Recomputed on every toggle, never persisted.
func collectCarryGroup(ecs *ecs.ECS, eng physics.Engine, tuning *components.TuningData, held *donburi.Entry) []*donburi.Entry {
	heldPos := eng.Pose(components.Body.Get(held).ID).Pos

	group := []*donburi.Entry{held}
	components.ChainLink.Each(ecs.World, func(e *donburi.Entry) {
		if e == held || !e.HasComponent(components.Body) {
			return
		}
		p := eng.Pose(components.Body.Get(e).ID).Pos
		dy := p.Y() - heldPos.Y()
		if dy < 0 || dy > tuning.Carry.SearchHeight {
			return
		}
		if gamemath.HorizontalDistance(p, heldPos) > tuning.Carry.SearchRadius {
			return
		}
		group = append(group, e)
	})

	sort.SliceStable(group, func(i, j int) bool {
		pi := eng.Pose(components.Body.Get(group[i]).ID).Pos
		pj := eng.Pose(components.Body.Get(group[j]).ID).Pos
		return pi.Y() < pj.Y()
	})
	return group
}

// teleportGroup bulk-moves the carry group to the target pose of the held
// piece, preserving every member's offset relative to the held piece's
// pre-move pose. Simulation flags are suspended for the duration so the move
// cannot generate contacts or velocity spikes.
func teleportGroup(ecs *ecs.ECS, eng physics.Engine, held *donburi.Entry,
	group []*donburi.Entry, target physics.Pose, rotateOthers bool) {

	heldPose := eng.Pose(components.Body.Get(held).ID)
	heldInv := heldPose.Rot.Inverse()

	type memberState struct {
		id       physics.BodyID
		relPos   mgl64.Vec3
		relRot   mgl64.Quat
		worldRot mgl64.Quat
		flags    physics.Flags
		dynamic  bool
	}

	members := make([]memberState, 0, len(group))
	for _, e := range group {
		id := components.Body.Get(e).ID
		pose := eng.Pose(id)
		members = append(members, memberState{
			id:       id,
			relPos:   heldInv.Rotate(pose.Pos.Sub(heldPose.Pos)),
			relRot:   heldInv.Mul(pose.Rot).Normalize(),
			worldRot: pose.Rot,
			flags:    eng.Flags(id),
			dynamic:  eng.IsDynamic(id),
		})
	}

	// Suspend simulation for every member before anything moves.
	for _, m := range members {
		if !m.dynamic {
			continue
		}
		flags := m.flags
		flags.Kinematic = true
		flags.CollisionOff = true
		eng.SetFlags(m.id, flags)
		eng.SetVelocity(m.id, mgl64.Vec3{})
		eng.SetAngularVelocity(m.id, mgl64.Vec3{})
	}

	for i, m := range members {
		var pose physics.Pose
		switch {
		case group[i] == held:
			// Only the held piece is forced to the target orientation.
			pose = target
		case rotateOthers:
			pose = physics.Pose{
				Pos: target.Pos.Add(target.Rot.Rotate(m.relPos)),
				Rot: target.Rot.Mul(m.relRot).Normalize(),
			}
		default:
			pose = physics.Pose{
				Pos: target.Pos.Add(target.Rot.Rotate(m.relPos)),
				Rot: m.worldRot,
			}
		}
		eng.SetKinematicPose(m.id, pose)
	}

	eng.ResyncTransforms()

	// Restore flags and clear any residual motion.
	for _, m := range members {
		if !m.dynamic {
			continue
		}
		eng.SetFlags(m.id, m.flags)
		eng.SetVelocity(m.id, mgl64.Vec3{})
		eng.SetAngularVelocity(m.id, mgl64.Vec3{})
	}
}
