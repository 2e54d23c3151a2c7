package systems

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tottergame/totter/components"
	"github.com/tottergame/totter/systems/factory"
)

func TestFollowForcePullsAnchorTowardTarget(t *testing.T) {
	e, world := newTestECS()
	tuning := tuningOf(e)
	tuning.Chain.Follow.BreakDistance = 10

	pieces := newStack(e, mgl64.Vec3{}, 2)
	child := pieces[1]

	// Displace the child and let the spring pull it back.
	id := components.Body.Get(child).ID
	pose := world.Pose(id)
	pose.Pos = pose.Pos.Add(mgl64.Vec3{0.8, 0, 0.3})
	world.SetKinematicPose(id, pose)

	target := topAnchorWorld(e, pieces[0]).Add(tuning.Chain.Follow.Gap)
	before := bottomAnchorWorld(e, child).Sub(target).Len()

	for i := 0; i < 120; i++ {
		UpdateFollow(e)
		world.Step(tuning.Delta)
	}

	after := bottomAnchorWorld(e, child).Sub(target).Len()
	if after >= before/2 {
		t.Errorf("anchor error barely converged: %g -> %g", before, after)
	}
}

func TestFollowBreakDistanceSoftDetaches(t *testing.T) {
	e, world := newTestECS()
	tuning := tuningOf(e)
	tuning.Chain.Follow.BreakDistance = 1.0

	pieces := newStack(e, mgl64.Vec3{}, 2)
	child := pieces[1]

	id := components.Body.Get(child).ID
	pose := world.Pose(id)
	pose.Pos = pose.Pos.Add(mgl64.Vec3{5, 0, 0})
	world.SetKinematicPose(id, pose)

	UpdateFollow(e)

	link := components.ChainLink.Get(child)
	if link.Parent != 0 {
		t.Errorf("parent not cleared after exceeding break distance: %v", link.Parent)
	}
	// Soft detach leaves the rest of the bookkeeping alone: the old parent
	// still points at the child until the next relink refresh.
	if got := components.ChainLink.Get(pieces[0]).Child; got != child.Entity() {
		t.Errorf("soft detach repaired the chain: parent child = %v", got)
	}

	// No force once detached.
	UpdateFollow(e)
	world.Step(tuning.Delta)
	if v := world.Velocity(id).Len(); v != 0 {
		t.Errorf("detached piece still receives force: |v| = %g", v)
	}
}

func TestFollowZeroBreakDistanceNeverDetaches(t *testing.T) {
	e, world := newTestECS()
	tuning := tuningOf(e)
	tuning.Chain.Follow.BreakDistance = 0

	pieces := newStack(e, mgl64.Vec3{}, 2)
	child := pieces[1]

	id := components.Body.Get(child).ID
	pose := world.Pose(id)
	pose.Pos = pose.Pos.Add(mgl64.Vec3{50, 0, 0})
	world.SetKinematicPose(id, pose)

	UpdateFollow(e)

	if got := components.ChainLink.Get(child).Parent; got != pieces[0].Entity() {
		t.Errorf("detached despite disabled break distance: parent = %v", got)
	}
}

func TestFollowOverrideParamsWin(t *testing.T) {
	e, world := newTestECS()
	tuning := tuningOf(e)
	tuning.Chain.Follow.BreakDistance = 1.0

	pieces := newStack(e, mgl64.Vec3{}, 2)
	child := pieces[1]
	override := tuning.Chain.Follow
	override.BreakDistance = 100
	components.ChainLink.Get(child).Override = &override

	id := components.Body.Get(child).ID
	pose := world.Pose(id)
	pose.Pos = pose.Pos.Add(mgl64.Vec3{5, 0, 0})
	world.SetKinematicPose(id, pose)

	UpdateFollow(e)

	if got := components.ChainLink.Get(child).Parent; got != pieces[0].Entity() {
		t.Errorf("override break distance ignored: parent = %v", got)
	}
}

func TestFollowKinematicPathBlendsPosition(t *testing.T) {
	e, world := newTestECS()
	tuning := tuningOf(e)
	tuning.Chain.Follow.BreakDistance = 10

	pieces := newStack(e, mgl64.Vec3{}, 2)
	child := pieces[1]

	id := components.Body.Get(child).ID
	flags := world.Flags(id)
	flags.Kinematic = true
	world.SetFlags(id, flags)

	pose := world.Pose(id)
	pose.Pos = pose.Pos.Add(mgl64.Vec3{0.5, 0, 0})
	world.SetKinematicPose(id, pose)

	target := topAnchorWorld(e, pieces[0]).Add(tuning.Chain.Follow.Gap)
	before := bottomAnchorWorld(e, child).Sub(target).Len()

	for i := 0; i < 60; i++ {
		UpdateFollow(e)
		world.Step(tuning.Delta)
	}

	after := bottomAnchorWorld(e, child).Sub(target).Len()
	if after >= before/2 {
		t.Errorf("kinematic blend barely converged: %g -> %g", before, after)
	}
	if v := world.Velocity(id).Len(); v != 0 {
		t.Errorf("kinematic path produced velocity: %g", v)
	}
}

func TestFollowSkipsUnparentedAndBodyless(t *testing.T) {
	e, world := newTestECS()

	lone := factory.CreatePiece(e, mgl64.Vec3{}, testRadius)
	id := components.Body.Get(lone).ID

	UpdateFollow(e)
	world.Step(tuningOf(e).Delta)

	if v := world.Velocity(id); v != (mgl64.Vec3{}) {
		t.Errorf("unparented piece moved: %v", v)
	}
}
