package systems

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"

	"github.com/tottergame/totter/components"
	"github.com/tottergame/totter/physics"
	"github.com/tottergame/totter/tags"
)

// tiltPiece rotates a piece's body about Z without touching its links.
func tiltPiece(e *physics.World, entry *donburi.Entry, deg float64) {
	id := components.Body.Get(entry).ID
	pose := e.Pose(id)
	pose.Rot = mgl64.QuatRotate(mgl64.DegToRad(deg), mgl64.Vec3{0, 0, 1})
	e.SetKinematicPose(id, pose)
}

func TestBreakOffRequiresSustainedTilt(t *testing.T) {
	e, world := newTestECS()
	tuning := tuningOf(e)

	pieces := newStack(e, mgl64.Vec3{}, 2)
	child := pieces[1]

	tiltPiece(world, child, 45)

	// One tick short of the sustain window: still attached.
	sustainTicks := int(math.Ceil(tuning.Break.SustainSeconds / tuning.Delta))
	for i := 0; i < sustainTicks-1; i++ {
		UpdateBreakOff(e)
	}
	if !child.Valid() {
		t.Fatal("piece broke before the sustain window elapsed")
	}
	if components.BreakOff.Get(child).State != components.BreakAttached {
		t.Fatal("piece state changed before the sustain window elapsed")
	}

	UpdateBreakOff(e)
	UpdateBreakOff(e)
	if child.Valid() {
		t.Fatal("piece survived past the sustain window")
	}
	if got := components.ChainLink.Get(pieces[0]).Child; got != 0 {
		t.Errorf("parent child handle = %v, want cleared", got)
	}
}

func TestBreakOffTimerResetsOnRecovery(t *testing.T) {
	e, world := newTestECS()
	tuning := tuningOf(e)

	pieces := newStack(e, mgl64.Vec3{}, 2)
	child := pieces[1]
	sustainTicks := int(math.Ceil(tuning.Break.SustainSeconds / tuning.Delta))

	// Tilt for most of the window, recover for one tick, tilt again.
	tiltPiece(world, child, 45)
	for i := 0; i < sustainTicks-2; i++ {
		UpdateBreakOff(e)
	}
	tiltPiece(world, child, 0)
	UpdateBreakOff(e)
	tiltPiece(world, child, 45)
	for i := 0; i < sustainTicks-1; i++ {
		UpdateBreakOff(e)
	}

	if !child.Valid() {
		t.Fatal("recovery did not reset the tilt timer")
	}
}

func TestBreakOffBelowThresholdNeverAccumulates(t *testing.T) {
	e, world := newTestECS()
	tuning := tuningOf(e)

	pieces := newStack(e, mgl64.Vec3{}, 2)
	child := pieces[1]

	tiltPiece(world, child, tuning.Break.AngleDeg-5)
	for i := 0; i < 600; i++ {
		UpdateBreakOff(e)
	}
	if !child.Valid() {
		t.Fatal("piece broke below the tilt threshold")
	}
	if got := components.BreakOff.Get(child).TiltTimer; got != 0 {
		t.Errorf("tilt timer = %g, want 0", got)
	}
}

func TestBreakOffSpawnsFallenAfterDelay(t *testing.T) {
	e, world := newTestECS()
	tuning := tuningOf(e)

	pieces := newStack(e, mgl64.Vec3{}, 2)
	child := pieces[1]
	childPos := bodyPose(e, child).Pos

	tiltPiece(world, child, 45)
	sustainTicks := int(math.Ceil(tuning.Break.SustainSeconds / tuning.Delta))
	for i := 0; i < sustainTicks+1; i++ {
		UpdateBreakOff(e)
	}
	if child.Valid() {
		t.Fatal("piece did not break")
	}

	fallen := func() []*donburi.Entry {
		var out []*donburi.Entry
		tags.Fallen.Each(e.World, func(entry *donburi.Entry) {
			out = append(out, entry)
		})
		return out
	}

	// DelaySteps=1 means the replacement waits out one full drain.
	DrainSpawnQueue(e)
	if n := len(fallen()); n != 0 {
		t.Fatalf("fallen piece spawned one drain early (count %d)", n)
	}
	DrainSpawnQueue(e)
	got := fallen()
	if len(got) != 1 {
		t.Fatalf("fallen piece count = %d, want 1", len(got))
	}
	// Subsequent drains must not respawn.
	DrainSpawnQueue(e)
	if n := len(fallen()); n != 1 {
		t.Fatalf("fallen piece respawned (count %d)", n)
	}

	id := components.Body.Get(got[0]).ID
	vecNear(t, world.Pose(id).Pos, childPos, 1e-9, "fallen spawn position")
	if layer := components.Body.Get(got[0]).Layer; layer != tags.MaskFallen {
		t.Errorf("fallen layer = %v, want MaskFallen", layer)
	}

	// Parent was stationary, so the only velocity is the outward impulse
	// along the piece's down-lean direction. A +45 degree tilt about Z leans
	// the piece toward -X.
	wantVel := mgl64.Vec3{-tuning.Break.ImpulseMagnitude, 0, 0}
	vecNear(t, world.Velocity(id), wantVel, 1e-9, "fallen velocity")
}

func TestBreakOffQueuesShakeOnce(t *testing.T) {
	e, world := newTestECS()
	tuning := tuningOf(e)

	pieces := newStack(e, mgl64.Vec3{}, 2)
	tiltPiece(world, pieces[1], 60)

	sustainTicks := int(math.Ceil(tuning.Break.SustainSeconds / tuning.Delta))
	for i := 0; i < sustainTicks+1; i++ {
		UpdateBreakOff(e)
	}

	shakes := TakeShakeRequests(e)
	if len(shakes) != 1 {
		t.Fatalf("shake request count = %d, want 1", len(shakes))
	}
	if shakes[0].Duration != tuning.Break.ShakeDuration || shakes[0].Magnitude != tuning.Break.ShakeMagnitude {
		t.Errorf("shake request = %+v", shakes[0])
	}
	if again := TakeShakeRequests(e); len(again) != 0 {
		t.Errorf("shake requests not cleared, got %d", len(again))
	}
}

func TestBreakOffUsesExternalVelocityWhenSet(t *testing.T) {
	e, world := newTestECS()
	tuning := tuningOf(e)

	pieces := newStack(e, mgl64.Vec3{}, 2)
	child := pieces[1]

	ext := mgl64.Vec3{0, 0, 3}
	components.BreakOff.Get(child).ExternalVelocity = &ext

	tiltPiece(world, child, 45)
	sustainTicks := int(math.Ceil(tuning.Break.SustainSeconds / tuning.Delta))
	for i := 0; i < sustainTicks+1; i++ {
		UpdateBreakOff(e)
	}
	DrainSpawnQueue(e)
	DrainSpawnQueue(e)

	var spawned *donburi.Entry
	tags.Fallen.Each(e.World, func(entry *donburi.Entry) { spawned = entry })
	if spawned == nil {
		t.Fatal("no fallen piece spawned")
	}
	id := components.Body.Get(spawned).ID
	want := ext.Add(mgl64.Vec3{-tuning.Break.ImpulseMagnitude, 0, 0})
	vecNear(t, world.Velocity(id), want, 1e-9, "inherited velocity")
}
