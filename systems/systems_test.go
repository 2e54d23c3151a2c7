package systems

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"

	"github.com/tottergame/totter/components"
	"github.com/tottergame/totter/physics"
	"github.com/tottergame/totter/systems/factory"
)

const testRadius = 0.5

// newTestECS builds an ECS with a runtime singleton over the reference world.
func newTestECS() (*ecs.ECS, *physics.World) {
	world := physics.NewWorld()
	e := ecs.NewECS(donburi.NewWorld())
	factory.CreateRuntime(e, world)
	return e, world
}

// tuningOf returns the mutable tuning snapshot for tests that tighten
// thresholds.
func tuningOf(e *ecs.ECS) *components.TuningData {
	rt, ok := components.Tuning.First(e.World)
	if !ok {
		panic("runtime entity missing")
	}
	return components.Tuning.Get(rt)
}

// newStack creates n pieces and chains them bottom-up via AttachOnTop.
func newStack(e *ecs.ECS, base mgl64.Vec3, n int) []*donburi.Entry {
	pieces := make([]*donburi.Entry, 0, n)
	for i := 0; i < n; i++ {
		pos := base.Add(mgl64.Vec3{0, float64(i) * 2 * testRadius, 0})
		p := factory.CreatePiece(e, pos, testRadius)
		if i > 0 {
			AttachOnTop(e, pieces[0], p)
		}
		pieces = append(pieces, p)
	}
	return pieces
}

func bodyPose(e *ecs.ECS, entry *donburi.Entry) physics.Pose {
	eng, _, _ := runtime(e)
	return eng.Pose(components.Body.Get(entry).ID)
}

func anchorWorld(e *ecs.ECS, entry *donburi.Entry, anchor mgl64.Vec3) mgl64.Vec3 {
	pose := bodyPose(e, entry)
	return pose.Pos.Add(pose.Rot.Rotate(anchor))
}

func bottomAnchorWorld(e *ecs.ECS, entry *donburi.Entry) mgl64.Vec3 {
	return anchorWorld(e, entry, components.ChainLink.Get(entry).BottomAnchor)
}

func topAnchorWorld(e *ecs.ECS, entry *donburi.Entry) mgl64.Vec3 {
	return anchorWorld(e, entry, components.ChainLink.Get(entry).TopAnchor)
}

func vecNear(t *testing.T, got, want mgl64.Vec3, eps float64, label string) {
	t.Helper()
	if got.Sub(want).Len() > eps {
		t.Errorf("%s = %v, want %v (eps %g)", label, got, want, eps)
	}
}

func floatNear(t *testing.T, got, want, eps float64, label string) {
	t.Helper()
	if math.Abs(got-want) > eps {
		t.Errorf("%s = %g, want %g (eps %g)", label, got, want, eps)
	}
}
