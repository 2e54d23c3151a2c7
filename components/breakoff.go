package components

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"

	"github.com/tottergame/totter/physics"
)

// BreakState is the break-off watchdog state. Attached -> Broken is the only
// transition; there is no reattachment.
type BreakState int

const (
	BreakAttached BreakState = iota
	BreakBroken
)

// BreakOffData watches a linked piece for sustained excess tilt against its
// parent and detaches it permanently once the sustain timer fills.
type BreakOffData struct {
	State     BreakState
	TiltTimer float64

	// Smoothed finite-difference estimate of the parent's velocity, used as
	// the inherited velocity when no external source velocity is supplied.
	PrevParentPos     mgl64.Vec3
	SmoothedParentVel mgl64.Vec3
	HasHistory        bool

	// ExternalVelocity, when set, wins over the smoothed estimate.
	ExternalVelocity *mgl64.Vec3
}

var BreakOff = donburi.NewComponentType[BreakOffData]()

// BreakSnapshot is the immutable description captured at detach time. It
// lives only in the pending-spawn queue, decoupled from the destroyed piece.
type BreakSnapshot struct {
	Pose     physics.Pose
	Velocity mgl64.Vec3

	ImpulseDir       mgl64.Vec3
	ImpulseMagnitude float64

	Radius float64
	Scale  float64
	Layer  physics.Mask
}
