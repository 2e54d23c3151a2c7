package components

import (
	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
)

// WobbleLevel is the solver state for one piece above the wobbling root.
type WobbleLevel struct {
	Entity donburi.Entity
	Angle  mgl64.Vec2 // current lean (rad)
	AngVel mgl64.Vec2
	Lagged mgl64.Vec2 // lag-filtered target lean
	Base   mgl64.Quat // visual rotation captured at rebuild time
}

// WobbleData lives on a chain root and leans the pieces above it in response
// to root motion. The cached level list is rebuilt lazily whenever a
// structural mutation marks it dirty.
type WobbleData struct {
	Dirty  bool
	Levels []WobbleLevel

	PrevPos     mgl64.Vec3
	SmoothedVel mgl64.Vec3
	PrevVel     mgl64.Vec3
	HasHistory  bool

	Spring harmonica.Spring
}

var Wobble = donburi.NewComponentType[WobbleData]()
