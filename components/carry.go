package components

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"

	"github.com/tottergame/totter/physics"
)

// CarryData marks a piece as holdable and tracks its hold state while a
// carrier has it.
type CarryData struct {
	Following bool

	// Hold pose of the piece expressed in the carrier's local frame.
	LocalOffset    mgl64.Vec3
	LocalRotOffset mgl64.Quat

	// Flags of the piece's body before pickup forced it kinematic.
	SavedFlags physics.Flags
}

var Carry = donburi.NewComponentType[CarryData]()

// CarrierData bridges the external locomotion collaborator. The host updates
// Pose every frame and raises ToggleRequested on the pickup input edge; the
// carry system consumes the edge, performs the toggle and reports the
// carrying state back through SetCarrying.
type CarrierData struct {
	Pose        physics.Pose
	PickupRange float64

	ToggleRequested bool
	Carrying        bool
	Held            donburi.Entity

	SetCarrying func(bool)
}

var Carrier = donburi.NewComponentType[CarrierData]()
