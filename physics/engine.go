// Package physics defines the narrow contract the simulation consumes from a
// rigid-body engine, plus a small self-contained reference implementation
// used by tests and headless runs. The controllers never depend on anything
// beyond the Engine interface.
package physics

import "github.com/go-gl/mathgl/mgl64"

// BodyID is a stable handle to a body owned by the engine. The zero value is
// never a valid body.
type BodyID uint64

// Mask is a collision/classification layer bitmask used by spatial queries.
type Mask uint32

// Pose is a world-space position and orientation.
type Pose struct {
	Pos mgl64.Vec3
	Rot mgl64.Quat
}

// IdentityPose returns a pose at the origin with no rotation.
func IdentityPose() Pose {
	return Pose{Rot: mgl64.QuatIdent()}
}

// Flags are the per-body simulation switches the carry teleport snapshots and
// restores around a bulk move.
type Flags struct {
	Kinematic    bool
	CollisionOff bool
	Interpolate  bool
}

// BodyDef describes a body at creation time.
type BodyDef struct {
	Pose      Pose
	Radius    float64
	Layer     Mask
	Dynamic   bool
	Kinematic bool
}

// RayHit reports the nearest body intersected by a raycast.
type RayHit struct {
	Body     BodyID
	Point    mgl64.Vec3
	Distance float64
}

// Engine is the black-box rigid-body engine contract. Forces and torques use
// acceleration mode: they are mass-independent and expressed directly in
// units of acceleration.
type Engine interface {
	CreateBody(def BodyDef) BodyID
	RemoveBody(id BodyID)

	Pose(id BodyID) Pose
	// SetKinematicPose teleports a body without generating contact impulses.
	SetKinematicPose(id BodyID, p Pose)

	Velocity(id BodyID) mgl64.Vec3
	SetVelocity(id BodyID, v mgl64.Vec3)
	AngularVelocity(id BodyID) mgl64.Vec3
	SetAngularVelocity(id BodyID, w mgl64.Vec3)
	CenterOfMass(id BodyID) mgl64.Vec3

	IsDynamic(id BodyID) bool
	Flags(id BodyID) Flags
	SetFlags(id BodyID, f Flags)

	// ApplyForce applies an acceleration-mode force at a world-space point,
	// inducing torque about the center of mass.
	ApplyForce(id BodyID, force, at mgl64.Vec3)
	// ApplyTorque applies an acceleration-mode torque.
	ApplyTorque(id BodyID, torque mgl64.Vec3)

	OverlapSphere(center mgl64.Vec3, radius float64, mask Mask) []BodyID
	Raycast(origin, dir mgl64.Vec3, maxDist float64, mask Mask) (RayHit, bool)

	// ResyncTransforms forces the engine to flush pending transform writes so
	// subsequent queries observe teleported poses.
	ResyncTransforms()
}

// Stepper is implemented by engines the simulation owns and must integrate
// itself. External engines step on their own schedule.
type Stepper interface {
	Step(dt float64)
}
