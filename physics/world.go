package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// World is the reference Engine implementation: sphere bodies, unit mass and
// inertia, semi-implicit Euler integration. It has no contact resolution.
// The spring-damper controllers are what hold things together; collision
// response belongs to the host engine.
type World struct {
	Gravity mgl64.Vec3

	nextID BodyID
	bodies map[BodyID]*rigidBody
}

type rigidBody struct {
	pose      Pose
	vel       mgl64.Vec3
	angVel    mgl64.Vec3
	radius    float64
	layer     Mask
	dynamic   bool
	flags     Flags
	accForce  mgl64.Vec3
	accTorque mgl64.Vec3
}

// NewWorld creates an empty world with no gravity.
func NewWorld() *World {
	return &World{bodies: make(map[BodyID]*rigidBody)}
}

func (w *World) CreateBody(def BodyDef) BodyID {
	w.nextID++
	rot := def.Pose.Rot
	if rot == (mgl64.Quat{}) {
		rot = mgl64.QuatIdent()
	}
	w.bodies[w.nextID] = &rigidBody{
		pose:    Pose{Pos: def.Pose.Pos, Rot: rot},
		radius:  def.Radius,
		layer:   def.Layer,
		dynamic: def.Dynamic,
		flags:   Flags{Kinematic: def.Kinematic},
	}
	return w.nextID
}

func (w *World) RemoveBody(id BodyID) {
	delete(w.bodies, id)
}

// Contains reports whether the body still exists.
func (w *World) Contains(id BodyID) bool {
	_, ok := w.bodies[id]
	return ok
}

func (w *World) body(id BodyID) *rigidBody {
	return w.bodies[id]
}

func (w *World) Pose(id BodyID) Pose {
	if b := w.body(id); b != nil {
		return b.pose
	}
	return IdentityPose()
}

func (w *World) SetKinematicPose(id BodyID, p Pose) {
	if b := w.body(id); b != nil {
		if p.Rot == (mgl64.Quat{}) {
			p.Rot = b.pose.Rot
		}
		b.pose = Pose{Pos: p.Pos, Rot: p.Rot.Normalize()}
	}
}

func (w *World) Velocity(id BodyID) mgl64.Vec3 {
	if b := w.body(id); b != nil {
		return b.vel
	}
	return mgl64.Vec3{}
}

func (w *World) SetVelocity(id BodyID, v mgl64.Vec3) {
	if b := w.body(id); b != nil {
		b.vel = v
	}
}

func (w *World) AngularVelocity(id BodyID) mgl64.Vec3 {
	if b := w.body(id); b != nil {
		return b.angVel
	}
	return mgl64.Vec3{}
}

func (w *World) SetAngularVelocity(id BodyID, v mgl64.Vec3) {
	if b := w.body(id); b != nil {
		b.angVel = v
	}
}

func (w *World) CenterOfMass(id BodyID) mgl64.Vec3 {
	// Sphere bodies: center of mass is the pose position.
	return w.Pose(id).Pos
}

func (w *World) IsDynamic(id BodyID) bool {
	if b := w.body(id); b != nil {
		return b.dynamic
	}
	return false
}

func (w *World) Flags(id BodyID) Flags {
	if b := w.body(id); b != nil {
		return b.flags
	}
	return Flags{}
}

func (w *World) SetFlags(id BodyID, f Flags) {
	if b := w.body(id); b != nil {
		b.flags = f
	}
}

func (w *World) ApplyForce(id BodyID, force, at mgl64.Vec3) {
	b := w.body(id)
	if b == nil || !b.dynamic || b.flags.Kinematic {
		return
	}
	b.accForce = b.accForce.Add(force)
	r := at.Sub(b.pose.Pos)
	b.accTorque = b.accTorque.Add(r.Cross(force))
}

func (w *World) ApplyTorque(id BodyID, torque mgl64.Vec3) {
	b := w.body(id)
	if b == nil || !b.dynamic || b.flags.Kinematic {
		return
	}
	b.accTorque = b.accTorque.Add(torque)
}

func (w *World) OverlapSphere(center mgl64.Vec3, radius float64, mask Mask) []BodyID {
	var hits []BodyID
	for id, b := range w.bodies {
		if b.layer&mask == 0 || b.flags.CollisionOff {
			continue
		}
		if b.pose.Pos.Sub(center).Len() <= radius+b.radius {
			hits = append(hits, id)
		}
	}
	return hits
}

func (w *World) Raycast(origin, dir mgl64.Vec3, maxDist float64, mask Mask) (RayHit, bool) {
	d := dir.Len()
	if d < 1e-12 || maxDist <= 0 {
		return RayHit{}, false
	}
	dir = dir.Mul(1 / d)

	best := RayHit{Distance: math.Inf(1)}
	found := false
	for id, b := range w.bodies {
		if b.layer&mask == 0 || b.flags.CollisionOff {
			continue
		}
		if t, ok := raySphere(origin, dir, b.pose.Pos, b.radius); ok && t <= maxDist && t < best.Distance {
			best = RayHit{Body: id, Point: origin.Add(dir.Mul(t)), Distance: t}
			found = true
		}
	}
	return best, found
}

// raySphere returns the nearest non-negative intersection distance.
func raySphere(origin, dir, center mgl64.Vec3, radius float64) (float64, bool) {
	oc := origin.Sub(center)
	b := oc.Dot(dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	s := math.Sqrt(disc)
	if t := -b - s; t >= 0 {
		return t, true
	}
	if t := -b + s; t >= 0 {
		return t, true
	}
	return 0, false
}

// ResyncTransforms is a no-op: the reference world applies pose writes
// immediately.
func (w *World) ResyncTransforms() {}

// Step integrates every dynamic, non-kinematic body and clears accumulated
// forces on all of them.
func (w *World) Step(dt float64) {
	for _, b := range w.bodies {
		if b.dynamic && !b.flags.Kinematic {
			b.vel = b.vel.Add(w.Gravity.Add(b.accForce).Mul(dt))
			b.angVel = b.angVel.Add(b.accTorque.Mul(dt))
			b.pose.Pos = b.pose.Pos.Add(b.vel.Mul(dt))
			if speed := b.angVel.Len(); speed > 1e-12 {
				spin := mgl64.QuatRotate(speed*dt, b.angVel.Mul(1/speed))
				b.pose.Rot = spin.Mul(b.pose.Rot).Normalize()
			}
		}
		b.accForce = mgl64.Vec3{}
		b.accTorque = mgl64.Vec3{}
	}
}
