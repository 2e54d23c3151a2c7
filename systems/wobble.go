package systems

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"

	"github.com/tottergame/totter/components"
	"github.com/tottergame/totter/gamemath"
)

// UpdateWobble leans the pieces above each wobbling root in response to root
// motion. Output goes to the visual channel only; the follow forces never see
// it.
func UpdateWobble(ecs *ecs.ECS) {
	eng, tuning, ok := runtime(ecs)
	if !ok {
		return
	}
	cfg := tuning.Wobble
	dt := tuning.Delta

	components.Wobble.Each(ecs.World, func(root *donburi.Entry) {
		w := components.Wobble.Get(root)
		if !root.HasComponent(components.Body) {
			return
		}

		if w.Dirty || w.Levels == nil {
			rebuildLevels(ecs.World, root, w, tuning.Chain.MaxLength)
		}

		pose := eng.Pose(components.Body.Get(root).ID)

		// Finite-difference root velocity, smoothed, and its derivative.
		if !w.HasHistory {
			w.PrevPos = pose.Pos
			w.HasHistory = true
			return
		}
		vel := pose.Pos.Sub(w.PrevPos).Mul(1 / dt)
		w.PrevPos = pose.Pos
		blend := cfg.VelocityBlend
		if blend <= 0 {
			blend = 0.5
		}
		w.SmoothedVel = w.SmoothedVel.Add(vel.Sub(w.SmoothedVel).Mul(blend))
		accel := w.SmoothedVel.Sub(w.PrevVel).Mul(1 / dt)
		w.PrevVel = w.SmoothedVel

		// Drive from the lateral/forward components in the root's frame.
		inv := pose.Rot.Inverse()
		lv := inv.Rotate(w.SmoothedVel)
		la := inv.Rotate(accel)
		drive := mgl64.Vec2{
			lv.X()*cfg.VelocityGain + la.X()*cfg.AccelGain,
			lv.Z()*cfg.VelocityGain + la.Z()*cfg.AccelGain,
		}
		if cfg.InvertDrive {
			drive = drive.Mul(-1)
		}

		for i := range w.Levels {
			lvl := &w.Levels[i]
			entry := linkEntry(ecs.World, lvl.Entity)
			if entry == nil || !entry.HasComponent(components.Visual) {
				continue
			}

			gain := math.Pow(cfg.AmplifyPerLevel, float64(i))
			maxLean := mgl64.DegToRad(cfg.BaseMaxLeanDeg) * gain
			target := drive.Mul(gain).Sub(lvl.Angle.Mul(cfg.UprightBias))

			// Higher levels receive the target late.
			lag := gamemath.ExpBlend(cfg.LagPerLevel*float64(i), dt)
			lvl.Lagged = lvl.Lagged.Add(target.Sub(lvl.Lagged).Mul(lag))

			x, vx := w.Spring.Update(lvl.Angle.X(), lvl.AngVel.X(), lvl.Lagged.X())
			y, vy := w.Spring.Update(lvl.Angle.Y(), lvl.AngVel.Y(), lvl.Lagged.Y())
			lvl.Angle = gamemath.ClampVec2(mgl64.Vec2{x, y}, maxLean)
			lvl.AngVel = mgl64.Vec2{vx, vy}

			visual := components.Visual.Get(entry)
			visual.Rotation = lvl.Base.Mul(gamemath.LeanRotation(lvl.Angle))
		}
	})
}

// rebuildLevels recaptures the ordered child list and each level's base
// visual rotation. Wobble state does not survive a structural change.
func rebuildLevels(world donburi.World, root *donburi.Entry, w *components.WobbleData, maxLength int) {
	w.Levels = w.Levels[:0]
	node := Child(world, root)
	for i := 0; i < maxLength && node != nil; i++ {
		base := mgl64.QuatIdent()
		if node.HasComponent(components.Visual) {
			base = components.Visual.Get(node).Rotation
		}
		w.Levels = append(w.Levels, components.WobbleLevel{
			Entity: node.Entity(),
			Base:   base,
		})
		node = Child(world, node)
	}
	w.Dirty = false
}

// DropFromWobble removes a single node from any cached wobble view without
// waiting for the lazy rebuild; break-off uses it so the node stops leaning
// the moment it detaches.
func DropFromWobble(ecs *ecs.ECS, node *donburi.Entry) {
	target := node.Entity()
	components.Wobble.Each(ecs.World, func(root *donburi.Entry) {
		w := components.Wobble.Get(root)
		for i := range w.Levels {
			if w.Levels[i].Entity == target {
				w.Levels = append(w.Levels[:i], w.Levels[i+1:]...)
				w.Dirty = true
				return
			}
		}
	})
}
