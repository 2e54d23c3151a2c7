package systems

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"

	"github.com/tottergame/totter/components"
	"github.com/tottergame/totter/config"
	"github.com/tottergame/totter/tags"
)

// UpdateAttraction solves the pairwise magnetic force field and the
// independent proximity self-destruct timers. Registry membership only
// changes between ticks, never during the solve.
func UpdateAttraction(ecs *ecs.ECS) {
	eng, tuning, ok := runtime(ecs)
	if !ok {
		return
	}
	cfg := tuning.Magnet
	dt := tuning.Delta

	// Canonical ordering: ascending ID, the lower ID owns the pair, so every
	// unordered pair is visited exactly once.
	var magnets []*donburi.Entry
	components.Magnet.Each(ecs.World, func(e *donburi.Entry) {
		if e.HasComponent(components.Body) {
			magnets = append(magnets, e)
		}
	})
	sort.Slice(magnets, func(i, j int) bool {
		return components.Magnet.Get(magnets[i]).ID < components.Magnet.Get(magnets[j]).ID
	})

	for i := 0; i < len(magnets); i++ {
		idA := components.Body.Get(magnets[i]).ID
		comA := eng.CenterOfMass(idA)
		for j := i + 1; j < len(magnets); j++ {
			idB := components.Body.Get(magnets[j]).ID
			comB := eng.CenterOfMass(idB)

			delta := comB.Sub(comA)
			dist := delta.Len()
			if dist > cfg.Range || dist < 1e-9 {
				continue
			}
			if cfg.LineOfSight {
				if _, hit := eng.Raycast(comA, delta, dist, tags.MaskObstacle); hit {
					continue
				}
			}

			mag := forceMagnitude(cfg, dist)
			if cfg.MaxForcePerPair > 0 && mag > cfg.MaxForcePerPair {
				mag = cfg.MaxForcePerPair
			}

			force := delta.Mul(mag / dist)
			eng.ApplyForce(idA, force, comA)
			if eng.IsDynamic(idB) {
				eng.ApplyForce(idB, force.Mul(-1), comB)
			}
		}
	}

	// Proximity self-destruct, independent of the pairwise solve.
	var destroyed []*donburi.Entry
	for _, e := range magnets {
		m := components.Magnet.Get(e)
		body := components.Body.Get(e)
		center := eng.CenterOfMass(body.ID)

		near := len(eng.OverlapSphere(center, cfg.ProximityRadius, tags.MaskGround)) > 0
		if !near {
			// Any step out of range resets the timer and the shrink.
			if m.ProximityTimer > 0 {
				m.ProximityTimer = 0
				resetDissolve(e)
			}
			continue
		}

		if m.ProximityTimer == 0 && cfg.TimeToSelfDestruct > 0 && !e.HasComponent(components.Dissolve) {
			donburi.Add(e, components.Dissolve, &components.DissolveData{
				Tween: gween.New(1, 0, float32(cfg.TimeToSelfDestruct), ease.Linear),
			})
		}
		m.ProximityTimer += dt
		if m.ProximityTimer >= cfg.TimeToSelfDestruct {
			destroyed = append(destroyed, e)
		}
	}

	for _, e := range destroyed {
		eng.RemoveBody(components.Body.Get(e).ID)
		e.Remove()
	}
}

func forceMagnitude(cfg config.MagnetConfig, dist float64) float64 {
	switch cfg.Falloff {
	case config.FalloffInverse:
		d := math.Max(cfg.MinDistance, dist)
		return cfg.Strength / math.Pow(d, cfg.Power)
	default:
		return cfg.Strength * (1 - mgl64.Clamp(dist/cfg.Range, 0, 1))
	}
}

func resetDissolve(e *donburi.Entry) {
	if e.HasComponent(components.Dissolve) {
		e.RemoveComponent(components.Dissolve)
	}
	if e.HasComponent(components.Visual) {
		components.Visual.Get(e).Scale = 1
	}
}

// UpdateDissolve advances the shrink tween of every body whose destruct
// timer is running.
func UpdateDissolve(ecs *ecs.ECS) {
	_, tuning, ok := runtime(ecs)
	if !ok {
		return
	}
	dt := float32(tuning.Delta)

	components.Dissolve.Each(ecs.World, func(e *donburi.Entry) {
		d := components.Dissolve.Get(e)
		if d.Tween == nil || !e.HasComponent(components.Visual) {
			return
		}
		scale, _ := d.Tween.Update(dt)
		components.Visual.Get(e).Scale = float64(scale)
	})
}
