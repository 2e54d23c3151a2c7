package components

import (
	"github.com/tanema/gween"
	"github.com/yohamta/donburi"
)

// MagnetData registers a body with the pairwise attraction field. ID is the
// stable identity that canonically orders pairs: the lower ID owns the pair,
// so each unordered pair is computed exactly once per tick.
type MagnetData struct {
	ID             int
	ProximityTimer float64
}

var Magnet = donburi.NewComponentType[MagnetData]()

// DissolveData shrinks the visual scale while a magnet's proximity
// self-destruct timer accumulates. Removed (and the scale restored) whenever
// the timer resets.
type DissolveData struct {
	Tween *gween.Tween
}

var Dissolve = donburi.NewComponentType[DissolveData]()
