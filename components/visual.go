package components

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
)

// VisualData is the cosmetic channel a renderer composes on top of the body
// pose. Wobble writes Rotation, the proximity-destruct shrink writes Scale.
// No force pass ever reads it.
type VisualData struct {
	Rotation mgl64.Quat
	Scale    float64
	Hidden   bool
}

var Visual = donburi.NewComponentType[VisualData]()

// NewVisual returns the neutral visual state.
func NewVisual() VisualData {
	return VisualData{Rotation: mgl64.QuatIdent(), Scale: 1}
}
