package components

import (
	"github.com/yohamta/donburi"

	"github.com/tottergame/totter/physics"
)

// BodyData binds an entity to its physics engine body.
type BodyData struct {
	ID     physics.BodyID
	Radius float64
	Layer  physics.Mask
}

var Body = donburi.NewComponentType[BodyData]()
