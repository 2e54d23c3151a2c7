package tags

import (
	"github.com/yohamta/donburi"

	"github.com/tottergame/totter/physics"
)

var (
	Piece   = donburi.NewTag().SetName("Piece")
	Magnet  = donburi.NewTag().SetName("Magnet")
	Carrier = donburi.NewTag().SetName("Carrier")
	Fallen  = donburi.NewTag().SetName("Fallen")
	Runtime = donburi.NewTag().SetName("Runtime")
)

// Physics layer masks for overlap and raycast queries.
const (
	MaskPiece physics.Mask = 1 << iota
	MaskMagnet
	MaskCarrier
	MaskGround
	MaskObstacle
	MaskFallen
)
