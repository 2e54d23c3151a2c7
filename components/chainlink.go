package components

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"

	"github.com/tottergame/totter/config"
)

// ChainLinkData makes an entity part of a stack. Parent and Child are weak
// entity handles: the chain structure is mutated externally by attach/detach
// and carry operations, so neither side owns the other and stale handles are
// cleared by the per-tick refresh pass.
type ChainLinkData struct {
	Parent donburi.Entity
	Child  donburi.Entity

	// Attachment points in body-local space.
	BottomAnchor mgl64.Vec3
	TopAnchor    mgl64.Vec3

	// Override replaces the chain-wide follow parameters for this piece.
	Override *config.FollowParams
}

var ChainLink = donburi.NewComponentType[ChainLinkData]()
