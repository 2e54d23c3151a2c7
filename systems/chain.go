package systems

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"

	"github.com/tottergame/totter/components"
	"github.com/tottergame/totter/config"
	"github.com/tottergame/totter/physics"
)

// runtime resolves the engine and tuning singletons. Systems degrade to
// no-ops when the runtime entity is missing.
func runtime(e *ecs.ECS) (physics.Engine, *components.TuningData, bool) {
	rt, ok := components.Engine.First(e.World)
	if !ok {
		return nil, nil, false
	}
	return components.Engine.Get(rt).Physics, components.Tuning.Get(rt), true
}

// linkEntry resolves a weak chain handle, returning nil for the zero handle,
// dead entities, or entities that are no longer chain links.
func linkEntry(w donburi.World, ent donburi.Entity) *donburi.Entry {
	if ent == 0 || !w.Valid(ent) {
		return nil
	}
	e := w.Entry(ent)
	if !e.HasComponent(components.ChainLink) {
		return nil
	}
	return e
}

// resolveFollow returns the follow parameters for a link: its override if
// set, otherwise the chain defaults.
func resolveFollow(link *components.ChainLinkData, tuning *components.TuningData) config.FollowParams {
	if link.Override != nil {
		return *link.Override
	}
	return tuning.Chain.Follow
}

// Parent returns the link's parent entry, or nil.
func Parent(w donburi.World, e *donburi.Entry) *donburi.Entry {
	return linkEntry(w, components.ChainLink.Get(e).Parent)
}

// Child returns the link's child entry, or nil.
func Child(w donburi.World, e *donburi.Entry) *donburi.Entry {
	return linkEntry(w, components.ChainLink.Get(e).Child)
}

// TopOfChain walks child links from base to the end of the chain.
func TopOfChain(w donburi.World, base *donburi.Entry, maxLength int) *donburi.Entry {
	top := base
	for i := 0; i < maxLength; i++ {
		next := Child(w, top)
		if next == nil {
			return top
		}
		top = next
	}
	return top
}

// chainRoot walks parent links from e to the bottom of the chain.
func chainRoot(w donburi.World, e *donburi.Entry, maxLength int) *donburi.Entry {
	root := e
	for i := 0; i < maxLength; i++ {
		prev := Parent(w, root)
		if prev == nil {
			return root
		}
		root = prev
	}
	return root
}

// MarkChainDirty invalidates the cached wobble view of the chain containing
// e. Every structural mutation calls it; the wobble pass rebuilds lazily.
func MarkChainDirty(w donburi.World, e *donburi.Entry, maxLength int) {
	if e == nil {
		return
	}
	root := chainRoot(w, e, maxLength)
	if root.HasComponent(components.Wobble) {
		components.Wobble.Get(root).Dirty = true
	}
}

// RefreshLinks clears handles that no longer describe a mutual parent/child
// relationship, so a half-updated graph can never be observed by the force
// passes.
func RefreshLinks(w donburi.World, e *donburi.Entry) {
	link := components.ChainLink.Get(e)
	if p := linkEntry(w, link.Parent); p == nil {
		link.Parent = 0
	} else if components.ChainLink.Get(p).Child != e.Entity() {
		link.Parent = 0
	}
	if c := linkEntry(w, link.Child); c == nil {
		link.Child = 0
	} else if components.ChainLink.Get(c).Parent != e.Entity() {
		link.Child = 0
	}
}

// UpdateChainLinks is the per-tick relink refresh: it runs before the follow
// pass so no controller ever sees a stale handle from last tick's mutations.
func UpdateChainLinks(ecs *ecs.ECS) {
	components.ChainLink.Each(ecs.World, func(e *donburi.Entry) {
		RefreshLinks(ecs.World, e)
	})
}

// AttachOnTop reparents node under the current top of base's chain and snaps
// it into place. No-op for nil, identical, or already-linked inputs.
func AttachOnTop(ecs *ecs.ECS, base, node *donburi.Entry) {
	_, tuning, ok := runtime(ecs)
	if !ok || base == nil || node == nil || base == node {
		return
	}
	top := TopOfChain(ecs.World, base, tuning.Chain.MaxLength)
	if top == node {
		return
	}

	topLink := components.ChainLink.Get(top)
	nodeLink := components.ChainLink.Get(node)
	topLink.Child = node.Entity()
	nodeLink.Parent = top.Entity()
	RefreshLinks(ecs.World, top)
	RefreshLinks(ecs.World, node)

	snapToParent(ecs, node)
	MarkChainDirty(ecs.World, node, tuning.Chain.MaxLength)
}

// InsertAbove splices node between below and below's current child.
func InsertAbove(ecs *ecs.ECS, below, node *donburi.Entry) {
	_, tuning, ok := runtime(ecs)
	if !ok || below == nil || node == nil || below == node {
		return
	}

	belowLink := components.ChainLink.Get(below)
	nodeLink := components.ChainLink.Get(node)

	oldChild := linkEntry(ecs.World, belowLink.Child)
	if oldChild == node {
		return
	}

	belowLink.Child = node.Entity()
	nodeLink.Parent = below.Entity()
	if oldChild != nil {
		nodeLink.Child = oldChild.Entity()
		components.ChainLink.Get(oldChild).Parent = node.Entity()
	} else {
		nodeLink.Child = 0
	}

	snapToParent(ecs, node)
	if oldChild != nil {
		snapToParent(ecs, oldChild)
	}
	MarkChainDirty(ecs.World, node, tuning.Chain.MaxLength)
}

// RemovePiece detaches node to an unparented, unlinked state. When node sits
// between a parent and a child the gap is closed: the child is reparented
// onto the parent and snapped.
func RemovePiece(ecs *ecs.ECS, node *donburi.Entry) {
	_, tuning, ok := runtime(ecs)
	if !ok || node == nil {
		return
	}

	parent := Parent(ecs.World, node)
	child := Child(ecs.World, node)
	link := components.ChainLink.Get(node)

	// Mark before unlinking while the node can still reach its root.
	MarkChainDirty(ecs.World, node, tuning.Chain.MaxLength)

	link.Parent = 0
	link.Child = 0

	switch {
	case parent != nil && child != nil:
		components.ChainLink.Get(parent).Child = child.Entity()
		components.ChainLink.Get(child).Parent = parent.Entity()
		snapToParent(ecs, child)
	case parent != nil:
		components.ChainLink.Get(parent).Child = 0
	case child != nil:
		components.ChainLink.Get(child).Parent = 0
	}
}

// DetachSubstack unlinks node and everything above it from node's parent.
// Nothing below is reattached; the substack keeps moving as one unit.
func DetachSubstack(ecs *ecs.ECS, node *donburi.Entry) {
	_, tuning, ok := runtime(ecs)
	if !ok || node == nil {
		return
	}
	parent := Parent(ecs.World, node)
	if parent == nil {
		return
	}

	MarkChainDirty(ecs.World, node, tuning.Chain.MaxLength)

	components.ChainLink.Get(parent).Child = 0
	components.ChainLink.Get(node).Parent = 0
}

// MoveSubstackToTop relocates an existing subchain onto the top of a
// different chain. No-op when base is part of the moved substack.
func MoveSubstackToTop(ecs *ecs.ECS, base, substackRoot *donburi.Entry) {
	_, tuning, ok := runtime(ecs)
	if !ok || base == nil || substackRoot == nil || base == substackRoot {
		return
	}
	// Attaching a substack under one of its own members would close a cycle.
	walk := substackRoot
	for i := 0; i < tuning.Chain.MaxLength && walk != nil; i++ {
		if walk == base {
			return
		}
		walk = Child(ecs.World, walk)
	}

	DetachSubstack(ecs, substackRoot)
	AttachOnTop(ecs, base, substackRoot)
}

// snapToParent translates node so its bottom anchor lands on the parent's
// top anchor plus the configured gap. Position only, never rotation.
func snapToParent(ecs *ecs.ECS, node *donburi.Entry) {
	eng, tuning, ok := runtime(ecs)
	if !ok || node == nil || !node.HasComponent(components.Body) {
		return
	}
	parent := Parent(ecs.World, node)
	if parent == nil || !parent.HasComponent(components.Body) {
		return
	}

	link := components.ChainLink.Get(node)
	params := resolveFollow(link, tuning)

	parentLink := components.ChainLink.Get(parent)
	parentPose := eng.Pose(components.Body.Get(parent).ID)
	target := parentPose.Pos.
		Add(parentPose.Rot.Rotate(parentLink.TopAnchor)).
		Add(params.Gap)

	id := components.Body.Get(node).ID
	pose := eng.Pose(id)
	anchor := pose.Pos.Add(pose.Rot.Rotate(link.BottomAnchor))

	pose.Pos = pose.Pos.Add(target.Sub(anchor))
	eng.SetKinematicPose(id, pose)
}
