package mast

import "fmt"

// Merge combines guest into host, producing a forest containing, for
// every node in host or guest, exactly one representative, while
// preserving every root digest of both. host is mutated in place and
// returned for convenience.
//
// Grounded on core/src/mast/forest_merger.rs's post-order DFS: guest is
// walked so that a node is visited only after all of its descendants,
// each guest id is remapped into host's id-space via idMap, bucketed
// into an equivalence class, and either unified with an existing host
// node (superseding an External placeholder in place if one is found)
// or appended as new.
func Merge(host, guest *Forest) (*Forest, error) {
	idMap := make(map[MastNodeId]MastNodeId, len(guest.Nodes))
	classIndex := make(map[EqClass]MastNodeId, len(host.Nodes))
	var eq NodeEq

	// Seed classIndex with every node already in host.
	for i := range host.Nodes {
		id := MastNodeId(i)
		class, err := eq.ClassOf(host, id)
		if err != nil {
			return nil, err
		}
		if _, exists := classIndex[class]; !exists {
			classIndex[class] = id
		}
	}

	for i := range guest.Nodes {
		gid := MastNodeId(i)
		remappedChildren, err := remapChildren(guest.Nodes[i], idMap)
		if err != nil {
			return nil, err
		}

		// Compute the equivalence class against guest's own decorator
		// content (identical bytes regardless of whose arena they live
		// in), without yet copying decorators into host; copying only
		// happens below, and only for nodes that turn out to be new.
		class, err := eq.ClassOf(&Forest{Nodes: []MastNode{remappedChildren}, Decorators: guest.Decorators}, 0)
		if err != nil {
			return nil, err
		}

		if existingID, found := classIndex[class]; found {
			existing, err := host.Get(existingID)
			if err != nil {
				return nil, err
			}
			if existing.Kind == KindExternal && remappedChildren.Kind != KindExternal {
				concrete := remappedChildren
				concrete.Decorators = remapDecorators(guest.Nodes[i].Decorators, guest, host)
				if err := host.ReplaceExternal(existingID, concrete); err != nil {
					return nil, err
				}
			}
			idMap[gid] = existingID
			continue
		}

		toInsert := remappedChildren
		toInsert.Decorators = remapDecorators(guest.Nodes[i].Decorators, guest, host)

		newID, err := host.addNode(toInsert)
		if err != nil {
			return nil, fmt.Errorf("mast: merge failed appending guest node %d: %w", gid, err)
		}
		classIndex[class] = newID
		idMap[gid] = newID
	}

	// Remap and add every guest root to host's root set.
	for _, groot := range guest.roots {
		hroot, ok := idMap[groot]
		if !ok {
			return nil, fmt.Errorf("mast: merge could not resolve guest root %d", groot)
		}
		host.MakeRoot(hroot)
	}

	return host, nil
}

// remapChildren rewrites node's child/callee ids from guest's id-space
// into host's, using idMap for ids already visited earlier in the
// post-order walk. Decorators are left as guest-local ids; the caller
// fills in host-local decorator ids only once it knows whether the node
// is actually being inserted.
func remapChildren(node MastNode, idMap map[MastNodeId]MastNodeId) (MastNode, error) {
	out := node

	remap := func(id MastNodeId) (MastNodeId, error) {
		if id == NoNode {
			return NoNode, nil
		}
		mapped, ok := idMap[id]
		if !ok {
			return NoNode, fmt.Errorf("mast: merge encountered unmapped child id %d (not post-order?)", id)
		}
		return mapped, nil
	}

	var err error
	if out.Left, err = remap(node.Left); err != nil {
		return MastNode{}, err
	}
	if out.Right, err = remap(node.Right); err != nil {
		return MastNode{}, err
	}
	if out.Callee, err = remap(node.Callee); err != nil {
		return MastNode{}, err
	}
	return out, nil
}

// remapDecorators copies guest decorators into host's decorator arena
// pointwise, returning the new ids.
func remapDecorators(ids []DecoratorId, guest, host *Forest) []DecoratorId {
	if len(ids) == 0 {
		return nil
	}
	out := make([]DecoratorId, len(ids))
	for i, id := range ids {
		out[i] = host.AddDecorator(guest.Decorators[id])
	}
	return out
}
