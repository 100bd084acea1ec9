// Package snapshot builds the immutable, plain-data projection of an
// outline document (spec.md §4.7, C7), including the mirror-aware
// edge-instance projection that lets every UI row be addressed by a single
// EdgeId regardless of how many mirror ancestors it sits under.
package snapshot

import (
	"github.com/dcoales/Thortiq-sub001/pkg/ids"
	"github.com/dcoales/Thortiq-sub001/pkg/outline"
)

// Edge is a snapshot's plain-data edge record. Outside any mirror subtree
// its ID is the canonical edge id and CanonicalEdgeID equals ID; inside a
// mirror subtree its ID is a synthesized instance id and CanonicalEdgeID
// names the real, physically-stored edge it projects.
type Edge struct {
	ID              ids.EdgeID
	ParentNodeID    *ids.NodeID
	ChildNodeID     ids.NodeID
	Collapsed       bool
	MirrorOfNodeID  *ids.NodeID
	Position        int
	CanonicalEdgeID ids.EdgeID
}

// IsMirror reports whether the underlying canonical edge is a mirror
// placement.
func (e *Edge) IsMirror() bool { return e.MirrorOfNodeID != nil }

// Snapshot is the immutable view produced by CreateOutlineSnapshot. Callers
// must not mutate any of its collections; every build returns fresh ones.
type Snapshot struct {
	Nodes map[ids.NodeID]*outline.Node
	Edges map[ids.EdgeID]*Edge

	RootEdgeIDs []ids.EdgeID
	// ChildrenByParent holds only canonical per-parent edge arrays, as
	// physically stored.
	ChildrenByParent map[ids.NodeID][]ids.EdgeID
	// ChildEdgeIdsByParentEdge is keyed by projection id — canonical
	// outside mirror subtrees, instance id inside them.
	ChildEdgeIdsByParentEdge map[ids.EdgeID][]ids.EdgeID
	// CanonicalEdgeIdsByEdgeId maps every edge id appearing anywhere in
	// the snapshot (canonical or instance) back to its canonical edge id.
	CanonicalEdgeIdsByEdgeId map[ids.EdgeID]ids.EdgeID
}

type projection struct {
	projectionID ids.EdgeID
	canonicalID  ids.EdgeID
}

// CreateOutlineSnapshot builds an immutable snapshot of doc, including the
// mirror-aware edge-instance projection (spec.md §4.7). It is pure: doc is
// read via its public accessors and never mutated.
func CreateOutlineSnapshot(doc *outline.Doc) *Snapshot {
	nodes := make(map[ids.NodeID]*outline.Node)
	for _, id := range doc.AllNodeIDs() {
		n, ok := doc.GetNode(id)
		if ok {
			nodes[id] = n
		}
	}

	canonicalIDs := doc.AllEdgeIDs()
	edgesOut := make(map[ids.EdgeID]*Edge, len(canonicalIDs))
	canonicalEdgeIdsByEdgeId := make(map[ids.EdgeID]ids.EdgeID, len(canonicalIDs))
	parentSet := make(map[ids.NodeID]bool)

	queue := make([]projection, 0, len(canonicalIDs))
	for _, id := range canonicalIDs {
		e, ok := doc.GetEdge(id)
		if !ok {
			continue
		}
		edgesOut[id] = &Edge{
			ID:              id,
			ParentNodeID:    e.ParentNodeID,
			ChildNodeID:     e.ChildNodeID,
			Collapsed:       e.Collapsed,
			MirrorOfNodeID:  e.MirrorOfNodeID,
			Position:        e.Position,
			CanonicalEdgeID: id,
		}
		canonicalEdgeIdsByEdgeId[id] = id
		if e.ParentNodeID != nil {
			parentSet[*e.ParentNodeID] = true
		}
		queue = append(queue, projection{projectionID: id, canonicalID: id})
	}

	childrenByParent := make(map[ids.NodeID][]ids.EdgeID, len(parentSet))
	for p := range parentSet {
		childrenByParent[p] = doc.ChildEdgeIDs(p)
	}

	childEdgeIdsByParentEdge := make(map[ids.EdgeID][]ids.EdgeID, len(canonicalIDs))
	processed := make(map[ids.EdgeID]bool, len(canonicalIDs))

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		if processed[item.projectionID] {
			continue
		}
		processed[item.projectionID] = true

		canonical := edgesOut[item.canonicalID]
		canonicalChildren := childrenByParent[canonical.ChildNodeID]

		isMirrorProjection := item.projectionID != item.canonicalID
		if !isMirrorProjection && !canonical.IsMirror() {
			childEdgeIdsByParentEdge[item.projectionID] = append([]ids.EdgeID(nil), canonicalChildren...)
			continue
		}

		instChildren := make([]ids.EdgeID, 0, len(canonicalChildren))
		for _, c := range canonicalChildren {
			inst := ids.EdgeInstanceID(item.projectionID, c)
			instChildren = append(instChildren, inst)
			canonicalEdgeIdsByEdgeId[inst] = c
			if _, exists := edgesOut[inst]; !exists {
				src := edgesOut[c]
				clone := *src
				clone.ID = inst
				clone.CanonicalEdgeID = c
				edgesOut[inst] = &clone
			}
			queue = append(queue, projection{projectionID: inst, canonicalID: c})
		}
		childEdgeIdsByParentEdge[item.projectionID] = instChildren
	}

	return &Snapshot{
		Nodes:                    nodes,
		Edges:                    edgesOut,
		RootEdgeIDs:              doc.RootEdgeIDs(),
		ChildrenByParent:         childrenByParent,
		ChildEdgeIdsByParentEdge: childEdgeIdsByParentEdge,
		CanonicalEdgeIdsByEdgeId: canonicalEdgeIdsByEdgeId,
	}
}
