package outline

import (
	"strings"

	"github.com/dcoales/Thortiq-sub001/pkg/ids"
)

// MirrorMode reports how CreateMirror placed the mirror edge.
type MirrorMode string

const (
	MirrorModeConverted MirrorMode = "converted"
	MirrorModeInserted  MirrorMode = "inserted"
)

// CreateMirrorOptions configures CreateMirror.
type CreateMirrorOptions struct {
	MirrorNodeID ids.NodeID
	// TargetEdgeID, if set, is the edge CreateMirror tries to convert in
	// place, or to insert a sibling mirror after. If nil, the mirror is
	// inserted under InsertParentNodeID (nil places it at the root) at
	// InsertIndex (nil appends).
	TargetEdgeID *ids.EdgeID

	InsertParentNodeID *ids.NodeID
	InsertIndex        *int
}

// CreateMirrorResult is CreateMirror's success value.
type CreateMirrorResult struct {
	Mode   MirrorMode
	EdgeID ids.EdgeID
	NodeID ids.NodeID
}

// CreateMirror places a second, content-sharing placement of an existing
// node (spec.md §4.5, C5). It returns (nil, nil) — not an error — when
// mirrorNodeId does not exist or would violate an internal invariant,
// mirroring the spec's "return null" contract; callers that want a Go
// error for a missing target edge still get one.
func (tx *Tx) CreateMirror(opts CreateMirrorOptions) (*CreateMirrorResult, error) {
	doc := tx.doc

	if _, ok := doc.nodes[opts.MirrorNodeID]; !ok {
		return nil, nil
	}

	if opts.TargetEdgeID == nil {
		if opts.InsertParentNodeID != nil {
			if _, ok := doc.nodes[*opts.InsertParentNodeID]; !ok {
				return nil, nil
			}
		}
		if wouldCycleForMirror(doc, opts.InsertParentNodeID, opts.MirrorNodeID) {
			return nil, nil
		}
		mirrorOf := opts.MirrorNodeID
		edgeID, nodeID, err := tx.AddEdge(AddEdgeOptions{
			ParentNodeID:   opts.InsertParentNodeID,
			ChildNodeID:    &mirrorOf,
			MirrorOfNodeID: &mirrorOf,
			Position:       opts.InsertIndex,
		})
		if err != nil {
			return nil, nil
		}
		return &CreateMirrorResult{Mode: MirrorModeInserted, EdgeID: edgeID, NodeID: nodeID}, nil
	}

	target, ok := doc.edges[*opts.TargetEdgeID]
	if !ok {
		return nil, ErrEdgeMissing
	}

	if canConvertInPlace(doc, target, opts.MirrorNodeID) {
		prevChildID := target.ChildNodeID
		prevMirrorOf := target.MirrorOfNodeID
		mirrorOf := opts.MirrorNodeID

		target.ChildNodeID = mirrorOf
		target.MirrorOfNodeID = &mirrorOf
		ownedChildren := doc.childEdgeIDs[prevChildID]
		delete(doc.childEdgeIDs, prevChildID)
		ownedNode := doc.nodes[prevChildID]
		delete(doc.nodes, prevChildID)

		tx.record(func() {
			target.ChildNodeID = prevChildID
			target.MirrorOfNodeID = prevMirrorOf
			if len(ownedChildren) > 0 {
				doc.childEdgeIDs[prevChildID] = ownedChildren
			}
			doc.nodes[prevChildID] = ownedNode
		})

		return &CreateMirrorResult{Mode: MirrorModeConverted, EdgeID: target.ID, NodeID: mirrorOf}, nil
	}

	if wouldCycleForMirror(doc, target.ParentNodeID, opts.MirrorNodeID) {
		return nil, nil
	}

	index := target.Position + 1
	mirrorOf := opts.MirrorNodeID
	edgeID, nodeID, err := tx.AddEdge(AddEdgeOptions{
		ParentNodeID:   target.ParentNodeID,
		ChildNodeID:    &mirrorOf,
		MirrorOfNodeID: &mirrorOf,
		Position:       &index,
	})
	if err != nil {
		return nil, nil
	}
	return &CreateMirrorResult{Mode: MirrorModeInserted, EdgeID: edgeID, NodeID: nodeID}, nil
}

// wouldCycleForMirror applies I4 to a prospective mirror placement: the
// node being placed must not already contain parentNodeID among its
// descendants (nil parentNodeID — a root placement — can never cycle).
func wouldCycleForMirror(doc *Doc, parentNodeID *ids.NodeID, mirrorNodeID ids.NodeID) bool {
	if parentNodeID == nil {
		return false
	}
	return wouldCycle(doc, *parentNodeID, mirrorNodeID)
}

// canConvertInPlace implements spec.md §4.5's convert-in-place predicate:
// the target is not already a mirror; the mirror node differs from the
// target's current child; the target's text is blank; the target has no
// children; and the target's current child node is owned by exactly that
// one edge.
func canConvertInPlace(doc *Doc, target *Edge, mirrorNodeID ids.NodeID) bool {
	if target.IsMirror() {
		return false
	}
	if target.ChildNodeID == mirrorNodeID {
		return false
	}
	node, ok := doc.nodes[target.ChildNodeID]
	if !ok {
		return false
	}
	if node.Text != nil && strings.TrimSpace(node.Text.PlainText()) != "" {
		return false
	}
	if len(doc.childEdgeIDs[target.ChildNodeID]) > 0 {
		return false
	}
	referenceCount := 0
	for _, e := range doc.edges {
		if e.ChildNodeID == target.ChildNodeID {
			referenceCount++
			if referenceCount > 1 {
				return false
			}
		}
	}
	return referenceCount == 1
}
