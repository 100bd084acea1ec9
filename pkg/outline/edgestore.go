package outline

import (
	"sort"

	"github.com/dcoales/Thortiq-sub001/pkg/ids"
)

// AddEdgeOptions configures AddEdge.
type AddEdgeOptions struct {
	// ParentNodeID is nil for a root-level placement.
	ParentNodeID *ids.NodeID
	// ChildNodeID, if set, places an existing node; if nil, a fresh node
	// is created (optionally seeded with Text).
	ChildNodeID *ids.NodeID
	// MirrorOfNodeID, if set, marks the new edge as a mirror placement.
	MirrorOfNodeID *ids.NodeID
	Collapsed      bool
	// Position is clamped to [0, len]; nil means append (spec.md §4.4).
	Position *int
	// Text seeds a freshly-created child node's plain text; ignored when
	// ChildNodeID is set.
	Text string
}

func clampPosition(pos *int, length int) int {
	if pos == nil {
		return length
	}
	p := *pos
	if p < 0 {
		return 0
	}
	if p > length {
		return length
	}
	return p
}

func indexOfEdge(list []ids.EdgeID, target ids.EdgeID) int {
	for i, id := range list {
		if id == target {
			return i
		}
	}
	return -1
}

func removeAtIndex(list []ids.EdgeID, idx int) []ids.EdgeID {
	out := make([]ids.EdgeID, 0, len(list)-1)
	out = append(out, list[:idx]...)
	out = append(out, list[idx+1:]...)
	return out
}

func insertAtIndex(list []ids.EdgeID, idx int, id ids.EdgeID) []ids.EdgeID {
	out := make([]ids.EdgeID, 0, len(list)+1)
	out = append(out, list[:idx]...)
	out = append(out, id)
	out = append(out, list[idx:]...)
	return out
}

// wouldCycle reports whether placing childNodeID under parentNodeID would
// make parentNodeID a descendant of childNodeID — or whether they are the
// same node — by BFS over the per-parent child edge arrays (spec.md §4.4).
func wouldCycle(doc *Doc, parentNodeID, childNodeID ids.NodeID) bool {
	visited := map[ids.NodeID]bool{}
	queue := []ids.NodeID{childNodeID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == parentNodeID {
			return true
		}
		if visited[cur] {
			continue
		}
		visited[cur] = true
		for _, eid := range doc.childEdgeIDs[cur] {
			if e, ok := doc.edges[eid]; ok {
				queue = append(queue, e.ChildNodeID)
			}
		}
	}
	return false
}

// AddEdge places a node — new or existing — as a child of parentNodeID (or
// at the document root), per spec.md §4.4.
func (tx *Tx) AddEdge(opts AddEdgeOptions) (ids.EdgeID, ids.NodeID, error) {
	doc := tx.doc

	if opts.ParentNodeID != nil {
		if _, ok := doc.nodes[*opts.ParentNodeID]; !ok {
			return "", "", ErrParentMissing
		}
	}

	var childID ids.NodeID
	if opts.ChildNodeID != nil {
		if _, ok := doc.nodes[*opts.ChildNodeID]; !ok {
			return "", "", ErrNodeMissing
		}
		childID = *opts.ChildNodeID
	} else {
		id, err := tx.CreateNode(CreateNodeOptions{Text: opts.Text})
		if err != nil {
			return "", "", err
		}
		childID = id
	}

	if opts.ParentNodeID != nil && wouldCycle(doc, *opts.ParentNodeID, childID) {
		return "", "", ErrWouldCycle
	}

	edgeID := ids.NewEdgeID()
	list := doc.edgeList(opts.ParentNodeID)
	position := clampPosition(opts.Position, len(list))
	newList := insertAtIndex(list, position, edgeID)

	edge := &Edge{
		ID:             edgeID,
		ParentNodeID:   opts.ParentNodeID,
		ChildNodeID:    childID,
		Collapsed:      opts.Collapsed,
		MirrorOfNodeID: opts.MirrorOfNodeID,
	}
	doc.edges[edgeID] = edge
	doc.setEdgeList(opts.ParentNodeID, newList)

	tx.record(func() {
		delete(doc.edges, edgeID)
		doc.setEdgeList(opts.ParentNodeID, list)
	})

	return edgeID, childID, nil
}

// MoveEdge reparents and/or repositions an edge (spec.md §4.4). When the
// parent is unchanged it repositions within the same array using a
// delete-then-insert with shift correction; otherwise it removes the edge
// from its old parent's array and inserts it into the new one.
func (tx *Tx) MoveEdge(edgeID ids.EdgeID, newParentNodeID *ids.NodeID, newPosition int) error {
	doc := tx.doc
	e, ok := doc.edges[edgeID]
	if !ok {
		return ErrEdgeMissing
	}
	if newParentNodeID != nil {
		if _, ok := doc.nodes[*newParentNodeID]; !ok {
			return ErrParentMissing
		}
		if wouldCycle(doc, *newParentNodeID, e.ChildNodeID) {
			return ErrWouldCycle
		}
	}

	oldParent := e.ParentNodeID
	sameParent := (oldParent == nil && newParentNodeID == nil) ||
		(oldParent != nil && newParentNodeID != nil && *oldParent == *newParentNodeID)

	if sameParent {
		list := doc.edgeList(oldParent)
		oldListCopy := append([]ids.EdgeID(nil), list...)
		currentIndex := indexOfEdge(list, edgeID)
		desiredIndex := clampPosition(&newPosition, len(list)-1)
		adjustedIndex := desiredIndex
		if desiredIndex > currentIndex {
			adjustedIndex = desiredIndex - 1
		}
		withoutEdge := removeAtIndex(list, currentIndex)
		if adjustedIndex < 0 {
			adjustedIndex = 0
		}
		if adjustedIndex > len(withoutEdge) {
			adjustedIndex = len(withoutEdge)
		}
		newList := insertAtIndex(withoutEdge, adjustedIndex, edgeID)
		doc.setEdgeList(oldParent, newList)
		tx.record(func() { doc.setEdgeList(oldParent, oldListCopy) })
		return nil
	}

	oldList := doc.edgeList(oldParent)
	oldListCopy := append([]ids.EdgeID(nil), oldList...)
	currentIndex := indexOfEdge(oldList, edgeID)
	withoutEdge := removeAtIndex(oldList, currentIndex)
	doc.setEdgeList(oldParent, withoutEdge)

	newList := doc.edgeList(newParentNodeID)
	newListCopy := append([]ids.EdgeID(nil), newList...)
	position := clampPosition(&newPosition, len(newList))
	insertedList := insertAtIndex(newList, position, edgeID)
	doc.setEdgeList(newParentNodeID, insertedList)

	prevParent := e.ParentNodeID
	e.ParentNodeID = newParentNodeID

	tx.record(func() {
		e.ParentNodeID = prevParent
		doc.setEdgeList(newParentNodeID, newListCopy)
		doc.setEdgeList(oldParent, oldListCopy)
	})
	return nil
}

// ToggleCollapsed flips an edge's collapsed flag, or sets it to value when
// non-nil (spec.md §4.4).
func (tx *Tx) ToggleCollapsed(edgeID ids.EdgeID, value *bool) error {
	e, ok := tx.doc.edges[edgeID]
	if !ok {
		return ErrEdgeMissing
	}
	prev := e.Collapsed
	if value != nil {
		e.Collapsed = *value
	} else {
		e.Collapsed = !e.Collapsed
	}
	tx.record(func() { e.Collapsed = prev })
	return nil
}

// RemoveEdgeOptions configures RemoveEdge.
type RemoveEdgeOptions struct {
	// RemoveChildNodeIfOrphaned deletes the child node (and cascades into
	// its own subtree) once no other edge references it. Defaults to
	// doc.docConfig.OrphanCleanupDefault via Doc.NewRemoveEdgeOptions.
	RemoveChildNodeIfOrphaned bool
	// SuppressTransaction is accepted for signature parity with spec.md
	// §4.4; it has no effect in this implementation because
	// WithTransaction calls already join an outer transaction instead of
	// nesting a new commit (spec.md §4.2 contract 2), so there is nothing
	// to suppress.
	SuppressTransaction bool
}

// NewRemoveEdgeOptions returns remove_edge's documented default
// (pkg/config.DocumentConfig.OrphanCleanupDefault, true unless configured
// otherwise via Doc.SetDocumentConfig).
func (d *Doc) NewRemoveEdgeOptions() RemoveEdgeOptions {
	return RemoveEdgeOptions{RemoveChildNodeIfOrphaned: d.docConfig.OrphanCleanupDefault}
}

// removeEdgeRecord removes a single edge from storage: out of its parent's
// array and out of the edges map, with a compensating undo.
func (tx *Tx) removeEdgeRecord(edgeID ids.EdgeID) {
	doc := tx.doc
	e := doc.edges[edgeID]
	parent := e.ParentNodeID
	list := doc.edgeList(parent)
	oldListCopy := append([]ids.EdgeID(nil), list...)
	idx := indexOfEdge(list, edgeID)
	newList := removeAtIndex(list, idx)

	doc.setEdgeList(parent, newList)
	delete(doc.edges, edgeID)

	tx.record(func() {
		doc.edges[edgeID] = e
		doc.setEdgeList(parent, oldListCopy)
	})
}

// deleteNodeRecord deletes a node record, with a compensating undo.
func (tx *Tx) deleteNodeRecord(nodeID ids.NodeID) {
	doc := tx.doc
	n := doc.nodes[nodeID]
	delete(doc.nodes, nodeID)
	tx.record(func() { doc.nodes[nodeID] = n })
}

// referencedElsewhere reports whether any remaining edge points at nodeID
// as its child.
func (tx *Tx) referencedElsewhere(nodeID ids.NodeID) bool {
	for _, e := range tx.doc.edges {
		if e.ChildNodeID == nodeID {
			return true
		}
	}
	return false
}

// removeSubtree removes every canonical edge and node physically owned
// under nodeID, stopping at any child that is still referenced by another
// edge (e.g. a mirror edge elsewhere, or another edge created concurrently
// before this cascade ran).
func (tx *Tx) removeSubtree(nodeID ids.NodeID) {
	doc := tx.doc
	children := append([]ids.EdgeID(nil), doc.childEdgeIDs[nodeID]...)
	for _, eid := range children {
		e := doc.edges[eid]
		childID := e.ChildNodeID
		tx.removeEdgeRecord(eid)
		if !tx.referencedElsewhere(childID) {
			tx.removeSubtree(childID)
			tx.deleteNodeRecord(childID)
		}
	}
}

// RemoveEdge deletes a single edge and, when requested and the child node
// becomes unreferenced, recursively deletes the child node's own subtree
// and the node itself (spec.md §4.4).
func (tx *Tx) RemoveEdge(edgeID ids.EdgeID, opts RemoveEdgeOptions) error {
	doc := tx.doc
	e, ok := doc.edges[edgeID]
	if !ok {
		return ErrEdgeMissing
	}
	childID := e.ChildNodeID
	tx.removeEdgeRecord(edgeID)

	if opts.RemoveChildNodeIfOrphaned && !tx.referencedElsewhere(childID) {
		tx.removeSubtree(childID)
		tx.deleteNodeRecord(childID)
	}
	return nil
}

// GetParentEdgeID returns the first edge, in a deterministic
// lexicographic-by-id scan, whose child is nodeID. Multiple results are
// possible when nodeID has mirror placements; the scan order is
// deterministic but not meaningful beyond that (spec.md §4.4).
func (d *Doc) GetParentEdgeID(nodeID ids.NodeID) (ids.EdgeID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	keys := make([]string, 0, len(d.edges))
	for id := range d.edges {
		keys = append(keys, string(id))
	}
	sort.Strings(keys)
	for _, k := range keys {
		e := d.edges[ids.EdgeID(k)]
		if e.ChildNodeID == nodeID {
			return e.ID, true
		}
	}
	return "", false
}
