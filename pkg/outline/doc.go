package outline

import (
	"sync"

	"github.com/dcoales/Thortiq-sub001/pkg/config"
	"github.com/dcoales/Thortiq-sub001/pkg/ids"
	"github.com/dcoales/Thortiq-sub001/pkg/outlog"
)

// Doc is the document: the owner of the node store, edge store, root edge
// list, per-parent child edge map, and tag registry (spec.md §3
// Ownership). A Doc is shared, mutable, process-wide state, but — per
// spec.md §5 — only one goroutine (the "owning thread") may mutate it at a
// time. doc.mu serializes callers; it is bookkeeping discipline, not a
// substitute for that single-writer contract, the same relationship the
// teacher's Transaction.mu has to its MemoryEngine
// (_examples/straga-Mimir_lite/nornicdb/pkg/storage/transaction.go).
type Doc struct {
	mu sync.Mutex

	nodes map[ids.NodeID]*Node
	edges map[ids.EdgeID]*Edge

	// rootEdgeIDs is the ordered list of canonical edges with no parent.
	rootEdgeIDs []ids.EdgeID
	// childEdgeIDs maps a parent NodeID to its ordered canonical edge list.
	childEdgeIDs map[ids.NodeID][]ids.EdgeID

	tags       map[string]*TagRegistryEntry
	tagVersion uint64
	tagViewCache []TagRegistryEntry
	tagViewCacheVersion uint64

	// tx is the currently active transaction, if any. A nil value means no
	// transaction is open; WithTransaction calls that find it non-nil join
	// the existing transaction instead of starting a new one (spec.md
	// §4.2 contract 2).
	tx *Tx

	logger outlog.Logger

	// docConfig governs document-level defaults this package is documented
	// to honor (spec.md §3 heading-level bound, §4.4 remove_edge default):
	// pkg/config.DocumentConfig.MaxHeadingLevel and .OrphanCleanupDefault.
	docConfig config.DocumentConfig
}

// NewDoc creates an empty document using config.DefaultConfig's document
// defaults.
func NewDoc() *Doc {
	return &Doc{
		nodes:        make(map[ids.NodeID]*Node),
		edges:        make(map[ids.EdgeID]*Edge),
		childEdgeIDs: make(map[ids.NodeID][]ids.EdgeID),
		tags:         make(map[string]*TagRegistryEntry),
		logger:       outlog.Discard,
		docConfig:    config.DefaultConfig().Document,
	}
}

// SetLogger installs a logger used for transaction-commit and
// reconciliation diagnostics (ambient logging component A3).
func (d *Doc) SetLogger(l outlog.Logger) {
	if l == nil {
		l = outlog.Discard
	}
	d.logger = l
}

// SetDocumentConfig installs the document-level defaults that govern
// heading-level validation and remove_edge's orphan-cleanup default
// (ambient configuration component A2).
func (d *Doc) SetDocumentConfig(cfg config.DocumentConfig) {
	d.docConfig = cfg
}

// GetNode returns a defensive copy of the node record, if it exists.
func (d *Doc) GetNode(id ids.NodeID) (*Node, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.nodes[id]
	if !ok {
		return nil, false
	}
	return n.clone(), true
}

// GetEdge returns a defensive copy of the edge record, if it exists.
func (d *Doc) GetEdge(id ids.EdgeID) (*Edge, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.edges[id]
	if !ok {
		return nil, false
	}
	return e.clone(), true
}

// RootEdgeIDs returns a copy of the ordered root edge id list.
func (d *Doc) RootEdgeIDs() []ids.EdgeID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]ids.EdgeID(nil), d.rootEdgeIDs...)
}

// ChildEdgeIDs returns a copy of the ordered edge list for the given
// parent node.
func (d *Doc) ChildEdgeIDs(parent ids.NodeID) []ids.EdgeID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]ids.EdgeID(nil), d.childEdgeIDs[parent]...)
}

// AllNodeIDs returns every node id currently stored, in no particular
// order.
func (d *Doc) AllNodeIDs() []ids.NodeID {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]ids.NodeID, 0, len(d.nodes))
	for id := range d.nodes {
		out = append(out, id)
	}
	return out
}

// AllEdgeIDs returns every canonical edge id currently stored, in no
// particular order.
func (d *Doc) AllEdgeIDs() []ids.EdgeID {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]ids.EdgeID, 0, len(d.edges))
	for id := range d.edges {
		out = append(out, id)
	}
	return out
}

// edgeList returns the live (non-cloned) slice backing a parent's edge
// array, or the root list when parent is nil. Callers must hold d.mu.
func (d *Doc) edgeList(parent *ids.NodeID) []ids.EdgeID {
	if parent == nil {
		return d.rootEdgeIDs
	}
	return d.childEdgeIDs[*parent]
}

// setEdgeList installs a new edge list for a parent (or the root when
// parent is nil) and recomputes Position on every edge in it. Callers must
// hold d.mu.
func (d *Doc) setEdgeList(parent *ids.NodeID, list []ids.EdgeID) {
	if parent == nil {
		d.rootEdgeIDs = list
	} else if len(list) == 0 {
		delete(d.childEdgeIDs, *parent)
	} else {
		d.childEdgeIDs[*parent] = list
	}
	for i, eid := range list {
		if e, ok := d.edges[eid]; ok {
			e.Position = i
		}
	}
}
