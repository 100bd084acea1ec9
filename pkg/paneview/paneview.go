// Package paneview builds the ordered, per-pane visible-row list from a
// snapshot plus pane state: focus scoping, collapse, search filtering, and
// a free-text quick filter (spec.md §4.8, C8).
package paneview

import (
	"strings"

	"github.com/dcoales/Thortiq-sub001/pkg/ids"
	"github.com/dcoales/Thortiq-sub001/pkg/outline"
	"github.com/dcoales/Thortiq-sub001/pkg/snapshot"
)

// SearchState is the subset of a pane's applied search result the row
// builder consumes (spec.md §4.8 step 4, §4.9).
type SearchState struct {
	MatchedEdgeIDs map[ids.EdgeID]bool
	VisibleEdgeIDs map[ids.EdgeID]bool
	PartialEdgeIDs map[ids.EdgeID]bool
	StickyEdgeIDs  map[ids.EdgeID]bool
}

func (s *SearchState) applied() bool {
	return s != nil && (len(s.MatchedEdgeIDs) > 0 || len(s.VisibleEdgeIDs) > 0 || len(s.StickyEdgeIDs) > 0)
}

// PaneState is the read-only pane input to BuildPaneRows (spec.md §4.8,
// §6 — the core never mutates it directly).
type PaneState struct {
	// RootEdgeID, if set, scopes the traversal to that edge's projected
	// children instead of the document root.
	RootEdgeID *ids.EdgeID
	// CollapsedEdgeIDs is pane-local collapse state, unioned with each
	// edge's own Collapsed flag.
	CollapsedEdgeIDs map[ids.EdgeID]bool
	// FocusPathEdgeIDs, root to RootEdgeID inclusive, drives the
	// breadcrumb segments and the absolute tree-depth baseline.
	FocusPathEdgeIDs []ids.EdgeID
	QuickFilter      string
	Search           *SearchState
}

// Row is one visible bullet (spec.md §4.8).
type Row struct {
	EdgeID          ids.EdgeID
	CanonicalEdgeID ids.EdgeID
	NodeID          ids.NodeID
	// Depth is relative to the pane's focus root.
	Depth int
	// TreeDepth is relative to the document's absolute root.
	TreeDepth       int
	Collapsed       bool
	HasChildren     bool
	ParentNodeID    *ids.NodeID
	AncestorEdgeIDs []ids.EdgeID
	AncestorNodeIDs []ids.NodeID
	Text            string
	Metadata        outline.NodeMetadata
	// Partial marks a row kept only because one of its descendants
	// matched an applied search (spec.md §4.8 step 4).
	Partial bool
}

// BreadcrumbSegment is one crumb in the focus path.
type BreadcrumbSegment struct {
	EdgeID ids.EdgeID
	NodeID ids.NodeID
}

// Focus describes the breadcrumb path from the document root to the
// pane's focus root.
type Focus struct {
	Segments []BreadcrumbSegment
}

// Result is BuildPaneRows' return value.
type Result struct {
	Rows          []Row
	Focus         *Focus
	AppliedFilter string
	// EdgeIndexMap maps every row's edge id to its position in Rows
	// (spec.md §4.8 invariants: "edgeIndexMap[edge.edgeId] = row index").
	EdgeIndexMap map[ids.EdgeID]int
}

// BuildPaneRows produces the ordered visible-row list for one pane
// (spec.md §4.8, C8).
func BuildPaneRows(snap *snapshot.Snapshot, pane PaneState) *Result {
	baseDepth := 0
	var startEdges []ids.EdgeID
	if pane.RootEdgeID != nil {
		baseDepth = len(pane.FocusPathEdgeIDs)
		startEdges = snap.ChildEdgeIdsByParentEdge[*pane.RootEdgeID]
	} else {
		startEdges = snap.RootEdgeIDs
	}

	quickFilter := strings.ToLower(strings.TrimSpace(pane.QuickFilter))
	quickMemo := map[ids.EdgeID]bool{}
	var quickFilterMatches func(edgeID ids.EdgeID) bool
	quickFilterMatches = func(edgeID ids.EdgeID) bool {
		if v, ok := quickMemo[edgeID]; ok {
			return v
		}
		quickMemo[edgeID] = false // break cycles defensively; the tree is acyclic by I4
		e := snap.Edges[edgeID]
		selfMatch := false
		if e != nil {
			if n := snap.Nodes[e.ChildNodeID]; n != nil && n.Text != nil {
				selfMatch = strings.Contains(strings.ToLower(n.Text.PlainText()), quickFilter)
			}
		}
		result := selfMatch
		if e != nil {
			for _, c := range snap.ChildEdgeIdsByParentEdge[edgeID] {
				if quickFilterMatches(c) {
					result = true
				}
			}
		}
		quickMemo[edgeID] = result
		return result
	}

	rows := make([]Row, 0)

	var walk func(edgeID ids.EdgeID, depth int, ancestorEdgeIDs []ids.EdgeID, ancestorNodeIDs []ids.NodeID)
	walk = func(edgeID ids.EdgeID, depth int, ancestorEdgeIDs []ids.EdgeID, ancestorNodeIDs []ids.NodeID) {
		e := snap.Edges[edgeID]
		if e == nil {
			return
		}

		if quickFilter != "" && !quickFilterMatches(edgeID) {
			return
		}

		keep, partial := searchFilterDecision(pane.Search, edgeID)
		collapsedFlag := pane.CollapsedEdgeIDs[edgeID] || e.Collapsed
		projectedChildren := snap.ChildEdgeIdsByParentEdge[edgeID]

		if keep {
			row := Row{
				EdgeID:          edgeID,
				CanonicalEdgeID: e.CanonicalEdgeID,
				NodeID:          e.ChildNodeID,
				Depth:           depth,
				TreeDepth:       baseDepth + depth,
				Collapsed:       collapsedFlag,
				HasChildren:     len(projectedChildren) > 0,
				ParentNodeID:    e.ParentNodeID,
				AncestorEdgeIDs: append([]ids.EdgeID(nil), ancestorEdgeIDs...),
				AncestorNodeIDs: append([]ids.NodeID(nil), ancestorNodeIDs...),
				Partial:         partial,
			}
			if n := snap.Nodes[e.ChildNodeID]; n != nil {
				if n.Text != nil {
					row.Text = n.Text.PlainText()
				}
				row.Metadata = n.Metadata
			}
			rows = append(rows, row)
		}

		if collapsedFlag {
			return
		}

		childAncestorEdgeIDs := append(append([]ids.EdgeID(nil), ancestorEdgeIDs...), edgeID)
		childAncestorNodeIDs := append(append([]ids.NodeID(nil), ancestorNodeIDs...), e.ChildNodeID)
		for _, c := range projectedChildren {
			walk(c, depth+1, childAncestorEdgeIDs, childAncestorNodeIDs)
		}
	}

	for _, e := range startEdges {
		walk(e, 0, nil, nil)
	}

	var focus *Focus
	if len(pane.FocusPathEdgeIDs) > 0 {
		segs := make([]BreadcrumbSegment, 0, len(pane.FocusPathEdgeIDs))
		for _, eid := range pane.FocusPathEdgeIDs {
			e := snap.Edges[eid]
			if e == nil {
				continue
			}
			segs = append(segs, BreadcrumbSegment{EdgeID: eid, NodeID: e.ChildNodeID})
		}
		focus = &Focus{Segments: segs}
	}

	index := make(map[ids.EdgeID]int, len(rows))
	for i, r := range rows {
		index[r.EdgeID] = i
	}

	return &Result{Rows: rows, Focus: focus, AppliedFilter: pane.QuickFilter, EdgeIndexMap: index}
}

// searchFilterDecision implements spec.md §4.8 step 4: a row is kept iff
// its edge id is in visible ∪ matched ∪ sticky; it is marked partial iff
// in partiallyVisibleEdgeIds. An unapplied search (nil, or all sets empty)
// keeps everything.
func searchFilterDecision(s *SearchState, edgeID ids.EdgeID) (keep bool, partial bool) {
	if !s.applied() {
		return true, false
	}
	keep = s.VisibleEdgeIDs[edgeID] || s.MatchedEdgeIDs[edgeID] || s.StickyEdgeIDs[edgeID]
	partial = s.PartialEdgeIDs[edgeID]
	return keep, partial
}
