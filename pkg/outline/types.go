// Package outline implements the CRDT-backed node/edge store: the
// transaction kernel (C2), node store (C3), edge store (C4), mirror
// command (C5), structural reconciler (C6), and tag registry (C11) from
// spec.md §4. It is the direct, heavily-rewritten descendant of the
// teacher's pkg/storage (_examples/straga-Mimir_lite/nornicdb/pkg/storage):
// the same map-backed MemoryEngine shape, with apply-then-compensate
// transactions in place of buffered ones, generalized from a
// labeled-property graph to an outline's node/edge/mirror model.
package outline

import (
	"time"

	"github.com/dcoales/Thortiq-sub001/pkg/ids"
	"github.com/dcoales/Thortiq-sub001/pkg/inlinetext"
)

// Origin is an opaque marker classifying a transaction's commit as local,
// remote, an undo replay, or a migration rewrite (spec.md §4.2).
type Origin string

// Layout is a node's block layout.
type Layout string

const (
	LayoutStandard  Layout = "standard"
	LayoutParagraph Layout = "paragraph"
	LayoutNumbered  Layout = "numbered"
)

// TodoState is a node's optional checklist state.
type TodoState struct {
	Done    bool
	DueDate *string
}

func (t *TodoState) clone() *TodoState {
	if t == nil {
		return nil
	}
	out := *t
	if t.DueDate != nil {
		v := *t.DueDate
		out.DueDate = &v
	}
	return &out
}

// NodeMetadata is a node's structured metadata (spec.md §3).
type NodeMetadata struct {
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Tags            []string
	Todo            *TodoState
	Color           *string
	BackgroundColor *string
	HeadingLevel    *int
	Layout          Layout
}

func clonePtrString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func clonePtrInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}

func (m NodeMetadata) clone() NodeMetadata {
	out := m
	out.Tags = append([]string(nil), m.Tags...)
	out.Todo = m.Todo.clone()
	out.Color = clonePtrString(m.Color)
	out.BackgroundColor = clonePtrString(m.BackgroundColor)
	out.HeadingLevel = clonePtrInt(m.HeadingLevel)
	return out
}

// Node is a content container: an inline-formatted text fragment plus
// metadata (spec.md §3).
type Node struct {
	ID       ids.NodeID
	Text     *inlinetext.Fragment
	Metadata NodeMetadata
}

func (n *Node) clone() *Node {
	if n == nil {
		return nil
	}
	return &Node{ID: n.ID, Text: n.Text.Clone(), Metadata: n.Metadata.clone()}
}

// Edge is a placement of a node under a parent, or at the document root
// when ParentNodeID is nil (spec.md §3).
type Edge struct {
	ID             ids.EdgeID
	ParentNodeID   *ids.NodeID
	ChildNodeID    ids.NodeID
	Collapsed      bool
	MirrorOfNodeID *ids.NodeID
	Position       int
}

func (e *Edge) clone() *Edge {
	if e == nil {
		return nil
	}
	out := *e
	if e.ParentNodeID != nil {
		v := *e.ParentNodeID
		out.ParentNodeID = &v
	}
	if e.MirrorOfNodeID != nil {
		v := *e.MirrorOfNodeID
		out.MirrorOfNodeID = &v
	}
	return &out
}

// IsMirror reports whether the edge is a mirror placement of its child
// node (spec.md §4.5).
func (e *Edge) IsMirror() bool {
	return e.MirrorOfNodeID != nil
}

// TagRegistryEntry is one normalized tag catalog entry (spec.md §3, §4.11).
type TagRegistryEntry struct {
	ID         string
	Label      string
	Trigger    rune
	CreatedAt  time.Time
	LastUsedAt time.Time
}

func (t TagRegistryEntry) clone() TagRegistryEntry {
	return t
}
