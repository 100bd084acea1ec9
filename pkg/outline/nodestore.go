package outline

import (
	"strings"
	"time"

	"github.com/dcoales/Thortiq-sub001/pkg/ids"
	"github.com/dcoales/Thortiq-sub001/pkg/inlinetext"
)

// Optional distinguishes "field omitted" from "field present and null" from
// "field present with a value" in a metadata patch (spec.md §4.3
// update_metadata: "a present field with null/absent-meaning clears;
// omitted keeps existing"). The zero value means omitted.
type Optional[T any] struct {
	Present bool
	Value   *T
}

// Set returns a present Optional carrying v.
func Set[T any](v T) Optional[T] { return Optional[T]{Present: true, Value: &v} }

// Clear returns a present Optional carrying no value (null).
func Clear[T any]() Optional[T] { return Optional[T]{Present: true} }

// CreateNodeOptions configures CreateNode.
type CreateNodeOptions struct {
	// ID, if set, requests a specific node id; CreateNode fails with
	// ErrAlreadyExists if it is already taken.
	ID *ids.NodeID
	// Text seeds the node's plain-text content. Empty by default.
	Text string
}

// CreateNode creates a node record with an inline fragment (possibly
// empty) and fresh metadata (spec.md §4.3). It fails with ErrAlreadyExists
// when opts.ID names an id already in use.
func (tx *Tx) CreateNode(opts CreateNodeOptions) (ids.NodeID, error) {
	doc := tx.doc
	var id ids.NodeID
	if opts.ID != nil {
		id = *opts.ID
		if _, exists := doc.nodes[id]; exists {
			return "", ErrAlreadyExists
		}
	} else {
		id = ids.NewNodeID()
	}

	now := time.Now()
	node := &Node{
		ID:   id,
		Text: inlinetext.FragmentFromPlainText(opts.Text),
		Metadata: NodeMetadata{
			CreatedAt: now,
			UpdatedAt: now,
			Layout:    LayoutStandard,
		},
	}
	doc.nodes[id] = node
	tx.record(func() { delete(doc.nodes, id) })
	return id, nil
}

// requireNode fetches the live node record for id or returns
// ErrNodeMissing.
func (tx *Tx) requireNode(id ids.NodeID) (*Node, error) {
	n, ok := tx.doc.nodes[id]
	if !ok {
		return nil, ErrNodeMissing
	}
	return n, nil
}

// GetText concatenates a node's paragraph texts with "\n", trimming
// trailing newlines (spec.md §4.3). It is a pure read and does not need a
// transaction.
func (d *Doc) GetText(id ids.NodeID) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.nodes[id]
	if !ok {
		return "", ErrNodeMissing
	}
	return n.Text.PlainText(), nil
}

// SetText replaces a node's inline fragment with a single, unstyled
// representation of plainText and bumps UpdatedAt (spec.md §4.3).
func (tx *Tx) SetText(id ids.NodeID, plainText string) error {
	n, err := tx.requireNode(id)
	if err != nil {
		return err
	}
	prevText := n.Text.Clone()
	prevUpdated := n.Metadata.UpdatedAt
	n.Text.SetPlainText(plainText)
	n.Metadata.UpdatedAt = time.Now()
	tx.record(func() {
		n.Text = prevText
		n.Metadata.UpdatedAt = prevUpdated
	})
	return nil
}

// MetadataPatch is the merge-patch accepted by UpdateMetadata.
type MetadataPatch struct {
	Tags            Optional[[]string]
	Todo            Optional[TodoState]
	Color           Optional[string]
	BackgroundColor Optional[string]
	HeadingLevel    Optional[int]
	// Layout, when non-nil, is always assigned (it has no "clear" state —
	// spec.md §4.3: "layout is always set (default standard)").
	Layout *Layout
}

// validHeadingLevel reports whether level falls within the invariant bound
// (spec.md §3: "headingLevel, when present, is an integer in 1..5"), using
// doc's configured ceiling (pkg/config.DocumentConfig.MaxHeadingLevel) in
// place of the literal 5 so a deployment can raise it without an API change.
func (d *Doc) validHeadingLevel(level int) bool {
	return level >= 1 && level <= d.docConfig.MaxHeadingLevel
}

// UpdateMetadata merges patch into a node's metadata per the field-by-field
// rules in spec.md §4.3 and bumps UpdatedAt.
func (tx *Tx) UpdateMetadata(id ids.NodeID, patch MetadataPatch) error {
	if patch.HeadingLevel.Present && patch.HeadingLevel.Value != nil && !tx.doc.validHeadingLevel(*patch.HeadingLevel.Value) {
		return ErrInvalidArgument
	}
	n, err := tx.requireNode(id)
	if err != nil {
		return err
	}
	prev := n.Metadata.clone()

	if patch.Tags.Present {
		if patch.Tags.Value == nil {
			n.Metadata.Tags = nil
		} else {
			n.Metadata.Tags = append([]string(nil), *patch.Tags.Value...)
		}
	}
	if patch.Todo.Present {
		n.Metadata.Todo = patch.Todo.Value.clone()
	}
	if patch.Color.Present {
		n.Metadata.Color = patch.Color.Value
	}
	if patch.BackgroundColor.Present {
		n.Metadata.BackgroundColor = patch.BackgroundColor.Value
	}
	if patch.HeadingLevel.Present {
		n.Metadata.HeadingLevel = patch.HeadingLevel.Value
	}
	if patch.Layout != nil {
		n.Metadata.Layout = *patch.Layout
	}
	n.Metadata.UpdatedAt = time.Now()

	tx.record(func() { n.Metadata = prev })
	return nil
}

// TodoUpdate is one entry of a UpdateTodoDone batch.
type TodoUpdate struct {
	NodeID ids.NodeID
	Done   bool
}

// UpdateTodoDone applies a batch of todo-done flips in one transaction,
// bumping UpdatedAt once per affected node (spec.md §4.3).
func (tx *Tx) UpdateTodoDone(updates []TodoUpdate) error {
	for _, u := range updates {
		n, err := tx.requireNode(u.NodeID)
		if err != nil {
			return err
		}
		prevTodo := n.Metadata.Todo.clone()
		prevUpdated := n.Metadata.UpdatedAt
		if n.Metadata.Todo == nil {
			n.Metadata.Todo = &TodoState{}
		}
		n.Metadata.Todo.Done = u.Done
		n.Metadata.UpdatedAt = time.Now()
		tx.record(func() {
			n.Metadata.Todo = prevTodo
			n.Metadata.UpdatedAt = prevUpdated
		})
	}
	return nil
}

// ClearTodo removes the Todo submap entirely where present (spec.md §4.3).
func (tx *Tx) ClearTodo(nodeIDs []ids.NodeID) error {
	for _, id := range nodeIDs {
		n, err := tx.requireNode(id)
		if err != nil {
			return err
		}
		if n.Metadata.Todo == nil {
			continue
		}
		prevTodo := n.Metadata.Todo.clone()
		prevUpdated := n.Metadata.UpdatedAt
		n.Metadata.Todo = nil
		n.Metadata.UpdatedAt = time.Now()
		tx.record(func() {
			n.Metadata.Todo = prevTodo
			n.Metadata.UpdatedAt = prevUpdated
		})
	}
	return nil
}

// SetLayout sets Metadata.Layout on every node, skipping any node whose
// layout already equals the target value (spec.md §4.3 idempotence rule).
func (tx *Tx) SetLayout(nodeIDs []ids.NodeID, layout Layout) error {
	for _, id := range nodeIDs {
		n, err := tx.requireNode(id)
		if err != nil {
			return err
		}
		if n.Metadata.Layout == layout {
			continue
		}
		prevLayout := n.Metadata.Layout
		prevUpdated := n.Metadata.UpdatedAt
		n.Metadata.Layout = layout
		n.Metadata.UpdatedAt = time.Now()
		tx.record(func() {
			n.Metadata.Layout = prevLayout
			n.Metadata.UpdatedAt = prevUpdated
		})
	}
	return nil
}

// headingEqual reports whether two optional heading levels are equal.
func headingEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// SetHeading sets Metadata.HeadingLevel on every node (nil clears it),
// skipping any node whose heading level is already equal (spec.md §4.3
// idempotence rule). Returns ErrInvalidArgument if level is non-nil and
// outside the document's configured 1..MaxHeadingLevel bound.
func (tx *Tx) SetHeading(nodeIDs []ids.NodeID, level *int) error {
	if level != nil && !tx.doc.validHeadingLevel(*level) {
		return ErrInvalidArgument
	}
	for _, id := range nodeIDs {
		n, err := tx.requireNode(id)
		if err != nil {
			return err
		}
		if headingEqual(n.Metadata.HeadingLevel, level) {
			continue
		}
		prevLevel := n.Metadata.HeadingLevel
		prevUpdated := n.Metadata.UpdatedAt
		n.Metadata.HeadingLevel = clonePtrInt(level)
		n.Metadata.UpdatedAt = time.Now()
		tx.record(func() {
			n.Metadata.HeadingLevel = prevLevel
			n.Metadata.UpdatedAt = prevUpdated
		})
	}
	return nil
}

// ClearFormatting replaces each node's inline fragment with its own plain
// text, removes its heading level, and resets layout to standard (spec.md
// §4.3).
func (tx *Tx) ClearFormatting(nodeIDs []ids.NodeID) error {
	for _, id := range nodeIDs {
		n, err := tx.requireNode(id)
		if err != nil {
			return err
		}
		prevText := n.Text.Clone()
		prevLevel := n.Metadata.HeadingLevel
		prevLayout := n.Metadata.Layout
		prevUpdated := n.Metadata.UpdatedAt

		n.Text.ClearFormatting()
		n.Metadata.HeadingLevel = nil
		n.Metadata.Layout = LayoutStandard
		n.Metadata.UpdatedAt = time.Now()

		tx.record(func() {
			n.Text = prevText
			n.Metadata.HeadingLevel = prevLevel
			n.Metadata.Layout = prevLayout
			n.Metadata.UpdatedAt = prevUpdated
		})
	}
	return nil
}

// inlineMarks is the set of marks ToggleInlineMark accepts.
var inlineMarks = map[string]bool{
	"strong":        true,
	"em":            true,
	"underline":     true,
	"strikethrough": true,
}

// ToggleInlineMark applies the set-level toggle law from spec.md §4.3: if
// every node in nodeIDs already fully carries mark, it is removed from
// all; otherwise it is applied to every node that doesn't yet carry it.
// Nodes with empty text are skipped both for the membership check and for
// the write itself.
func (tx *Tx) ToggleInlineMark(nodeIDs []ids.NodeID, mark string) error {
	if !inlineMarks[mark] {
		return ErrInvalidArgument
	}
	nodes := make([]*Node, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		n, err := tx.requireNode(id)
		if err != nil {
			return err
		}
		nodes = append(nodes, n)
	}

	allFull := true
	anyEligible := false
	for _, n := range nodes {
		if n.Text.IsEmpty() {
			continue
		}
		anyEligible = true
		if !n.Text.HasMarkEverywhere(mark) {
			allFull = false
		}
	}
	if !anyEligible {
		return nil
	}

	for _, n := range nodes {
		if n.Text.IsEmpty() {
			continue
		}
		prevText := n.Text.Clone()
		prevUpdated := n.Metadata.UpdatedAt
		if allFull {
			n.Text.RemoveMarkEverywhere(mark)
		} else if !n.Text.HasMarkEverywhere(mark) {
			n.Text.AddMarkEverywhere(mark)
		} else {
			continue
		}
		n.Metadata.UpdatedAt = time.Now()
		tx.record(func() {
			n.Text = prevText
			n.Metadata.UpdatedAt = prevUpdated
		})
	}
	return nil
}

// colorMarks is the set of marks SetColorMark accepts.
var colorMarks = map[string]bool{
	"textColor":       true,
	"backgroundColor": true,
}

// hasUniformColor reports whether every non-empty span in the fragment
// carries at least one mark of markType and every such mark's color equals
// color, compared case-insensitively.
func hasUniformColor(f *inlinetext.Fragment, markType, color string) bool {
	found := false
	for _, p := range f.Paragraphs() {
		for _, s := range p {
			if s.Text == "" {
				continue
			}
			matched := false
			for _, m := range s.Marks {
				if m.Type != markType {
					continue
				}
				if !strings.EqualFold(m.Attrs["color"], color) {
					return false
				}
				matched = true
			}
			if !matched {
				return false
			}
			found = true
		}
	}
	return found
}

// SetColorMark applies a textColor/backgroundColor mark over a node's
// whole text, clearing any other instances of the same mark type first
// (spec.md §4.3). A nil color clears the mark instead. Skips nodes that
// already carry exactly the requested color everywhere (or, for a clear,
// already carry none).
func (tx *Tx) SetColorMark(nodeIDs []ids.NodeID, which string, color *string) error {
	if !colorMarks[which] {
		return ErrInvalidArgument
	}
	for _, id := range nodeIDs {
		n, err := tx.requireNode(id)
		if err != nil {
			return err
		}
		if color == nil {
			carries := false
			for _, p := range n.Text.Paragraphs() {
				for _, s := range p {
					for _, m := range s.Marks {
						carries = carries || m.Type == which
					}
				}
			}
			if !carries {
				continue
			}
		} else if hasUniformColor(n.Text, which, *color) {
			continue
		}

		prevText := n.Text.Clone()
		prevUpdated := n.Metadata.UpdatedAt
		n.Text.SetColorMarkEverywhere(which, color)
		n.Metadata.UpdatedAt = time.Now()
		tx.record(func() {
			n.Text = prevText
			n.Metadata.UpdatedAt = prevUpdated
		})
	}
	return nil
}

// UpdateWikilinkDisplayText replaces the text of a single inline segment
// while preserving its mark attributes (spec.md §4.3). An out-of-range
// segmentIndex degrades to a no-op, per spec.md §7.
func (tx *Tx) UpdateWikilinkDisplayText(id ids.NodeID, segmentIndex int, newText string) error {
	n, err := tx.requireNode(id)
	if err != nil {
		return err
	}
	prevText := n.Text.Clone()
	if !n.Text.ReplaceSegmentText(segmentIndex, newText) {
		return nil
	}
	prevUpdated := n.Metadata.UpdatedAt
	n.Metadata.UpdatedAt = time.Now()
	tx.record(func() {
		n.Text = prevText
		n.Metadata.UpdatedAt = prevUpdated
	})
	return nil
}

// UpdateDateMark replaces a segment's text and rewrites the attributes of
// every date mark it carries (spec.md §4.3). No-op if the segment is out
// of range or carries no date mark.
func (tx *Tx) UpdateDateMark(id ids.NodeID, segmentIndex int, update inlinetext.DateMarkUpdate) error {
	n, err := tx.requireNode(id)
	if err != nil {
		return err
	}
	prevText := n.Text.Clone()
	if !n.Text.ReplaceDateMark(segmentIndex, update) {
		return nil
	}
	prevUpdated := n.Metadata.UpdatedAt
	n.Metadata.UpdatedAt = time.Now()
	tx.record(func() {
		n.Text = prevText
		n.Metadata.UpdatedAt = prevUpdated
	})
	return nil
}
