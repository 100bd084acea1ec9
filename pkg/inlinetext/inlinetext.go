// Package inlinetext implements the opaque inline-formatted-text value that
// backs every node's body: an ordered sequence of paragraphs, each an
// ordered sequence of text runs ("spans"), each span carrying a set of
// marks (strong, em, underline, strikethrough, textColor, backgroundColor,
// wikilink, date).
//
// This is the Go-native stand-in for the CRDT XML fragment the original
// system stores text as (spec.md Design Notes §9): a value type with a
// deterministic flattening to plain text and to a serializable span list,
// rather than a live collaborative sequence CRDT. Character-by-character
// concurrent editing is the out-of-scope rich-text editor (spec.md §1); at
// this layer text is always replaced wholesale by a node-store operation,
// so a full RGA-style per-rune CRDT (see the reference go-crdt RGA) would
// be the wrong grain — this package adapts that pattern's tombstone-free,
// merge-by-replacement idea up to paragraph/span granularity instead.
package inlinetext

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
)

// Mark is a single formatting annotation on a span. Type is one of
// "strong", "em", "underline", "strikethrough", "textColor",
// "backgroundColor", "wikilink", "date"; Attrs carries mark-specific
// attributes (e.g. {"color": "#ff0000"} or {"nodeId": "..."}).
type Mark struct {
	Type  string
	Attrs map[string]string
}

// cloneAttrs returns a deep copy of an attribute map.
func cloneAttrs(a map[string]string) map[string]string {
	if a == nil {
		return nil
	}
	out := make(map[string]string, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

func (m Mark) clone() Mark {
	return Mark{Type: m.Type, Attrs: cloneAttrs(m.Attrs)}
}

// attrSignature returns a deterministic string encoding of a mark's
// attributes, used both for equality comparison and for the disambiguation
// hash below.
func attrSignature(m Mark) string {
	keys := make([]string, 0, len(m.Attrs))
	for k := range m.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(m.Type)
	for _, k := range keys {
		b.WriteByte(0)
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(m.Attrs[k])
	}
	return b.String()
}

// markEqual reports whether two marks have the same type and attributes.
func markEqual(a, b Mark) bool {
	return attrSignature(a) == attrSignature(b)
}

// AttrKey returns the attribute-bag key a mark should be serialized under
// within siblings (the full mark list of the span it belongs to). When two
// or more sibling marks share a Type, each colliding mark's key gets a
// hash-suffix of the form "markName--<base64 6-byte digest of
// {type,attrs}>" so they remain individually addressable; per spec.md §6
// this disambiguation must be byte-for-byte deterministic.
func AttrKey(m Mark, siblings []Mark) string {
	count := 0
	for _, s := range siblings {
		if s.Type == m.Type {
			count++
		}
	}
	if count <= 1 {
		return m.Type
	}
	sum := sha256.Sum256([]byte(attrSignature(m)))
	digest := base64.RawURLEncoding.EncodeToString(sum[:6])
	return fmt.Sprintf("%s--%s", m.Type, digest)
}

// Span is a contiguous run of text sharing the same mark set.
type Span struct {
	Text  string
	Marks []Mark
}

func (s Span) clone() Span {
	marks := make([]Mark, len(s.Marks))
	for i, m := range s.Marks {
		marks[i] = m.clone()
	}
	return Span{Text: s.Text, Marks: marks}
}

// markKeySet returns a sorted, comparable signature of a span's mark set,
// used to decide whether two adjacent spans can be merged.
func (s Span) markKeySet() string {
	sigs := make([]string, len(s.Marks))
	for i, m := range s.Marks {
		sigs[i] = attrSignature(m)
	}
	sort.Strings(sigs)
	return strings.Join(sigs, "\x1f")
}

func (s Span) hasMark(markType string) bool {
	for _, m := range s.Marks {
		if m.Type == markType {
			return true
		}
	}
	return false
}

// withoutMarkType returns a copy of marks with every mark of the given type
// removed.
func withoutMarkType(marks []Mark, markType string) []Mark {
	out := make([]Mark, 0, len(marks))
	for _, m := range marks {
		if m.Type != markType {
			out = append(out, m)
		}
	}
	return out
}

// Paragraph is an ordered list of spans.
type Paragraph []Span

func (p Paragraph) clone() Paragraph {
	out := make(Paragraph, len(p))
	for i, s := range p {
		out[i] = s.clone()
	}
	return out
}

func (p Paragraph) plainText() string {
	var b strings.Builder
	for _, s := range p {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Fragment is the opaque inline-formatted-text value owned by a node.
type Fragment struct {
	paragraphs []Paragraph
}

// NewFragment returns an empty fragment: a single paragraph with a single
// empty, unstyled span. Every node always has a (possibly empty) fragment
// (spec.md §3 invariant).
func NewFragment() *Fragment {
	return &Fragment{paragraphs: []Paragraph{{{Text: ""}}}}
}

// FragmentFromPlainText builds a fragment from unstyled text, splitting on
// "\n" into paragraphs (spec.md §4.3: get_text/set_text treat "\n" as the
// paragraph boundary).
func FragmentFromPlainText(text string) *Fragment {
	lines := strings.Split(text, "\n")
	paragraphs := make([]Paragraph, len(lines))
	for i, line := range lines {
		paragraphs[i] = Paragraph{{Text: line}}
	}
	f := &Fragment{paragraphs: paragraphs}
	f.normalize()
	return f
}

// Clone returns a deep, independently-mutable copy.
func (f *Fragment) Clone() *Fragment {
	if f == nil {
		return NewFragment()
	}
	out := make([]Paragraph, len(f.paragraphs))
	for i, p := range f.paragraphs {
		out[i] = p.clone()
	}
	return &Fragment{paragraphs: out}
}

// Paragraphs returns the fragment's paragraphs after normalization (merged
// adjacent same-mark-set spans, trailing empty unstyled span trimmed).
// Callers must not mutate the returned slices; use Clone first.
func (f *Fragment) Paragraphs() []Paragraph {
	f.normalize()
	return f.paragraphs
}

// PlainText concatenates paragraph texts with "\n", trimming trailing
// newlines, per spec.md §4.3 get_text.
func (f *Fragment) PlainText() string {
	parts := make([]string, len(f.paragraphs))
	for i, p := range f.paragraphs {
		parts[i] = p.plainText()
	}
	joined := strings.Join(parts, "\n")
	return strings.TrimRight(joined, "\n")
}

// IsEmpty reports whether the fragment's plain text, trimmed of whitespace,
// is empty. Used by the node store's ToggleInlineMark to skip nodes whose
// text is blank.
func (f *Fragment) IsEmpty() bool {
	return strings.TrimSpace(f.PlainText()) == ""
}

// normalize merges adjacent spans with identical mark-key sets within each
// paragraph and trims a trailing empty, unstyled span, per spec.md §4.3.
func (f *Fragment) normalize() {
	for pi, p := range f.paragraphs {
		merged := make(Paragraph, 0, len(p))
		for _, s := range p {
			if len(merged) > 0 && merged[len(merged)-1].markKeySet() == s.markKeySet() {
				merged[len(merged)-1].Text += s.Text
				continue
			}
			merged = append(merged, s)
		}
		if n := len(merged); n > 1 {
			last := merged[n-1]
			if last.Text == "" && len(last.Marks) == 0 {
				merged = merged[:n-1]
			}
		}
		if len(merged) == 0 {
			merged = Paragraph{{Text: ""}}
		}
		f.paragraphs[pi] = merged
	}
}

// SetPlainText replaces the whole fragment with a single, unstyled
// representation of text (spec.md §4.3 set_text).
func (f *Fragment) SetPlainText(text string) {
	*f = *FragmentFromPlainText(text)
}

// HasMarkEverywhere reports whether every non-empty span across the
// fragment carries a mark of the given type. Empty spans are ignored, per
// spec.md §4.3's "nodes with empty text are skipped" toggle rule.
func (f *Fragment) HasMarkEverywhere(markType string) bool {
	any := false
	for _, p := range f.Paragraphs() {
		for _, s := range p {
			if s.Text == "" {
				continue
			}
			any = true
			if !s.hasMark(markType) {
				return false
			}
		}
	}
	return any
}

// AddMarkEverywhere applies markType to every non-empty span that does not
// already carry it.
func (f *Fragment) AddMarkEverywhere(markType string) {
	for pi, p := range f.paragraphs {
		for si, s := range p {
			if s.Text == "" || s.hasMark(markType) {
				continue
			}
			f.paragraphs[pi][si].Marks = append(s.Marks, Mark{Type: markType})
		}
	}
	f.normalize()
}

// RemoveMarkEverywhere strips markType from every span.
func (f *Fragment) RemoveMarkEverywhere(markType string) {
	for pi, p := range f.paragraphs {
		for si, s := range p {
			f.paragraphs[pi][si].Marks = withoutMarkType(s.Marks, markType)
		}
	}
	f.normalize()
}

// SetColorMarkEverywhere clears every existing mark of the given colour
// mark type ("textColor" or "backgroundColor") and, if color is non-nil,
// applies a fresh one with that color across every non-empty span. Colour
// comparisons elsewhere are case-insensitive on the hex value; this method
// stores the value as given (spec.md §4.3 set_color_mark).
func (f *Fragment) SetColorMarkEverywhere(markType string, color *string) {
	f.RemoveMarkEverywhere(markType)
	if color == nil {
		return
	}
	for pi, p := range f.paragraphs {
		for si, s := range p {
			if s.Text == "" {
				continue
			}
			f.paragraphs[pi][si].Marks = append(s.Marks, Mark{Type: markType, Attrs: map[string]string{"color": *color}})
		}
	}
	f.normalize()
}

// ClearFormatting replaces the fragment's content with its own plain text,
// dropping every mark (spec.md §4.3 clear_formatting, the inline-content
// half of it).
func (f *Fragment) ClearFormatting() {
	f.SetPlainText(f.PlainText())
}

// segmentRef locates a single span by its flat, paragraph-flattened
// position, the "segmentIndex" the spec's wikilink/date update operations
// address spans by.
type segmentRef struct {
	paragraph int
	span      int
}

// segments returns the flat, in-order list of span locations across all
// paragraphs.
func (f *Fragment) segments() []segmentRef {
	var out []segmentRef
	for pi, p := range f.paragraphs {
		for si := range p {
			out = append(out, segmentRef{paragraph: pi, span: si})
		}
	}
	return out
}

// ReplaceSegmentText replaces the text of the span at the given flat
// segment index while preserving its mark attributes (spec.md §4.3
// update_wikilink_display_text). Returns false (a no-op) if segmentIndex is
// out of range, matching the spec's degrade-to-no-op rule for invalid
// segment indices.
func (f *Fragment) ReplaceSegmentText(segmentIndex int, newText string) bool {
	refs := f.segments()
	if segmentIndex < 0 || segmentIndex >= len(refs) {
		return false
	}
	ref := refs[segmentIndex]
	f.paragraphs[ref.paragraph][ref.span].Text = newText
	f.normalize()
	return true
}

// DateMarkUpdate carries the replacement values for update_date_mark.
type DateMarkUpdate struct {
	Date        string
	DisplayText string
	HasTime     bool
}

// ReplaceDateMark replaces the text of the segment at segmentIndex with
// update.DisplayText and rewrites the attributes of every "date"-typed mark
// on that segment. No-op (returns false) if the segment is out of range or
// carries no date mark (spec.md §4.3 update_date_mark).
func (f *Fragment) ReplaceDateMark(segmentIndex int, update DateMarkUpdate) bool {
	refs := f.segments()
	if segmentIndex < 0 || segmentIndex >= len(refs) {
		return false
	}
	ref := refs[segmentIndex]
	span := f.paragraphs[ref.paragraph][ref.span]
	if !span.hasMark("date") {
		return false
	}
	newMarks := make([]Mark, len(span.Marks))
	for i, m := range span.Marks {
		if m.Type != "date" {
			newMarks[i] = m
			continue
		}
		newMarks[i] = Mark{
			Type: "date",
			Attrs: map[string]string{
				"date":        update.Date,
				"displayText": update.DisplayText,
				"hasTime":     boolString(update.HasTime),
			},
		}
	}
	f.paragraphs[ref.paragraph][ref.span] = Span{Text: update.DisplayText, Marks: newMarks}
	f.normalize()
	return true
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// Equal reports whether two fragments have identical normalized content.
func Equal(a, b *Fragment) bool {
	pa, pb := a.Paragraphs(), b.Paragraphs()
	if len(pa) != len(pb) {
		return false
	}
	for i := range pa {
		if len(pa[i]) != len(pb[i]) {
			return false
		}
		for j := range pa[i] {
			sa, sb := pa[i][j], pb[i][j]
			if sa.Text != sb.Text || len(sa.Marks) != len(sb.Marks) {
				return false
			}
			for k := range sa.Marks {
				if !markEqual(sa.Marks[k], sb.Marks[k]) {
					return false
				}
			}
		}
	}
	return true
}
