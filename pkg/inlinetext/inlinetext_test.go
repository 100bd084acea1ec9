package inlinetext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFragmentFromPlainTextRoundTrip(t *testing.T) {
	f := FragmentFromPlainText("first line\nsecond line")
	assert.Equal(t, "first line\nsecond line", f.PlainText())
}

func TestSetPlainTextTrimsTrailingNewlines(t *testing.T) {
	f := FragmentFromPlainText("hello\n\n")
	assert.Equal(t, "hello", f.PlainText())
}

func TestToggleMarkTwiceIsEquivalentUpToMerging(t *testing.T) {
	// P6: applying toggle_inline_mark twice to the same set leaves content
	// equivalent up to span merging.
	f := FragmentFromPlainText("hello world")
	before := f.Clone()

	f.AddMarkEverywhere("strong")
	f.RemoveMarkEverywhere("strong")

	assert.True(t, Equal(before, f))
}

func TestAddMarkEverywhereSkipsEmptySpans(t *testing.T) {
	f := NewFragment()
	f.AddMarkEverywhere("strong")
	assert.False(t, f.HasMarkEverywhere("strong"), "empty text should never be considered fully marked")
}

func TestHasMarkEverywhereRequiresAllNonEmptySpans(t *testing.T) {
	f := FragmentFromPlainText("hello")
	assert.False(t, f.HasMarkEverywhere("strong"))
	f.AddMarkEverywhere("strong")
	assert.True(t, f.HasMarkEverywhere("strong"))
}

func TestSetColorMarkClearsPriorInstances(t *testing.T) {
	f := FragmentFromPlainText("hello")
	red := "#ff0000"
	blue := "#0000ff"
	f.SetColorMarkEverywhere("textColor", &red)
	f.SetColorMarkEverywhere("textColor", &blue)

	paras := f.Paragraphs()
	require.Len(t, paras, 1)
	count := 0
	for _, m := range paras[0][0].Marks {
		if m.Type == "textColor" {
			count++
			assert.Equal(t, blue, m.Attrs["color"])
		}
	}
	assert.Equal(t, 1, count)
}

func TestSetColorMarkNilClearsColor(t *testing.T) {
	f := FragmentFromPlainText("hello")
	red := "#ff0000"
	f.SetColorMarkEverywhere("textColor", &red)
	f.SetColorMarkEverywhere("textColor", nil)
	assert.False(t, f.HasMarkEverywhere("textColor"))
}

func TestReplaceSegmentTextPreservesMarks(t *testing.T) {
	f := FragmentFromPlainText("a link")
	f.AddMarkEverywhere("wikilink")

	ok := f.ReplaceSegmentText(0, "new text")
	require.True(t, ok)
	assert.Equal(t, "new text", f.PlainText())
	assert.True(t, f.HasMarkEverywhere("wikilink"))
}

func TestReplaceSegmentTextOutOfRangeIsNoOp(t *testing.T) {
	f := FragmentFromPlainText("hello")
	ok := f.ReplaceSegmentText(5, "ignored")
	assert.False(t, ok)
	assert.Equal(t, "hello", f.PlainText())
}

func TestReplaceDateMarkUpdatesAttrsAndText(t *testing.T) {
	f := FragmentFromPlainText("tomorrow")
	for pi := range f.paragraphs {
		for si := range f.paragraphs[pi] {
			f.paragraphs[pi][si].Marks = append(f.paragraphs[pi][si].Marks, Mark{
				Type:  "date",
				Attrs: map[string]string{"date": "2026-07-31", "displayText": "tomorrow", "hasTime": "false"},
			})
		}
	}

	ok := f.ReplaceDateMark(0, DateMarkUpdate{Date: "2026-08-01", DisplayText: "next day", HasTime: true})
	require.True(t, ok)
	assert.Equal(t, "next day", f.PlainText())

	paras := f.Paragraphs()
	found := false
	for _, m := range paras[0][0].Marks {
		if m.Type == "date" {
			found = true
			assert.Equal(t, "2026-08-01", m.Attrs["date"])
			assert.Equal(t, "true", m.Attrs["hasTime"])
		}
	}
	assert.True(t, found)
}

func TestReplaceDateMarkNoOpWithoutDateMark(t *testing.T) {
	f := FragmentFromPlainText("plain text")
	ok := f.ReplaceDateMark(0, DateMarkUpdate{Date: "2026-08-01", DisplayText: "x", HasTime: false})
	assert.False(t, ok)
	assert.Equal(t, "plain text", f.PlainText())
}

func TestAttrKeyAddsHashSuffixOnlyOnCollision(t *testing.T) {
	m1 := Mark{Type: "textColor", Attrs: map[string]string{"color": "#ff0000"}}
	m2 := Mark{Type: "textColor", Attrs: map[string]string{"color": "#00ff00"}}
	single := []Mark{m1}
	assert.Equal(t, "textColor", AttrKey(m1, single))

	colliding := []Mark{m1, m2}
	k1 := AttrKey(m1, colliding)
	k2 := AttrKey(m2, colliding)
	assert.NotEqual(t, k1, k2)
	assert.Contains(t, k1, "textColor--")
	assert.Contains(t, k2, "textColor--")
}

func TestAttrKeyDeterministic(t *testing.T) {
	m1 := Mark{Type: "textColor", Attrs: map[string]string{"color": "#ff0000"}}
	m2 := Mark{Type: "textColor", Attrs: map[string]string{"color": "#00ff00"}}
	colliding := []Mark{m1, m2}
	assert.Equal(t, AttrKey(m1, colliding), AttrKey(m1, colliding))
}

func TestNormalizeMergesAdjacentIdenticalMarkSets(t *testing.T) {
	f := &Fragment{paragraphs: []Paragraph{{
		{Text: "foo", Marks: []Mark{{Type: "strong"}}},
		{Text: "bar", Marks: []Mark{{Type: "strong"}}},
	}}}
	paras := f.Paragraphs()
	require.Len(t, paras[0], 1)
	assert.Equal(t, "foobar", paras[0][0].Text)
}

func TestClearFormattingDropsMarks(t *testing.T) {
	f := FragmentFromPlainText("hello")
	f.AddMarkEverywhere("strong")
	f.ClearFormatting()
	assert.False(t, f.HasMarkEverywhere("strong"))
	assert.Equal(t, "hello", f.PlainText())
}
