package outline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertTagNormalizesID(t *testing.T) {
	doc := NewDoc()
	id, err := WithTransaction(doc, "local", func(tx *Tx) (string, error) {
		return tx.UpsertTag(UpsertTagOptions{Label: "  Launch   Week  ", Trigger: '#'})
	})
	require.NoError(t, err)
	assert.Equal(t, "launch week", id)

	entry, ok := doc.GetTag(id)
	require.True(t, ok)
	assert.Equal(t, "  Launch   Week  ", entry.Label)
}

func TestUpsertTagRejectsEmptyLabelAndBadTrigger(t *testing.T) {
	doc := NewDoc()
	_, err := WithTransaction(doc, "local", func(tx *Tx) (string, error) {
		return tx.UpsertTag(UpsertTagOptions{Label: "   ", Trigger: '#'})
	})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = WithTransaction(doc, "local", func(tx *Tx) (string, error) {
		return tx.UpsertTag(UpsertTagOptions{Label: "ok", Trigger: '!'})
	})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestUpsertTagPreservesCreatedAtOnIdempotentWrite(t *testing.T) {
	doc := NewDoc()
	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	second := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	id, err := WithTransaction(doc, "local", func(tx *Tx) (string, error) {
		return tx.UpsertTag(UpsertTagOptions{Label: "launch", Trigger: '#', CreatedAt: &first})
	})
	require.NoError(t, err)

	_, err = WithTransaction(doc, "local", func(tx *Tx) (string, error) {
		return tx.UpsertTag(UpsertTagOptions{Label: "launch", Trigger: '#', CreatedAt: &second})
	})
	require.NoError(t, err)

	entry, ok := doc.GetTag(id)
	require.True(t, ok)
	assert.True(t, entry.CreatedAt.Equal(first), "createdAt must be preserved across idempotent writes")
}

func TestUpsertTagClampsLastUsedAtToCreatedAt(t *testing.T) {
	doc := NewDoc()
	created := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	earlier := created.Add(-time.Hour)

	id, err := WithTransaction(doc, "local", func(tx *Tx) (string, error) {
		return tx.UpsertTag(UpsertTagOptions{Label: "launch", Trigger: '#', CreatedAt: &created, LastUsedAt: &earlier})
	})
	require.NoError(t, err)

	entry, _ := doc.GetTag(id)
	assert.True(t, entry.LastUsedAt.Equal(created))
}

func TestTouchTagBumpsVersionOnlyWhenChanged(t *testing.T) {
	doc := NewDoc()
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	id, err := WithTransaction(doc, "local", func(tx *Tx) (string, error) {
		return tx.UpsertTag(UpsertTagOptions{Label: "launch", Trigger: '#', CreatedAt: &created})
	})
	require.NoError(t, err)

	versionBefore := doc.tagVersion
	earlier := created.Add(-time.Hour)
	_, err = WithTransaction(doc, "local", func(tx *Tx) (struct{}, error) {
		return struct{}{}, tx.TouchTag(id, earlier)
	})
	require.NoError(t, err)
	assert.Equal(t, versionBefore, doc.tagVersion, "touching with an earlier timestamp must not bump version")

	later := created.Add(time.Hour)
	_, err = WithTransaction(doc, "local", func(tx *Tx) (struct{}, error) {
		return struct{}{}, tx.TouchTag(id, later)
	})
	require.NoError(t, err)
	assert.Greater(t, doc.tagVersion, versionBefore)

	entry, _ := doc.GetTag(id)
	assert.True(t, entry.LastUsedAt.Equal(later))
}

func TestRemoveTagRejectsReservedMetaKey(t *testing.T) {
	doc := NewDoc()
	removed, err := WithTransaction(doc, "local", func(tx *Tx) (bool, error) {
		return tx.RemoveTag("__meta__"), nil
	})
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRemoveTagReturnsFalseWhenMissing(t *testing.T) {
	doc := NewDoc()
	removed, err := WithTransaction(doc, "local", func(tx *Tx) (bool, error) {
		return tx.RemoveTag("nonexistent"), nil
	})
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestSelectTagsByCreatedAtOrderingAndMemoization(t *testing.T) {
	doc := NewDoc()
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := WithTransaction(doc, "local", func(tx *Tx) (string, error) {
		return tx.UpsertTag(UpsertTagOptions{Label: "alpha", Trigger: '#', CreatedAt: &older})
	})
	require.NoError(t, err)
	_, err = WithTransaction(doc, "local", func(tx *Tx) (string, error) {
		return tx.UpsertTag(UpsertTagOptions{Label: "beta", Trigger: '#', CreatedAt: &newer})
	})
	require.NoError(t, err)

	view := doc.SelectTagsByCreatedAt()
	require.Len(t, view, 2)
	assert.Equal(t, "beta", view[0].ID)
	assert.Equal(t, "alpha", view[1].ID)

	cachedVersion := doc.tagViewCacheVersion
	view2 := doc.SelectTagsByCreatedAt()
	assert.Equal(t, view, view2)
	assert.Equal(t, cachedVersion, doc.tagViewCacheVersion, "an unchanged registry must reuse the memoized view")
}
