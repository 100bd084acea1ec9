package outline

import (
	"sort"
	"strings"
	"time"
)

// metaTagID is reserved for the registry's own version bookkeeping
// (spec.md §6 persisted-state layout: "registry version lives in
// __meta__.version") and can never be upserted or removed as an ordinary
// tag.
const metaTagID = "__meta__"

func normalizeTagID(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}

func validTrigger(r rune) bool {
	return r == '#' || r == '@'
}

// UpsertTagOptions configures UpsertTag.
type UpsertTagOptions struct {
	Label      string
	Trigger    rune
	CreatedAt  *time.Time
	LastUsedAt *time.Time
}

// UpsertTag inserts or refreshes a tag catalog entry, normalizing its id
// from Label (spec.md §4.11). createdAt is preserved across idempotent
// writes to the same id; lastUsedAt never precedes the effective
// createdAt.
func (tx *Tx) UpsertTag(opts UpsertTagOptions) (string, error) {
	id := normalizeTagID(opts.Label)
	if id == "" || id == metaTagID {
		return "", ErrInvalidArgument
	}
	if !validTrigger(opts.Trigger) {
		return "", ErrInvalidArgument
	}

	doc := tx.doc
	now := time.Now()
	createdAt := now
	if opts.CreatedAt != nil {
		createdAt = *opts.CreatedAt
	}
	lastUsedAt := createdAt
	if opts.LastUsedAt != nil {
		lastUsedAt = *opts.LastUsedAt
	}

	existing, exists := doc.tags[id]
	var savedExisting *TagRegistryEntry
	if exists {
		saved := *existing
		savedExisting = &saved
		createdAt = existing.CreatedAt
	}
	if lastUsedAt.Before(createdAt) {
		lastUsedAt = createdAt
	}

	prevVersion := doc.tagVersion
	doc.tags[id] = &TagRegistryEntry{
		ID:         id,
		Label:      opts.Label,
		Trigger:    opts.Trigger,
		CreatedAt:  createdAt,
		LastUsedAt: lastUsedAt,
	}
	doc.tagVersion++

	tx.record(func() {
		if savedExisting != nil {
			doc.tags[id] = savedExisting
		} else {
			delete(doc.tags, id)
		}
		doc.tagVersion = prevVersion
	})

	return id, nil
}

// TouchTag refreshes an entry's lastUsedAt to max(lastUsedAt, timestamp).
// A missing entry is a no-op; the version only bumps when lastUsedAt
// actually changes (spec.md §4.11).
func (tx *Tx) TouchTag(id string, timestamp time.Time) error {
	doc := tx.doc
	e, ok := doc.tags[id]
	if !ok {
		return nil
	}
	if !timestamp.After(e.LastUsedAt) {
		return nil
	}
	prev := e.LastUsedAt
	prevVersion := doc.tagVersion
	e.LastUsedAt = timestamp
	doc.tagVersion++
	tx.record(func() {
		e.LastUsedAt = prev
		doc.tagVersion = prevVersion
	})
	return nil
}

// RemoveTag deletes an entry and reports whether it existed. The reserved
// __meta__ key can never be removed (spec.md §4.11).
func (tx *Tx) RemoveTag(id string) bool {
	if id == metaTagID {
		return false
	}
	doc := tx.doc
	e, ok := doc.tags[id]
	if !ok {
		return false
	}
	prevVersion := doc.tagVersion
	delete(doc.tags, id)
	doc.tagVersion++
	tx.record(func() {
		doc.tags[id] = e
		doc.tagVersion = prevVersion
	})
	return true
}

// GetTag returns a defensive copy of a tag entry, if it exists.
func (d *Doc) GetTag(id string) (*TagRegistryEntry, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.tags[id]
	if !ok {
		return nil, false
	}
	c := *e
	return &c, true
}

// SelectTagsByCreatedAt returns every tag entry ordered by createdAt DESC,
// id ASC as a tiebreaker, memoized by registry version (spec.md §4.11).
func (d *Doc) SelectTagsByCreatedAt() []TagRegistryEntry {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.tagViewCache != nil && d.tagViewCacheVersion == d.tagVersion {
		return append([]TagRegistryEntry(nil), d.tagViewCache...)
	}

	out := make([]TagRegistryEntry, 0, len(d.tags))
	for _, e := range d.tags {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	d.tagViewCache = out
	d.tagViewCacheVersion = d.tagVersion
	return append([]TagRegistryEntry(nil), out...)
}
