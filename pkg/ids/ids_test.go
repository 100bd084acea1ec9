package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNodeIDAndEdgeIDAreUnique(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		n := NewNodeID()
		e := NewEdgeID()
		require.NotEmpty(t, n)
		require.NotEmpty(t, e)
		_, dup := seen[string(n)]
		require.False(t, dup, "duplicate node id minted")
		seen[string(n)] = struct{}{}
		_, dup = seen[string(e)]
		require.False(t, dup, "duplicate edge id minted")
		seen[string(e)] = struct{}{}
	}
}

func TestEdgeInstanceIDIsDeterministic(t *testing.T) {
	a := EdgeID("ancestor-1")
	c := EdgeID("child-1")

	got1 := EdgeInstanceID(a, c)
	got2 := EdgeInstanceID(a, c)
	assert.Equal(t, got1, got2)
}

func TestEdgeInstanceIDIsInjective(t *testing.T) {
	cases := []struct {
		ancestor, child EdgeID
	}{
		{"a", "b"},
		{"a", "c"},
		{"b", "a"},
		{"ab", "c"},
		{"a", "bc"},
	}
	seen := map[EdgeID]struct{}{}
	for _, c := range cases {
		id := EdgeInstanceID(c.ancestor, c.child)
		_, dup := seen[id]
		require.False(t, dup, "collision for ancestor=%q child=%q", c.ancestor, c.child)
		seen[id] = struct{}{}
	}
}

func TestEdgeInstanceIDNeverCollidesWithCanonicalID(t *testing.T) {
	for i := 0; i < 50; i++ {
		canonical := NewEdgeID()
		assert.False(t, IsInstance(canonical))
	}
	inst := EdgeInstanceID("x", "y")
	assert.True(t, IsInstance(inst))
}
