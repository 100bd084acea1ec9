package outline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcoales/Thortiq-sub001/pkg/ids"
)

// These mirror the literal end-to-end scenarios listed in spec.md §8.

func TestScenarioCyclePrevention(t *testing.T) {
	doc := NewDoc()
	a := addTestEdge(t, doc, AddEdgeOptions{Text: "A"})
	b := addTestEdge(t, doc, AddEdgeOptions{ParentNodeID: &a.nodeID, Text: "B"})

	edgesBefore := doc.AllEdgeIDs()
	nodesBefore := doc.AllNodeIDs()

	_, err := WithTransaction(doc, "local", func(tx *Tx) (struct{}, error) {
		_, _, err := tx.AddEdge(AddEdgeOptions{ParentNodeID: &b.nodeID, ChildNodeID: &a.nodeID})
		return struct{}{}, err
	})
	require.ErrorIs(t, err, ErrWouldCycle)

	assert.ElementsMatch(t, edgesBefore, doc.AllEdgeIDs())
	assert.ElementsMatch(t, nodesBefore, doc.AllNodeIDs())
}

func TestScenarioMirrorConvertInPlace(t *testing.T) {
	doc := NewDoc()
	a := addTestEdge(t, doc, AddEdgeOptions{Text: "A"})
	addTestEdge(t, doc, AddEdgeOptions{ParentNodeID: &a.nodeID, Text: "B"})
	e := addTestEdge(t, doc, AddEdgeOptions{Text: ""})

	res, err := WithTransaction(doc, "local", func(tx *Tx) (*CreateMirrorResult, error) {
		return tx.CreateMirror(CreateMirrorOptions{MirrorNodeID: a.nodeID, TargetEdgeID: &e.edgeID})
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, MirrorModeConverted, res.Mode)
	assert.Equal(t, e.edgeID, res.EdgeID)

	edge, _ := doc.GetEdge(e.edgeID)
	require.NotNil(t, edge.MirrorOfNodeID)
	assert.Equal(t, a.nodeID, *edge.MirrorOfNodeID)

	_, ok := doc.GetNode(e.nodeID)
	assert.False(t, ok, "the edge's previous orphan node must be deleted")
}

func TestScenarioReconciliationDuplicateRootEdge(t *testing.T) {
	doc := NewDoc()
	x := addTestEdge(t, doc, AddEdgeOptions{Text: "x"})

	doc.mu.Lock()
	doc.rootEdgeIDs = append(doc.rootEdgeIDs, x.edgeID)
	doc.mu.Unlock()

	count, err := ReconcileOutlineStructure(doc, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	roots := doc.RootEdgeIDs()
	occurrences := 0
	for _, id := range roots {
		if id == x.edgeID {
			occurrences++
		}
	}
	assert.Equal(t, 1, occurrences)

	edge, _ := doc.GetEdge(x.edgeID)
	assert.Equal(t, edge.Position, indexOfEdge(roots, x.edgeID))
}

func TestScenarioToggleInlineMarkRoundTrip(t *testing.T) {
	doc := NewDoc()
	a := createTestNode(t, doc, "hello world")

	apply := func() {
		_, err := WithTransaction(doc, "local", func(tx *Tx) (struct{}, error) {
			return struct{}{}, tx.ToggleInlineMark([]ids.NodeID{a}, "strong")
		})
		require.NoError(t, err)
	}

	before, _ := doc.GetNode(a)
	apply()
	apply()
	after, _ := doc.GetNode(a)

	assert.Equal(t, before.Text.PlainText(), after.Text.PlainText())
	assert.False(t, after.Text.HasMarkEverywhere("strong"))
}
