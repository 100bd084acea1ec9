package outline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcoales/Thortiq-sub001/pkg/ids"
)

func TestCreateMirrorInsertedAtRoot(t *testing.T) {
	doc := NewDoc()
	a := addTestEdge(t, doc, AddEdgeOptions{Text: "A"})

	res, err := WithTransaction(doc, "local", func(tx *Tx) (*CreateMirrorResult, error) {
		return tx.CreateMirror(CreateMirrorOptions{MirrorNodeID: a.nodeID})
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, MirrorModeInserted, res.Mode)

	edge, ok := doc.GetEdge(res.EdgeID)
	require.True(t, ok)
	assert.True(t, edge.IsMirror())
	require.NotNil(t, edge.MirrorOfNodeID)
	assert.Equal(t, a.nodeID, *edge.MirrorOfNodeID)
}

func TestCreateMirrorConvertsInPlace(t *testing.T) {
	doc := NewDoc()
	a := addTestEdge(t, doc, AddEdgeOptions{Text: "A"})
	addTestEdge(t, doc, AddEdgeOptions{ParentNodeID: &a.nodeID, Text: "B"})
	empty := addTestEdge(t, doc, AddEdgeOptions{Text: ""})

	res, err := WithTransaction(doc, "local", func(tx *Tx) (*CreateMirrorResult, error) {
		return tx.CreateMirror(CreateMirrorOptions{MirrorNodeID: a.nodeID, TargetEdgeID: &empty.edgeID})
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, MirrorModeConverted, res.Mode)
	assert.Equal(t, empty.edgeID, res.EdgeID)

	edge, _ := doc.GetEdge(empty.edgeID)
	require.NotNil(t, edge.MirrorOfNodeID)
	assert.Equal(t, a.nodeID, *edge.MirrorOfNodeID)

	_, ok := doc.GetNode(empty.nodeID)
	assert.False(t, ok, "the orphaned placeholder node must be deleted on conversion")

	children := doc.ChildEdgeIDs(a.nodeID)
	assert.Len(t, children, 1, "A's real subtree must be untouched")
}

func TestCreateMirrorInsertsSiblingWhenTargetNotConvertible(t *testing.T) {
	doc := NewDoc()
	a := addTestEdge(t, doc, AddEdgeOptions{Text: "A"})
	nonEmpty := addTestEdge(t, doc, AddEdgeOptions{Text: "not empty"})

	res, err := WithTransaction(doc, "local", func(tx *Tx) (*CreateMirrorResult, error) {
		return tx.CreateMirror(CreateMirrorOptions{MirrorNodeID: a.nodeID, TargetEdgeID: &nonEmpty.edgeID})
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, MirrorModeInserted, res.Mode)
	assert.NotEqual(t, nonEmpty.edgeID, res.EdgeID)

	roots := doc.RootEdgeIDs()
	idx := indexOfEdge(roots, nonEmpty.edgeID)
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, res.EdgeID, roots[idx+1], "mirror must land immediately after the target")
}

func TestCreateMirrorReturnsNilForMissingNode(t *testing.T) {
	doc := NewDoc()
	ghost := ids.NewNodeID()

	res, err := WithTransaction(doc, "local", func(tx *Tx) (*CreateMirrorResult, error) {
		return tx.CreateMirror(CreateMirrorOptions{MirrorNodeID: ghost})
	})
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestCreateMirrorDoesNotConvertAlreadyMirrorEdge(t *testing.T) {
	doc := NewDoc()
	a := addTestEdge(t, doc, AddEdgeOptions{Text: "A"})
	b := addTestEdge(t, doc, AddEdgeOptions{Text: "B"})
	mirrorOfB := b.nodeID
	mirrorEdge := addTestEdge(t, doc, AddEdgeOptions{ChildNodeID: &mirrorOfB, MirrorOfNodeID: &mirrorOfB})

	res, err := WithTransaction(doc, "local", func(tx *Tx) (*CreateMirrorResult, error) {
		return tx.CreateMirror(CreateMirrorOptions{MirrorNodeID: a.nodeID, TargetEdgeID: &mirrorEdge.edgeID})
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, MirrorModeInserted, res.Mode, "an already-mirror edge can never convert in place")
}
