package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcoales/Thortiq-sub001/pkg/ids"
	"github.com/dcoales/Thortiq-sub001/pkg/outline"
)

func addEdge(t *testing.T, doc *outline.Doc, opts outline.AddEdgeOptions) (ids.EdgeID, ids.NodeID) {
	t.Helper()
	type result struct {
		edge ids.EdgeID
		node ids.NodeID
	}
	r, err := outline.WithTransaction(doc, "local", func(tx *outline.Tx) (result, error) {
		e, n, err := tx.AddEdge(opts)
		return result{edge: e, node: n}, err
	})
	require.NoError(t, err)
	return r.edge, r.node
}

func TestSnapshotPlainTreeMatchesStorageOrder(t *testing.T) {
	doc := outline.NewDoc()
	rootEdge, rootNode := addEdge(t, doc, outline.AddEdgeOptions{Text: "root"})
	childEdge, _ := addEdge(t, doc, outline.AddEdgeOptions{ParentNodeID: &rootNode, Text: "child"})

	snap := CreateOutlineSnapshot(doc)

	assert.Equal(t, []ids.EdgeID{rootEdge}, snap.RootEdgeIDs)
	assert.Equal(t, []ids.EdgeID{childEdge}, snap.ChildrenByParent[rootNode])
	assert.Equal(t, []ids.EdgeID{childEdge}, snap.ChildEdgeIdsByParentEdge[rootEdge])
	assert.Equal(t, rootEdge, snap.CanonicalEdgeIdsByEdgeId[rootEdge])
	assert.Equal(t, childEdge, snap.CanonicalEdgeIdsByEdgeId[childEdge])
}

func TestSnapshotMirrorProjectsSyntheticInstanceIDs(t *testing.T) {
	doc := outline.NewDoc()
	_, a := addEdge(t, doc, outline.AddEdgeOptions{Text: "A"})
	_, b := addEdge(t, doc, outline.AddEdgeOptions{ParentNodeID: &a, Text: "B"})

	mirrorEdge, err := outline.WithTransaction(doc, "local", func(tx *outline.Tx) (ids.EdgeID, error) {
		res, err := tx.CreateMirror(outline.CreateMirrorOptions{MirrorNodeID: a})
		if err != nil || res == nil {
			return "", err
		}
		return res.EdgeID, nil
	})
	require.NoError(t, err)

	snap := CreateOutlineSnapshot(doc)

	instChildren := snap.ChildEdgeIdsByParentEdge[mirrorEdge]
	require.Len(t, instChildren, 1)
	inst := instChildren[0]
	assert.NotEqual(t, inst, snap.CanonicalEdgeIdsByEdgeId[inst])

	canonicalChildEdge, ok := doc.GetParentEdgeID(b)
	require.True(t, ok)
	assert.Equal(t, canonicalChildEdge, snap.CanonicalEdgeIdsByEdgeId[inst])

	instRecord := snap.Edges[inst]
	require.NotNil(t, instRecord)
	assert.Equal(t, b, instRecord.ChildNodeID)
}

func TestSnapshotIsDeterministicAcrossBuilds(t *testing.T) {
	doc := outline.NewDoc()
	_, a := addEdge(t, doc, outline.AddEdgeOptions{Text: "A"})
	addEdge(t, doc, outline.AddEdgeOptions{ParentNodeID: &a, Text: "B"})
	_, err := outline.WithTransaction(doc, "local", func(tx *outline.Tx) (struct{}, error) {
		_, err := tx.CreateMirror(outline.CreateMirrorOptions{MirrorNodeID: a})
		return struct{}{}, err
	})
	require.NoError(t, err)

	first := CreateOutlineSnapshot(doc)
	second := CreateOutlineSnapshot(doc)

	assert.Equal(t, first.RootEdgeIDs, second.RootEdgeIDs)
	assert.Equal(t, first.ChildEdgeIdsByParentEdge, second.ChildEdgeIdsByParentEdge)
	assert.Equal(t, first.CanonicalEdgeIdsByEdgeId, second.CanonicalEdgeIdsByEdgeId)
}
