package outline

import "github.com/dcoales/Thortiq-sub001/pkg/ids"

// OriginReconcile tags a reconciliation commit distinctly from a local or
// remote edit (spec.md §4.2, §4.6).
const OriginReconcile Origin = "reconcile"

type expectedPlacement struct {
	parent   *ids.NodeID
	position int
}

type plannedInsertion struct {
	edgeID   ids.EdgeID
	parent   *ids.NodeID
	position int
}

type reconciliationPlan struct {
	// removals maps a parent key (parentKeyFor) to the number of
	// occurrences of each edge id that must be deleted from that parent's
	// array.
	removals   map[string]map[ids.EdgeID]int
	insertions []plannedInsertion
}

func (p reconciliationPlan) empty() bool {
	return len(p.removals) == 0 && len(p.insertions) == 0
}

func parentKeyFor(p *ids.NodeID) string {
	if p == nil {
		return ""
	}
	return string(*p)
}

func parentFromKey(k string) *ids.NodeID {
	if k == "" {
		return nil
	}
	id := ids.NodeID(k)
	return &id
}

// computeReconciliationPlan implements spec.md §4.6 steps 1-4. Callers must
// hold doc.mu (or be inside doc's own transaction, which already does).
func computeReconciliationPlan(doc *Doc, edgeFilter []ids.EdgeID) reconciliationPlan {
	var filterSet map[ids.EdgeID]bool
	if len(edgeFilter) > 0 {
		filterSet = make(map[ids.EdgeID]bool, len(edgeFilter))
		for _, id := range edgeFilter {
			filterSet[id] = true
		}
	}
	included := func(id ids.EdgeID) bool { return filterSet == nil || filterSet[id] }

	placements := map[ids.EdgeID]map[string][]int{}
	record := func(parentKey string, list []ids.EdgeID) {
		for i, id := range list {
			if !included(id) {
				continue
			}
			if placements[id] == nil {
				placements[id] = map[string][]int{}
			}
			placements[id][parentKey] = append(placements[id][parentKey], i)
		}
	}
	record("", doc.rootEdgeIDs)
	for parent, list := range doc.childEdgeIDs {
		record(string(parent), list)
	}

	expectations := map[ids.EdgeID]expectedPlacement{}
	allIDs := map[ids.EdgeID]bool{}
	for id := range placements {
		allIDs[id] = true
	}
	for id, e := range doc.edges {
		if !included(id) {
			continue
		}
		expectations[id] = expectedPlacement{parent: e.ParentNodeID, position: e.Position}
		allIDs[id] = true
	}

	removals := map[string]map[ids.EdgeID]int{}
	addRemoval := func(parentKey string, id ids.EdgeID, count int) {
		if count <= 0 {
			return
		}
		if removals[parentKey] == nil {
			removals[parentKey] = map[ids.EdgeID]int{}
		}
		removals[parentKey][id] += count
	}

	var insertions []plannedInsertion

	for id := range allIDs {
		exp, hasExp := expectations[id]
		expectedKey := ""
		if hasExp {
			expectedKey = parentKeyFor(exp.parent)
		}
		foundInExpected := false
		for parentKey, idxs := range placements[id] {
			if !hasExp {
				addRemoval(parentKey, id, len(idxs))
				continue
			}
			if parentKey != expectedKey {
				addRemoval(parentKey, id, len(idxs))
				continue
			}
			foundInExpected = true
			if len(idxs) > 1 {
				addRemoval(parentKey, id, len(idxs)-1)
			}
		}
		if hasExp && !foundInExpected {
			insertions = append(insertions, plannedInsertion{edgeID: id, parent: exp.parent, position: exp.position})
		}
	}

	return reconciliationPlan{removals: removals, insertions: insertions}
}

// applyReconciliationPlan implements spec.md §4.6 step 5: removals are
// applied from the tail of each affected array so indices of not-yet-
// processed occurrences stay valid; insertions land at their expected,
// clamped position. It returns the total correction count.
func (tx *Tx) applyReconciliationPlan(plan reconciliationPlan) int {
	doc := tx.doc
	total := 0

	for parentKey, counts := range plan.removals {
		parent := parentFromKey(parentKey)
		list := doc.edgeList(parent)
		oldCopy := append([]ids.EdgeID(nil), list...)
		remaining := make(map[ids.EdgeID]int, len(counts))
		for id, c := range counts {
			remaining[id] = c
		}
		newList := append([]ids.EdgeID(nil), list...)
		for i := len(newList) - 1; i >= 0; i-- {
			id := newList[i]
			if remaining[id] > 0 {
				newList = append(newList[:i], newList[i+1:]...)
				remaining[id]--
				total++
			}
		}
		doc.setEdgeList(parent, newList)
		tx.record(func() { doc.setEdgeList(parent, oldCopy) })
	}

	for _, ins := range plan.insertions {
		ins := ins
		list := doc.edgeList(ins.parent)
		oldCopy := append([]ids.EdgeID(nil), list...)
		position := clampPosition(&ins.position, len(list))
		newList := insertAtIndex(list, position, ins.edgeID)
		doc.setEdgeList(ins.parent, newList)
		tx.record(func() { doc.setEdgeList(ins.parent, oldCopy) })
		total++
	}

	return total
}

// ReconcileOutlineStructure restores invariant I1 after a merge leaves an
// edge absent from its expected parent array or duplicated across one or
// more parent arrays (spec.md §4.6, C6). When edgeFilter is non-empty, the
// sweep is restricted to those edge ids. It never returns an error for
// invariant violations — it corrects them and reports how many corrections
// it made; it opens no transaction at all when nothing needs correcting
// (P5: idempotent, a clean second run returns 0).
func ReconcileOutlineStructure(doc *Doc, edgeFilter []ids.EdgeID) (int, error) {
	doc.mu.Lock()
	plan := computeReconciliationPlan(doc, edgeFilter)
	doc.mu.Unlock()

	if plan.empty() {
		return 0, nil
	}

	return WithTransaction(doc, OriginReconcile, func(tx *Tx) (int, error) {
		fresh := computeReconciliationPlan(tx.doc, edgeFilter)
		if fresh.empty() {
			return 0, nil
		}
		return tx.applyReconciliationPlan(fresh), nil
	})
}
