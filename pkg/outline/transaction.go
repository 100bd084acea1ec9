package outline

// Tx is an atomic unit of work against a Doc (spec.md §4.2 transaction
// kernel, C2). Every mutating helper in node store, edge store, mirror
// command, and tag registry takes a *Tx and applies its change directly to
// the owning Doc, recording an inverse ("undo") action. If the function
// passed to WithTransaction returns an error, every recorded undo action
// replays in reverse, restoring the document to its pre-transaction state
// — this is the from-scratch analogue of the teacher's pending-maps/buffer
// approach (_examples/straga-Mimir_lite/nornicdb/pkg/storage/transaction.go),
// adapted to apply-then-compensate instead of buffer-then-apply because
// outline operations (especially reconciliation and mirror conversion)
// read-their-own-writes extensively and a live-apply model keeps every
// helper's reads trivially consistent.
type Tx struct {
	doc    *Doc
	Origin Origin

	undo []func()
	ops  int
}

// record appends a compensating action to the transaction's undo stack.
// Helpers call this immediately after each mutating step.
func (tx *Tx) record(compensate func()) {
	tx.undo = append(tx.undo, compensate)
	tx.ops++
}

func (tx *Tx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
}

// WithTransaction runs fn inside an atomic transaction tagged with origin
// (spec.md §4.2). A call made while a transaction is already open on doc
// joins that transaction instead of starting a nested one (contract 2): fn
// runs against the same *Tx, and only the outermost call commits or rolls
// back.
//
// fn's return value becomes WithTransaction's return value (contract 3).
// An error returned by fn aborts the whole transaction — including any
// mutations made by an outer caller before a nested join — and is
// propagated to the original caller (contract 4).
func WithTransaction[T any](doc *Doc, origin Origin, fn func(tx *Tx) (T, error)) (T, error) {
	if doc.tx != nil {
		return fn(doc.tx)
	}

	doc.mu.Lock()
	defer doc.mu.Unlock()

	tx := &Tx{doc: doc, Origin: origin}
	doc.tx = tx
	defer func() { doc.tx = nil }()

	result, err := fn(tx)
	if err != nil {
		tx.rollback()
		var zero T
		return zero, err
	}

	doc.logger.Infof("committed transaction origin=%q ops=%d", origin, tx.ops)
	return result, nil
}
