package domain

// PendingBatch accumulates the write operations of one reporting pass.
// A batch is single-use: once marked spent by the flushing side, further
// Add calls fail and a fresh batch must be constructed for the next pass.
type PendingBatch struct {
	stmts []Statement
	spent bool
}

// NewPendingBatch returns an empty batch ready to accumulate statements.
func NewPendingBatch() *PendingBatch {
	return &PendingBatch{}
}

// Add appends one statement, preserving insertion order.
func (b *PendingBatch) Add(s Statement) error {
	if b.spent {
		return ErrBatchSpent
	}
	b.stmts = append(b.stmts, s)
	return nil
}

// Statements returns the accumulated statements and marks the batch spent.
func (b *PendingBatch) Statements() []Statement {
	b.spent = true
	return b.stmts
}

// Len reports the number of accumulated statements.
func (b *PendingBatch) Len() int {
	return len(b.stmts)
}

// Spent reports whether the batch has already been handed off for flushing.
func (b *PendingBatch) Spent() bool {
	return b.spent
}
