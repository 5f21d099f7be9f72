package domain

import (
	"errors"
	"testing"
	"time"
)

func TestPendingBatch(t *testing.T) {
	t.Run("PreservesInsertionOrder", func(t *testing.T) {
		b := NewPendingBatch()
		stmts := []Statement{
			{CQL: "INSERT 1", Args: []any{"a", time.Unix(1, 0), 1.0}},
			{CQL: "UPDATE 1", Args: []any{time.Unix(1, 0), "a"}},
			{CQL: "INSERT 2", Args: []any{"b", time.Unix(2, 0), 2.0}},
		}
		for _, s := range stmts {
			if err := b.Add(s); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if b.Len() != len(stmts) {
			t.Fatalf("got %d statements, want %d", b.Len(), len(stmts))
		}
		got := b.Statements()
		for i := range stmts {
			if got[i].CQL != stmts[i].CQL {
				t.Errorf("statement %d: got %q, want %q", i, got[i].CQL, stmts[i].CQL)
			}
		}
	})

	t.Run("SingleUse", func(t *testing.T) {
		b := NewPendingBatch()
		if err := b.Add(Statement{CQL: "INSERT"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_ = b.Statements()
		if !b.Spent() {
			t.Error("expected batch to be spent after Statements")
		}
		if err := b.Add(Statement{CQL: "INSERT"}); !errors.Is(err, ErrBatchSpent) {
			t.Errorf("got %v, want ErrBatchSpent", err)
		}
	})

	t.Run("EmptyBatch", func(t *testing.T) {
		b := NewPendingBatch()
		if b.Len() != 0 {
			t.Errorf("got %d, want 0", b.Len())
		}
		if got := b.Statements(); len(got) != 0 {
			t.Errorf("got %d statements, want 0", len(got))
		}
	})
}
