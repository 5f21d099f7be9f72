package ports

import (
	"context"

	"github.com/ashmarkin/colmetra/internal/domain"
)

// Session is the minimal surface of a CQL session the reporter needs.
// Exec runs a single statement (schema DDL); ExecBatch ships all
// statements of one pass as a single write request at the session's
// configured consistency level.
type Session interface {
	Exec(ctx context.Context, stmt string, args ...any) error
	ExecBatch(ctx context.Context, stmts []domain.Statement) error
	Points(ctx context.Context, stmt string, args ...any) ([]domain.MetricPoint, error)
	Close()
}

// Dialer establishes sessions against a cluster. Rebuild discards the
// current cluster handle and recreates it from the original contact
// points, so a subsequent Dial starts from a clean slate.
type Dialer interface {
	Dial(ctx context.Context) (Session, error)
	Rebuild()
}
