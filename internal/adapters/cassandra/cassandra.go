// Package cassandra implements a Cassandra-backed metric sink with
// idempotent schema bootstrap and per-pass batched writes.
package cassandra

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ashmarkin/colmetra/internal/domain"
	"github.com/ashmarkin/colmetra/internal/ports"
)

var unsafeRunes = regexp.MustCompile(`[.\s]+`)

// Sanitize collapses every run of periods and whitespace into a single
// underscore, yielding a storage-safe identifier. Pure and total.
func Sanitize(s string) string {
	return unsafeRunes.ReplaceAllString(s, "_")
}

const (
	ddlPoints = `CREATE TABLE IF NOT EXISTS %s (
  name varchar,
  timestamp timestamp,
  value double,
  PRIMARY KEY (name, timestamp))
  WITH bloom_filter_fp_chance = 0.1
  AND compaction = {'class': 'LeveledCompactionStrategy'}`

	ddlNames = `CREATE TABLE IF NOT EXISTS %s_names (
  name varchar,
  last_updated timestamp,
  PRIMARY KEY (name))
  WITH bloom_filter_fp_chance = 0.1
  AND compaction = {'class': 'LeveledCompactionStrategy'}`

	cqlInsertPoint = `INSERT INTO %s (name, timestamp, value) VALUES (?, ?, ?) USING TTL ?`
	cqlUpsertName  = `UPDATE %s_names SET last_updated = ? WHERE name = ?`
	cqlSelectRange = `SELECT name, timestamp, value FROM %s WHERE name = ? ORDER BY timestamp ASC`
)

// Client accumulates metric writes for one reporting pass and flushes
// them as a single batched request. A Client owns its session, pending
// batch, schema-registration set, and failure counter; it performs no
// internal locking and expects at most one in-flight pass.
type Client struct {
	dialer ports.Dialer
	log    *zap.Logger
	table  string
	ttl    int

	session     ports.Session
	batch       *domain.PendingBatch
	initialized map[string]bool
	failures    atomic.Int64
}

var _ ports.MetricSink = (*Client)(nil)

// New builds a Client writing to the given logical table. The table name
// is sanitized once; TTL applies to every point insert and is truncated
// to whole seconds.
func New(dialer ports.Dialer, table string, ttl time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		dialer:      dialer,
		log:         log,
		table:       Sanitize(table),
		ttl:         int(ttl.Seconds()),
		initialized: make(map[string]bool),
	}
}

// Connect establishes a session when none is open. A dial that fails
// because no host is reachable discards the cluster handle, rebuilds it
// from the original contact points, and dials exactly once more; any
// further failure propagates. Each successful connect arms a fresh batch.
func (c *Client) Connect(ctx context.Context) error {
	if c.session != nil {
		return nil
	}
	s, err := c.dialer.Dial(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNoHosts) {
			return err
		}
		c.log.Warn("no storage hosts reachable, rebuilding cluster handle", zap.Error(err))
		c.dialer.Rebuild()
		if s, err = c.dialer.Dial(ctx); err != nil {
			return err
		}
	}
	c.session = s
	c.batch = domain.NewPendingBatch()
	return nil
}

// Send appends one point insert plus the matching name upsert to the
// pending batch. It connects lazily and bootstraps the schema on the
// first call per table; no network write happens here beyond DDL.
func (c *Client) Send(ctx context.Context, name string, value float64, ts time.Time) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}
	if err := c.ensureSchema(ctx); err != nil {
		c.failures.Add(1)
		c.Close()
		return fmt.Errorf("bootstrap schema for %q: %w", c.table, err)
	}
	point := domain.MetricPoint{Name: name, Value: value, Timestamp: ts}
	record := domain.NameRecord{Name: name, LastUpdated: ts}
	err := c.batch.Add(domain.Statement{
		CQL:  fmt.Sprintf(cqlInsertPoint, c.table),
		Args: []any{point.Name, point.Timestamp, point.Value, c.ttl},
	})
	if err != nil {
		return err
	}
	return c.batch.Add(domain.Statement{
		CQL:  fmt.Sprintf(cqlUpsertName, c.table),
		Args: []any{record.LastUpdated, record.Name},
	})
}

// Flush ships the accumulated batch as one write request. Success resets
// the consecutive-failure counter; failure increments it and closes the
// session so the next pass reconnects. The flushed batch is spent either
// way and a fresh one is armed.
func (c *Client) Flush(ctx context.Context) error {
	if c.session == nil {
		return domain.ErrNotConnected
	}
	stmts := c.batch.Statements()
	c.batch = domain.NewPendingBatch()
	if len(stmts) == 0 {
		return nil
	}
	if err := c.session.ExecBatch(ctx, stmts); err != nil {
		c.failures.Add(1)
		c.Close()
		return fmt.Errorf("flush %d statements: %w", len(stmts), err)
	}
	c.failures.Store(0)
	c.log.Debug("flushed batch", zap.Int("statements", len(stmts)))
	return nil
}

// Points reads back the series stored under one sanitized name, ordered
// by the clustering key (ascending timestamp).
func (c *Client) Points(ctx context.Context, name string) ([]domain.MetricPoint, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	return c.session.Points(ctx, fmt.Sprintf(cqlSelectRange, c.table), name)
}

// Failures reports the number of consecutive failed writes since the
// last successful flush.
func (c *Client) Failures() int {
	return int(c.failures.Load())
}

// Close releases the session if one is open. Safe to call repeatedly.
func (c *Client) Close() {
	if c.session != nil {
		c.session.Close()
		c.session = nil
	}
}

func (c *Client) ensureSchema(ctx context.Context) error {
	if c.initialized[c.table] {
		return nil
	}
	for _, ddl := range []string{ddlPoints, ddlNames} {
		if err := c.session.Exec(ctx, fmt.Sprintf(ddl, c.table)); err != nil {
			return err
		}
	}
	c.initialized[c.table] = true
	return nil
}
