package cassandra

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gocql/gocql"

	"github.com/ashmarkin/colmetra/internal/domain"
	"github.com/ashmarkin/colmetra/internal/ports"
)

// DialConfig holds the original contact-point settings a ClusterDialer
// rebuilds its cluster handle from.
type DialConfig struct {
	Hosts       []string
	Port        int
	Keyspace    string
	Consistency string
	Timeout     time.Duration
}

// ClusterDialer dials gocql sessions. The cluster handle is built once
// up front and again on demand via Rebuild.
type ClusterDialer struct {
	cfg     DialConfig
	cons    gocql.Consistency
	cluster *gocql.ClusterConfig
}

var _ ports.Dialer = (*ClusterDialer)(nil)

// NewClusterDialer validates the consistency level and builds the
// initial cluster handle.
func NewClusterDialer(cfg DialConfig) (*ClusterDialer, error) {
	cons, err := gocql.ParseConsistencyWrapper(cfg.Consistency)
	if err != nil {
		return nil, fmt.Errorf("parse consistency %q: %w", cfg.Consistency, err)
	}
	d := &ClusterDialer{cfg: cfg, cons: cons}
	d.Rebuild()
	return d, nil
}

// Rebuild discards the current cluster handle and recreates it from the
// original contact points, port, and compression settings.
func (d *ClusterDialer) Rebuild() {
	cl := gocql.NewCluster(d.cfg.Hosts...)
	if d.cfg.Port > 0 {
		cl.Port = d.cfg.Port
	}
	cl.Keyspace = d.cfg.Keyspace
	cl.Consistency = d.cons
	cl.Compressor = &gocql.SnappyCompressor{}
	cl.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
	if d.cfg.Timeout > 0 {
		cl.Timeout = d.cfg.Timeout
	}
	d.cluster = cl
}

// Dial creates a session against the current cluster handle. A
// connectivity failure is surfaced as domain.ErrNoHosts so the caller
// can decide to rebuild.
func (d *ClusterDialer) Dial(context.Context) (ports.Session, error) {
	s, err := d.cluster.CreateSession()
	if err != nil {
		if isNoHostAvailable(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrNoHosts, err)
		}
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &gocqlSession{sess: s, cons: d.cons}, nil
}

func isNoHostAvailable(err error) bool {
	if errors.Is(err, gocql.ErrNoConnections) || errors.Is(err, gocql.ErrNoConnectionsStarted) {
		return true
	}
	// CreateSession flattens the cause into the message with %v, so the
	// unreachable-cluster path is only recognizable by its text.
	msg := err.Error()
	return strings.Contains(msg, "unable to connect to initial hosts") ||
		strings.Contains(msg, "no connections were made") ||
		strings.Contains(msg, "no hosts available")
}

type gocqlSession struct {
	sess *gocql.Session
	cons gocql.Consistency
}

var _ ports.Session = (*gocqlSession)(nil)

func (s *gocqlSession) Exec(ctx context.Context, stmt string, args ...any) error {
	return s.sess.Query(stmt, args...).WithContext(ctx).Exec()
}

func (s *gocqlSession) ExecBatch(ctx context.Context, stmts []domain.Statement) error {
	b := s.sess.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	b.Cons = s.cons
	for _, st := range stmts {
		b.Query(st.CQL, st.Args...)
	}
	return s.sess.ExecuteBatch(b)
}

func (s *gocqlSession) Points(ctx context.Context, stmt string, args ...any) ([]domain.MetricPoint, error) {
	iter := s.sess.Query(stmt, args...).WithContext(ctx).Iter()
	var (
		pts []domain.MetricPoint
		p   domain.MetricPoint
	)
	for iter.Scan(&p.Name, &p.Timestamp, &p.Value) {
		pts = append(pts, p)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("scan points: %w", err)
	}
	return pts, nil
}

func (s *gocqlSession) Close() {
	s.sess.Close()
}
