package ports

import (
	"context"
	"time"
)

// MetricSink receives flattened metric fields during a reporting pass
// and ships the accumulated writes on Flush.
type MetricSink interface {
	Connect(ctx context.Context) error
	Send(ctx context.Context, name string, value float64, ts time.Time) error
	Flush(ctx context.Context) error
	Close()
}
