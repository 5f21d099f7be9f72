package domain

import "time"

// MetricPoint is a single flattened metric sample destined for the
// time-series relation. Points are not unique by name; one name
// accumulates a series keyed by timestamp.
type MetricPoint struct {
	Timestamp time.Time
	Name      string
	Value     float64
}

// NameRecord marks a metric name as currently live. One logical record
// per name; every occurrence overwrites the previous one.
type NameRecord struct {
	LastUpdated time.Time
	Name        string
}

// Statement is one storage write operation with its bound arguments.
type Statement struct {
	CQL  string
	Args []any
}
