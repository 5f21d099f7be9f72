package domain

import "errors"

var (
	// ErrBatchSpent is returned when statements are added to a batch that
	// has already been flushed.
	ErrBatchSpent = errors.New("batch already flushed")
	// ErrNotConnected indicates an operation that requires an open session.
	ErrNotConnected = errors.New("not connected")
	// ErrNoHosts indicates that no storage node could be reached.
	ErrNoHosts = errors.New("no hosts available")
)
