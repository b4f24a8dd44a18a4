package ingest

import "errors"

var (
	// ErrStopped is returned by Submit once the pipeline has been stopped.
	ErrStopped = errors.New("ingest: pipeline stopped")

	// ErrNotStarted is returned by Submit before Start.
	ErrNotStarted = errors.New("ingest: pipeline not started")
)
