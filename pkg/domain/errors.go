package domain

import "errors"

// ErrJobNotFound is returned when a job ID cannot be found in the store
// or the manager.
var ErrJobNotFound = errors.New("job not found")

// ErrStreamClaimed is returned when a second consumer tries to attach to
// a job's event stream.
var ErrStreamClaimed = errors.New("job stream already claimed")
