package lifecycle

import "errors"

var (
	// ErrInvalidConfig is returned by Start for a configuration it cannot run.
	ErrInvalidConfig = errors.New("lifecycle: invalid configuration")
	// ErrAllocation is returned by Start when the buffer or signals cannot be built.
	ErrAllocation = errors.New("lifecycle: allocation failed")
	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = errors.New("lifecycle: already started")
	// ErrSpawn is returned by Start when its tasks did not all come up
	// before the start context ended. No task is left running.
	ErrSpawn = errors.New("lifecycle: tasks failed to start")
)
