package handler

// State is the lifecycle state of a handler
type State uint32

const (
	// StateStopped is the initial state. A stopped handler ignores requests.
	StateStopped State = iota
	// StateStarting is the state of a handler while its start hook runs
	StateStarting
	// StateStarted is the state of a handler ready to process requests
	StateStarted
	// StateStopping is the state of a handler while its stop hook runs
	StateStopping
	// StateFailed is the state of a handler which failed to start
	StateFailed
	// StateDestroying is the state of a handler while its destroy hook runs.
	// It can no longer be started nor changed.
	StateDestroying
	// StateDestroyed is the terminal state. A destroyed handler cannot be
	// started again.
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateStarted:
		return "started"
	case StateStopping:
		return "stopping"
	case StateFailed:
		return "failed"
	case StateDestroying:
		return "destroying"
	case StateDestroyed:
		return "destroyed"
	}
	return "unknown"
}
