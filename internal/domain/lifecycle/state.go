package lifecycle

// State is the lifecycle state of a Manager.
type State int32

const (
	Unstarted State = iota
	Running
	ShuttingDown
	Stopped
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case Unstarted:
		return "unstarted"
	case Running:
		return "running"
	case ShuttingDown:
		return "shutting_down"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}
