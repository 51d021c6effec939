package session

// State is the lifecycle position of a Session.
type State uint8

const (
	StateUnopened State = iota
	StateOpened
	StateStarted
	StateClosed
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateOpened:
		return "opened"
	case StateStarted:
		return "started"
	case StateClosed:
		return "closed"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}
