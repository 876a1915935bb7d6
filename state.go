package pgwire

// State is the wire-protocol phase a connection is currently in. Exactly one
// State is active per Connector at any time; every message sent or interpreted
// is gated on it.
type State int

const (
	StateClosed State = iota
	StateConnecting
	StateReady
	StateExecuting
	StateCopyIn
	StateCopyOut
	StateBroken
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "Closed"
	case StateConnecting:
		return "Connecting"
	case StateReady:
		return "Ready"
	case StateExecuting:
		return "Executing"
	case StateCopyIn:
		return "CopyIn"
	case StateCopyOut:
		return "CopyOut"
	case StateBroken:
		return "Broken"
	default:
		return "invalid"
	}
}

// legalTransitions is the declared transition table. Broken is reachable from
// any state and is handled in transition directly.
var legalTransitions = map[State][]State{
	StateClosed:     {StateConnecting},
	StateConnecting: {StateReady},
	StateReady:      {StateExecuting, StateClosed},
	StateExecuting:  {StateReady, StateCopyIn, StateCopyOut},
	StateCopyIn:     {StateReady},
	StateCopyOut:    {StateReady},
}

func transitionLegal(from, to State) bool {
	if to == StateBroken {
		return true
	}
	for _, s := range legalTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
