package walkthrough

// BranchState is the tri-state liveness of one open conditional frame.
type BranchState int

const (
	StateTrue BranchState = iota
	StateFalse
	StateBroken
)

// StateOf maps a looked-up condition value to a BranchState.
// An unresolved value (ok == false) is Broken.
func StateOf(value, ok bool) BranchState {
	if !ok {
		return StateBroken
	}
	if value {
		return StateTrue
	}
	return StateFalse
}

// Flip returns the state of the alternate branch. Broken stays Broken.
func (s BranchState) Flip() BranchState {
	switch s {
	case StateTrue:
		return StateFalse
	case StateFalse:
		return StateTrue
	default:
		return StateBroken
	}
}

func (s BranchState) String() string {
	switch s {
	case StateTrue:
		return "true"
	case StateFalse:
		return "false"
	case StateBroken:
		return "broken"
	default:
		return "unknown"
	}
}
