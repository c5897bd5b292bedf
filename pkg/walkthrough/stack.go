package walkthrough

// Stack tracks one BranchState per open conditional or function scope,
// outermost first. An empty stack means the code being walked is unreachable.
//
// The zero value is an empty stack.
type Stack struct {
	frames []BranchState
}

// Reset clears the stack and pushes a single True frame.
// Called at every function-definition boundary.
func (s *Stack) Reset() {
	s.frames = append(s.frames[:0], StateTrue)
}

// Push opens a frame for a resolved condition.
func (s *Stack) Push(state BranchState) {
	s.frames = append(s.frames, state)
}

// FlipTop replaces the innermost frame with its flip. No-op on an empty stack.
func (s *Stack) FlipTop() {
	if len(s.frames) == 0 {
		return
	}
	top := len(s.frames) - 1
	s.frames[top] = s.frames[top].Flip()
}

// PopOnSelectionExit closes the innermost frame when a selection statement ends.
// A Broken frame is not discarded: brokenness propagates into the enclosing
// scope, so Broken is pushed back. No-op on an empty stack.
func (s *Stack) PopOnSelectionExit() {
	if len(s.frames) == 0 {
		return
	}
	top := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	if top == StateBroken {
		s.frames = append(s.frames, StateBroken)
	}
}

// ClearOnReturn empties the stack when a return is met on a live path, that is
// when the stack is non-empty and Overall is True. Everything after it in the
// same function is then treated as dead code. Reports whether it cleared.
func (s *Stack) ClearOnReturn() bool {
	if len(s.frames) == 0 || s.Overall() != StateTrue {
		return false
	}
	s.frames = s.frames[:0]
	return true
}

// Overall folds all frames: any Broken frame wins, then any False frame,
// otherwise True.
func (s *Stack) Overall() BranchState {
	for _, f := range s.frames {
		if f == StateBroken {
			return StateBroken
		}
	}
	for _, f := range s.frames {
		if f == StateFalse {
			return StateFalse
		}
	}
	return StateTrue
}

// Empty reports whether no frame is open.
func (s *Stack) Empty() bool {
	return len(s.frames) == 0
}

// Len returns the number of open frames.
func (s *Stack) Len() int {
	return len(s.frames)
}

// Frames returns a copy of the frames, outermost first.
func (s *Stack) Frames() []BranchState {
	out := make([]BranchState, len(s.frames))
	copy(out, s.frames)
	return out
}
