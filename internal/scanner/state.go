package scanner

// State is the quoting state of the statement scanner.
type State int

const (
	Normal  State = iota // outside any string literal
	InQuote              // inside a single-quoted literal
	Escaped              // the next byte is taken literally
)

// String returns a string representation of State
func (s State) String() string {
	switch s {
	case Normal:
		return "normal"
	case InQuote:
		return "in-quote"
	case Escaped:
		return "escaped"
	default:
		return "unknown"
	}
}

// Machine is the three-state automaton that decides where a statement ends.
// The zero value starts in Normal.
type Machine struct {
	state  State
	resume State // state to return to once an escaped byte is consumed
}

// State returns the current state of the machine.
func (m *Machine) State() State { return m.state }

// Reset puts the machine back into Normal.
func (m *Machine) Reset() {
	m.state = Normal
	m.resume = Normal
}

// Step feeds one byte and reports whether it terminates the current statement.
func (m *Machine) Step(c byte) bool {
	var end bool
	m.state, m.resume, end = Transition(m.state, m.resume, c)
	return end
}

// Transition is the transition function of the scanner automaton. Given the
// current state, the state to resume after an escape and the next byte, it
// returns the new pair of states and whether the byte ends the statement.
//
// A terminating ';' is only recognised in Normal. The escaped byte never
// changes the quoting state.
func Transition(state, resume State, c byte) (State, State, bool) {
	switch state {
	case Escaped:
		return resume, resume, false
	case InQuote:
		switch c {
		case '\\':
			return Escaped, InQuote, false
		case '\'':
			return Normal, Normal, false
		}
		return InQuote, InQuote, false
	default:
		switch c {
		case '\\':
			return Escaped, Normal, false
		case '\'':
			return InQuote, InQuote, false
		case ';':
			return Normal, Normal, true
		}
		return Normal, Normal, false
	}
}
