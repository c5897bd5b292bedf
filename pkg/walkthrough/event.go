package walkthrough

// EventType distinguishes the three structural events a tree driver raises.
type EventType int

const (
	NodeEntered EventType = iota
	NodeExited
	TerminalVisited
)

func (t EventType) String() string {
	switch t {
	case NodeEntered:
		return "entered"
	case NodeExited:
		return "exited"
	case TerminalVisited:
		return "terminal"
	default:
		return "unknown"
	}
}

// NodeKind is the structural role of an entered or exited node.
// Nodes without a role the walker cares about are not reported.
type NodeKind int

const (
	KindNone NodeKind = iota
	KindFunctionDefinition
	KindDeclarationStatement
	KindExpressionStatement
	KindJumpStatement
	KindSelectionStatement
	KindCondition
)

func (k NodeKind) String() string {
	switch k {
	case KindFunctionDefinition:
		return "function_definition"
	case KindDeclarationStatement:
		return "declaration_statement"
	case KindExpressionStatement:
		return "expression_statement"
	case KindJumpStatement:
		return "jump_statement"
	case KindSelectionStatement:
		return "selection_statement"
	case KindCondition:
		return "condition"
	default:
		return "none"
	}
}

// IsStatement reports whether nodes of this kind are classified and painted.
func (k NodeKind) IsStatement() bool {
	return k == KindDeclarationStatement || k == KindExpressionStatement || k == KindJumpStatement
}

// Range is a half-open [Start, Stop) byte offset pair into the source text.
type Range struct {
	Start int `json:"start" toon:"start"`
	Stop  int `json:"stop" toon:"stop"`
}

// Len returns the number of bytes covered.
func (r Range) Len() int {
	if r.Stop < r.Start {
		return 0
	}
	return r.Stop - r.Start
}

// Slice returns the covered text, or "" when the range falls outside source.
func (r Range) Slice(source []byte) string {
	if r.Start < 0 || r.Start > r.Stop || r.Stop > len(source) {
		return ""
	}
	return string(source[r.Start:r.Stop])
}

// Token is one terminal leaf of the tree. Line and Column are 1-based.
type Token struct {
	Text   string `json:"text" toon:"text"`
	Range  Range  `json:"range" toon:"range"`
	Line   int    `json:"line" toon:"line"`
	Column int    `json:"column" toon:"column"`
}

// Event is one step of the depth-first walk.
//
// For NodeEntered and NodeExited, Kind and Range describe the node. Text is
// set on entered conditions and jump statements only: for a condition it is
// the lookup key (the condition's tokens joined without whitespace), for a
// jump statement it is the leading keyword. For TerminalVisited, Token
// describes the leaf.
type Event struct {
	Type  EventType
	Kind  NodeKind
	Range Range
	Text  string
	Token Token
}

// Entered builds a NodeEntered event.
func Entered(kind NodeKind, r Range) Event {
	return Event{Type: NodeEntered, Kind: kind, Range: r}
}

// EnteredCondition builds a NodeEntered event for a condition with its lookup key.
func EnteredCondition(text string, r Range) Event {
	return Event{Type: NodeEntered, Kind: KindCondition, Range: r, Text: text}
}

// EnteredJump builds a NodeEntered event for a jump statement with its keyword.
func EnteredJump(keyword string, r Range) Event {
	return Event{Type: NodeEntered, Kind: KindJumpStatement, Range: r, Text: keyword}
}

// Exited builds a NodeExited event.
func Exited(kind NodeKind, r Range) Event {
	return Event{Type: NodeExited, Kind: kind, Range: r}
}

// Terminal builds a TerminalVisited event.
func Terminal(tok Token) Event {
	return Event{Type: TerminalVisited, Token: tok, Range: tok.Range}
}
