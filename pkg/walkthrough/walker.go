package walkthrough

import (
	"context"
	"io"
	"iter"
	"log/slog"
	"strings"
)

// ValueSource resolves a condition, keyed by its literal text, to a live value.
// ok is false when the value is unknown.
type ValueSource interface {
	Value(condition string) (value bool, ok bool)
}

// Painter receives colour annotations. Later calls on overlapping ranges take
// precedence over earlier ones.
type Painter interface {
	PaintBackground(c Color, r Range)
	PaintForeground(c Color, r Range)
}

// ParseResult is the outcome of one walk, in encounter order.
type ParseResult struct {
	ConfigFields     []ConfigFieldToken `json:"config_fields" toon:"config_fields"`
	BrokenConditions []string           `json:"broken_conditions" toon:"broken_conditions"`
}

// Option is a functional option for configuring a Walker.
type Option func(*Walker)

// WithPalette sets the colours used for painting.
func WithPalette(p Palette) Option {
	return func(w *Walker) {
		w.palette = p
	}
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *slog.Logger) Option {
	return func(w *Walker) {
		if l != nil {
			w.log = l
		}
	}
}

// WithSource provides the source text so trace records can quote it.
func WithSource(source []byte) Option {
	return func(w *Walker) {
		w.source = source
	}
}

// WithConfigRoot overrides the configuration root identifier.
func WithConfigRoot(root string) Option {
	return func(w *Walker) {
		if root != "" {
			w.configRoot = root
		}
	}
}

// Walker holds the state of a single walk. It is not safe for concurrent use;
// run one Walker per tree.
type Walker struct {
	values     ValueSource
	painter    Painter
	palette    Palette
	log        *slog.Logger
	source     []byte
	configRoot string

	stack     Stack
	terminals []Token
	broken    []string

	result *ParseResult
}

// NewWalker creates a Walker. A nil painter discards paint calls; a nil value
// source leaves every condition unresolved.
func NewWalker(values ValueSource, painter Painter, opts ...Option) *Walker {
	if values == nil {
		values = unresolved{}
	}
	if painter == nil {
		painter = discardPainter{}
	}

	w := &Walker{
		values:     values,
		painter:    painter,
		palette:    DefaultPalette(),
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		configRoot: DefaultConfigRoot,
		broken:     make([]string, 0),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Run walks a whole event stream and returns its result.
func Run(events iter.Seq[Event], values ValueSource, painter Painter, opts ...Option) ParseResult {
	w := NewWalker(values, painter, opts...)
	for ev := range events {
		w.Handle(ev)
	}
	return w.Result()
}

// Handle applies one event. Events must arrive in depth-first source order.
func (w *Walker) Handle(ev Event) {
	switch ev.Type {
	case TerminalVisited:
		w.visitTerminal(ev.Token)
	case NodeEntered:
		w.enter(ev)
	case NodeExited:
		if ev.Kind == KindSelectionStatement {
			w.stack.PopOnSelectionExit()
			w.trace("selection exit", "frames", w.stack.Len())
		}
	}
}

func (w *Walker) enter(ev Event) {
	switch ev.Kind {
	case KindFunctionDefinition:
		w.stack.Reset()
	case KindCondition:
		w.enterCondition(ev)
	case KindDeclarationStatement, KindExpressionStatement:
		w.colorStatement(ev.Range)
	case KindJumpStatement:
		w.colorStatement(ev.Range)
		if strings.EqualFold(ev.Text, "return") && w.stack.ClearOnReturn() {
			w.trace("return on live path, clearing", "at", ev.Range.Start)
		}
	}
}

func (w *Walker) enterCondition(ev Event) {
	value, ok := w.values.Value(ev.Text)
	state := StateOf(value, ok)
	w.stack.Push(state)
	w.trace("condition", "text", ev.Text, "state", state.String())

	switch state {
	case StateBroken:
		w.broken = append(w.broken, ev.Text)
		w.painter.PaintBackground(w.palette.Color(RoleBrokenCode), ev.Range)
	case StateTrue:
		w.painter.PaintBackground(w.palette.Color(RoleTrueCondition), ev.Range)
	default:
		w.painter.PaintBackground(w.palette.Color(RoleFalseCondition), ev.Range)
	}
}

// Classify returns the role a statement would be painted with right now.
func (w *Walker) Classify() Role {
	if w.stack.Empty() {
		return RolePassiveCode
	}
	switch w.stack.Overall() {
	case StateBroken:
		return RoleBrokenCode
	case StateFalse:
		return RoleInactiveBranch
	default:
		return RoleActiveStatement
	}
}

func (w *Walker) colorStatement(r Range) {
	role := w.Classify()
	if w.debugEnabled() {
		w.log.Debug("statement", "role", role.String(), "snippet", r.Slice(w.source))
	}
	w.painter.PaintBackground(w.palette.Color(role), r)
}

func (w *Walker) visitTerminal(tok Token) {
	w.terminals = append(w.terminals, tok)
	if strings.EqualFold(tok.Text, "else") {
		w.trace("else, flipping condition")
		w.stack.FlipTop()
	}
}

// Stack exposes the liveness stack for inspection.
func (w *Walker) Stack() *Stack {
	return &w.stack
}

// Result scans the collected terminals for configuration field accesses,
// paints them, and returns the walk's result. The scan runs once; later calls
// return the same result.
func (w *Walker) Result() ParseResult {
	if w.result != nil {
		return *w.result
	}

	fields := ScanConfigFields(w.terminals, w.configRoot)
	for _, f := range fields {
		w.painter.PaintForeground(w.palette.Color(RoleConfigField), f.Range)
	}

	broken := make([]string, len(w.broken))
	copy(broken, w.broken)

	w.result = &ParseResult{
		ConfigFields:     fields,
		BrokenConditions: broken,
	}
	return *w.result
}

func (w *Walker) debugEnabled() bool {
	return w.log.Enabled(context.Background(), slog.LevelDebug)
}

func (w *Walker) trace(msg string, args ...any) {
	if w.debugEnabled() {
		w.log.Debug(msg, args...)
	}
}

type unresolved struct{}

func (unresolved) Value(string) (bool, bool) { return false, false }

type discardPainter struct{}

func (discardPainter) PaintBackground(Color, Range) {}
func (discardPainter) PaintForeground(Color, Range) {}
