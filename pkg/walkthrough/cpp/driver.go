// Package cpp drives a walkthrough.Walker from a tree-sitter C or C++ tree.
package cpp

import (
	"iter"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/livewalk/pkg/parser"
	"github.com/panbanda/livewalk/pkg/walkthrough"
)

// leafTypes are reported as a single terminal even though tree-sitter may
// give them children.
var leafTypes = map[string]bool{
	"string_literal":     true,
	"raw_string_literal": true,
	"char_literal":       true,
	"system_lib_string":  true,
}

// statementParents are the node types whose direct declaration children are
// block-level declaration statements rather than file or member declarations.
var statementParents = map[string]bool{
	"compound_statement": true,
	"case_statement":     true,
	"labeled_statement":  true,
}

// blockDeclarations are the declaration forms that count as a declaration
// statement when they appear inside a function body.
var blockDeclarations = map[string]bool{
	"declaration":                true,
	"alias_declaration":          true,
	"using_declaration":          true,
	"static_assert_declaration":  true,
	"type_definition":            true,
	"namespace_alias_definition": true,
}

// preprocBlocks wrap statements without being statements themselves.
var preprocBlocks = map[string]bool{
	"preproc_if":      true,
	"preproc_ifdef":   true,
	"preproc_else":    true,
	"preproc_elif":    true,
	"preproc_elifdef": true,
}

// conditionalTypes carry a condition the walker looks up.
var conditionalTypes = map[string]bool{
	"if_statement":     true,
	"switch_statement": true,
	"while_statement":  true,
	"for_statement":    true,
}

type nodeKey struct {
	start, end uint32
	typ        string
}

func keyOf(n *sitter.Node) nodeKey {
	return nodeKey{start: n.StartByte(), end: n.EndByte(), typ: n.Type()}
}

// Events returns the walk events of a parsed file in depth-first source order.
func Events(result *parser.ParseResult) iter.Seq[walkthrough.Event] {
	return NodeEvents(result.Tree.RootNode(), result.Source)
}

// NodeEvents returns the walk events of the subtree rooted at root.
func NodeEvents(root *sitter.Node, source []byte) iter.Seq[walkthrough.Event] {
	return func(yield func(walkthrough.Event) bool) {
		if root == nil {
			return
		}
		d := &driver{
			source:     source,
			conditions: make(map[nodeKey]struct{}),
			yield:      yield,
		}
		d.visit(root)
	}
}

// Walk runs a Walker over a parsed file.
func Walk(result *parser.ParseResult, values walkthrough.ValueSource, painter walkthrough.Painter, opts ...walkthrough.Option) walkthrough.ParseResult {
	opts = append([]walkthrough.Option{walkthrough.WithSource(result.Source)}, opts...)
	return walkthrough.Run(Events(result), values, painter, opts...)
}

type driver struct {
	source     []byte
	conditions map[nodeKey]struct{}
	yield      func(walkthrough.Event) bool
}

// visit returns false once the consumer stops the iteration.
func (d *driver) visit(n *sitter.Node) bool {
	typ := n.Type()
	if typ == "comment" {
		return true
	}

	key := keyOf(n)
	if _, ok := d.conditions[key]; ok {
		delete(d.conditions, key)
		r := rangeOf(n)
		if !d.yield(walkthrough.EnteredCondition(d.joinedText(n), r)) {
			return false
		}
		if !d.visitNode(n, typ) {
			return false
		}
		return d.yield(walkthrough.Exited(walkthrough.KindCondition, r))
	}

	return d.visitNode(n, typ)
}

func (d *driver) visitNode(n *sitter.Node, typ string) bool {
	if isLeaf(n, typ) {
		if n.StartByte() == n.EndByte() {
			return true // MISSING node inserted by error recovery
		}
		return d.yield(walkthrough.Terminal(d.token(n)))
	}

	if conditionalTypes[typ] {
		if c := conditionOf(n); c != nil {
			d.conditions[keyOf(c)] = struct{}{}
		}
	}

	kind := statementKind(n, typ)
	r := rangeOf(n)
	if kind != walkthrough.KindNone {
		ev := walkthrough.Entered(kind, r)
		if kind == walkthrough.KindJumpStatement {
			ev.Text = parser.GetNodeText(n.Child(0), d.source)
		}
		if !d.yield(ev) {
			return false
		}
	}

	var init *sitter.Node
	if typ == "for_statement" {
		init = forInitExpression(n)
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if init != nil && keyOf(child) == keyOf(init) {
			var semi *sitter.Node
			if next := child.NextSibling(); next != nil && next.Type() == ";" {
				semi = next
				i++
			}
			if !d.visitForInit(child, semi) {
				return false
			}
			continue
		}
		if !d.visit(child) {
			return false
		}
	}

	if kind != walkthrough.KindNone {
		return d.yield(walkthrough.Exited(kind, r))
	}
	return true
}

// visitForInit reports the expression initializer of a for loop, with its
// semicolon when present, as an expression statement.
func (d *driver) visitForInit(expr, semi *sitter.Node) bool {
	r := rangeOf(expr)
	if semi != nil {
		r.Stop = int(semi.EndByte())
	}
	if !d.yield(walkthrough.Entered(walkthrough.KindExpressionStatement, r)) {
		return false
	}
	if !d.visit(expr) {
		return false
	}
	if semi != nil && !d.visit(semi) {
		return false
	}
	return d.yield(walkthrough.Exited(walkthrough.KindExpressionStatement, r))
}

func (d *driver) token(n *sitter.Node) walkthrough.Token {
	p := n.StartPoint()
	return walkthrough.Token{
		Text:   parser.GetNodeText(n, d.source),
		Range:  rangeOf(n),
		Line:   int(p.Row) + 1,
		Column: int(p.Column) + 1,
	}
}

// joinedText concatenates the terminal texts under n, dropping whitespace
// and comments, so `a && b` is looked up as "a&&b".
func (d *driver) joinedText(n *sitter.Node) string {
	var sb strings.Builder
	var collect func(*sitter.Node)
	collect = func(n *sitter.Node) {
		typ := n.Type()
		if typ == "comment" {
			return
		}
		if isLeaf(n, typ) {
			sb.WriteString(parser.GetNodeText(n, d.source))
			return
		}
		for i := range int(n.ChildCount()) {
			collect(n.Child(i))
		}
	}
	collect(n)
	return sb.String()
}

func isLeaf(n *sitter.Node, typ string) bool {
	return n.ChildCount() == 0 || leafTypes[typ]
}

func rangeOf(n *sitter.Node) walkthrough.Range {
	return walkthrough.Range{Start: int(n.StartByte()), Stop: int(n.EndByte())}
}

func statementKind(n *sitter.Node, typ string) walkthrough.NodeKind {
	switch typ {
	case "function_definition":
		return walkthrough.KindFunctionDefinition
	case "expression_statement", "throw_statement":
		return walkthrough.KindExpressionStatement
	case "return_statement", "break_statement", "continue_statement", "goto_statement":
		return walkthrough.KindJumpStatement
	case "if_statement", "switch_statement":
		return walkthrough.KindSelectionStatement
	}
	if blockDeclarations[typ] {
		if parent := statementParent(n); parent != nil && statementParents[parent.Type()] {
			return walkthrough.KindDeclarationStatement
		}
	}
	return walkthrough.KindNone
}

// statementParent returns the nearest ancestor of n that is not a
// preprocessor conditional block.
func statementParent(n *sitter.Node) *sitter.Node {
	parent := n.Parent()
	for parent != nil && preprocBlocks[parent.Type()] {
		parent = parent.Parent()
	}
	return parent
}

// forInitExpression returns the initializer of a for loop when it is an
// expression rather than a declaration.
func forInitExpression(n *sitter.Node) *sitter.Node {
	init := n.ChildByFieldName("initializer")
	if init == nil || init.Type() == "declaration" {
		return nil
	}
	return init
}

// conditionOf returns the node whose text is the condition of a conditional
// statement, without the surrounding parentheses.
func conditionOf(n *sitter.Node) *sitter.Node {
	c := n.ChildByFieldName("condition")
	if c == nil {
		return nil
	}

	switch c.Type() {
	case "condition_clause":
		if v := c.ChildByFieldName("value"); v != nil {
			return v
		}
		return lastNamedChild(c)
	case "parenthesized_expression":
		if inner := lastNamedChild(c); inner != nil {
			return inner
		}
	}
	return c
}

func lastNamedChild(n *sitter.Node) *sitter.Node {
	for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
		if child := n.NamedChild(i); child.Type() != "comment" {
			return child
		}
	}
	return nil
}
