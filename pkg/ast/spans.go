package ast

import "fmt"

// Context locates a node or token in its source text. Rows and columns are 1-based.
type Context struct {
	Source string `json:"source,omitempty"`
	Row    int    `json:"row"`
	Column int    `json:"column"`
	Length int    `json:"length"`
}

// NoContext marks synthesized nodes that have no source location.
var NoContext = Context{}

func (c Context) IsZero() bool {
	return c.Row == 0 && c.Column == 0 && c.Length == 0
}

func (c Context) String() string {
	if c.IsZero() {
		return ""
	}
	return fmt.Sprintf(" (row %d, col %d)", c.Row, c.Column)
}

// Range returns a context starting at start and stretching to the end of end.
func Range(start, end Context) Context {
	if start.IsZero() {
		return end
	}
	if end.IsZero() {
		return start
	}
	out := start
	length := end.Column + end.Length - start.Column
	if length > out.Length {
		out.Length = length
	}
	return out
}

// SetContext annotates the node with the provided context.
func SetContext(node Node, ctx Context) {
	if node == nil {
		return
	}
	if setter, ok := node.(interface{ setContext(Context) }); ok {
		setter.setContext(ctx)
	}
}

// At sets the context and hands the node back, so constructors can be chained.
func At[T Node](node T, ctx Context) T {
	SetContext(node, ctx)
	return node
}
