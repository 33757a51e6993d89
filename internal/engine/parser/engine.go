package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// NodeHandler processes a node. Returning true tells the walker the handler
// took care of the children itself.
type NodeHandler func(ctx *Context, node *sitter.Node) bool

// Context carries the file being walked and text helpers.
type Context struct {
	File *File
}

// Walker walks a syntax tree and dispatches handlers by node kind. Nodes
// without a handler have their named children walked in order.
type Walker struct {
	handlers map[string]NodeHandler
}

func NewWalker(handlers map[string]NodeHandler) *Walker {
	return &Walker{handlers: handlers}
}

func (w *Walker) Walk(ctx *Context, node *sitter.Node) {
	if node == nil {
		return
	}
	if handler, ok := w.handlers[node.Kind()]; ok {
		if handler(ctx, node) {
			return
		}
	}
	w.WalkChildren(ctx, node)
}

func (w *Walker) WalkChildren(ctx *Context, node *sitter.Node) {
	if node == nil {
		return
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		w.Walk(ctx, node.NamedChild(i))
	}
}

func (c *Context) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(c.File.Source[node.StartByte():node.EndByte()])
}

func (c *Context) Location(node *sitter.Node) Location {
	pos := node.StartPosition()
	return Location{
		File:   c.File.Path,
		Line:   int(pos.Row) + 1,
		Column: int(pos.Column) + 1,
	}
}

// HasChild reports whether node has a direct child (named or anonymous) of kind.
func HasChild(node *sitter.Node, kind string) bool {
	if node == nil {
		return false
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil && child.Kind() == kind {
			return true
		}
	}
	return false
}

// NamedChildrenOfKind returns the direct named children of node with kind.
func NamedChildrenOfKind(node *sitter.Node, kind string) []*sitter.Node {
	if node == nil {
		return nil
	}
	var out []*sitter.Node
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if child := node.NamedChild(i); child != nil && child.Kind() == kind {
			out = append(out, child)
		}
	}
	return out
}

// FieldChildren returns every direct child stored under field.
func FieldChildren(node *sitter.Node, field string) []*sitter.Node {
	if node == nil {
		return nil
	}
	var out []*sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		if node.FieldNameForChild(uint32(i)) == field {
			out = append(out, node.Child(i))
		}
	}
	return out
}
