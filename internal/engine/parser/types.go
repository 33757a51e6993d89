package parser

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// File is one parsed source file. Tree holds native memory and must be
// released with Close.
type File struct {
	Path        string
	Language    string
	PackageName string
	Source      []byte
	Tree        *sitter.Tree
}

func (f *File) Root() *sitter.Node {
	if f == nil || f.Tree == nil {
		return nil
	}
	return f.Tree.RootNode()
}

// IsTest reports whether the file is a Go test file.
func (f *File) IsTest() bool {
	return f != nil && isGoTestFile(f.Path)
}

func (f *File) Close() {
	if f != nil && f.Tree != nil {
		f.Tree.Close()
		f.Tree = nil
	}
}
