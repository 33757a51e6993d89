package parser

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"scopecheck/internal/core/errors"
	"scopecheck/internal/shared/observability"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
)

const LanguageGo = "go"

// Parser turns source files into syntax trees. It is safe for concurrent use.
type Parser struct {
	pools      map[string]*ParserPool
	extensions map[string]string
}

func NewParser() *Parser {
	return &Parser{
		pools: map[string]*ParserPool{
			LanguageGo: NewParserPool(sitter.NewLanguage(tree_sitter_go.Language())),
		},
		extensions: map[string]string{
			".go": LanguageGo,
		},
	}
}

// Supports reports whether path has a registered language.
func (p *Parser) Supports(path string) bool {
	return p.DetectLanguage(path) != ""
}

// IsTestFile reports whether path is a test file of a supported language.
func (p *Parser) IsTestFile(path string) bool {
	return p.DetectLanguage(path) == LanguageGo && isGoTestFile(path)
}

func (p *Parser) DetectLanguage(path string) string {
	return p.extensions[strings.ToLower(filepath.Ext(path))]
}

// Parse parses content as the language implied by path's extension.
func (p *Parser) Parse(path string, content []byte) (*File, error) {
	lang := p.DetectLanguage(path)
	if lang == "" {
		return nil, errors.AddContext(errors.New(errors.CodeNotSupported, "unsupported language"), errors.CtxPath, path)
	}
	pool := p.pools[lang]
	if pool == nil {
		return nil, errors.New(errors.CodeInternal, fmt.Sprintf("grammar not loaded: %s", lang))
	}

	start := time.Now()
	sp := pool.Get()
	tree := sp.Parse(content, nil)
	pool.Put(sp)
	observability.ParsingDuration.WithLabelValues(lang).Observe(time.Since(start).Seconds())
	observability.FilesScannedTotal.Inc()

	if tree == nil {
		return nil, errors.AddContext(errors.New(errors.CodeInternal, "parse failed"), errors.CtxPath, path)
	}

	file := &File{
		Path:     path,
		Language: lang,
		Source:   content,
		Tree:     tree,
	}
	file.PackageName = packageName(tree.RootNode(), content)
	return file, nil
}

func packageName(root *sitter.Node, source []byte) string {
	if root == nil {
		return ""
	}
	for i := uint(0); i < root.NamedChildCount(); i++ {
		child := root.NamedChild(i)
		if child == nil || child.Kind() != "package_clause" {
			continue
		}
		for j := uint(0); j < child.NamedChildCount(); j++ {
			ident := child.NamedChild(j)
			if ident != nil && ident.Kind() == "package_identifier" {
				return ident.Utf8Text(source)
			}
		}
	}
	return ""
}

func isGoTestFile(path string) bool {
	return strings.HasSuffix(strings.ToLower(filepath.Base(path)), "_test.go")
}
