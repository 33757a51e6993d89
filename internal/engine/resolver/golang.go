package resolver

import (
	stderrors "errors"
	"fmt"

	"scopecheck/internal/core/errors"
	"scopecheck/internal/engine/parser"
	"scopecheck/internal/engine/scope"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Lookup orders. Go has a single namespace per block, so a bare identifier
// may name any of the three kinds.
var (
	valueFirst = []scope.Namespace{scope.Variables, scope.Functions, scope.Types}
	callFirst  = []scope.Namespace{scope.Functions, scope.Variables, scope.Types}
	typeFirst  = []scope.Namespace{scope.Types, scope.Variables, scope.Functions}
)

// checker is the per-package traversal state.
type checker struct {
	r      *Resolver
	stack  *scope.Stack[Symbol]
	walker *parser.Walker
	ctx    *parser.Context

	dotImport bool
	maxDepth  int
	diags     []Diagnostic
	err       error
}

func (c *checker) newWalker() *parser.Walker {
	scoped := func(ctx *parser.Context, node *sitter.Node) bool {
		c.enter()
		c.walker.WalkChildren(ctx, node)
		c.exit()
		return true
	}
	skip := func(*parser.Context, *sitter.Node) bool { return true }

	return parser.NewWalker(map[string]parser.NodeHandler{
		"package_clause":     skip,
		"import_declaration": skip,
		"field_identifier":   skip,
		"label_name":         skip,

		"function_declaration": c.function,
		"method_declaration":   c.function,
		"func_literal":         c.function,

		"block":                       scoped,
		"if_statement":                scoped,
		"for_statement":               scoped,
		"expression_switch_statement": scoped,
		"select_statement":            scoped,
		"expression_case":             scoped,
		"default_case":                scoped,
		"communication_case":          scoped,
		"type_case":                   scoped,
		"type_switch_statement":       c.typeSwitch,

		"var_declaration":   c.valueDeclaration,
		"const_declaration": c.valueDeclaration,
		"type_declaration":  c.typeDeclaration,

		"short_var_declaration":          c.shortVarDeclaration,
		"range_clause":                   c.assignClause,
		"receive_statement":              c.assignClause,
		"parameter_declaration":          c.paramTypeOnly,
		"variadic_parameter_declaration": c.paramTypeOnly,

		"identifier":          c.identifier,
		"type_identifier":     c.typeIdentifier,
		"call_expression":     c.callExpression,
		"selector_expression": c.selectorExpression,
		"qualified_type":      c.qualifiedType,
		"keyed_element":       c.keyedElement,
	})
}

func (c *checker) setFile(f *parser.File) {
	c.ctx = &parser.Context{File: f}
	c.dotImport = false
}

func (c *checker) enter() {
	c.stack.Enter()
	if d := c.stack.Depth(); d > c.maxDepth {
		c.maxDepth = d
	}
}

func (c *checker) exit() {
	if err := c.stack.Exit(); err != nil {
		c.fail(err)
	}
}

// fail records the first scope contract violation.
func (c *checker) fail(err error) {
	if c.err == nil {
		c.err = errors.FromScopeError(err)
	}
}

func (c *checker) report(d Diagnostic) {
	c.diags = append(c.diags, d)
}

// declare adds the identifier node to ns of the innermost scope.
func (c *checker) declare(node *sitter.Node, ns scope.Namespace) {
	if node == nil {
		return
	}
	c.add(ns, Symbol{Ident: c.ctx.Text(node), Location: c.ctx.Location(node)})
}

func (c *checker) add(ns scope.Namespace, sym Symbol) {
	name := sym.Ident
	if name == "" || name == "_" {
		return
	}

	if c.r.opts.ReportShadowing && ns == scope.Variables {
		if prev, hops, ok := c.stack.Resolve(ns, name); ok && hops > 0 && !prev.Universe {
			loc := prev.Location
			c.report(Diagnostic{
				Kind:      KindShadowed,
				Namespace: ns.String(),
				Name:      name,
				Location:  sym.Location,
				Message:   fmt.Sprintf("%s `%s` shadows declaration at %s", ns, name, loc),
				Previous:  &loc,
			})
		}
	}

	if prev, ok := c.declaredElsewhere(ns, name); ok {
		loc := prev.Location
		c.report(Diagnostic{
			Kind:      KindAlreadyDeclared,
			Namespace: ns.String(),
			Name:      name,
			Location:  sym.Location,
			Message:   fmt.Sprintf("`%s` is already declared as a %s in this scope", name, prev.ns),
			Previous:  &loc,
		})
		return
	}

	err := c.stack.Add(ns, sym)
	if err == nil {
		return
	}
	var dup *scope.DuplicateDeclarationError
	if !stderrors.As(err, &dup) {
		c.fail(err)
		return
	}
	d := Diagnostic{
		Kind:      KindAlreadyDeclared,
		Namespace: dup.Namespace.String(),
		Name:      dup.Name,
		Location:  sym.Location,
		Message:   dup.Error(),
	}
	if prev, ok := c.stack.LookupLocal(ns, name); ok {
		loc := prev.Location
		d.Previous = &loc
	}
	c.report(d)
}

type localDecl struct {
	Symbol
	ns scope.Namespace
}

// declaredElsewhere finds name in another namespace of the innermost scope.
// Go has one namespace per block, so such a declaration conflicts.
func (c *checker) declaredElsewhere(ns scope.Namespace, name string) (localDecl, bool) {
	for _, other := range scope.Namespaces {
		if other == ns {
			continue
		}
		if prev, ok := c.stack.LookupLocal(other, name); ok {
			return localDecl{Symbol: prev, ns: other}, true
		}
	}
	return localDecl{}, false
}

// resolve looks name up in each namespace of order and reports it as
// undeclared when none has it.
func (c *checker) resolve(node *sitter.Node, order []scope.Namespace) {
	name := c.ctx.Text(node)
	if name == "" || name == "_" || c.r.ignore[name] {
		return
	}
	for _, ns := range order {
		if _, ok := c.stack.Lookup(ns, name); ok {
			return
		}
	}
	if c.dotImport {
		return
	}
	c.report(Diagnostic{
		Kind:     KindUndeclared,
		Name:     name,
		Location: c.ctx.Location(node),
		Message:  fmt.Sprintf("undeclared identifier `%s`", name),
	})
}

// declarePackageLevel adds the top-level declarations of one file to the
// package scope before any body is walked.
func (c *checker) declarePackageLevel(root *sitter.Node) {
	if root == nil {
		return
	}
	for i := uint(0); i < root.NamedChildCount(); i++ {
		node := root.NamedChild(i)
		switch node.Kind() {
		case "function_declaration":
			name := node.ChildByFieldName("name")
			// init may be declared any number of times and is never referenced.
			if name != nil && c.ctx.Text(name) != "init" {
				c.declare(name, scope.Functions)
			}
		case "type_declaration":
			for _, spec := range typeSpecs(node) {
				c.declare(spec.ChildByFieldName("name"), scope.Types)
			}
		case "var_declaration", "const_declaration":
			for _, spec := range valueSpecs(node) {
				for _, name := range parser.FieldChildren(spec, "name") {
					c.declare(name, scope.Variables)
				}
			}
		}
	}
}

func (c *checker) declareImports(root *sitter.Node) {
	if root == nil {
		return
	}
	for _, decl := range parser.NamedChildrenOfKind(root, "import_declaration") {
		for _, spec := range importSpecs(decl) {
			path := spec.ChildByFieldName("path")
			alias := spec.ChildByFieldName("name")
			if alias == nil {
				if path == nil {
					continue
				}
				// The bound name does not appear in the source; report at the path.
				c.add(scope.Variables, Symbol{Ident: importName(c.ctx.Text(path)), Location: c.ctx.Location(path)})
				continue
			}
			switch alias.Kind() {
			case "dot":
				c.dotImport = true
			case "blank_identifier":
			default:
				c.declare(alias, scope.Variables)
			}
		}
	}
}

// walkTopLevel walks bodies and initialisers; names are already declared.
func (c *checker) walkTopLevel(root *sitter.Node) {
	if root == nil {
		return
	}
	for i := uint(0); i < root.NamedChildCount(); i++ {
		node := root.NamedChild(i)
		switch node.Kind() {
		case "function_declaration", "method_declaration":
			c.function(c.ctx, node)
		case "type_declaration":
			c.typeSpecsBody(node)
		case "var_declaration", "const_declaration":
			for _, spec := range valueSpecs(node) {
				c.walkValueSpec(spec)
			}
		}
	}
}

// function handles declarations and literals. Parameters, results and the
// top level of the body share a single scope.
func (c *checker) function(ctx *parser.Context, node *sitter.Node) bool {
	c.enter()
	if tp := node.ChildByFieldName("type_parameters"); tp != nil {
		c.declareTypeParams(tp)
	}
	if recv := node.ChildByFieldName("receiver"); recv != nil {
		c.receiver(recv)
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		c.parameters(params)
	}
	if result := node.ChildByFieldName("result"); result != nil {
		if result.Kind() == "parameter_list" {
			c.parameters(result)
		} else {
			c.walker.Walk(ctx, result)
		}
	}
	if body := node.ChildByFieldName("body"); body != nil {
		c.walker.WalkChildren(ctx, body)
	}
	c.exit()
	return true
}

func (c *checker) parameters(list *sitter.Node) {
	for i := uint(0); i < list.NamedChildCount(); i++ {
		param := list.NamedChild(i)
		switch param.Kind() {
		case "parameter_declaration", "variadic_parameter_declaration":
			c.walker.Walk(c.ctx, param.ChildByFieldName("type"))
			for _, name := range parser.FieldChildren(param, "name") {
				c.declare(name, scope.Variables)
			}
		default:
			c.walker.Walk(c.ctx, param)
		}
	}
}

// receiver declares the receiver and the type parameters its type
// instantiates, as in func (l *List[T]) Push(v T).
func (c *checker) receiver(list *sitter.Node) {
	for _, param := range parser.NamedChildrenOfKind(list, "parameter_declaration") {
		typ := unwrapPointer(param.ChildByFieldName("type"))
		if typ != nil && typ.Kind() == "generic_type" {
			c.walker.Walk(c.ctx, typ.ChildByFieldName("type"))
			for _, ident := range descendantsOfKind(typ.ChildByFieldName("type_arguments"), "type_identifier") {
				c.declare(ident, scope.Types)
			}
		} else {
			c.walker.Walk(c.ctx, param.ChildByFieldName("type"))
		}
		for _, name := range parser.FieldChildren(param, "name") {
			c.declare(name, scope.Variables)
		}
	}
}

// declareTypeParams declares every type parameter before walking the
// constraints, which may refer to each other.
func (c *checker) declareTypeParams(list *sitter.Node) {
	var constraints []*sitter.Node
	for i := uint(0); i < list.NamedChildCount(); i++ {
		decl := list.NamedChild(i)
		for _, name := range parser.FieldChildren(decl, "name") {
			c.declare(name, scope.Types)
		}
		constraints = append(constraints, decl.ChildByFieldName("type"))
	}
	for _, constraint := range constraints {
		c.walker.Walk(c.ctx, constraint)
	}
}

// paramTypeOnly handles parameters of function types and interface methods,
// whose names bind nothing.
func (c *checker) paramTypeOnly(ctx *parser.Context, node *sitter.Node) bool {
	c.walker.Walk(ctx, node.ChildByFieldName("type"))
	return true
}

func (c *checker) valueDeclaration(_ *parser.Context, node *sitter.Node) bool {
	for _, spec := range valueSpecs(node) {
		c.walkValueSpec(spec)
		for _, name := range parser.FieldChildren(spec, "name") {
			c.declare(name, scope.Variables)
		}
	}
	return true
}

func (c *checker) walkValueSpec(spec *sitter.Node) {
	c.walker.Walk(c.ctx, spec.ChildByFieldName("type"))
	for _, value := range parser.FieldChildren(spec, "value") {
		c.walker.Walk(c.ctx, value)
	}
}

func (c *checker) typeDeclaration(_ *parser.Context, node *sitter.Node) bool {
	for _, spec := range typeSpecs(node) {
		// A type is in scope inside its own definition.
		c.declare(spec.ChildByFieldName("name"), scope.Types)
	}
	c.typeSpecsBody(node)
	return true
}

func (c *checker) typeSpecsBody(node *sitter.Node) {
	for _, spec := range typeSpecs(node) {
		if tp := spec.ChildByFieldName("type_parameters"); tp != nil {
			c.enter()
			c.declareTypeParams(tp)
			c.walker.Walk(c.ctx, spec.ChildByFieldName("type"))
			c.exit()
			continue
		}
		c.walker.Walk(c.ctx, spec.ChildByFieldName("type"))
	}
}

// shortVarDeclaration implements :=, which must introduce at least one new
// name in the current scope and reassigns the others.
func (c *checker) shortVarDeclaration(ctx *parser.Context, node *sitter.Node) bool {
	c.walker.Walk(ctx, node.ChildByFieldName("right"))

	names := identifiers(node.ChildByFieldName("left"))
	fresh := 0
	for _, name := range names {
		text := ctx.Text(name)
		if text == "_" {
			continue
		}
		if _, ok := c.stack.LookupLocal(scope.Variables, text); ok {
			continue
		}
		c.declare(name, scope.Variables)
		fresh++
	}
	if fresh == 0 && len(names) > 0 {
		c.report(Diagnostic{
			Kind:      KindAlreadyDeclared,
			Namespace: scope.Variables.String(),
			Name:      ctx.Text(names[0]),
			Location:  ctx.Location(names[0]),
			Message:   "no new variables on left side of :=",
		})
	}
	return true
}

// assignClause covers range clauses and select receives, both of which
// either declare (:=) or assign (=) their left side.
func (c *checker) assignClause(ctx *parser.Context, node *sitter.Node) bool {
	c.walker.Walk(ctx, node.ChildByFieldName("right"))
	left := node.ChildByFieldName("left")
	if left == nil {
		return true
	}
	if parser.HasChild(node, ":=") {
		for _, name := range identifiers(left) {
			c.declare(name, scope.Variables)
		}
		return true
	}
	c.walker.Walk(ctx, left)
	return true
}

// typeSwitch declares the switch alias afresh in every clause.
func (c *checker) typeSwitch(ctx *parser.Context, node *sitter.Node) bool {
	c.enter()
	c.walker.Walk(ctx, node.ChildByFieldName("initializer"))
	c.walker.Walk(ctx, node.ChildByFieldName("value"))

	var aliases []*sitter.Node
	for _, alias := range parser.FieldChildren(node, "alias") {
		aliases = append(aliases, identifiers(alias)...)
	}

	for i := uint(0); i < node.NamedChildCount(); i++ {
		clause := node.NamedChild(i)
		if clause.Kind() != "type_case" && clause.Kind() != "default_case" {
			continue
		}
		c.enter()
		for _, alias := range aliases {
			c.declare(alias, scope.Variables)
		}
		c.walker.WalkChildren(ctx, clause)
		c.exit()
	}
	c.exit()
	return true
}

func (c *checker) identifier(_ *parser.Context, node *sitter.Node) bool {
	c.resolve(node, valueFirst)
	return true
}

func (c *checker) typeIdentifier(_ *parser.Context, node *sitter.Node) bool {
	c.resolve(node, typeFirst)
	return true
}

func (c *checker) callExpression(ctx *parser.Context, node *sitter.Node) bool {
	fn := node.ChildByFieldName("function")
	if fn == nil || fn.Kind() != "identifier" {
		return false
	}
	c.resolve(fn, callFirst)
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || !child.IsNamed() || node.FieldNameForChild(uint32(i)) == "function" {
			continue
		}
		c.walker.Walk(ctx, child)
	}
	return true
}

// selectorExpression resolves only the operand; the field is a member name.
func (c *checker) selectorExpression(ctx *parser.Context, node *sitter.Node) bool {
	c.walker.Walk(ctx, node.ChildByFieldName("operand"))
	return true
}

func (c *checker) qualifiedType(_ *parser.Context, node *sitter.Node) bool {
	if pkg := node.ChildByFieldName("package"); pkg != nil {
		c.resolve(pkg, valueFirst)
	}
	return true
}

// keyedElement skips bare identifier keys, which name struct fields.
func (c *checker) keyedElement(ctx *parser.Context, node *sitter.Node) bool {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if i == 0 && node.NamedChildCount() > 1 && isBareName(child) {
			continue
		}
		c.walker.Walk(ctx, child)
	}
	return true
}

func isBareName(node *sitter.Node) bool {
	if node.Kind() == "literal_element" && node.NamedChildCount() == 1 {
		node = node.NamedChild(0)
	}
	return node.Kind() == "identifier" || node.Kind() == "field_identifier"
}

func identifiers(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	if node.Kind() == "identifier" {
		return []*sitter.Node{node}
	}
	return parser.NamedChildrenOfKind(node, "identifier")
}

func unwrapPointer(node *sitter.Node) *sitter.Node {
	for node != nil && node.Kind() == "pointer_type" && node.NamedChildCount() > 0 {
		node = node.NamedChild(0)
	}
	return node
}

func descendantsOfKind(node *sitter.Node, kind string) []*sitter.Node {
	if node == nil {
		return nil
	}
	if node.Kind() == kind {
		return []*sitter.Node{node}
	}
	var out []*sitter.Node
	for i := uint(0); i < node.NamedChildCount(); i++ {
		out = append(out, descendantsOfKind(node.NamedChild(i), kind)...)
	}
	return out
}

// valueSpecs returns the var or const specs of a declaration, looking
// through the list node used by parenthesised groups.
func valueSpecs(decl *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := uint(0); i < decl.NamedChildCount(); i++ {
		child := decl.NamedChild(i)
		switch child.Kind() {
		case "var_spec", "const_spec":
			out = append(out, child)
		case "var_spec_list", "const_spec_list":
			out = append(out, valueSpecs(child)...)
		}
	}
	return out
}

func typeSpecs(decl *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := uint(0); i < decl.NamedChildCount(); i++ {
		child := decl.NamedChild(i)
		switch child.Kind() {
		case "type_spec", "type_alias":
			out = append(out, child)
		}
	}
	return out
}

func importSpecs(decl *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := uint(0); i < decl.NamedChildCount(); i++ {
		child := decl.NamedChild(i)
		switch child.Kind() {
		case "import_spec":
			out = append(out, child)
		case "import_spec_list":
			out = append(out, importSpecs(child)...)
		}
	}
	return out
}
