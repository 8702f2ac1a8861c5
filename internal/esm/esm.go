// Package esm recognizes and edits ECMAScript import declarations held in
// import blocks.
package esm

import (
	"errors"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

// Result is the outcome of ParseImport: either *Parsed or *Unparseable.
//
//sumtype:decl
type Result interface {
	result()
}

// Parsed is a successfully parsed block. Statements lists its import
// declarations in source order; other statements are kept for printing only.
type Parsed struct {
	Statements []*Statement
	ast        *js.AST
}

// Unparseable carries text the parser rejected, unchanged
type Unparseable struct {
	Raw string
	Err error
}

func (*Parsed) result()      {}
func (*Unparseable) result() {}

// String prints the whole block, including any edits made to its statements
func (p *Parsed) String() string {
	return p.ast.JSString()
}

// Statement is a single import declaration
type Statement struct {
	stmt *js.ImportStmt
}

// ParseImport parses the text of an import block
func ParseImport(text string) Result {
	ast, err := js.Parse(parse.NewInputString(text), js.Options{})
	if err != nil {
		return &Unparseable{Raw: text, Err: err}
	}

	parsed := &Parsed{ast: ast}
	for _, item := range ast.List {
		if stmt, ok := item.(*js.ImportStmt); ok {
			parsed.Statements = append(parsed.Statements, &Statement{stmt: stmt})
		}
	}
	return parsed
}

// Source returns the module path without its quotes
func (s *Statement) Source() string {
	module := string(s.stmt.Module)
	if len(module) >= 2 && (module[0] == '"' || module[0] == '\'') && module[len(module)-1] == module[0] {
		return module[1 : len(module)-1]
	}
	return module
}

// Binds reports whether the statement has a named specifier importing name.
// Default and namespace imports never match. A renamed specifier such as
// `{ Meta as M }` matches on Meta even though the local binding is M.
func (s *Statement) Binds(name string) bool {
	if s.isNamespace() {
		return false
	}
	for _, alias := range s.stmt.List {
		imported := alias.Binding
		if alias.Name != nil {
			imported = alias.Name
		}
		if alias.Binding != nil && string(imported) == name {
			return true
		}
	}
	return false
}

// ErrNamespaceImport is returned when adding a named specifier to a
// namespace import, which cannot carry one.
var ErrNamespaceImport = errors.New("cannot add a named specifier to a namespace import")

// AddNamed appends `name` to the named specifiers
func (s *Statement) AddNamed(name string) error {
	if s.isNamespace() {
		return ErrNamespaceImport
	}
	list := s.stmt.List
	// a trailing comma leaves an empty placeholder
	for len(list) > 0 && list[len(list)-1].Binding == nil {
		list = list[:len(list)-1]
	}
	s.stmt.List = append(list, js.Alias{Binding: []byte(name)})
	return nil
}

// String prints the statement on its own
func (s *Statement) String() string {
	var sb strings.Builder
	s.stmt.JS(&sb)
	return sb.String()
}

func (s *Statement) isNamespace() bool {
	list := s.stmt.List
	return len(list) == 1 && len(list[0].Name) == 1 && list[0].Name[0] == '*'
}
