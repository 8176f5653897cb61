package dsl

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// ErrNoRecords is returned when a source file declares no exported structs.
var ErrNoRecords = errors.New("dsl: no exported struct types")

// AST is what the generator needs from a Go source file.
type AST struct {
	Package  string
	Entities []Entity
	// Imports maps the package name used in field types to its import path.
	Imports  map[string]string
}

type Entity struct {
	Name    string
	// Pointer is set when the struct declares any pointer-receiver method.
	Pointer bool
	Fields  []Field
}

type Field struct {
	Name   string // Go field name
	Column string // column name from the db tag, or Name
	Type   string // type expression as written in the source
	PK     bool
}

// ParseSource reads a Go source file and collects its exported struct
// types. Fields tagged `db:"-"`, unexported fields and embedded fields are
// left out.
func ParseSource(src []byte) (AST, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", src, parser.SkipObjectResolution)
	if err != nil {
		return AST{}, fmt.Errorf("dsl: parse: %w", err)
	}

	imports := map[string]string{}
	for _, spec := range file.Imports {
		path, _ := strconv.Unquote(spec.Path.Value)
		name := path[strings.LastIndex(path, "/")+1:]
		if spec.Name != nil {
			name = spec.Name.Name
		}
		imports[name] = path
	}

	out := AST{Package: file.Name.Name, Imports: map[string]string{}}
	pointers := pointerReceivers(file)
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts := spec.(*ast.TypeSpec)
			st, ok := ts.Type.(*ast.StructType)
			if !ok || !ts.Name.IsExported() || ts.TypeParams != nil {
				continue
			}
			ent := Entity{Name: ts.Name.Name, Pointer: pointers[ts.Name.Name]}
			for _, f := range st.Fields.List {
				typ := exprString(src, fset, f.Type)
				used := false
				for _, n := range f.Names {
					if !n.IsExported() {
						continue
					}
					if field, keep := fieldFor(n.Name, typ, f.Tag); keep {
						ent.Fields = append(ent.Fields, field)
						used = true
					}
				}
				if !used {
					continue
				}
				for _, pkg := range selectors(f.Type) {
					if path, ok := imports[pkg]; ok {
						out.Imports[pkg] = path
					}
				}
			}
			out.Entities = append(out.Entities, ent)
		}
	}
	if len(out.Entities) == 0 {
		return AST{}, ErrNoRecords
	}
	return out, nil
}

func fieldFor(name, typ string, lit *ast.BasicLit) (Field, bool) {
	f := Field{Name: name, Column: name, Type: typ}
	if lit == nil {
		return f, true
	}
	raw, err := strconv.Unquote(lit.Value)
	if err != nil {
		return f, true
	}
	tag, ok := reflect.StructTag(raw).Lookup("db")
	if !ok {
		return f, true
	}
	if tag == "-" {
		return Field{}, false
	}
	parts := strings.Split(tag, ",")
	if c := strings.TrimSpace(parts[0]); c != "" {
		f.Column = c
	}
	for _, opt := range parts[1:] {
		if strings.TrimSpace(opt) == "pk" {
			f.PK = true
		}
	}
	return f, true
}

func pointerReceivers(file *ast.File) map[string]bool {
	out := map[string]bool{}
	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Recv == nil || len(fd.Recv.List) == 0 {
			continue
		}
		if star, ok := fd.Recv.List[0].Type.(*ast.StarExpr); ok {
			if id, ok := star.X.(*ast.Ident); ok {
				out[id.Name] = true
			}
		}
	}
	return out
}

// selectors lists the package names referenced by a type expression.
func selectors(expr ast.Expr) []string {
	seen := map[string]bool{}
	ast.Inspect(expr, func(n ast.Node) bool {
		if sel, ok := n.(*ast.SelectorExpr); ok {
			if id, ok := sel.X.(*ast.Ident); ok {
				seen[id.Name] = true
			}
		}
		return true
	})
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func exprString(src []byte, fset *token.FileSet, expr ast.Expr) string {
	start := fset.Position(expr.Pos()).Offset
	end := fset.Position(expr.End()).Offset
	return string(src[start:end])
}
