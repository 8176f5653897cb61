package dsl

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"sort"
	"strings"
	"text/template"

	"github.com/TechXTT/LiteRM/internal/typeconv"
)

const recordImport = "github.com/TechXTT/LiteRM/pkg/record"

// Generator writes RecordFields methods so records can be described
// without walking their struct fields at run time.
type Generator struct {
	Template *template.Template
}

type fileData struct {
	Package  string
	Imports  []string
	Entities []entityData
}

type entityData struct {
	Name     string
	Receiver string
	Fields   []fieldData
}

type fieldData struct {
	Field
	Value string
	Kind  string
}

func NewGenerator() *Generator {
	tmpl := template.Must(template.New("records").Parse(recordsTemplate))
	return &Generator{Template: tmpl}
}

// Generate renders one gofmt-ed file for every entity in ast.
func (g *Generator) Generate(ast AST, w io.Writer) error {
	data := fileData{Package: ast.Package}

	imports := map[string]bool{`"reflect"`: true, quote(recordImport): true}
	for name, path := range ast.Imports {
		if name == path[strings.LastIndex(path, "/")+1:] {
			imports[quote(path)] = true
		} else {
			imports[name+" "+quote(path)] = true
		}
	}
	for imp := range imports {
		data.Imports = append(data.Imports, imp)
	}
	sort.Strings(data.Imports)

	for _, ent := range ast.Entities {
		ed := entityData{Name: ent.Name, Receiver: ent.Name}
		if ent.Pointer {
			ed.Receiver = "*" + ent.Name
		}
		for _, f := range ent.Fields {
			ed.Fields = append(ed.Fields, fieldData{
				Field: f,
				Value: valueExpr(f),
				Kind:  kindExpr(f.Type),
			})
		}
		data.Entities = append(data.Entities, ed)
	}

	var buf bytes.Buffer
	if err := g.Template.Execute(&buf, data); err != nil {
		return err
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("dsl: format generated code: %w", err)
	}
	_, err = w.Write(src)
	return err
}

func quote(s string) string {
	return `"` + s + `"`
}

// plain reports whether a field value can be handed to the builder as is.
func plain(typ string) bool {
	return !strings.HasPrefix(typ, "*") &&
		!strings.HasPrefix(typ, "sql.") &&
		typeconv.MapGoTypeToSQL(typ) != ""
}

func valueExpr(f Field) string {
	if plain(f.Type) {
		return "r." + f.Name
	}
	return "record.Value(r." + f.Name + ")"
}

// kindExpr decides the storage class from the type expression where the
// syntax settles it, and defers to record.KindOf for named types.
func kindExpr(typ string) string {
	switch {
	case typeconv.MapGoTypeToSQL(typ) != "", strings.TrimPrefix(typ, "*") == "time.Time":
		return "record.KindScalar"
	case strings.HasPrefix(typ, "[]"), strings.HasPrefix(typ, "map["), strings.HasPrefix(typ, "["):
		return "record.KindToMany"
	default:
		return "record.KindOf(reflect.TypeFor[" + typ + "]())"
	}
}

const recordsTemplate = `// Code generated by literm gen. DO NOT EDIT.

package {{ .Package }}

import (
{{- range .Imports }}
	{{ . }}
{{- end }}
)
{{ range .Entities }}
// RecordFields describes {{ .Name }} without reflection.
func (r {{ .Receiver }}) RecordFields() []record.Field {
	return []record.Field{
{{- range .Fields }}
		{Name: "{{ .Column }}", Value: {{ .Value }},{{ if .PK }} Identity: true,{{ end }} Kind: {{ .Kind }}, Type: reflect.TypeFor[{{ .Type }}]()},
{{- end }}
	}
}
{{ end }}`
