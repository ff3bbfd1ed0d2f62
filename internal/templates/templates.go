package templates

import (
	"bytes"
	"fmt"
	"text/template"
)

// ImportSpec is one import of a generated file. Name is empty when the
// package's default name matches.
type ImportSpec struct {
	Name string
	Path string
}

// LocationData is one generated descriptor variable.
type LocationData struct {
	VarName  string
	TypeName string
	Fragment string
	Expr     string
}

// FileData is everything the locations file template needs.
type FileData struct {
	PackageName string
	Imports     []ImportSpec
	Locations   []LocationData
}

// GeneratedHeader opens every generated file
const GeneratedHeader = "// Code generated by locgen. DO NOT EDIT."

// LocationsFileTemplate renders a package's descriptor file
const LocationsFileTemplate = GeneratedHeader + `

package {{.PackageName}}

import (
{{- range .Imports}}
	{{if .Name}}{{.Name}} {{end}}{{quote .Path}}
{{- end}}
)
{{range .Locations}}
// {{.VarName}} binds {{.TypeName}} to {{quote .Fragment}}.
var {{.VarName}} = {{.Expr}}
{{end}}`

var locationsFile = template.Must(template.New("locations").Funcs(template.FuncMap{
	"quote": func(s string) string { return fmt.Sprintf("%q", s) },
}).Parse(LocationsFileTemplate))

// Render executes the locations file template.
func Render(data FileData) (string, error) {
	var buf bytes.Buffer
	if err := locationsFile.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}
