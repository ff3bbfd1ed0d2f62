package generator

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/toyz/locations/internal/models"
	"github.com/toyz/locations/internal/parser"
	"github.com/toyz/locations/internal/templates"
	"github.com/toyz/locations/internal/utils"
)

// RuntimeImportPath is the package generated descriptors build on
const RuntimeImportPath = "github.com/toyz/locations/pkg/locations"

var sourceConstants = map[string]string{
	"path":  "locations.SourcePath",
	"query": "locations.SourceQuery",
	"form":  "locations.SourceForm",
}

var bindingOptions = map[string]string{
	"query": "locations.FromQuery",
	"form":  "locations.FromForm",
	"path":  "locations.FromPath",
	"post":  "locations.FromBody",
}

// Generator turns package metadata into descriptor source files
type Generator struct{}

// NewGenerator creates a new code generator instance
func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateFile renders the descriptor file of one package. A package without
// locations yields a file with no content.
func (g *Generator) GenerateFile(metadata *models.PackageMetadata) (*models.GeneratedFile, error) {
	if metadata == nil {
		return nil, fmt.Errorf("metadata cannot be nil")
	}

	result := &models.GeneratedFile{
		PackageName: metadata.PackageName,
		FilePath:    filepath.Join(metadata.PackagePath, parser.GeneratedFileName),
	}
	if len(metadata.Locations) == 0 {
		return result, nil
	}

	data := templates.FileData{
		PackageName: metadata.PackageName,
		Imports:     imports(metadata),
	}
	for _, location := range metadata.Locations {
		expr, err := descriptorExpr(location, metadata)
		if err != nil {
			return nil, err
		}
		data.Locations = append(data.Locations, templates.LocationData{
			VarName:  location.VarName,
			TypeName: location.TypeName,
			Fragment: location.Fragment,
			Expr:     expr,
		})
		result.Locations = append(result.Locations, location.VarName)
	}

	content, err := templates.Render(data)
	if err != nil {
		return nil, err
	}
	formatted, err := utils.FormatGoCodeString(content)
	if err != nil {
		return nil, fmt.Errorf("generated code for package %s does not format: %w", metadata.PackageName, err)
	}
	result.Content = formatted
	return result, nil
}

func imports(metadata *models.PackageMetadata) []templates.ImportSpec {
	specs := []templates.ImportSpec{{Path: RuntimeImportPath}}
	for name, path := range metadata.Imports {
		spec := templates.ImportSpec{Path: path}
		if parser.DefaultImportName(path) != name {
			spec.Name = name
		}
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Path < specs[j].Path })
	return specs
}

// descriptorExpr renders the locations.Define chain of one location
func descriptorExpr(location models.LocationMetadata, metadata *models.PackageMetadata) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "locations.Define[%s](%s)", location.TypeName, strconv.Quote(location.Fragment))
	call := func(format string, args ...any) {
		b.WriteString(".\n\t")
		fmt.Fprintf(&b, format, args...)
	}

	if location.Parent != "" {
		parent, ok := metadata.FindLocation(location.Parent)
		if !ok {
			return "", fmt.Errorf("location %s: unknown parent %s", location.TypeName, location.Parent)
		}
		call("Within(%s)", parent.VarName)
	}
	if location.Name != "" {
		call("Named(%s)", strconv.Quote(location.Name))
	}
	if location.BodyBound {
		call("BodyBound()")
	}
	if location.Lazy {
		call("Eager(false)")
	}
	if len(location.Sources) > 0 {
		sources := make([]string, len(location.Sources))
		for i, s := range location.Sources {
			constant, ok := sourceConstants[s]
			if !ok {
				return "", fmt.Errorf("location %s: unknown source %q", location.TypeName, s)
			}
			sources[i] = constant
		}
		call("Sources(%s)", strings.Join(sources, ", "))
	}

	if len(location.Fields) > 0 {
		call("Fields(")
		for _, field := range location.Fields {
			expr, err := fieldExpr(location.TypeName, field, metadata)
			if err != nil {
				return "", err
			}
			b.WriteString("\n\t\t")
			b.WriteString(expr)
			b.WriteString(",")
		}
		b.WriteString("\n\t)")
	}
	return b.String(), nil
}

func fieldExpr(typeName string, field models.FieldMetadata, metadata *models.PackageMetadata) (string, error) {
	if field.IsNested() {
		nested, ok := metadata.FindLocation(field.Nested)
		if !ok {
			return "", fmt.Errorf("location %s: field %s nests unknown location %s", typeName, field.GoName, field.Nested)
		}
		return fmt.Sprintf("locations.Nested(%s, func(l *%s) *%s { return &l.%s }, %s)",
			strconv.Quote(field.Name), typeName, field.Nested, field.GoName, nested.VarName), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "locations.Field(%s, func(l *%s) *%s { return &l.%s }",
		strconv.Quote(field.Name), typeName, field.TypeExpr, field.GoName)
	for _, binding := range field.Bindings {
		option, ok := bindingOptions[binding.Source]
		if !ok {
			return "", fmt.Errorf("location %s: field %s has unknown source %q", typeName, field.GoName, binding.Source)
		}
		fmt.Fprintf(&b, ", %s(%s)", option, strconv.Quote(binding.Key))
	}
	b.WriteString(")")
	return b.String(), nil
}
