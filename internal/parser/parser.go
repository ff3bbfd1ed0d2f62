package parser

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/toyz/locations/internal/annotations"
	"github.com/toyz/locations/internal/models"
)

// Parser extracts location metadata from annotated Go source
type Parser struct {
	fileSet     *token.FileSet
	annotations *annotations.Parser
}

// NewParser creates a new annotation parser
func NewParser() *Parser {
	return &Parser{
		fileSet:     token.NewFileSet(),
		annotations: annotations.NewParser(),
	}
}

// ParseSource parses source code from a string for testing purposes
func (p *Parser) ParseSource(filename, source string) (*models.PackageMetadata, error) {
	file, err := parser.ParseFile(p.fileSet, filename, source, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source: %w", err)
	}

	metadata := newMetadata(file.Name.Name, "./")
	if err := p.processFile(file, metadata); err != nil {
		return nil, err
	}
	if err := resolveReferences(metadata); err != nil {
		return nil, err
	}
	return metadata, nil
}

// ParseDirectory parses the non-test Go files of one package directory
func (p *Parser) ParseDirectory(dir string) (*models.PackageMetadata, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []*ast.File
	for _, entry := range entries {
		if entry.IsDir() || !IsSourceFile(entry.Name()) {
			continue
		}
		file, err := parser.ParseFile(p.fileSet, filepath.Join(dir, entry.Name()), nil, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", entry.Name(), err)
		}
		files = append(files, file)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no Go packages found in directory %s", dir)
	}

	metadata := newMetadata(files[0].Name.Name, dir)
	for _, file := range files {
		if file.Name.Name != metadata.PackageName {
			return nil, fmt.Errorf("multiple packages found in directory %s: %s and %s", dir, metadata.PackageName, file.Name.Name)
		}
		if err := p.processFile(file, metadata); err != nil {
			return nil, err
		}
	}

	if err := resolveReferences(metadata); err != nil {
		return nil, err
	}
	return metadata, nil
}

// IsSourceFile reports whether name is a Go file the parser should read.
func IsSourceFile(name string) bool {
	return strings.HasSuffix(name, ".go") &&
		!strings.HasSuffix(name, "_test.go") &&
		name != GeneratedFileName
}

func newMetadata(name, dir string) *models.PackageMetadata {
	return &models.PackageMetadata{
		PackageName: name,
		PackagePath: dir,
		Imports:     map[string]string{},
	}
}

// processFile collects every annotated struct type declared in file
func (p *Parser) processFile(file *ast.File, metadata *models.PackageMetadata) error {
	imports := fileImports(file)

	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			typeSpec := spec.(*ast.TypeSpec)
			doc := typeSpec.Doc
			if doc == nil && len(gen.Specs) == 1 {
				doc = gen.Doc
			}

			ann, err := p.locationAnnotation(doc)
			if err != nil {
				return err
			}
			if ann == nil {
				continue
			}

			structType, ok := typeSpec.Type.(*ast.StructType)
			if !ok {
				return fmt.Errorf("%s: location annotation on %s requires a struct type", ann.Location, typeSpec.Name.Name)
			}
			if typeSpec.TypeParams != nil {
				return fmt.Errorf("%s: location type %s cannot be generic", ann.Location, typeSpec.Name.Name)
			}

			location, err := p.buildLocation(typeSpec.Name.Name, ann, structType, imports, metadata)
			if err != nil {
				return err
			}
			if _, dup := metadata.FindLocation(location.TypeName); dup {
				return fmt.Errorf("%s: location %s declared twice", ann.Location, location.TypeName)
			}
			metadata.Locations = append(metadata.Locations, location)
		}
	}
	return nil
}

// parseGroup parses every //locations:: line of a comment group
func (p *Parser) parseGroup(group *ast.CommentGroup) ([]*annotations.ParsedAnnotation, error) {
	if group == nil {
		return nil, nil
	}

	var parsed []*annotations.ParsedAnnotation
	for _, comment := range group.List {
		if !annotations.IsAnnotation(comment.Text) {
			continue
		}
		pos := p.fileSet.Position(comment.Pos())
		ann, err := p.annotations.Parse(comment.Text, annotations.SourceLocation{
			File:   pos.Filename,
			Line:   pos.Line,
			Column: pos.Column,
		})
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, ann)
	}
	return parsed, nil
}

func (p *Parser) locationAnnotation(doc *ast.CommentGroup) (*annotations.ParsedAnnotation, error) {
	parsed, err := p.parseGroup(doc)
	if err != nil {
		return nil, err
	}

	var location *annotations.ParsedAnnotation
	for _, ann := range parsed {
		if ann.Type != annotations.LocationAnnotation {
			return nil, fmt.Errorf("%s: %s annotation belongs on a struct field", ann.Location, ann.Type)
		}
		if location != nil {
			return nil, fmt.Errorf("%s: duplicate location annotation", ann.Location)
		}
		location = ann
	}
	return location, nil
}

func (p *Parser) buildLocation(typeName string, ann *annotations.ParsedAnnotation, structType *ast.StructType, imports map[string]string, metadata *models.PackageMetadata) (models.LocationMetadata, error) {
	location := models.LocationMetadata{
		TypeName:  typeName,
		VarName:   typeName + LocationVarSuffix,
		Fragment:  ann.Arg(0),
		BodyBound: ann.Flag("body"),
		Lazy:      ann.Flag("lazy"),
		Sources:   ann.Values("sources"),
		File:      ann.Location.File,
		Line:      ann.Location.Line,
	}
	location.Parent, _ = ann.Option("parent")
	location.Name, _ = ann.Option("name")

	seen := map[string]bool{}
	for _, field := range structType.Fields.List {
		fields, err := p.buildFields(field, imports, metadata)
		if err != nil {
			return location, err
		}
		for _, f := range fields {
			if seen[f.Name] {
				return location, fmt.Errorf("%s: location %s binds %q twice", ann.Location, typeName, f.Name)
			}
			seen[f.Name] = true
			location.Fields = append(location.Fields, f)
		}
	}
	return location, nil
}

func (p *Parser) buildFields(field *ast.Field, imports map[string]string, metadata *models.PackageMetadata) ([]models.FieldMetadata, error) {
	parsed, err := p.parseGroup(field.Doc)
	if err != nil {
		return nil, err
	}
	trailing, err := p.parseGroup(field.Comment)
	if err != nil {
		return nil, err
	}
	parsed = append(parsed, trailing...)

	var (
		bindings []models.BindingMetadata
		nested   bool
	)
	for _, ann := range parsed {
		switch {
		case ann.Type == annotations.IgnoreAnnotation:
			return nil, nil
		case ann.Type == annotations.NestedAnnotation:
			nested = true
		case ann.Type.IsBinding():
			bindings = append(bindings, models.BindingMetadata{Source: ann.Type.String(), Key: ann.Arg(0)})
		default:
			return nil, fmt.Errorf("%s: %s annotation belongs on a type declaration", ann.Location, ann.Type)
		}
	}

	if len(field.Names) == 0 {
		if len(parsed) > 0 {
			return nil, fmt.Errorf("%s: embedded fields cannot be bound", p.fileSet.Position(field.Pos()))
		}
		return nil, nil
	}

	annotated := nested || len(bindings) > 0
	if !annotated && !bindable(field.Type) {
		return nil, nil
	}
	if nested && len(bindings) > 0 {
		return nil, fmt.Errorf("%s: nested fields cannot carry source annotations", p.fileSet.Position(field.Pos()))
	}

	var nestedType string
	if nested {
		ident, ok := field.Type.(*ast.Ident)
		if !ok {
			return nil, fmt.Errorf("%s: nested field must be a location type declared in the same package", p.fileSet.Position(field.Pos()))
		}
		nestedType = ident.Name
	} else if err := collectImports(field.Type, imports, metadata); err != nil {
		return nil, fmt.Errorf("%s: %w", p.fileSet.Position(field.Pos()), err)
	}

	var fields []models.FieldMetadata
	for _, name := range field.Names {
		if !name.IsExported() {
			if annotated {
				return nil, fmt.Errorf("%s: annotated field %s must be exported", p.fileSet.Position(name.Pos()), name.Name)
			}
			continue
		}
		fields = append(fields, models.FieldMetadata{
			Name:     bindingName(name.Name, field.Tag),
			GoName:   name.Name,
			TypeExpr: types.ExprString(field.Type),
			Nested:   nestedType,
			Bindings: bindings,
		})
	}
	return fields, nil
}

// bindable reports whether an unannotated field type can be coerced from
// request strings. Unknown named types are assumed to be.
func bindable(expr ast.Expr) bool {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return bindable(t.X)
	case *ast.ArrayType:
		return bindable(t.Elt)
	case *ast.Ident, *ast.SelectorExpr:
		return true
	default:
		return false
	}
}

// bindingName derives the request key of a field from its json tag, or from
// its name with the leading initialism lowered.
func bindingName(goName string, tag *ast.BasicLit) string {
	if tag != nil {
		if raw, err := strconv.Unquote(tag.Value); err == nil {
			name, _, _ := strings.Cut(reflect.StructTag(raw).Get("json"), ",")
			if name != "" && name != "-" {
				return name
			}
		}
	}

	runes := []rune(goName)
	upper := 0
	for upper < len(runes) && unicode.IsUpper(runes[upper]) {
		upper++
	}
	if upper > 1 && upper < len(runes) {
		// keep the first letter of the next word: "URLPath" -> "urlPath"
		upper--
	}
	for i := 0; i < upper; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

func fileImports(file *ast.File) map[string]string {
	imports := map[string]string{}
	for _, spec := range file.Imports {
		importPath, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := DefaultImportName(importPath)
		if spec.Name != nil {
			if spec.Name.Name == "_" || spec.Name.Name == "." {
				continue
			}
			name = spec.Name.Name
		}
		imports[name] = importPath
	}
	return imports
}

var versionSuffix = regexp.MustCompile(`^v[0-9]+$`)

func DefaultImportName(importPath string) string {
	base := path.Base(importPath)
	if versionSuffix.MatchString(base) {
		base = path.Base(path.Dir(importPath))
	}
	base = strings.TrimPrefix(base, "go-")
	if i := strings.IndexAny(base, ".-"); i > 0 {
		base = base[:i]
	}
	return base
}

// collectImports records the import path of every package a field type
// refers to.
func collectImports(expr ast.Expr, imports map[string]string, metadata *models.PackageMetadata) error {
	var err error
	ast.Inspect(expr, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok || err != nil {
			return err == nil
		}
		pkg, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}
		importPath, ok := imports[pkg.Name]
		if !ok {
			err = fmt.Errorf("package %s is not imported", pkg.Name)
			return false
		}
		if existing, ok := metadata.Imports[pkg.Name]; ok && existing != importPath {
			err = fmt.Errorf("package name %s refers to both %s and %s", pkg.Name, existing, importPath)
			return false
		}
		metadata.Imports[pkg.Name] = importPath
		return false
	})
	return err
}

// resolveReferences checks that parents and nested fields name locations of
// the same package, and that parent chains do not cycle.
func resolveReferences(metadata *models.PackageMetadata) error {
	for _, location := range metadata.Locations {
		where := fmt.Sprintf("%s:%d", location.File, location.Line)
		if location.Parent != "" {
			if _, ok := metadata.FindLocation(location.Parent); !ok {
				return fmt.Errorf("%s: parent %s of %s is not a location in package %s", where, location.Parent, location.TypeName, metadata.PackageName)
			}
		}
		for _, field := range location.Fields {
			if field.IsNested() {
				if _, ok := metadata.FindLocation(field.Nested); !ok {
					return fmt.Errorf("%s: nested field %s.%s has type %s which is not a location", where, location.TypeName, field.GoName, field.Nested)
				}
			}
		}
	}

	for _, location := range metadata.Locations {
		visited := map[string]bool{}
		for current := location.TypeName; current != ""; {
			if visited[current] {
				return fmt.Errorf("%s:%d: parent chain of %s forms a cycle", location.File, location.Line, location.TypeName)
			}
			visited[current] = true
			next, _ := metadata.FindLocation(current)
			current = next.Parent
		}
	}
	return nil
}

// SortedImports returns the import paths of metadata in a stable order
func SortedImports(metadata *models.PackageMetadata) []string {
	paths := make([]string, 0, len(metadata.Imports))
	for _, p := range metadata.Imports {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
