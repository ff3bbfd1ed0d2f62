package models

import "slices"

// PackageMetadata represents all location annotations found in a package
type PackageMetadata struct {
	PackageName string             // name of the Go package
	PackagePath string             // file system path to the package
	Locations   []LocationMetadata // annotated location types, in source order
	Imports     map[string]string  // package name -> import path used by field types
}

// LocationMetadata describes one //locations::location type.
type LocationMetadata struct {
	TypeName  string   // Go type name
	VarName   string   // generated descriptor variable
	Fragment  string   // route path fragment
	Parent    string   // type name of the enclosing location, if any
	Name      string   // explicit location name
	BodyBound bool     // hydrate from the JSON body first
	Lazy      bool     // skip merged fallback for unannotated fields
	Sources   []string // restricts the merged fallback when set
	Fields    []FieldMetadata
	File      string
	Line      int
}

// FieldMetadata describes one bound field of a location type.
type FieldMetadata struct {
	Name     string            // binding name
	GoName   string            // struct field name
	TypeExpr string            // field type as written in source
	Nested   string            // location type of a nested field
	Bindings []BindingMetadata // explicit source annotations
}

// BindingMetadata is one explicit source annotation on a field.
type BindingMetadata struct {
	Source string // query, form, path or post
	Key    string // lookup key, empty means the field name
}

// IsNested reports whether the field hydrates through another location.
func (f FieldMetadata) IsNested() bool {
	return f.Nested != ""
}

// FindLocation returns the location declared for typeName.
func (p *PackageMetadata) FindLocation(typeName string) (*LocationMetadata, bool) {
	i := slices.IndexFunc(p.Locations, func(l LocationMetadata) bool { return l.TypeName == typeName })
	if i < 0 {
		return nil, false
	}
	return &p.Locations[i], true
}

// GeneratedFile represents a generated descriptor file
type GeneratedFile struct {
	PackageName string
	FilePath    string
	Content     string
	Locations   []string // generated descriptor variables
}
