package annotations

import "fmt"

// AnnotationType represents the type of a //locations:: annotation
type AnnotationType int

const (
	LocationAnnotation AnnotationType = iota
	QueryAnnotation
	FormAnnotation
	PathAnnotation
	PostAnnotation
	NestedAnnotation
	IgnoreAnnotation
)

var annotationNames = map[AnnotationType]string{
	LocationAnnotation: "location",
	QueryAnnotation:    "query",
	FormAnnotation:     "form",
	PathAnnotation:     "path",
	PostAnnotation:     "post",
	NestedAnnotation:   "nested",
	IgnoreAnnotation:   "ignore",
}

// String returns the string representation of the annotation type
func (a AnnotationType) String() string {
	if name, ok := annotationNames[a]; ok {
		return name
	}
	return "unknown"
}

// IsField reports whether the annotation belongs on a struct field rather
// than on a type declaration.
func (a AnnotationType) IsField() bool {
	return a != LocationAnnotation
}

// IsBinding reports whether the annotation binds a field to a request source.
func (a AnnotationType) IsBinding() bool {
	switch a {
	case QueryAnnotation, FormAnnotation, PathAnnotation, PostAnnotation:
		return true
	}
	return false
}

// ParseAnnotationType converts string to AnnotationType
func ParseAnnotationType(s string) (AnnotationType, error) {
	for t, name := range annotationNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown annotation type: %s", s)
}

// SourceLocation represents the location of an annotation in source code
type SourceLocation struct {
	File   string // File path
	Line   int    // Line number (1-based)
	Column int    // Column number (1-based)
}

func (l SourceLocation) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// ParsedAnnotation is one parsed and schema-checked annotation.
type ParsedAnnotation struct {
	Type     AnnotationType
	Args     []string
	Options  map[string][]string
	Location SourceLocation
	Raw      string
}

// Arg returns the i-th positional argument or "".
func (a *ParsedAnnotation) Arg(i int) string {
	if i < len(a.Args) {
		return a.Args[i]
	}
	return ""
}

// Flag reports whether option name was given, with or without values.
func (a *ParsedAnnotation) Flag(name string) bool {
	_, ok := a.Options[name]
	return ok
}

// Option returns the first value of option name.
func (a *ParsedAnnotation) Option(name string) (string, bool) {
	values := a.Options[name]
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Values returns every value of option name.
func (a *ParsedAnnotation) Values(name string) []string {
	return a.Options[name]
}
