package annotations

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// optionSpec describes one -option of an annotation.
type optionSpec struct {
	// flag options take no values
	flag bool
	// allowed restricts values when non-empty
	allowed []string
	// multi permits comma separated values
	multi bool
}

// schema describes the arguments and options an annotation type accepts.
type schema struct {
	minArgs, maxArgs int
	usage            string
	options          map[string]optionSpec
}

// SourceNames are the accepted values of the location -sources option.
var SourceNames = []string{"path", "query", "form"}

var fieldSchema = schema{maxArgs: 1}

var schemas = map[AnnotationType]schema{
	LocationAnnotation: {
		minArgs: 1,
		maxArgs: 1,
		usage:   "//locations::location /path [-parent=Type] [-name=name] [-body] [-lazy] [-sources=path,query,form]",
		options: map[string]optionSpec{
			"parent":  {},
			"name":    {},
			"body":    {flag: true},
			"lazy":    {flag: true},
			"sources": {allowed: SourceNames, multi: true},
		},
	},
	QueryAnnotation:  withUsage(fieldSchema, "//locations::query [key]"),
	FormAnnotation:   withUsage(fieldSchema, "//locations::form [key]"),
	PathAnnotation:   withUsage(fieldSchema, "//locations::path [key]"),
	PostAnnotation:   withUsage(fieldSchema, "//locations::post [key]"),
	NestedAnnotation: {usage: "//locations::nested"},
	IgnoreAnnotation: {usage: "//locations::ignore"},
}

func withUsage(s schema, usage string) schema {
	s.usage = usage
	return s
}

func validate(a *ParsedAnnotation) error {
	s, ok := schemas[a.Type]
	if !ok {
		return schemaError(a.Location, "", "no schema for annotation type %s", a.Type)
	}

	switch n := len(a.Args); {
	case n < s.minArgs:
		if a.Type == LocationAnnotation {
			return schemaError(a.Location, s.usage, "location annotation requires a route path")
		}
		return schemaError(a.Location, s.usage, "%s annotation expects at least %d argument(s)", a.Type, s.minArgs)
	case n > s.maxArgs:
		return schemaError(a.Location, s.usage, "%s annotation expects at most %d argument(s), got %d", a.Type, s.maxArgs, n)
	}

	for name, values := range a.Options {
		spec, ok := s.options[name]
		if !ok {
			return schemaError(a.Location, s.usage, "unknown option -%s for %s annotation", name, a.Type)
		}
		if err := spec.check(name, values); err != nil {
			return schemaError(a.Location, s.usage, "%v", err)
		}
	}
	return nil
}

func (o optionSpec) check(name string, values []string) error {
	switch {
	case o.flag && len(values) > 0:
		return fmt.Errorf("option -%s takes no value", name)
	case !o.flag && len(values) == 0:
		return fmt.Errorf("option -%s requires a value", name)
	case !o.multi && len(values) > 1:
		return fmt.Errorf("option -%s takes a single value", name)
	}
	if len(o.allowed) == 0 {
		return nil
	}
	for _, v := range values {
		if !slices.Contains(o.allowed, v) {
			return fmt.Errorf("option -%s: %q is not one of %s", name, v, strings.Join(o.allowed, ", "))
		}
	}
	return nil
}

// Usage returns the usage lines of every annotation type, sorted.
func Usage() []string {
	lines := make([]string, 0, len(schemas))
	for _, s := range schemas {
		lines = append(lines, s.usage)
	}
	sort.Strings(lines)
	return lines
}
