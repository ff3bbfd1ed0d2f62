package locations

import (
	"strings"
)

// ComposePath joins prefix with the fragments of shape's parent chain, outer
// to inner, followed by shape's own fragment. Blank fragments contribute
// nothing. A result with no fragment at all is ErrEmptyPath.
func ComposePath(prefix string, shape Shape) (string, error) {
	var chain []string
	for s := shape; s != nil; s = s.Parent() {
		chain = append(chain, s.Fragment())
	}

	fragments := make([]string, 0, len(chain)+1)
	fragments = append(fragments, prefix)
	for i := len(chain) - 1; i >= 0; i-- {
		fragments = append(fragments, chain[i])
	}

	path, ok := JoinPath(fragments...)
	if !ok {
		name := ""
		if shape != nil {
			name = shape.Name()
		}
		return "", newError(EmptyPathErrorCode, name, "", ErrEmptyPath, "location declares no route fragment")
	}
	return path, nil
}

// JoinPath normalises and concatenates fragments. Each non-blank fragment gets
// a leading slash and loses its trailing one. The root fragment "/" only
// survives when nothing else contributes. ok is false when every fragment is
// blank.
func JoinPath(fragments ...string) (path string, ok bool) {
	var b strings.Builder
	root := false
	for _, fragment := range fragments {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}
		trimmed := strings.Trim(fragment, "/")
		if trimmed == "" {
			root = true
			continue
		}
		b.WriteByte('/')
		b.WriteString(trimmed)
	}
	if b.Len() == 0 {
		if root {
			return "/", true
		}
		return "", false
	}
	return b.String(), true
}

// PathPartType represents the type of path part
type PathPartType int

const (
	StaticPart PathPartType = iota
	ParameterPart
	WildcardPart
)

// PathPart represents a single part of a route template
type PathPart struct {
	Type      PathPartType
	Value     string // literal text for static parts, the name for parameters
	ParamType string // optional type hint from {name:type}
}

// ParsePath splits a route template into parts. Parameters are written
// {name}, {name:type} or :name; wildcards {*} or *.
func ParsePath(path string) []PathPart {
	var parts []PathPart
	var static strings.Builder

	flush := func() {
		if static.Len() > 0 {
			parts = append(parts, PathPart{Type: StaticPart, Value: static.String()})
			static.Reset()
		}
	}

	i := 0
	for i < len(path) {
		c := path[i]
		switch {
		case c == '{':
			j := strings.IndexByte(path[i:], '}')
			if j < 0 {
				// Malformed, treat as static
				static.WriteByte(c)
				i++
				continue
			}
			content := path[i+1 : i+j]
			flush()
			if content == "*" {
				parts = append(parts, PathPart{Type: WildcardPart, Value: "*"})
			} else {
				name, typ, _ := strings.Cut(content, ":")
				parts = append(parts, PathPart{Type: ParameterPart, Value: name, ParamType: typ})
			}
			i += j + 1
		case c == ':' && (i == 0 || path[i-1] == '/'):
			j := i + 1
			for j < len(path) && path[j] != '/' {
				j++
			}
			flush()
			parts = append(parts, PathPart{Type: ParameterPart, Value: path[i+1 : j]})
			i = j
		case c == '*' && (i == 0 || path[i-1] == '/'):
			flush()
			parts = append(parts, PathPart{Type: WildcardPart, Value: "*"})
			i++
		default:
			static.WriteByte(c)
			i++
		}
	}
	flush()
	return parts
}

// PathParamNames lists the named parameters of a route template in order.
func PathParamNames(path string) []string {
	var names []string
	for _, part := range ParsePath(path) {
		if part.Type == ParameterPart {
			names = append(names, part.Value)
		}
	}
	return names
}
