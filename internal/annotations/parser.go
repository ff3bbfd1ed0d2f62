package annotations

import (
	"errors"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

const prefix = "locations::"

// annotation is the participle grammar of a single comment line:
//
//	//locations::<type> [args...] [-option[=value[,value...]]...]
type annotation struct {
	Type  string  `parser:"Prefix @Ident"`
	Items []*item `parser:"@@*"`
}

type item struct {
	Option *option `parser:"  @@"`
	Arg    *string `parser:"| @(Path | Ident | String)"`
}

type option struct {
	Name   string   `parser:"Dash @Ident"`
	Values []string `parser:"( Equals @(Path | Ident | String) ( Comma @(Path | Ident | String) )* )?"`
}

var annotationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Prefix", Pattern: `//\s*locations::`},
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Path", Pattern: `/[^\s,=]*`},
	{Name: "Ident", Pattern: `[a-zA-Z0-9_][a-zA-Z0-9_.\-]*`},
	{Name: "Dash", Pattern: `-`},
	{Name: "Equals", Pattern: `=`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Parser parses //locations:: comments into ParsedAnnotations.
type Parser struct {
	parser *participle.Parser[annotation]
}

// NewParser builds the annotation grammar.
func NewParser() *Parser {
	return &Parser{
		parser: participle.MustBuild[annotation](
			participle.Lexer(annotationLexer),
			participle.Elide("Whitespace"),
			participle.Unquote("String"),
			participle.UseLookahead(2),
		),
	}
}

// IsAnnotation reports whether comment is a //locations:: annotation.
func IsAnnotation(comment string) bool {
	content, ok := strings.CutPrefix(strings.TrimSpace(comment), "//")
	return ok && strings.HasPrefix(strings.TrimSpace(content), prefix)
}

// Parse parses comment and validates it against its type's schema.
func (p *Parser) Parse(comment string, loc SourceLocation) (*ParsedAnnotation, error) {
	raw := strings.TrimSpace(comment)
	tree, err := p.parser.ParseString(loc.File, raw)
	if err != nil {
		var perr participle.Error
		if errors.As(err, &perr) {
			at := loc
			at.Column += perr.Position().Column - 1
			return nil, syntaxError(at, "%s", perr.Message())
		}
		return nil, syntaxError(loc, "%v", err)
	}

	kind, err := ParseAnnotationType(tree.Type)
	if err != nil {
		return nil, schemaError(loc, "expected one of location, query, form, path, post, nested, ignore", "%v", err)
	}

	parsed := &ParsedAnnotation{
		Type:     kind,
		Options:  map[string][]string{},
		Location: loc,
		Raw:      raw,
	}
	for _, it := range tree.Items {
		switch {
		case it.Option != nil:
			if _, dup := parsed.Options[it.Option.Name]; dup {
				return nil, schemaError(loc, "", "option -%s given more than once", it.Option.Name)
			}
			parsed.Options[it.Option.Name] = it.Option.Values
		case it.Arg != nil:
			if len(parsed.Options) > 0 {
				return nil, schemaError(loc, "positional arguments come before options", "unexpected argument %q", *it.Arg)
			}
			parsed.Args = append(parsed.Args, *it.Arg)
		}
	}

	if err := validate(parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}
