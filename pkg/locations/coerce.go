package locations

import (
	"encoding"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the scalar element type a Target converts to.
type Kind int

const (
	InvalidKind Kind = iota
	StringKind
	BoolKind
	IntKind
	Int8Kind
	Int16Kind
	Int32Kind
	Int64Kind
	UintKind
	Uint8Kind
	Uint16Kind
	Uint32Kind
	Uint64Kind
	Float32Kind
	Float64Kind
	DurationKind
	UUIDKind
	TextKind
)

var kindNames = map[Kind]string{
	StringKind:   "string",
	BoolKind:     "bool",
	IntKind:      "int",
	Int8Kind:     "int8",
	Int16Kind:    "int16",
	Int32Kind:    "int32",
	Int64Kind:    "int64",
	UintKind:     "uint",
	Uint8Kind:    "uint8",
	Uint16Kind:   "uint16",
	Uint32Kind:   "uint32",
	Uint64Kind:   "uint64",
	Float32Kind:  "float32",
	Float64Kind:  "float64",
	DurationKind: "duration",
	UUIDKind:     "uuid",
	TextKind:     "text",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// form is the container shape around the element type.
type form int

const (
	valueForm form = iota
	pointerForm
	sliceForm
	pointerSliceForm
)

// Target is the resolved coercion plan for one declared Go type. It is built
// once per field by TargetOf and reused for every request.
type Target struct {
	Kind     Kind
	Nullable bool
	Sequence bool

	form    form
	convert func(form, []string) (any, error)
}

// Valid reports whether the target was resolved to a supported type.
func (t Target) Valid() bool {
	return t.convert != nil
}

func (t Target) String() string {
	name := t.Kind.String()
	if t.Nullable {
		name = "*" + name
	}
	if t.Sequence {
		name = "[]" + name
	}
	return name
}

// probe matches one element type in its four container forms.
type probe struct {
	kind    Kind
	match   func(any) (form, bool)
	convert func(form, []string) (any, error)
}

func element[E any](kind Kind, parse func(string) (E, error)) probe {
	return probe{
		kind:  kind,
		match: formOf[E],
		convert: func(f form, values []string) (any, error) {
			return convert(parse, f, values)
		},
	}
}

func formOf[E any](v any) (form, bool) {
	switch v.(type) {
	case E:
		return valueForm, true
	case *E:
		return pointerForm, true
	case []E:
		return sliceForm, true
	case []*E:
		return pointerSliceForm, true
	}
	return 0, false
}

var probes = []probe{
	element(StringKind, parseString),
	element(BoolKind, parseBool),
	element(IntKind, parseSigned[int](strconv.IntSize)),
	element(Int8Kind, parseSigned[int8](8)),
	element(Int16Kind, parseSigned[int16](16)),
	element(Int32Kind, parseSigned[int32](32)),
	element(Int64Kind, parseSigned[int64](64)),
	element(UintKind, parseUnsigned[uint](strconv.IntSize)),
	element(Uint8Kind, parseUnsigned[uint8](8)),
	element(Uint16Kind, parseUnsigned[uint16](16)),
	element(Uint32Kind, parseUnsigned[uint32](32)),
	element(Uint64Kind, parseUnsigned[uint64](64)),
	element(Float32Kind, parseFloat[float32](32)),
	element(Float64Kind, parseFloat[float64](64)),
	element(DurationKind, time.ParseDuration),
	element(UUIDKind, uuid.Parse),
}

// TargetOf resolves the coercion plan for V. Supported are the scalar kinds
// above as V, *V, []V and []*V, plus any scalar V whose pointer implements
// encoding.TextUnmarshaler.
func TargetOf[V any]() (Target, error) {
	var zero V
	for _, p := range probes {
		if f, ok := p.match(any(zero)); ok {
			return Target{
				Kind:     p.kind,
				Nullable: f == pointerForm || f == pointerSliceForm,
				Sequence: f == sliceForm || f == pointerSliceForm,
				form:     f,
				convert:  p.convert,
			}, nil
		}
	}

	if _, ok := any(&zero).(encoding.TextUnmarshaler); ok {
		parse := func(s string) (V, error) {
			var out V
			err := any(&out).(encoding.TextUnmarshaler).UnmarshalText([]byte(s))
			return out, err
		}
		return Target{
			Kind: TextKind,
			form: valueForm,
			convert: func(f form, values []string) (any, error) {
				return convert(parse, f, values)
			},
		}, nil
	}

	return Target{}, fmt.Errorf("%w: %T", ErrUnsupportedType, zero)
}

// Coerce converts raw parameter values to the target type.
//
// A non-nullable scalar that fails to parse returns ErrInvalidValue and should
// be left unset by the caller. A nullable scalar that fails yields a nil
// pointer. Sequence targets drop elements that fail. Scalar targets use the
// first value only.
func Coerce(values []string, target Target) (any, error) {
	if !target.Valid() {
		return nil, ErrUnsupportedType
	}
	if len(values) == 0 {
		return nil, ErrNoValue
	}
	return target.convert(target.form, values)
}

func convert[E any](parse func(string) (E, error), f form, values []string) (any, error) {
	switch f {
	case valueForm:
		v, err := parse(values[0])
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidValue, values[0], err)
		}
		return v, nil
	case pointerForm:
		v, err := parse(values[0])
		if err != nil {
			return (*E)(nil), nil
		}
		return &v, nil
	case sliceForm:
		out := make([]E, 0, len(values))
		for _, raw := range values {
			if v, err := parse(raw); err == nil {
				out = append(out, v)
			}
		}
		return out, nil
	case pointerSliceForm:
		out := make([]*E, 0, len(values))
		for _, raw := range values {
			if v, err := parse(raw); err == nil {
				out = append(out, &v)
			}
		}
		return out, nil
	}
	return nil, ErrUnsupportedType
}

func parseString(s string) (string, error) {
	return s, nil
}

// parseBool treats a present but empty value as a flag. Anything other than a
// case-insensitive "true" is false; there is no numeric convention.
func parseBool(s string) (bool, error) {
	if s == "" {
		return true, nil
	}
	return strings.EqualFold(s, "true"), nil
}

func parseSigned[E ~int | ~int8 | ~int16 | ~int32 | ~int64](bits int) func(string) (E, error) {
	return func(s string) (E, error) {
		n, err := strconv.ParseInt(s, 10, bits)
		return E(n), err
	}
}

func parseUnsigned[E ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](bits int) func(string) (E, error) {
	return func(s string) (E, error) {
		n, err := strconv.ParseUint(s, 10, bits)
		return E(n), err
	}
}

func parseFloat[E ~float32 | ~float64](bits int) func(string) (E, error) {
	return func(s string) (E, error) {
		n, err := strconv.ParseFloat(s, bits)
		return E(n), err
	}
}
