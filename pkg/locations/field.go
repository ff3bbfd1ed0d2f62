package locations

import (
	"errors"
	"sort"
)

// FieldKind is the resolved shape of a field, fixed when the field is declared.
type FieldKind int

const (
	ScalarField FieldKind = iota
	SequenceField
	NestedField
)

func (k FieldKind) String() string {
	switch k {
	case ScalarField:
		return "scalar"
	case SequenceField:
		return "sequence"
	case NestedField:
		return "nested"
	}
	return "unknown"
}

// Binding ties a field to one bundle under a lookup key.
type Binding struct {
	Source Source
	Key    string
}

// FieldOption adds a source binding to a field.
type FieldOption func(*[]Binding)

func bindTo(source Source, key string) FieldOption {
	return func(bindings *[]Binding) {
		*bindings = append(*bindings, Binding{Source: source, Key: key})
	}
}

// FromQuery binds the field to a query parameter. An empty key uses the
// field name.
func FromQuery(key string) FieldOption { return bindTo(SourceQuery, key) }

// FromForm binds the field to a form parameter.
func FromForm(key string) FieldOption { return bindTo(SourceForm, key) }

// FromPath binds the field to a path parameter.
func FromPath(key string) FieldOption { return bindTo(SourcePath, key) }

// FromBody binds the field to a member of a JSON object body.
func FromBody(key string) FieldOption { return bindTo(SourceBody, key) }

// bindingOrder is the fixed lookup precedence of annotated fields.
var bindingOrder = map[Source]int{
	SourceQuery: 0,
	SourceForm:  1,
	SourcePath:  2,
	SourceBody:  3,
}

// FieldBinding is one entry of a location's field table. Build it with Field
// or Nested.
type FieldBinding[T any] struct {
	name     string
	kind     FieldKind
	target   Target
	bindings []Binding
	err      error

	set    func(inst *T, value any)
	decode func(inst *T, raw []byte, codec Codec) error
	nested func(inst *T, src *Sources, h hydrator)
	shape  Shape
	verify func(visiting []Shape) error
}

// Field declares a parameter-bound field of type V reached through accessor.
// V must be a type TargetOf accepts; anything else fails at registration.
func Field[T, V any](name string, accessor func(*T) *V, opts ...FieldOption) FieldBinding[T] {
	f := FieldBinding[T]{name: name}

	target, err := TargetOf[V]()
	if err != nil {
		f.err = err
	}
	if accessor == nil {
		f.err = errors.New("nil accessor")
	}
	f.target = target
	f.kind = ScalarField
	if target.Sequence {
		f.kind = SequenceField
	}

	for _, opt := range opts {
		opt(&f.bindings)
	}
	for i := range f.bindings {
		if f.bindings[i].Key == "" {
			f.bindings[i].Key = name
		}
	}
	sort.SliceStable(f.bindings, func(i, j int) bool {
		return bindingOrder[f.bindings[i].Source] < bindingOrder[f.bindings[j].Source]
	})

	set := func(inst *T, value any) {
		if typed, ok := value.(V); ok {
			*accessor(inst) = typed
		}
	}
	f.set = set
	f.decode = func(inst *T, raw []byte, codec Codec) error {
		var value V
		err := codec.Decode(raw, &value)
		if err == nil {
			*accessor(inst) = value
			return nil
		}
		// Members sent as JSON strings still go through coercion.
		var text string
		if codec.Decode(raw, &text) != nil {
			return err
		}
		coerced, cerr := Coerce([]string{text}, target)
		if cerr != nil {
			return cerr
		}
		set(inst, coerced)
		return nil
	}
	return f
}

// Nested declares a field holding another location's shape. It is hydrated
// recursively from the same sources and ignores every other binding rule.
func Nested[T, N any](name string, accessor func(*T) *N, loc *Location[N]) FieldBinding[T] {
	f := FieldBinding[T]{name: name, kind: NestedField}
	switch {
	case accessor == nil:
		f.err = errors.New("nil accessor")
		return f
	case loc == nil:
		f.err = errors.New("nil nested location")
		return f
	}

	f.shape = loc
	f.verify = func(visiting []Shape) error {
		_, err := describe(loc, visiting)
		return err
	}
	f.nested = func(inst *T, src *Sources, h hydrator) {
		plan, err := Describe(loc)
		if err != nil {
			h.logger.Debug("nested location not describable", "location", loc.Name(), "error", err)
			return
		}
		*accessor(inst) = *plan.hydrate(src, h)
	}
	return f
}

// Name returns the declared field name.
func (f FieldBinding[T]) Name() string { return f.name }

// Kind returns the resolved field kind.
func (f FieldBinding[T]) Kind() FieldKind { return f.kind }

// Target returns the coercion plan; zero for nested fields.
func (f FieldBinding[T]) Target() Target { return f.target }

// Bindings returns the annotations in lookup precedence order.
func (f FieldBinding[T]) Bindings() []Binding {
	out := make([]Binding, len(f.bindings))
	copy(out, f.bindings)
	return out
}

// NestedShape returns the nested location, nil for other kinds.
func (f FieldBinding[T]) NestedShape() Shape { return f.shape }

func (f FieldBinding[T]) validate(location string, visiting []Shape) error {
	if f.name == "" {
		return newError(ConfigurationErrorCode, location, "", nil, "field without a name")
	}
	if f.err != nil {
		code := ConfigurationErrorCode
		if errors.Is(f.err, ErrUnsupportedType) {
			code = UnsupportedTypeErrorCode
		}
		return newError(code, location, f.name, f.err, "invalid field declaration")
	}
	for _, b := range f.bindings {
		if _, ok := bindingOrder[b.Source]; !ok {
			return newError(ConfigurationErrorCode, location, f.name, nil, "unknown source %s", b.Source)
		}
	}
	if f.verify != nil {
		if err := f.verify(visiting); err != nil {
			return newError(ConfigurationErrorCode, location, f.name, err, "nested location %s", f.shape.Name())
		}
	}
	return nil
}
