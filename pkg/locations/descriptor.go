package locations

import (
	"github.com/toyz/locations/internal/utils"
)

// plans memoises compiled descriptors by location identity. Locations are
// static, so entries are never invalidated.
var plans = utils.NewCache[Shape, any]()

// Plan is the compiled field table of one location.
type Plan[T any] struct {
	location     *Location[T]
	fields       []FieldBinding[T]
	singleton    *T
	contextAware bool
	socketAware  bool
}

// Describe returns the cached plan for loc, compiling it on first use.
// Concurrent first calls may both compile; every caller receives the plan
// that was stored first.
func Describe[T any](loc *Location[T]) (*Plan[T], error) {
	return describe(loc, nil)
}

// describe compiles loc with visiting holding the locations whose plans are
// still being compiled further up the nesting chain.
func describe[T any](loc *Location[T], visiting []Shape) (*Plan[T], error) {
	if loc == nil {
		return nil, newError(ConfigurationErrorCode, "", "", nil, "nil location")
	}
	for _, shape := range visiting {
		if shape == Shape(loc) {
			return nil, newError(ConfigurationErrorCode, loc.Name(), "", nil, "location nests itself")
		}
	}
	plan, err := plans.GetOrCreate(loc, func() (any, error) {
		return compile(loc, append(visiting[:len(visiting):len(visiting)], loc))
	})
	if err != nil {
		return nil, err
	}
	return plan.(*Plan[T]), nil
}

// MustDescribe is like Describe but panics on configuration errors.
func MustDescribe[T any](loc *Location[T]) *Plan[T] {
	plan, err := Describe(loc)
	if err != nil {
		panic(err)
	}
	return plan
}

func compile[T any](loc *Location[T], visiting []Shape) (*Plan[T], error) {
	seen := make(map[string]struct{}, len(loc.fields))
	fields := make([]FieldBinding[T], 0, len(loc.fields))
	for _, f := range loc.fields {
		if err := f.validate(loc.Name(), visiting); err != nil {
			return nil, err
		}
		if _, dup := seen[f.name]; dup {
			return nil, newError(ConfigurationErrorCode, loc.Name(), f.name, nil, "field declared twice")
		}
		seen[f.name] = struct{}{}
		fields = append(fields, f)
	}

	zero := any(new(T))
	_, contextAware := zero.(ContextAware)
	_, socketAware := zero.(SocketContextAware)

	plan := &Plan[T]{
		location:     loc,
		fields:       fields,
		contextAware: contextAware,
		socketAware:  socketAware,
	}
	if len(fields) == 0 && !loc.bodyBound && !contextAware && !socketAware {
		plan.singleton = loc.newInstance()
	}
	return plan, nil
}

// Location returns the location the plan was compiled from.
func (p *Plan[T]) Location() *Location[T] { return p.location }

// Fields returns the field table in declaration order.
func (p *Plan[T]) Fields() []FieldBinding[T] {
	out := make([]FieldBinding[T], len(p.fields))
	copy(out, p.fields)
	return out
}

// Singleton reports whether every hydration returns one shared instance.
func (p *Plan[T]) Singleton() bool { return p.singleton != nil }

// pathKeys lists the keys this plan may read from the path bundle.
func (p *Plan[T]) pathKeys() []string {
	var keys []string
	for _, f := range p.fields {
		for _, b := range f.bindings {
			if b.Source == SourcePath {
				keys = append(keys, b.Key)
			}
		}
	}
	return keys
}
