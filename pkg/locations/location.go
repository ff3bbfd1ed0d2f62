package locations

import "fmt"

// Shape is the type-erased view of a Location used for path composition and
// descriptor caching.
type Shape interface {
	Fragment() string
	Parent() Shape
	Name() string
}

// Location declares a request shape T bound to a route fragment. Locations
// are declared once at startup and must not be modified after registration.
//
//	var userProfile = locations.Define[UserProfile]("/profile/{userId}").
//		Within(users).
//		Fields(
//			locations.Field("userId", func(p *UserProfile) *int { return &p.UserID }, locations.FromPath("")),
//		)
type Location[T any] struct {
	fragment  string
	parent    Shape
	name      string
	sources   Source
	bodyBound bool
	eager     bool
	factory   func() *T
	fields    []FieldBinding[T]
}

// Define declares a new location for T with the given route fragment. The
// fragment may be empty when a parent or builder prefix supplies the path.
func Define[T any](fragment string) *Location[T] {
	var zero T
	return &Location[T]{
		fragment: fragment,
		name:     fmt.Sprintf("%T", zero),
		sources:  DefaultSources,
		eager:    true,
	}
}

// Within nests the location below parent; parent fragments are prepended.
func (l *Location[T]) Within(parent Shape) *Location[T] {
	l.parent = parent
	return l
}

// Named overrides the display name used in logs and errors.
func (l *Location[T]) Named(name string) *Location[T] {
	l.name = name
	return l
}

// Sources limits the bundles consulted for unannotated fields.
func (l *Location[T]) Sources(sources ...Source) *Location[T] {
	var mask Source
	for _, s := range sources {
		mask |= s
	}
	l.sources = mask &^ SourceBody
	return l
}

// BodyBound constructs each instance by decoding the request body as T.
func (l *Location[T]) BodyBound() *Location[T] {
	l.bodyBound = true
	return l
}

// Eager toggles the merged-bundle fallback for unannotated fields.
func (l *Location[T]) Eager(eager bool) *Location[T] {
	l.eager = eager
	return l
}

// Factory replaces new(T) as the default constructor.
func (l *Location[T]) Factory(factory func() *T) *Location[T] {
	l.factory = factory
	return l
}

// Fields appends field bindings in declaration order.
func (l *Location[T]) Fields(fields ...FieldBinding[T]) *Location[T] {
	l.fields = append(l.fields, fields...)
	return l
}

func (l *Location[T]) Fragment() string { return l.fragment }
func (l *Location[T]) Parent() Shape { return l.parent }
func (l *Location[T]) Name() string { return l.name }

// IsBodyBound reports whether instances are decoded from the body.
func (l *Location[T]) IsBodyBound() bool { return l.bodyBound }

// IsEager reports whether unannotated fields fall back to the merged bundle.
func (l *Location[T]) IsEager() bool { return l.eager }

// AllowedSources returns the fallback policy.
func (l *Location[T]) AllowedSources() Source { return l.sources }

func (l *Location[T]) newInstance() *T {
	if l.factory != nil {
		if inst := l.factory(); inst != nil {
			return inst
		}
	}
	return new(T)
}
