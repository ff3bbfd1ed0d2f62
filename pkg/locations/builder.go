package locations

import (
	"log/slog"
)

// ErrorHandler receives errors returned by location handlers. Returning nil
// marks the error as handled; a non-nil error reaches the router.
type ErrorHandler func(ctx RequestContext, err error) error

// HandlerWrapper wraps every handler a builder registers.
type HandlerWrapper func(next HandlerFunc) HandlerFunc

// Option configures the root builder.
type Option func(*Builder)

// WithCodec sets the root codec.
func WithCodec(codec Codec) Option {
	return func(b *Builder) { b.codec = codec }
}

// WithErrorHandler sets the root error handler.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(b *Builder) { b.errorHandler = handler }
}

// WithHandlerWrapper sets the root handler wrapper.
func WithHandlerWrapper(wrapper HandlerWrapper) Option {
	return func(b *Builder) { b.wrapper = wrapper }
}

// WithLogger sets the root logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) { b.logger = logger }
}

// Builder is a node in the registration tree. Each node carries a path prefix
// and may override the codec, error handler, handler wrapper and logger it
// would otherwise inherit from its parent. Handlers capture the configuration
// in effect when they are registered.
type Builder struct {
	router Router
	parent *Builder
	prefix string

	codec        Codec
	errorHandler ErrorHandler
	wrapper      HandlerWrapper
	logger       *slog.Logger
}

// Locations creates the root builder for router, applies opts and runs init.
func Locations(router Router, init func(b *Builder), opts ...Option) *Builder {
	root := &Builder{router: router}
	for _, opt := range opts {
		opt(root)
	}
	if init != nil {
		init(root)
	}
	return root
}

// Path creates a child scoped under fragment and runs init against it.
func (b *Builder) Path(fragment string, init func(b *Builder)) *Builder {
	child := b.Group(fragment)
	if init != nil {
		init(child)
	}
	return child
}

// Group creates a child scoped under fragment.
func (b *Builder) Group(fragment string) *Builder {
	prefix, _ := JoinPath(b.prefix, fragment)
	return &Builder{
		router: b.router,
		parent: b,
		prefix: prefix,
	}
}

// Prefix returns the absolute path prefix of this node.
func (b *Builder) Prefix() string {
	return b.prefix
}

// SetCodec overrides the codec for this node and its children.
func (b *Builder) SetCodec(codec Codec) *Builder {
	b.codec = codec
	return b
}

// SetErrorHandler overrides the error handler for this node and its children.
func (b *Builder) SetErrorHandler(handler ErrorHandler) *Builder {
	b.errorHandler = handler
	return b
}

// SetHandlerWrapper overrides the handler wrapper for this node and its children.
func (b *Builder) SetHandlerWrapper(wrapper HandlerWrapper) *Builder {
	b.wrapper = wrapper
	return b
}

// SetLogger overrides the logger for this node and its children.
func (b *Builder) SetLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Codec returns the effective codec, JSONCodec when no node sets one.
func (b *Builder) Codec() Codec {
	for n := b; n != nil; n = n.parent {
		if n.codec != nil {
			return n.codec
		}
	}
	return JSONCodec{}
}

// ErrorHandler returns the effective error handler, or nil.
func (b *Builder) ErrorHandler() ErrorHandler {
	for n := b; n != nil; n = n.parent {
		if n.errorHandler != nil {
			return n.errorHandler
		}
	}
	return nil
}

// HandlerWrapper returns the effective handler wrapper, or nil.
func (b *Builder) HandlerWrapper() HandlerWrapper {
	for n := b; n != nil; n = n.parent {
		if n.wrapper != nil {
			return n.wrapper
		}
	}
	return nil
}

// Logger returns the effective logger, slog.Default when no node sets one.
func (b *Builder) Logger() *slog.Logger {
	for n := b; n != nil; n = n.parent {
		if n.logger != nil {
			return n.logger
		}
	}
	return slog.Default()
}

// route resolves everything a registration needs. Configuration problems
// panic so they surface at startup.
func route[T any](b *Builder, loc *Location[T]) (*Plan[T], string) {
	plan, err := Describe(loc)
	if err != nil {
		panic(err)
	}
	path, err := ComposePath(b.prefix, loc)
	if err != nil {
		panic(err)
	}
	b.checkPathKeys(path, plan.pathKeys(), loc.Name())
	return plan, path
}

// checkPathKeys warns about path-bound fields the route template cannot fill.
func (b *Builder) checkPathKeys(path string, keys []string, location string) {
	if len(keys) == 0 {
		return
	}
	params := make(map[string]struct{})
	for _, name := range PathParamNames(path) {
		params[name] = struct{}{}
	}
	for _, key := range keys {
		if _, ok := params[key]; !ok {
			b.Logger().Warn("path-bound field has no matching route parameter",
				"location", location,
				"path", path,
				"key", key)
		}
	}
}
