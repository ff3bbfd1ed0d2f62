package locations

// SocketConfig collects the event callbacks of a socket location. Every event
// hydrates a fresh instance from the session's path and query parameters.
type SocketConfig[T any] struct {
	onConnect func(ctx SocketContext, loc *T)
	onMessage func(ctx SocketContext, loc *T, message string)
	onBinary  func(ctx SocketContext, loc *T, data []byte)
	onClose   func(ctx SocketContext, loc *T, code int, reason string)
	onError   func(ctx SocketContext, loc *T, err error)
}

func (c *SocketConfig[T]) OnConnect(fn func(ctx SocketContext, loc *T)) {
	c.onConnect = fn
}

func (c *SocketConfig[T]) OnMessage(fn func(ctx SocketContext, loc *T, message string)) {
	c.onMessage = fn
}

func (c *SocketConfig[T]) OnBinaryMessage(fn func(ctx SocketContext, loc *T, data []byte)) {
	c.onBinary = fn
}

func (c *SocketConfig[T]) OnClose(fn func(ctx SocketContext, loc *T, code int, reason string)) {
	c.onClose = fn
}

func (c *SocketConfig[T]) OnError(fn func(ctx SocketContext, loc *T, err error)) {
	c.onError = fn
}

// Socket registers a WebSocket route for loc. configure installs the event
// callbacks; events without a callback are ignored.
func Socket[T any](b *Builder, loc *Location[T], configure func(cfg *SocketConfig[T]), roles ...Role) {
	plan, path := route(b, loc)
	cfg := &SocketConfig[T]{}
	if configure != nil {
		configure(cfg)
	}

	b.Logger().Debug("registering socket route",
		"path", path,
		"location", loc.Name(),
		"roles", roles)
	b.router.AddSocketRoute(path, &socketHandler[T]{
		plan:      plan,
		config:    cfg,
		hydration: newHydrator(b.Codec(), b.Logger()),
	}, roles...)
}

type socketHandler[T any] struct {
	plan      *Plan[T]
	config    *SocketConfig[T]
	hydration hydrator
}

func (s *socketHandler[T]) hydrate(ctx SocketContext) *T {
	return s.plan.hydrate(SocketSourcesFrom(ctx), s.hydration)
}

func (s *socketHandler[T]) OnConnect(ctx SocketContext) {
	if s.config.onConnect != nil {
		s.config.onConnect(ctx, s.hydrate(ctx))
	}
}

func (s *socketHandler[T]) OnMessage(ctx SocketContext, message string) {
	if s.config.onMessage != nil {
		s.config.onMessage(ctx, s.hydrate(ctx), message)
	}
}

func (s *socketHandler[T]) OnBinaryMessage(ctx SocketContext, data []byte) {
	if s.config.onBinary != nil {
		s.config.onBinary(ctx, s.hydrate(ctx), data)
	}
}

func (s *socketHandler[T]) OnClose(ctx SocketContext, code int, reason string) {
	if s.config.onClose != nil {
		s.config.onClose(ctx, s.hydrate(ctx), code, reason)
	}
}

func (s *socketHandler[T]) OnError(ctx SocketContext, err error) {
	if s.config.onError != nil {
		s.config.onError(ctx, s.hydrate(ctx), err)
	}
}
