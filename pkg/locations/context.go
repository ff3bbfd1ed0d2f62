package locations

import "context"

// Role names a permission required to reach a route. Enforcement belongs to
// the router.
type Role string

// HandlerFunc is the router-facing request handler produced by registration.
type HandlerFunc func(ctx RequestContext) error

// Router is the external HTTP/WebSocket router that owns dispatch.
type Router interface {
	// AddRoute registers a compiled handler for one method and absolute path.
	AddRoute(method, path string, handler HandlerFunc, roles ...Role)
	// AddSocketRoute registers a WebSocket upgrade route.
	AddSocketRoute(path string, handler SocketHandler, roles ...Role)
}

// RequestContext is the view of an inbound HTTP request the core needs.
type RequestContext interface {
	Context() context.Context
	Method() string
	Path() string

	// PathParams returns one value per named path segment.
	PathParams() map[string]string
	// QueryParams preserves repeated keys in order of appearance.
	QueryParams() map[string][]string
	// FormParams is empty unless the request carries a form-encoded body.
	FormParams() map[string][]string
	// Body returns the raw request body. Implementations may be called more
	// than once and must return the same bytes.
	Body() ([]byte, error)

	Header(key string) string
	SetHeader(key, value string)
	Status(code int)
	// Result writes body with the given content type and the current status.
	Result(body []byte, contentType string) error

	Get(key string) any
	Set(key string, value any)
}

// SocketContext is the view of one WebSocket session.
type SocketContext interface {
	Context() context.Context
	SessionID() string
	Path() string
	PathParams() map[string]string
	QueryParams() map[string][]string

	Send(message string) error
	SendBinary(data []byte) error
	Close(code int, reason string) error

	Get(key string) any
	Set(key string, value any)
}

// SocketHandler receives the events of every session on one socket route.
type SocketHandler interface {
	OnConnect(ctx SocketContext)
	OnMessage(ctx SocketContext, message string)
	OnBinaryMessage(ctx SocketContext, data []byte)
	OnClose(ctx SocketContext, code int, reason string)
	OnError(ctx SocketContext, err error)
}

// ContextAware locations receive the request they were hydrated from.
type ContextAware interface {
	AttachRequest(ctx RequestContext)
}

// SocketContextAware locations receive the session they were hydrated from.
type SocketContextAware interface {
	AttachSocket(ctx SocketContext)
}

// RequestHolder can be embedded in a location struct to make it ContextAware.
type RequestHolder struct {
	request RequestContext
}

// AttachRequest implements ContextAware
func (h *RequestHolder) AttachRequest(ctx RequestContext) {
	h.request = ctx
}

// Request returns the attached request, or nil outside a handler.
func (h *RequestHolder) Request() RequestContext {
	return h.request
}

// SocketHolder can be embedded in a location struct to make it SocketContextAware.
type SocketHolder struct {
	socket SocketContext
}

// AttachSocket implements SocketContextAware
func (h *SocketHolder) AttachSocket(ctx SocketContext) {
	h.socket = ctx
}

// Socket returns the attached session, or nil outside a socket callback.
func (h *SocketHolder) Socket() SocketContext {
	return h.socket
}
