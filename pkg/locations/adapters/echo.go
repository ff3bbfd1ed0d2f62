package adapters

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/toyz/locations/pkg/locations"
)

// EchoAdapter implements locations.Router for Echo v4
type EchoAdapter struct {
	engine *echo.Echo
	opts   options
}

// NewEchoAdapter creates a new Echo adapter
func NewEchoAdapter(e *echo.Echo, opts ...Option) *EchoAdapter {
	return &EchoAdapter{engine: e, opts: newOptions(opts)}
}

// NewDefaultEchoAdapter creates a new Echo adapter with default Echo instance
func NewDefaultEchoAdapter(opts ...Option) *EchoAdapter {
	return NewEchoAdapter(echo.New(), opts...)
}

// AddRoute registers a location handler with Echo
func (ea *EchoAdapter) AddRoute(method, path string, handler locations.HandlerFunc, roles ...locations.Role) {
	ea.engine.Add(method, ea.convertPath(path), ea.convertHandler(ea.opts.guard(handler, roles)))
}

// AddSocketRoute registers a WebSocket upgrade route with Echo
func (ea *EchoAdapter) AddSocketRoute(path string, handler locations.SocketHandler, roles ...locations.Role) {
	ea.engine.GET(ea.convertPath(path), func(c echo.Context) error {
		rc := newEchoRequestContext(c)
		upgrade := func(locations.RequestContext) error {
			conn, err := ea.opts.upgrader.Upgrade(c.Response(), c.Request(), nil)
			if err != nil {
				// The upgrader has already answered the request.
				ea.opts.logger.Debug("socket upgrade failed", "path", path, "error", err)
				return nil
			}
			session := newSocketSession(c.Request().Context(), conn, c.Request().URL.Path, rc.PathParams(), rc.QueryParams(), ea.opts)
			session.serve(handler, gorillaCloseReader)
			return nil
		}
		return ea.serve(rc, ea.opts.guard(upgrade, roles))
	})
}

// Start starts the server
func (ea *EchoAdapter) Start(addr string) error {
	return ea.engine.Start(addr)
}

// Stop stops the server
func (ea *EchoAdapter) Stop(ctx context.Context) error {
	return ea.engine.Shutdown(ctx)
}

// Name returns the adapter name
func (ea *EchoAdapter) Name() string {
	return "Echo"
}

// GetEngine returns the underlying Echo instance
func (ea *EchoAdapter) GetEngine() *echo.Echo {
	return ea.engine
}

func (ea *EchoAdapter) convertPath(path string) string {
	return convertPath(path, colonParam, "*")
}

// convertHandler converts locations.HandlerFunc to echo.HandlerFunc
func (ea *EchoAdapter) convertHandler(handler locations.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		return ea.serve(newEchoRequestContext(c), handler)
	}
}

func (ea *EchoAdapter) serve(ctx *EchoRequestContext, handler locations.HandlerFunc) error {
	c := ctx.context
	if err := handler(ctx); err != nil {
		if c.Response().Committed {
			ea.opts.logger.Warn("handler failed after response was written", "path", c.Path(), "error", err)
			return nil
		}
		status, body := errorResponse(err)
		return c.JSON(status, body)
	}
	if !c.Response().Committed && ctx.status != 0 {
		return c.NoContent(ctx.status)
	}
	return nil
}

// EchoRequestContext implements locations.RequestContext for Echo
type EchoRequestContext struct {
	context echo.Context
	body    *requestBody
	status  int
}

func newEchoRequestContext(c echo.Context) *EchoRequestContext {
	return &EchoRequestContext{context: c, body: newRequestBody(c.Request())}
}

// Context returns the request context
func (erc *EchoRequestContext) Context() context.Context {
	return erc.context.Request().Context()
}

// Method returns the HTTP method
func (erc *EchoRequestContext) Method() string {
	return erc.context.Request().Method
}

// Path returns the request path
func (erc *EchoRequestContext) Path() string {
	return erc.context.Request().URL.Path
}

// PathParams returns all path parameters
func (erc *EchoRequestContext) PathParams() map[string]string {
	names := erc.context.ParamNames()
	values := erc.context.ParamValues()
	params := make(map[string]string, len(names))
	for i, name := range names {
		if i < len(values) {
			params[name] = values[i]
		}
	}
	return params
}

// QueryParams returns all query parameters
func (erc *EchoRequestContext) QueryParams() map[string][]string {
	return erc.context.QueryParams()
}

// FormParams returns form parameters of form-encoded bodies
func (erc *EchoRequestContext) FormParams() map[string][]string {
	return erc.body.formParams()
}

// Body returns the raw request body
func (erc *EchoRequestContext) Body() ([]byte, error) {
	return erc.body.bytes()
}

// Header returns a request header value
func (erc *EchoRequestContext) Header(key string) string {
	return erc.context.Request().Header.Get(key)
}

// SetHeader sets a response header
func (erc *EchoRequestContext) SetHeader(key, value string) {
	erc.context.Response().Header().Set(key, value)
}

// Status sets the status code used by Result
func (erc *EchoRequestContext) Status(code int) {
	erc.status = code
}

// Result writes the response body
func (erc *EchoRequestContext) Result(body []byte, contentType string) error {
	status := erc.status
	if status == 0 {
		status = http.StatusOK
	}
	if body == nil {
		return erc.context.NoContent(status)
	}
	return erc.context.Blob(status, contentType, body)
}

// Get retrieves data from context
func (erc *EchoRequestContext) Get(key string) any {
	return erc.context.Get(key)
}

// Set stores data in context
func (erc *EchoRequestContext) Set(key string, value any) {
	erc.context.Set(key, value)
}

// Echo returns the underlying Echo context
func (erc *EchoRequestContext) Echo() echo.Context {
	return erc.context
}
