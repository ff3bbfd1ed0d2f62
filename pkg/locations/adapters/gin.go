package adapters

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/toyz/locations/pkg/locations"
)

// GinAdapter implements locations.Router for the Gin framework
type GinAdapter struct {
	engine *gin.Engine
	server *http.Server
	opts   options
}

// NewGinAdapter creates a new Gin adapter
func NewGinAdapter(g *gin.Engine, opts ...Option) *GinAdapter {
	return &GinAdapter{engine: g, opts: newOptions(opts)}
}

// NewDefaultGinAdapter creates a new Gin adapter with default Gin instance
func NewDefaultGinAdapter(opts ...Option) *GinAdapter {
	return NewGinAdapter(gin.Default(), opts...)
}

// convertPath converts a route template to Gin path format
func (ga *GinAdapter) convertPath(path string) string {
	return convertPath(path, colonParam, "*path")
}

// AddRoute registers a location handler with Gin
func (ga *GinAdapter) AddRoute(method, path string, handler locations.HandlerFunc, roles ...locations.Role) {
	ga.engine.Handle(method, ga.convertPath(path), ga.convertHandler(ga.opts.guard(handler, roles)))
}

// AddSocketRoute registers a WebSocket upgrade route with Gin
func (ga *GinAdapter) AddSocketRoute(path string, handler locations.SocketHandler, roles ...locations.Role) {
	ga.engine.GET(ga.convertPath(path), func(c *gin.Context) {
		rc := newGinRequestContext(c)
		upgrade := func(locations.RequestContext) error {
			conn, err := ga.opts.upgrader.Upgrade(c.Writer, c.Request, nil)
			if err != nil {
				ga.opts.logger.Debug("socket upgrade failed", "path", path, "error", err)
				return nil
			}
			session := newSocketSession(c.Request.Context(), conn, c.Request.URL.Path, rc.PathParams(), rc.QueryParams(), ga.opts)
			session.serve(handler, gorillaCloseReader)
			return nil
		}
		ga.serve(rc, ga.opts.guard(upgrade, roles))
	})
}

// Start starts the Gin server
func (ga *GinAdapter) Start(addr string) error {
	ga.server = &http.Server{
		Addr:              addr,
		Handler:           ga.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := ga.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully stops a server started with Start
func (ga *GinAdapter) Stop(ctx context.Context) error {
	if ga.server == nil {
		return nil
	}
	return ga.server.Shutdown(ctx)
}

// Name returns the adapter name
func (ga *GinAdapter) Name() string {
	return "Gin"
}

// GetEngine returns the underlying Gin engine
func (ga *GinAdapter) GetEngine() *gin.Engine {
	return ga.engine
}

// convertHandler converts locations.HandlerFunc to gin.HandlerFunc
func (ga *GinAdapter) convertHandler(handler locations.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ga.serve(newGinRequestContext(c), handler)
	}
}

func (ga *GinAdapter) serve(ctx *GinRequestContext, handler locations.HandlerFunc) {
	c := ctx.ctx
	if err := handler(ctx); err != nil {
		if c.Writer.Written() {
			ga.opts.logger.Warn("handler failed after response was written", "path", c.FullPath(), "error", err)
			return
		}
		status, body := errorResponse(err)
		c.JSON(status, body)
		return
	}
	if !c.Writer.Written() && ctx.status != 0 {
		c.Status(ctx.status)
		c.Writer.WriteHeaderNow()
	}
}

// GinRequestContext implements locations.RequestContext for Gin
type GinRequestContext struct {
	ctx    *gin.Context
	body   *requestBody
	status int
}

func newGinRequestContext(c *gin.Context) *GinRequestContext {
	return &GinRequestContext{ctx: c, body: newRequestBody(c.Request)}
}

// Context returns the request context
func (grc *GinRequestContext) Context() context.Context {
	return grc.ctx.Request.Context()
}

// Method returns the HTTP method
func (grc *GinRequestContext) Method() string {
	return grc.ctx.Request.Method
}

// Path returns the request path
func (grc *GinRequestContext) Path() string {
	return grc.ctx.Request.URL.Path
}

// PathParams returns all path parameters
func (grc *GinRequestContext) PathParams() map[string]string {
	params := make(map[string]string, len(grc.ctx.Params))
	for _, p := range grc.ctx.Params {
		params[p.Key] = p.Value
	}
	return params
}

// QueryParams returns all query parameters
func (grc *GinRequestContext) QueryParams() map[string][]string {
	return grc.ctx.Request.URL.Query()
}

// FormParams returns form parameters of form-encoded bodies
func (grc *GinRequestContext) FormParams() map[string][]string {
	return grc.body.formParams()
}

// Body returns the raw request body
func (grc *GinRequestContext) Body() ([]byte, error) {
	return grc.body.bytes()
}

// Header returns a request header value
func (grc *GinRequestContext) Header(key string) string {
	return grc.ctx.GetHeader(key)
}

// SetHeader sets a response header
func (grc *GinRequestContext) SetHeader(key, value string) {
	grc.ctx.Header(key, value)
}

// Status sets the status code used by Result
func (grc *GinRequestContext) Status(code int) {
	grc.status = code
}

// Result writes the response body
func (grc *GinRequestContext) Result(body []byte, contentType string) error {
	status := grc.status
	if status == 0 {
		status = http.StatusOK
	}
	if body == nil {
		grc.ctx.Status(status)
		grc.ctx.Writer.WriteHeaderNow()
		return nil
	}
	grc.ctx.Data(status, contentType, body)
	return nil
}

// Get retrieves data from context
func (grc *GinRequestContext) Get(key string) any {
	value, _ := grc.ctx.Get(key)
	return value
}

// Set stores data in context
func (grc *GinRequestContext) Set(key string, value any) {
	grc.ctx.Set(key, value)
}

// Gin returns the underlying Gin context
func (grc *GinRequestContext) Gin() *gin.Context {
	return grc.ctx
}
