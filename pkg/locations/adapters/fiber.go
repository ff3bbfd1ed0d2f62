package adapters

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"

	fastws "github.com/fasthttp/websocket"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/toyz/locations/pkg/locations"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const (
	localsPathParams  = "locations.pathParams"
	localsQueryParams = "locations.queryParams"
	localsRequestPath = "locations.requestPath"
)

// FiberAdapter wraps a Fiber app to implement locations.Router
type FiberAdapter struct {
	app  *fiber.App
	opts options
}

// NewFiberAdapter creates a new Fiber adapter for app; a nil app gets a fresh
// fiber.New().
func NewFiberAdapter(app *fiber.App, opts ...Option) *FiberAdapter {
	if app == nil {
		app = fiber.New()
	}
	return &FiberAdapter{app: app, opts: newOptions(opts)}
}

// NewDefaultFiberAdapter creates a new Fiber adapter with default middleware
func NewDefaultFiberAdapter(opts ...Option) *FiberAdapter {
	adapter := NewFiberAdapter(nil, opts...)

	adapter.app.Use(logger.New())
	adapter.app.Use(recover.New())

	return adapter
}

// convertPath converts a route template to Fiber path format
func (fa *FiberAdapter) convertPath(path string) string {
	return convertPath(path, colonParam, "*")
}

// AddRoute registers a location handler with the Fiber app
func (fa *FiberAdapter) AddRoute(method, path string, handler locations.HandlerFunc, roles ...locations.Role) {
	fa.app.Add(method, fa.convertPath(path), fa.convertHandler(fa.opts.guard(handler, roles)))
}

// AddSocketRoute registers a WebSocket upgrade route. Path and query
// parameters are captured before the upgrade since the fasthttp request is
// recycled once the connection is hijacked.
func (fa *FiberAdapter) AddSocketRoute(path string, handler locations.SocketHandler, roles ...locations.Role) {
	admit := func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		rc := newFiberRequestContext(c)
		var admitted bool
		err := fa.serve(rc, fa.opts.guard(func(ctx locations.RequestContext) error {
			if !fa.originAllowed(c) {
				return locations.NewHTTPError(http.StatusForbidden, "origin not allowed")
			}
			c.Locals(localsPathParams, ctx.PathParams())
			c.Locals(localsQueryParams, ctx.QueryParams())
			c.Locals(localsRequestPath, strings.Clone(ctx.Path()))
			admitted = true
			return nil
		}, roles))
		if err != nil || !admitted {
			return err
		}
		return c.Next()
	}

	serve := websocket.New(func(conn *websocket.Conn) {
		params, _ := conn.Locals(localsPathParams).(map[string]string)
		query, _ := conn.Locals(localsQueryParams).(map[string][]string)
		requestPath, _ := conn.Locals(localsRequestPath).(string)

		session := newSocketSession(context.Background(), conn, requestPath, params, query, fa.opts)
		session.serve(handler, fasthttpCloseReader)
	}, websocket.Config{
		Origins:         []string{"*"},
		ReadBufferSize:  fa.opts.upgrader.ReadBufferSize,
		WriteBufferSize: fa.opts.upgrader.WriteBufferSize,
	})

	fa.app.Get(fa.convertPath(path), admit, serve)
}

// originAllowed runs the configured CheckOrigin against the upgrade request.
// Without one, only same-origin requests and those lacking an Origin header
// pass, as with the gorilla upgrader used by the other adapters.
func (fa *FiberAdapter) originAllowed(c *fiber.Ctx) bool {
	var r http.Request
	if err := fasthttpadaptor.ConvertRequest(c.Context(), &r, true); err != nil {
		fa.opts.logger.Debug("failed to convert upgrade request", "path", c.Path(), "error", err)
		return false
	}
	if check := fa.opts.upgrader.CheckOrigin; check != nil {
		return check(&r)
	}
	return sameOrigin(&r)
}

func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

func fasthttpCloseReader(err error) (int, string, bool) {
	var ce *fastws.CloseError
	if errors.As(err, &ce) {
		return ce.Code, ce.Text, true
	}
	return 0, "", false
}

// Start starts the Fiber server
func (fa *FiberAdapter) Start(addr string) error {
	return fa.app.Listen(addr)
}

// Stop stops the Fiber server
func (fa *FiberAdapter) Stop(ctx context.Context) error {
	return fa.app.ShutdownWithContext(ctx)
}

// Name returns the adapter name
func (fa *FiberAdapter) Name() string {
	return "Fiber"
}

// GetApp returns the underlying Fiber app
func (fa *FiberAdapter) GetApp() *fiber.App {
	return fa.app
}

// convertHandler converts a locations handler to a Fiber handler
func (fa *FiberAdapter) convertHandler(handler locations.HandlerFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return fa.serve(newFiberRequestContext(c), handler)
	}
}

func (fa *FiberAdapter) serve(ctx *FiberRequestContext, handler locations.HandlerFunc) error {
	c := ctx.ctx
	if err := handler(ctx); err != nil {
		if ctx.written {
			fa.opts.logger.Warn("handler failed after response was written", "path", c.Path(), "error", err)
			return nil
		}
		status, body := errorResponse(err)
		return c.Status(status).JSON(body)
	}
	if ctx.status != 0 && !ctx.written {
		return c.SendStatus(ctx.status)
	}
	return nil
}

// FiberRequestContext implements locations.RequestContext for Fiber
type FiberRequestContext struct {
	ctx     *fiber.Ctx
	status  int
	written bool

	bodyOnce sync.Once
	body     []byte
	formOnce sync.Once
	form     map[string][]string
}

func newFiberRequestContext(c *fiber.Ctx) *FiberRequestContext {
	return &FiberRequestContext{ctx: c}
}

// Context returns the user context of the request
func (frc *FiberRequestContext) Context() context.Context {
	return frc.ctx.UserContext()
}

// Method returns the HTTP method
func (frc *FiberRequestContext) Method() string {
	return frc.ctx.Method()
}

// Path returns the request path
func (frc *FiberRequestContext) Path() string {
	return frc.ctx.Path()
}

// PathParams returns copies of all path parameters. Fiber's own values alias
// the fasthttp request buffer, which is reused after the handler returns.
func (frc *FiberRequestContext) PathParams() map[string]string {
	params := frc.ctx.AllParams()
	result := make(map[string]string, len(params))
	for k, v := range params {
		result[strings.Clone(k)] = strings.Clone(v)
	}
	return result
}

// QueryParams returns all query parameters, keeping repeated keys
func (frc *FiberRequestContext) QueryParams() map[string][]string {
	result := make(map[string][]string)
	frc.ctx.Request().URI().QueryArgs().VisitAll(func(key, value []byte) {
		k := string(key)
		result[k] = append(result[k], string(value))
	})
	return result
}

// FormParams returns form parameters of form-encoded bodies
func (frc *FiberRequestContext) FormParams() map[string][]string {
	frc.formOnce.Do(func() {
		frc.form = map[string][]string{}
		switch frc.ctx.Method() {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			return
		}

		mediaType, _, err := mime.ParseMediaType(frc.ctx.Get(fiber.HeaderContentType))
		if err != nil {
			return
		}
		switch mediaType {
		case fiber.MIMEApplicationForm:
			frc.ctx.Request().PostArgs().VisitAll(func(key, value []byte) {
				k := string(key)
				frc.form[k] = append(frc.form[k], string(value))
			})
		case fiber.MIMEMultipartForm:
			if form, err := frc.ctx.MultipartForm(); err == nil {
				frc.form = form.Value
			}
		}
	})
	return frc.form
}

// Body returns a copy of the raw request body
func (frc *FiberRequestContext) Body() ([]byte, error) {
	frc.bodyOnce.Do(func() {
		frc.body = bytes.Clone(frc.ctx.Body())
	})
	return frc.body, nil
}

// Header returns a request header value
func (frc *FiberRequestContext) Header(key string) string {
	return frc.ctx.Get(key)
}

// SetHeader sets a response header
func (frc *FiberRequestContext) SetHeader(key, value string) {
	frc.ctx.Set(key, value)
}

// Status sets the status code used by Result
func (frc *FiberRequestContext) Status(code int) {
	frc.status = code
}

// Result writes the response body
func (frc *FiberRequestContext) Result(body []byte, contentType string) error {
	status := frc.status
	if status == 0 {
		status = http.StatusOK
	}
	frc.written = true
	if body == nil {
		return frc.ctx.SendStatus(status)
	}
	frc.ctx.Set(fiber.HeaderContentType, contentType)
	return frc.ctx.Status(status).Send(body)
}

// Get retrieves data from the request locals
func (frc *FiberRequestContext) Get(key string) any {
	return frc.ctx.Locals(key)
}

// Set stores data in the request locals
func (frc *FiberRequestContext) Set(key string, value any) {
	frc.ctx.Locals(key, value)
}

// Fiber returns the underlying Fiber context
func (frc *FiberRequestContext) Fiber() *fiber.Ctx {
	return frc.ctx
}
