// Package adapters implements locations.Router on top of Echo, Gin and Fiber.
package adapters

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/toyz/locations/pkg/locations"
)

// AccessManager decides whether a request may reach next. roles are the
// roles the route was registered with.
type AccessManager func(next locations.HandlerFunc, ctx locations.RequestContext, roles []locations.Role) error

// RequireRoles returns an AccessManager that admits a request when resolve
// yields at least one of the route's roles. Routes without roles are open.
func RequireRoles(resolve func(ctx locations.RequestContext) []locations.Role) AccessManager {
	return func(next locations.HandlerFunc, ctx locations.RequestContext, roles []locations.Role) error {
		if len(roles) == 0 {
			return next(ctx)
		}
		for _, have := range resolve(ctx) {
			for _, want := range roles {
				if have == want {
					return next(ctx)
				}
			}
		}
		return locations.NewHTTPError(http.StatusForbidden, "forbidden")
	}
}

// Option configures an adapter.
type Option func(*options)

type options struct {
	access    AccessManager
	logger    *slog.Logger
	upgrader  websocket.Upgrader
	writeWait time.Duration
	pongWait  time.Duration
}

func defaultOptions() options {
	return options{
		logger: slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		writeWait: 10 * time.Second,
		pongWait:  60 * time.Second,
	}
}

func newOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithAccessManager enforces route roles.
func WithAccessManager(access AccessManager) Option {
	return func(o *options) { o.access = access }
}

// WithLogger sets the adapter logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCheckOrigin replaces the same-origin check of socket upgrades.
func WithCheckOrigin(check func(r *http.Request) bool) Option {
	return func(o *options) { o.upgrader.CheckOrigin = check }
}

// WithSocketTimeouts sets the write deadline and the pong wait of socket
// sessions. Pings are sent at nine tenths of pongWait.
func WithSocketTimeouts(writeWait, pongWait time.Duration) Option {
	return func(o *options) {
		o.writeWait = writeWait
		o.pongWait = pongWait
	}
}

func (o options) guard(handler locations.HandlerFunc, roles []locations.Role) locations.HandlerFunc {
	if o.access == nil {
		return handler
	}
	return func(ctx locations.RequestContext) error {
		return o.access(handler, ctx, roles)
	}
}

// convertPath rewrites a {name} route template into a framework's syntax.
func convertPath(path string, param func(name string) string, wildcard string) string {
	var b strings.Builder
	for _, part := range locations.ParsePath(path) {
		switch part.Type {
		case locations.ParameterPart:
			b.WriteString(param(part.Value))
		case locations.WildcardPart:
			b.WriteString(wildcard)
		default:
			b.WriteString(part.Value)
		}
	}
	return b.String()
}

func colonParam(name string) string {
	return ":" + name
}

// errorResponse maps a handler error to a status code and JSON body.
func errorResponse(err error) (int, map[string]any) {
	var httpErr *locations.HTTPError
	if errors.As(err, &httpErr) {
		body := map[string]any{"error": httpErr.Message}
		if httpErr.Details != nil {
			body["details"] = httpErr.Details
		}
		return httpErr.Code, body
	}
	return http.StatusInternalServerError, map[string]any{"error": err.Error()}
}
