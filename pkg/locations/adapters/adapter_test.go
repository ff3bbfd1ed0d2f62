package adapters

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toyz/locations/pkg/locations"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// server is one adapter under test together with ways to reach it.
type server struct {
	router locations.Router
	do     func(t *testing.T, req *http.Request) *http.Response
	listen func(t *testing.T) string
}

type harness struct {
	name  string
	build func(opts ...Option) *server
}

var harnesses = []harness{
	{name: "echo", build: func(opts ...Option) *server {
		e := echo.New()
		return handlerServer(NewEchoAdapter(e, opts...), e)
	}},
	{name: "gin", build: func(opts ...Option) *server {
		g := gin.New()
		return handlerServer(NewGinAdapter(g, opts...), g)
	}},
	{name: "fiber", build: func(opts ...Option) *server {
		app := fiber.New(fiber.Config{DisableStartupMessage: true})
		return &server{
			router: NewFiberAdapter(app, opts...),
			do: func(t *testing.T, req *http.Request) *http.Response {
				resp, err := app.Test(req, -1)
				require.NoError(t, err)
				return resp
			},
			listen: func(t *testing.T) string {
				ln, err := net.Listen("tcp", "127.0.0.1:0")
				require.NoError(t, err)
				go func() { _ = app.Listener(ln) }()
				t.Cleanup(func() { _ = app.Shutdown() })
				return "http://" + ln.Addr().String()
			},
		}
	}},
}

func handlerServer(router locations.Router, handler http.Handler) *server {
	return &server{
		router: router,
		do: func(t *testing.T, req *http.Request) *http.Response {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			return rec.Result()
		},
		listen: func(t *testing.T) string {
			srv := httptest.NewServer(handler)
			t.Cleanup(srv.Close)
			return srv.URL
		},
	}
}

func eachAdapter(t *testing.T, run func(t *testing.T, h harness)) {
	for _, h := range harnesses {
		t.Run(h.name, func(t *testing.T) { run(t, h) })
	}
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v), string(data))
}

type item struct {
	ID      int
	Verbose bool
	Tags    []string
}

var itemLocation = locations.Define[item]("/items/{id}").Fields(
	locations.Field("id", func(i *item) *int { return &i.ID }),
	locations.Field("verbose", func(i *item) *bool { return &i.Verbose }),
	locations.Field("tags", func(i *item) *[]string { return &i.Tags }),
)

type itemView struct {
	ID      int      `json:"id"`
	Verbose bool     `json:"verbose"`
	Tags    []string `json:"tags"`
}

type signup struct {
	Name  string
	Email string
}

var signupLocation = locations.Define[signup]("/signup").Fields(
	locations.Field("name", func(s *signup) *string { return &s.Name }, locations.FromForm("name")),
	locations.Field("email", func(s *signup) *string { return &s.Email }),
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

var credentialsLocation = locations.Define[credentials]("/login").BodyBound()

type teapot struct{}

var teapotLocation = locations.Define[teapot]("/teapot")

type broken struct{}

var brokenLocation = locations.Define[broken]("/broken")

type purge struct{}

var purgeLocation = locations.Define[purge]("/purge")

type admin struct{}

var adminLocation = locations.Define[admin]("/admin")

func mount(router locations.Router) {
	locations.Locations(router, func(b *locations.Builder) {
		b.Path("/api", func(b *locations.Builder) {
			locations.GetJSON(b, itemLocation, func(ctx locations.RequestContext, i *item) (itemView, error) {
				return itemView{ID: i.ID, Verbose: i.Verbose, Tags: i.Tags}, nil
			})
			locations.PostJSON(b, signupLocation, func(ctx locations.RequestContext, s *signup) (map[string]string, error) {
				return map[string]string{"name": s.Name, "email": s.Email}, nil
			})
			locations.PostJSON(b, credentialsLocation, func(ctx locations.RequestContext, c *credentials) (*locations.Response, error) {
				return locations.Created(map[string]string{"user": c.Username}), nil
			})
			locations.Get(b, teapotLocation, func(ctx locations.RequestContext, _ *teapot) error {
				return locations.NewHTTPError(http.StatusTeapot, "short and stout")
			})
			locations.Get(b, brokenLocation, func(ctx locations.RequestContext, _ *broken) error {
				return errors.New("boom")
			})
			locations.DeleteJSON(b, purgeLocation, func(ctx locations.RequestContext, _ *purge) (*locations.Response, error) {
				return locations.NoContent(), nil
			})
			locations.Get(b, adminLocation, func(ctx locations.RequestContext, _ *admin) error {
				return ctx.Result([]byte("welcome"), "text/plain")
			}, "admin")
		})
	})
}

func TestAdapters_PathQueryAndResult(t *testing.T) {
	eachAdapter(t, func(t *testing.T, h harness) {
		srv := h.build()
		mount(srv.router)

		resp := srv.do(t, httptest.NewRequest(http.MethodGet, "/api/items/42?verbose&tags=a&tags=b", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

		var view itemView
		decodeBody(t, resp, &view)
		assert.Equal(t, itemView{ID: 42, Verbose: true, Tags: []string{"a", "b"}}, view)
	})
}

func TestAdapters_FormFields(t *testing.T) {
	eachAdapter(t, func(t *testing.T, h harness) {
		srv := h.build()
		mount(srv.router)

		form := url.Values{"name": {"ada"}, "email": {"ada@example.com"}}
		req := httptest.NewRequest(http.MethodPost, "/api/signup?email=ignored@example.com", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp := srv.do(t, req)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var got map[string]string
		decodeBody(t, resp, &got)
		assert.Equal(t, "ada", got["name"])
		assert.Equal(t, "ada@example.com", got["email"])
	})
}

func TestAdapters_BodyBound(t *testing.T) {
	eachAdapter(t, func(t *testing.T, h harness) {
		srv := h.build()
		mount(srv.router)

		req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"username":"bob","password":"pw"}`))
		req.Header.Set("Content-Type", "application/json")

		resp := srv.do(t, req)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var got map[string]string
		decodeBody(t, resp, &got)
		assert.Equal(t, "bob", got["user"])
	})
}

func TestAdapters_ErrorMapping(t *testing.T) {
	eachAdapter(t, func(t *testing.T, h harness) {
		srv := h.build()
		mount(srv.router)

		resp := srv.do(t, httptest.NewRequest(http.MethodGet, "/api/teapot", nil))
		assert.Equal(t, http.StatusTeapot, resp.StatusCode)
		var body map[string]any
		decodeBody(t, resp, &body)
		assert.Equal(t, "short and stout", body["error"])

		resp = srv.do(t, httptest.NewRequest(http.MethodGet, "/api/broken", nil))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body = nil
		decodeBody(t, resp, &body)
		assert.Equal(t, "boom", body["error"])
	})
}

func TestAdapters_NoContent(t *testing.T) {
	eachAdapter(t, func(t *testing.T, h harness) {
		srv := h.build()
		mount(srv.router)

		resp := srv.do(t, httptest.NewRequest(http.MethodDelete, "/api/purge", nil))
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}

func TestAdapters_AccessManager(t *testing.T) {
	access := RequireRoles(func(ctx locations.RequestContext) []locations.Role {
		if role := ctx.Header("X-Role"); role != "" {
			return []locations.Role{locations.Role(role)}
		}
		return nil
	})

	eachAdapter(t, func(t *testing.T, h harness) {
		srv := h.build(WithAccessManager(access))
		mount(srv.router)

		resp := srv.do(t, httptest.NewRequest(http.MethodGet, "/api/admin", nil))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		var body map[string]any
		decodeBody(t, resp, &body)
		assert.Equal(t, "forbidden", body["error"])

		req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
		req.Header.Set("X-Role", "admin")
		resp = srv.do(t, req)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "welcome", string(data))

		// unguarded routes stay open
		resp = srv.do(t, httptest.NewRequest(http.MethodGet, "/api/items/1", nil))
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

type room struct {
	Room string
	Nick string
}

var roomLocation = locations.Define[room]("/ws/rooms/{room}").Fields(
	locations.Field("room", func(r *room) *string { return &r.Room }),
	locations.Field("nick", func(r *room) *string { return &r.Nick }),
)

type closeEvent struct {
	code   int
	reason string
}

func TestAdapters_Socket(t *testing.T) {
	eachAdapter(t, func(t *testing.T, h harness) {
		srv := h.build(WithSocketTimeouts(time.Second, time.Minute))
		closed := make(chan closeEvent, 1)

		locations.Locations(srv.router, func(b *locations.Builder) {
			locations.Socket(b, roomLocation, func(cfg *locations.SocketConfig[room]) {
				cfg.OnConnect(func(ctx locations.SocketContext, r *room) {
					_ = ctx.Send("welcome " + r.Nick)
				})
				cfg.OnMessage(func(ctx locations.SocketContext, r *room, message string) {
					_ = ctx.Send(r.Room + ":" + message)
				})
				cfg.OnBinaryMessage(func(ctx locations.SocketContext, r *room, data []byte) {
					_ = ctx.SendBinary(append([]byte(r.Room+":"), data...))
				})
				cfg.OnClose(func(ctx locations.SocketContext, r *room, code int, reason string) {
					closed <- closeEvent{code: code, reason: reason}
				})
			})
		})

		base := srv.listen(t)
		conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(base, "http")+"/ws/rooms/lobby?nick=al", nil)
		require.NoError(t, err)
		defer conn.Close()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, "welcome al", string(data))

		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("hi")))
		messageType, data, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, websocket.TextMessage, messageType)
		assert.Equal(t, "lobby:hi", string(data))

		require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{1, 2}))
		messageType, data, err = conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, websocket.BinaryMessage, messageType)
		assert.Equal(t, append([]byte("lobby:"), 1, 2), data)

		require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")))
		select {
		case ev := <-closed:
			assert.Equal(t, websocket.CloseNormalClosure, ev.code)
			assert.Equal(t, "bye", ev.reason)
		case <-time.After(5 * time.Second):
			t.Fatal("close event not delivered")
		}
	})
}

func TestAdapters_SocketRequiresRole(t *testing.T) {
	access := RequireRoles(func(locations.RequestContext) []locations.Role { return nil })

	eachAdapter(t, func(t *testing.T, h harness) {
		srv := h.build(WithAccessManager(access))
		locations.Locations(srv.router, func(b *locations.Builder) {
			locations.Socket(b, roomLocation, func(cfg *locations.SocketConfig[room]) {}, "member")
		})

		base := srv.listen(t)
		_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(base, "http")+"/ws/rooms/lobby", nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestAdapters_SocketRejectsOrigin(t *testing.T) {
	cases := map[string][]Option{
		"custom check": {WithCheckOrigin(func(*http.Request) bool { return false })},
		"same origin":  nil,
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			eachAdapter(t, func(t *testing.T, h harness) {
				srv := h.build(opts...)
				locations.Locations(srv.router, func(b *locations.Builder) {
					locations.Socket(b, roomLocation, func(cfg *locations.SocketConfig[room]) {})
				})

				base := srv.listen(t)
				header := http.Header{"Origin": {"http://evil.example"}}
				_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(base, "http")+"/ws/rooms/lobby", header)
				require.Error(t, err)
				require.NotNil(t, resp)
				assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			})
		})
	}
}

func TestAdapters_ErrorAfterResultKeepsResponse(t *testing.T) {
	eachAdapter(t, func(t *testing.T, h harness) {
		srv := h.build()
		locations.Locations(srv.router, func(b *locations.Builder) {
			locations.Get(b, teapotLocation, func(ctx locations.RequestContext, _ *teapot) error {
				ctx.Status(http.StatusAccepted)
				if err := ctx.Result([]byte("queued"), "text/plain"); err != nil {
					return err
				}
				return errors.New("audit log unavailable")
			})
		})

		resp := srv.do(t, httptest.NewRequest(http.MethodGet, "/teapot", nil))
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
		assert.Equal(t, "queued", string(data))
	})
}

func TestAdapters_PathParamsOutliveRequest(t *testing.T) {
	eachAdapter(t, func(t *testing.T, h harness) {
		srv := h.build()
		var kept []map[string]string
		locations.Locations(srv.router, func(b *locations.Builder) {
			locations.Get(b, itemLocation, func(ctx locations.RequestContext, _ *item) error {
				kept = append(kept, ctx.PathParams())
				return ctx.Result(nil, "text/plain")
			})
		})

		for _, id := range []string{"111", "222", "333"} {
			resp := srv.do(t, httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
			resp.Body.Close()
		}
		require.Len(t, kept, 3)
		assert.Equal(t, map[string]string{"id": "111"}, kept[0])
		assert.Equal(t, map[string]string{"id": "222"}, kept[1])
		assert.Equal(t, map[string]string{"id": "333"}, kept[2])
	})
}

func TestAdapters_Names(t *testing.T) {
	assert.Equal(t, "Echo", NewDefaultEchoAdapter().Name())
	assert.Equal(t, "Gin", NewGinAdapter(gin.New()).Name())
	assert.Equal(t, "Fiber", NewFiberAdapter(nil).Name())
}

func TestGinAdapter_StopBeforeStart(t *testing.T) {
	assert.NoError(t, NewGinAdapter(gin.New()).Stop(context.Background()))
}

func TestConvertPath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wildcard string
		expected string
	}{
		{"static", "/health", "*", "/health"},
		{"parameter", "/users/{id}", "*", "/users/:id"},
		{"typed parameter", "/users/{id:int}/posts/{slug}", "*", "/users/:id/posts/:slug"},
		{"colon parameter", "/users/:id", "*", "/users/:id"},
		{"wildcard", "/files/{*}", "*", "/files/*"},
		{"named wildcard", "/files/*", "*path", "/files/*path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, convertPath(tt.path, colonParam, tt.wildcard))
		})
	}
}

func TestRequireRoles(t *testing.T) {
	var calls int
	next := func(locations.RequestContext) error {
		calls++
		return nil
	}
	access := RequireRoles(func(locations.RequestContext) []locations.Role {
		return []locations.Role{"reader", "writer"}
	})

	require.NoError(t, access(next, nil, nil))
	require.NoError(t, access(next, nil, []locations.Role{"writer"}))
	assert.Equal(t, 2, calls)

	err := access(next, nil, []locations.Role{"admin"})
	var httpErr *locations.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
	assert.Equal(t, 2, calls)
}

func TestErrorResponse(t *testing.T) {
	status, body := errorResponse(locations.NewHTTPErrorWithDetails(http.StatusBadRequest, "bad", map[string]string{"field": "id"}))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "bad", body["error"])
	assert.Equal(t, map[string]string{"field": "id"}, body["details"])

	status, body = errorResponse(errors.New("plain"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, map[string]any{"error": "plain"}, body)
}
