package locations

import (
	"context"
	"errors"
	"net/http"
	"sync"
)

type recordedRoute struct {
	method  string
	path    string
	handler HandlerFunc
	roles   []Role
}

type recordedSocket struct {
	path    string
	handler SocketHandler
	roles   []Role
}

// recordingRouter keeps every registration so tests can dispatch by hand.
type recordingRouter struct {
	routes  []recordedRoute
	sockets []recordedSocket
}

func (r *recordingRouter) AddRoute(method, path string, handler HandlerFunc, roles ...Role) {
	r.routes = append(r.routes, recordedRoute{method: method, path: path, handler: handler, roles: roles})
}

func (r *recordingRouter) AddSocketRoute(path string, handler SocketHandler, roles ...Role) {
	r.sockets = append(r.sockets, recordedSocket{path: path, handler: handler, roles: roles})
}

func (r *recordingRouter) find(method, path string) (recordedRoute, bool) {
	for _, route := range r.routes {
		if route.method == method && route.path == path {
			return route, true
		}
	}
	return recordedRoute{}, false
}

func (r *recordingRouter) paths() []string {
	out := make([]string, 0, len(r.routes))
	for _, route := range r.routes {
		out = append(out, route.method+" "+route.path)
	}
	return out
}

type fakeRequest struct {
	method  string
	path    string
	params  map[string]string
	query   map[string][]string
	form    map[string][]string
	body    []byte
	bodyErr error

	bodyReads   int
	status      int
	result      []byte
	contentType string
	headers     http.Header
	values      map[string]any
}

func newFakeRequest(method string) *fakeRequest {
	return &fakeRequest{
		method:  method,
		params:  map[string]string{},
		query:   map[string][]string{},
		form:    map[string][]string{},
		headers: http.Header{},
		values:  map[string]any{},
	}
}

func (f *fakeRequest) Context() context.Context { return context.Background() }
func (f *fakeRequest) Method() string { return f.method }
func (f *fakeRequest) Path() string { return f.path }
func (f *fakeRequest) PathParams() map[string]string { return f.params }
func (f *fakeRequest) QueryParams() map[string][]string { return f.query }
func (f *fakeRequest) FormParams() map[string][]string { return f.form }
func (f *fakeRequest) Header(key string) string { return f.headers.Get(key) }
func (f *fakeRequest) SetHeader(key, value string) { f.headers.Set(key, value) }
func (f *fakeRequest) Status(code int) { f.status = code }
func (f *fakeRequest) Get(key string) any { return f.values[key] }
func (f *fakeRequest) Set(key string, value any) { f.values[key] = value }

func (f *fakeRequest) Body() ([]byte, error) {
	f.bodyReads++
	return f.body, f.bodyErr
}

func (f *fakeRequest) Result(body []byte, contentType string) error {
	f.result = body
	f.contentType = contentType
	if f.status == 0 {
		f.status = http.StatusOK
	}
	return nil
}

type fakeSocket struct {
	id     string
	params map[string]string
	query  map[string][]string

	mu     sync.Mutex
	sent   []string
	values map[string]any
}

func newFakeSocket(id string) *fakeSocket {
	return &fakeSocket{
		id:     id,
		params: map[string]string{},
		query:  map[string][]string{},
		values: map[string]any{},
	}
}

func (f *fakeSocket) Context() context.Context { return context.Background() }
func (f *fakeSocket) SessionID() string { return f.id }
func (f *fakeSocket) Path() string { return "" }
func (f *fakeSocket) PathParams() map[string]string { return f.params }
func (f *fakeSocket) QueryParams() map[string][]string { return f.query }
func (f *fakeSocket) SendBinary(data []byte) error { return f.Send(string(data)) }
func (f *fakeSocket) Close(int, string) error { return nil }
func (f *fakeSocket) Get(key string) any { return f.values[key] }
func (f *fakeSocket) Set(key string, value any) { f.values[key] = value }

func (f *fakeSocket) Send(message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, message)
	return nil
}

var errBoom = errors.New("boom")
