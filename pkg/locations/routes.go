package locations

import (
	"net/http"
	"reflect"
)

// Handler receives the hydrated location of a request.
type Handler[T any] func(ctx RequestContext, loc *T) error

// ResultHandler returns a value encoded with the builder's codec. A *Response
// result also sets the status code.
type ResultHandler[T, R any] func(ctx RequestContext, loc *T) (R, error)

// MethodHandler is registered for several methods and receives the one that
// matched.
type MethodHandler[T any] func(ctx RequestContext, method string, loc *T) error

// AllMethods are the methods Handle registers when none are given.
var AllMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodHead,
	http.MethodOptions,
	http.MethodTrace,
	http.MethodConnect,
}

func Get[T any](b *Builder, loc *Location[T], h Handler[T], roles ...Role) {
	register(b, http.MethodGet, loc, h, roles)
}

func Post[T any](b *Builder, loc *Location[T], h Handler[T], roles ...Role) {
	register(b, http.MethodPost, loc, h, roles)
}

func Put[T any](b *Builder, loc *Location[T], h Handler[T], roles ...Role) {
	register(b, http.MethodPut, loc, h, roles)
}

func Patch[T any](b *Builder, loc *Location[T], h Handler[T], roles ...Role) {
	register(b, http.MethodPatch, loc, h, roles)
}

func Delete[T any](b *Builder, loc *Location[T], h Handler[T], roles ...Role) {
	register(b, http.MethodDelete, loc, h, roles)
}

func Head[T any](b *Builder, loc *Location[T], h Handler[T], roles ...Role) {
	register(b, http.MethodHead, loc, h, roles)
}

func Options[T any](b *Builder, loc *Location[T], h Handler[T], roles ...Role) {
	register(b, http.MethodOptions, loc, h, roles)
}

func Trace[T any](b *Builder, loc *Location[T], h Handler[T], roles ...Role) {
	register(b, http.MethodTrace, loc, h, roles)
}

func Connect[T any](b *Builder, loc *Location[T], h Handler[T], roles ...Role) {
	register(b, http.MethodConnect, loc, h, roles)
}

func GetJSON[T, R any](b *Builder, loc *Location[T], h ResultHandler[T, R], roles ...Role) {
	register(b, http.MethodGet, loc, withResult(b.Codec(), h), roles)
}

func PostJSON[T, R any](b *Builder, loc *Location[T], h ResultHandler[T, R], roles ...Role) {
	register(b, http.MethodPost, loc, withResult(b.Codec(), h), roles)
}

func PutJSON[T, R any](b *Builder, loc *Location[T], h ResultHandler[T, R], roles ...Role) {
	register(b, http.MethodPut, loc, withResult(b.Codec(), h), roles)
}

func PatchJSON[T, R any](b *Builder, loc *Location[T], h ResultHandler[T, R], roles ...Role) {
	register(b, http.MethodPatch, loc, withResult(b.Codec(), h), roles)
}

func DeleteJSON[T, R any](b *Builder, loc *Location[T], h ResultHandler[T, R], roles ...Role) {
	register(b, http.MethodDelete, loc, withResult(b.Codec(), h), roles)
}

func OptionsJSON[T, R any](b *Builder, loc *Location[T], h ResultHandler[T, R], roles ...Role) {
	register(b, http.MethodOptions, loc, withResult(b.Codec(), h), roles)
}

// Handle registers h for each of methods, or for AllMethods when methods is
// empty.
func Handle[T any](b *Builder, loc *Location[T], h MethodHandler[T], methods []string, roles ...Role) {
	if len(methods) == 0 {
		methods = AllMethods
	}
	for _, method := range methods {
		register(b, method, loc, func(ctx RequestContext, inst *T) error {
			return h(ctx, method, inst)
		}, roles)
	}
}

func register[T any](b *Builder, method string, loc *Location[T], h Handler[T], roles []Role) {
	plan, path := route(b, loc)
	hydration := newHydrator(b.Codec(), b.Logger())
	onError := b.ErrorHandler()

	var handler HandlerFunc = func(ctx RequestContext) error {
		inst := plan.hydrate(SourcesFrom(ctx), hydration)
		err := h(ctx, inst)
		if err != nil && onError != nil {
			return onError(ctx, err)
		}
		return err
	}
	if wrap := b.HandlerWrapper(); wrap != nil {
		handler = wrap(handler)
	}

	b.Logger().Debug("registering route",
		"method", method,
		"path", path,
		"location", loc.Name(),
		"roles", roles)
	b.router.AddRoute(method, path, handler, roles...)
}

func withResult[T, R any](codec Codec, h ResultHandler[T, R]) Handler[T] {
	return func(ctx RequestContext, inst *T) error {
		result, err := h(ctx, inst)
		if err != nil {
			return err
		}
		return writeResult(ctx, codec, result)
	}
}

// writeResult encodes result with codec. A nil interface or any nil pointer,
// *Response included, writes nothing.
func writeResult(ctx RequestContext, codec Codec, result any) error {
	if nilPointer(result) {
		return nil
	}
	switch v := result.(type) {
	case nil:
		return nil
	case *Response:
		if v == nil {
			return nil
		}
		if v.StatusCode != 0 {
			ctx.Status(v.StatusCode)
		}
		if v.Body == nil {
			return ctx.Result(nil, codec.ContentType())
		}
		result = v.Body
	}

	data, err := codec.Encode(result)
	if err != nil {
		return err
	}
	return ctx.Result(data, codec.ContentType())
}

// nilPointer reports whether v holds a typed nil pointer.
func nilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
