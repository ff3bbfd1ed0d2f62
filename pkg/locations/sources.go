package locations

import (
	"strconv"
	"sync"
)

// Source selects a parameter bundle. Values combine as a bit set for
// fallback policies.
type Source uint8

const (
	SourcePath Source = 1 << iota
	SourceQuery
	SourceForm
	SourceBody
)

// DefaultSources is the fallback policy of a location that does not set one.
const DefaultSources = SourceForm | SourceQuery | SourcePath

func (s Source) String() string {
	switch s {
	case SourcePath:
		return "path"
	case SourceQuery:
		return "query"
	case SourceForm:
		return "form"
	case SourceBody:
		return "body"
	}
	return "sources(" + strconv.Itoa(int(s)) + ")"
}

// Has reports whether every bit in other is set in s.
func (s Source) Has(other Source) bool {
	return s&other == other
}

// Sources holds the parameter bundles of one request or socket event. It is
// built per request and only read afterwards.
type Sources struct {
	Path  map[string]string
	Query map[string][]string
	Form  map[string][]string

	readBody func() ([]byte, error)
	bodyOnce sync.Once
	body     []byte
	bodyErr  error

	membersOnce sync.Once
	members     map[string]rawMember
	membersErr  error

	mergedMu sync.Mutex
	merged   map[Source]map[string][]string

	request RequestContext
	socket  SocketContext
}

// NewSources builds bundles from plain maps. body may be nil.
func NewSources(path map[string]string, query, form map[string][]string, body func() ([]byte, error)) *Sources {
	return &Sources{
		Path:     orEmpty(path),
		Query:    orEmptyMulti(query),
		Form:     orEmptyMulti(form),
		readBody: body,
	}
}

// SourcesFrom extracts the bundles of an HTTP request. The body is not read
// until a body-bound location or a body field needs it.
func SourcesFrom(ctx RequestContext) *Sources {
	src := NewSources(ctx.PathParams(), ctx.QueryParams(), ctx.FormParams(), ctx.Body)
	src.request = ctx
	return src
}

// SocketSourcesFrom extracts the bundles of a socket session. Form and body
// are always empty.
func SocketSourcesFrom(ctx SocketContext) *Sources {
	src := NewSources(ctx.PathParams(), ctx.QueryParams(), nil, nil)
	src.socket = ctx
	return src
}

// Body reads the raw body once and returns the cached bytes afterwards.
func (s *Sources) Body() ([]byte, error) {
	s.bodyOnce.Do(func() {
		if s.readBody == nil {
			return
		}
		s.body, s.bodyErr = s.readBody()
	})
	return s.body, s.bodyErr
}

// Request returns the originating request, nil for socket sources.
func (s *Sources) Request() RequestContext {
	return s.request
}

// Socket returns the originating session, nil for HTTP sources.
func (s *Sources) Socket() SocketContext {
	return s.socket
}

// lookup returns the raw values bound to key in one bundle.
func (s *Sources) lookup(source Source, key string) ([]string, bool) {
	switch source {
	case SourceQuery:
		values, ok := s.Query[key]
		return values, ok && len(values) > 0
	case SourceForm:
		values, ok := s.Form[key]
		return values, ok && len(values) > 0
	case SourcePath:
		value, ok := s.Path[key]
		if !ok {
			return nil, false
		}
		return []string{value}, true
	}
	return nil, false
}

// bodyMember returns one member of the JSON object body, decoded once.
func (s *Sources) bodyMember(key string, codec Codec) ([]byte, bool) {
	s.membersOnce.Do(func() {
		body, err := s.Body()
		if err != nil || len(body) == 0 {
			s.membersErr = err
			return
		}
		s.membersErr = codec.Decode(body, &s.members)
	})
	if s.membersErr != nil || s.members == nil {
		return nil, false
	}
	member, ok := s.members[key]
	return []byte(member), ok
}

// mergedBundle flattens the bundles allowed by policy. Form wins over query,
// query wins over path.
func (s *Sources) mergedBundle(policy Source) map[string][]string {
	s.mergedMu.Lock()
	defer s.mergedMu.Unlock()

	if bundle, ok := s.merged[policy]; ok {
		return bundle
	}

	bundle := make(map[string][]string)
	if policy.Has(SourcePath) {
		for key, value := range s.Path {
			bundle[key] = []string{value}
		}
	}
	if policy.Has(SourceQuery) {
		for key, values := range s.Query {
			if len(values) > 0 {
				bundle[key] = values
			}
		}
	}
	if policy.Has(SourceForm) {
		for key, values := range s.Form {
			if len(values) > 0 {
				bundle[key] = values
			}
		}
	}

	if s.merged == nil {
		s.merged = make(map[Source]map[string][]string)
	}
	s.merged[policy] = bundle
	return bundle
}

// rawMember keeps one JSON member undecoded until a field asks for it.
type rawMember []byte

func (m *rawMember) UnmarshalJSON(data []byte) error {
	*m = append((*m)[:0], data...)
	return nil
}

func orEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func orEmptyMulti(m map[string][]string) map[string][]string {
	if m == nil {
		return map[string][]string{}
	}
	return m
}
