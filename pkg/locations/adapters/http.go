package adapters

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"net/url"
	"sync"
)

const maxMultipartMemory = 32 << 20

// requestBody reads an *http.Request body once and serves both raw body and
// form access from the cached bytes.
type requestBody struct {
	req *http.Request

	once sync.Once
	data []byte
	err  error

	formOnce sync.Once
	form     map[string][]string
}

func newRequestBody(req *http.Request) *requestBody {
	return &requestBody{req: req}
}

func (b *requestBody) bytes() ([]byte, error) {
	b.once.Do(func() {
		if b.req.Body == nil || b.req.Body == http.NoBody {
			return
		}
		b.data, b.err = io.ReadAll(b.req.Body)
		b.req.Body.Close()
		b.rewind()
	})
	return b.data, b.err
}

func (b *requestBody) rewind() {
	b.req.Body = io.NopCloser(bytes.NewReader(b.data))
}

// formParams returns the body's form values for POST, PUT and PATCH requests
// with a form content type, and an empty map otherwise.
func (b *requestBody) formParams() map[string][]string {
	b.formOnce.Do(func() {
		b.form = map[string][]string{}
		switch b.req.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			return
		}

		mediaType, _, err := mime.ParseMediaType(b.req.Header.Get("Content-Type"))
		if err != nil {
			return
		}
		data, err := b.bytes()
		if err != nil {
			return
		}

		switch mediaType {
		case "application/x-www-form-urlencoded":
			if values, err := url.ParseQuery(string(data)); err == nil {
				b.form = values
			}
		case "multipart/form-data":
			b.rewind()
			if err := b.req.ParseMultipartForm(maxMultipartMemory); err == nil && b.req.MultipartForm != nil {
				b.form = b.req.MultipartForm.Value
			}
			b.rewind()
		}
	})
	return b.form
}
