package locations

import "net/http"

// Response lets a result handler control the status code alongside the body.
//
// Example:
//
//	locations.PostJSON(b, createUser, func(ctx locations.RequestContext, u *CreateUser) (*locations.Response, error) {
//		return locations.Created(user), nil
//	})
type Response struct {
	// StatusCode is written before the encoded body
	StatusCode int `json:"-"`

	// Body is encoded with the builder's codec; nil writes only the status
	Body any `json:"body,omitempty"`
}

// NewResponse creates a new Response with the specified status code and body
func NewResponse(statusCode int, body any) *Response {
	return &Response{StatusCode: statusCode, Body: body}
}

// OK creates a 200 OK response with the given body
func OK(body any) *Response {
	return NewResponse(http.StatusOK, body)
}

// Created creates a 201 Created response with the given body
func Created(body any) *Response {
	return NewResponse(http.StatusCreated, body)
}

// NoContent creates a 204 No Content response
func NoContent() *Response {
	return NewResponse(http.StatusNoContent, nil)
}

// BadRequest creates a 400 response with an error message body
func BadRequest(message string) *Response {
	return NewResponse(http.StatusBadRequest, map[string]string{"error": message})
}

// NotFound creates a 404 response with an error message body
func NotFound(message string) *Response {
	return NewResponse(http.StatusNotFound, map[string]string{"error": message})
}
