package http11

import (
	"github.com/yourusername/surge/pkg/surge/wire"
)

// statusText mirrors shockwave/pkg/shockwave/http11/response.go's
// statusText switch (the RFC 7231/7233/7235 reason-phrase table), used as
// the Builder's default reason phrase.
var statusText = map[int]string{
	100: "Continue", 101: "Switching Protocols",
	200: "OK", 201: "Created", 202: "Accepted", 204: "No Content",
	206: "Partial Content",
	300: "Multiple Choices", 301: "Moved Permanently", 302: "Found",
	303: "See Other", 304: "Not Modified", 307: "Temporary Redirect",
	308: "Permanent Redirect",
	400: "Bad Request", 401: "Unauthorized", 403: "Forbidden",
	404: "Not Found", 405: "Method Not Allowed", 406: "Not Acceptable",
	408: "Request Timeout", 409: "Conflict", 411: "Length Required",
	413: "Payload Too Large", 414: "URI Too Long",
	415: "Unsupported Media Type", 426: "Upgrade Required",
	429: "Too Many Requests",
	500: "Internal Server Error", 501: "Not Implemented",
	502: "Bad Gateway", 503: "Service Unavailable",
	504: "Gateway Timeout", 505: "HTTP Version Not Supported",
}

// Response is the immutable value a handler produces: status, headers, and
// a body iterable whose framing has already been validated against the
// status-code rules in spec.md's Data Model.
//
// Grounded on shockwave/pkg/shockwave/http11/response.go's ResponseWriter,
// generalized from a single mutable writer (status+header one-way latch
// straight onto the socket) into a value built by ResponseBuilder and
// validated before anything touches the wire — negotiation and writing are
// separate concerns here, where the teacher fuses them.
type Response struct {
	StatusCode      int
	ReasonPhrase    string
	Headers         *HeaderIndex
	Body            wire.Iterable
	CloseAfterWrite bool // body length unknown and not chunked: connection must close after this write
}

// ResponseBuilder accumulates the pieces of a Response and validates them
// at Build time.
type ResponseBuilder struct {
	statusCode   int
	statusSet    bool
	reasonPhrase string
	headers      *HeaderIndex
	body         wire.Iterable
}

// NewResponseBuilder returns an empty builder.
func NewResponseBuilder() *ResponseBuilder {
	return &ResponseBuilder{headers: NewHeaderIndex()}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	b.statusSet = true
	return b
}

func (b *ResponseBuilder) Reason(phrase string) *ResponseBuilder {
	b.reasonPhrase = phrase
	return b
}

func (b *ResponseBuilder) AddHeader(name, value string) *ResponseBuilder {
	b.headers.Add(name, value)
	return b
}

func (b *ResponseBuilder) SetHeader(name, value string) *ResponseBuilder {
	b.headers.Set(name, value)
	return b
}

func (b *ResponseBuilder) RemoveHeader(name string) *ResponseBuilder {
	b.headers.Remove(name)
	return b
}

func (b *ResponseBuilder) Body(body wire.Iterable) *ResponseBuilder {
	b.body = body
	return b
}

func isNoBodyStatus(code int) bool {
	if code >= 100 && code <= 199 {
		return true
	}
	return code == 204 || code == 304
}

// Build validates and freezes the response per spec.md §3/§4.9.
func (b *ResponseBuilder) Build() (*Response, error) {
	if !b.statusSet {
		return nil, &ParseError{Kind: ErrIllegalState, Message: "status code was never set"}
	}

	reason := b.reasonPhrase
	if reason == "" {
		reason, _ = statusText[b.statusCode]
		if reason == "" {
			reason = "Unknown"
		}
	}

	var length int64 = 0
	closeAfterWrite := false
	if b.body != nil {
		length = b.body.Length()
	}

	switch {
	case length == 0:
		b.headers.Remove("Content-Length")
	case length > 0:
		b.headers.Set("Content-Length", itoa(length))
	default: // unknown (-1)
		b.headers.Remove("Content-Length")
		if !b.headers.ContainsValue("Transfer-Encoding", "chunked") {
			closeAfterWrite = true
		}
	}

	if length != 0 && isNoBodyStatus(b.statusCode) {
		return nil, &ParseError{Kind: ErrIllegalRespBody, Message: "body present on a status that forbids one"}
	}
	if b.statusCode >= 100 && b.statusCode <= 199 && b.headers.ContainsValue("Connection", "close") {
		return nil, &ParseError{Kind: ErrIllegalState, Message: "Connection: close is not legal on a 1xx response"}
	}
	if len(b.headers.indices("Content-Length")) > 1 {
		return nil, &ParseError{Kind: ErrIllegalState, Message: "multiple Content-Length headers"}
	}

	b.headers.Publish()
	return &Response{
		StatusCode:      b.statusCode,
		ReasonPhrase:    reason,
		Headers:         b.headers,
		Body:            b.body,
		CloseAfterWrite: closeAfterWrite,
	}, nil
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
