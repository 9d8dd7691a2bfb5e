package http11

import (
	"sync"

	"github.com/yourusername/surge/pkg/surge/wire"
)

// Attributes is the process-safe, per-request scratch map spec.md's Data
// Model names. Grounded on the concurrency idiom already used for
// ConnectionState in shockwave/pkg/shockwave/http11/connection.go
// (atomic/sync primitives over ad hoc mutexes); a generic scratch bag has
// no teacher analog (the teacher's Request is a fixed-field struct with no
// extensibility), so this is new but stays in the same "small sync
// primitive wrapper" idiom.
type Attributes struct {
	m sync.Map
}

func (a *Attributes) Get(key string) (any, bool) { return a.m.Load(key) }
func (a *Attributes) Set(key string, value any)  { a.m.Store(key, value) }
func (a *Attributes) Delete(key string)          { a.m.Delete(key) }

// RequestHead is the plain value pairing a parsed RequestLine with its
// header section (C12).
type RequestHead struct {
	Line    RequestLine
	Headers *HeaderIndex
}

// Request is (RequestLine, HeaderIndex, Body, Attributes). Everything but
// Attributes is immutable once constructed; Body is consumed at most once
// except in the trivially-reusable empty-body case.
type Request struct {
	Head  RequestHead
	Body  wire.Iterable
	Attrs *Attributes

	// Trailers is populated once the body iterator (when chunked) has been
	// fully drained; nil until then.
	Trailers *HeaderIndex
}

// NewRequest constructs a Request from a parsed head and body.
func NewRequest(head RequestHead, body wire.Iterable) *Request {
	return &Request{Head: head, Body: body, Attrs: &Attributes{}}
}

// Method returns the request-line method token.
func (r *Request) Method() string { return r.Head.Line.Method }

// Target returns the raw request-target token.
func (r *Request) Target() string { return r.Head.Line.Target }

// HasBody reports whether the request carries a non-empty body.
func (r *Request) HasBody() bool {
	return r.Body != nil && r.Body.Length() != 0
}

// IsChunked reports whether Transfer-Encoding: chunked was negotiated.
func (r *Request) IsChunked() bool {
	return r.Head.Headers.IsChunked()
}

// ShouldClose reports whether the connection must close after this
// exchange, per the Connection header and the request's HTTP version.
func (r *Request) ShouldClose(httpMinor int) bool {
	if r.Head.Headers.ContainsValue("Connection", "close") {
		return true
	}
	if httpMinor == 0 {
		// HTTP/1.0 defaults to close unless Connection: keep-alive is present.
		return !r.Head.Headers.ContainsValue("Connection", "keep-alive")
	}
	return false
}
