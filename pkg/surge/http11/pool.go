package http11

import (
	"sync"

	"github.com/valyala/bytebufferpool"

	"github.com/yourusername/surge/pkg/surge/wire"
)

// Grounded on shockwave/pkg/shockwave/http11/pool.go's GetRequest/
// PutRequest/GetBuffer/PutBuffer pattern; kept the "pool a pointer,
// Reset-before-reuse" idiom, swapped the teacher's hand-rolled
// sync.Pool-of-*[]byte scratch buffers for bytebufferpool.Pool (see
// DESIGN.md domain-stack wiring).

var requestPool = sync.Pool{
	New: func() any { return &Request{} },
}

// GetRequest returns a pooled, zeroed Request.
func GetRequest() *Request {
	r := requestPool.Get().(*Request)
	*r = Request{}
	r.Attrs = &Attributes{}
	return r
}

// PutRequest returns r to the pool. Callers must not touch r afterward.
func PutRequest(r *Request) {
	requestPool.Put(r)
}

var headerIndexPool = sync.Pool{
	New: func() any { return NewHeaderIndex() },
}

// GetHeaderIndex returns a pooled, empty HeaderIndex.
func GetHeaderIndex() *HeaderIndex {
	h := headerIndexPool.Get().(*HeaderIndex)
	h.fields = h.fields[:0]
	h.nameOrder = h.nameOrder[:0]
	for k := range h.byName {
		delete(h.byName, k)
	}
	h.published = false
	h.contentTypeCached = false
	h.contentType = nil
	h.contentTypeErr = nil
	h.contentLengthCached = false
	h.contentLength = 0
	h.contentLengthOK = false
	h.contentLengthErr = nil
	return h
}

// PutHeaderIndex returns h to the pool. Callers must not touch h afterward.
func PutHeaderIndex(h *HeaderIndex) {
	headerIndexPool.Put(h)
}

// bodyBufferPool backs the buffered-body fast path (small/medium bodies
// materialized in memory rather than streamed), capped by
// maxRequestBodyBufferSize at the exchange layer.
var bodyBufferPool bytebufferpool.Pool

// GetBodyBuffer returns a pooled scratch buffer for buffering a request or
// response body in memory.
func GetBodyBuffer() *bytebufferpool.ByteBuffer { return bodyBufferPool.Get() }

// PutBodyBuffer returns buf to the pool.
func PutBodyBuffer(buf *bytebufferpool.ByteBuffer) { bodyBufferPool.Put(buf) }

// MaterializeBody drains body through a pooled scratch buffer, capped by
// maxConversionSize (0 means unlimited; exceeding it fails with
// ErrMaxBodyConversion), and returns a fresh, rewindable Iterable over the
// result. The exchange driver calls this once per exchange to convert a
// streamed, single-use request body into bytes so that logging and the
// handler can both read it, rather than leaving each consumer to buffer it
// independently.
func MaterializeBody(body wire.Iterable, maxConversionSize int64) (wire.Iterable, error) {
	it, err := body.Iterator()
	if err != nil {
		return nil, err
	}
	defer it.Close()

	buf := GetBodyBuffer()
	defer PutBodyBuffer(buf)
	buf.B = buf.B[:0]

	for {
		has, herr := it.HasNext()
		if herr != nil {
			return nil, herr
		}
		if !has {
			break
		}
		v, verr := it.Next()
		if verr != nil {
			if verr == wire.ErrNoSuchElement {
				break
			}
			return nil, verr
		}
		if maxConversionSize > 0 && int64(len(buf.B))+int64(len(v.Bytes())) > maxConversionSize {
			return nil, &ParseError{Kind: ErrMaxBodyConversion, Message: "body exceeded maxRequestBodyConversionSize during conversion"}
		}
		buf.B = append(buf.B, v.Bytes()...)
	}

	out := make([]byte, len(buf.B))
	copy(out, buf.B)
	return wire.NewBytesIterable(out), nil
}
