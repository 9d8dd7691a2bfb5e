package exchange

import (
	"bufio"
	"errors"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/yourusername/surge/pkg/surge/http11"
	"github.com/yourusername/surge/pkg/surge/media"
	"github.com/yourusername/surge/pkg/surge/wire"
)

// State is one step of the per-exchange state machine in spec.md §4.11.
type State int32

const (
	StateIdle State = iota
	StateReadingHead
	StateDispatching
	StateReadingBody
	StateWritingHead
	StateWritingBody
	StateReadingTrailers
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateReadingHead:
		return "READING_HEAD"
	case StateDispatching:
		return "DISPATCHING"
	case StateReadingBody:
		return "READING_BODY"
	case StateWritingHead:
		return "WRITING_HEAD"
	case StateWritingBody:
		return "WRITING_BODY"
	case StateReadingTrailers:
		return "READING_TRAILERS"
	case StateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// ExchangeDriver bridges one connection to one or many request/response
// exchanges (C11).
//
// Grounded on shockwave/pkg/shockwave/http11/connection.go's Connection:
// kept the atomic hot-state-field idiom and the
// shouldCloseAfterRequest/willCloseAfterThis policy shape, generalized the
// concrete `Handler func(*Request, *ResponseWriter) error` into the
// RouteRegistry/ActionChain collaborator interfaces spec.md §6 names.
type ExchangeDriver struct {
	conn    net.Conn
	cfg     *Config
	routes  RouteRegistry
	actions ActionChain

	state    atomic.Int32
	requests atomic.Int32
	lastUse  atomic.Int64
	closed   atomic.Bool
}

// NewExchangeDriver wires one accepted connection to the given
// collaborators.
func NewExchangeDriver(conn net.Conn, cfg *Config, routes RouteRegistry, actions ActionChain) *ExchangeDriver {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	d := &ExchangeDriver{conn: conn, cfg: cfg, routes: routes, actions: actions}
	d.lastUse.Store(time.Now().UnixNano())
	return d
}

// State reports the driver's current position in the state machine.
func (d *ExchangeDriver) State() State { return State(d.state.Load()) }

// RequestCount reports how many exchanges have completed on this connection.
func (d *ExchangeDriver) RequestCount() int32 { return d.requests.Load() }

// Serve runs exchanges on the connection until a close condition is
// reached, per spec.md §4.11's "iterates this loop until it observes
// Connection: close, a body whose framing is connection-delimited, a
// timeout, or a fatal error."
func (d *ExchangeDriver) Serve() error {
	defer d.close()

	for {
		if d.cfg.MaxRequestsPerConn > 0 && d.requests.Load() >= int32(d.cfg.MaxRequestsPerConn) {
			return nil
		}

		d.state.Store(int32(StateIdle))
		d.setDeadline(d.cfg.TimeoutIdleConnection)

		willClose, err := d.serveOne()
		if err != nil {
			return err
		}
		d.requests.Add(1)
		d.lastUse.Store(time.Now().UnixNano())
		if willClose {
			return nil
		}
	}
}

func (d *ExchangeDriver) serveOne() (willClose bool, err error) {
	cr := wire.NewChannelReader(d.conn, d.cfg.ReadBufferSize)
	defer cr.Close()
	it, _ := cr.Iterator()

	d.state.Store(int32(StateReadingHead))
	d.setDeadline(d.cfg.TimeoutIdleConnection)
	line, lerr := http11.ParseRequestLine(it, d.cfg.MaxRequestHeadSize, monotonicNow)
	if lerr != nil {
		if errors.Is(lerr, http11.ErrEndOfStream) {
			return true, nil // peer closed between requests: clean shutdown
		}
		if isTimeout(lerr) {
			werr := wrapTimeout(http11.ErrReqHeadTimeout, lerr)
			d.writeErrorBestEffort(408, werr)
			return true, werr
		}
		d.writeErrorBestEffort(400, lerr)
		return true, lerr
	}

	// abandoned is set if dispatchWithTimeout gives up on a handler that
	// hasn't returned: the orphaned goroutine may still be reading req and
	// headers, so they must not be recycled back into the pool underneath it.
	abandoned := false
	headers := http11.GetHeaderIndex()
	defer func() {
		if !abandoned {
			http11.PutHeaderIndex(headers)
		}
	}()
	if herr := http11.ParseHeadersInto(it, d.cfg.MaxRequestHeadSize, http11.ErrMaxHeadSize, headers); herr != nil {
		if isTimeout(herr) {
			werr := wrapTimeout(http11.ErrReqHeadTimeout, herr)
			d.writeErrorBestEffort(408, werr)
			return true, werr
		}
		d.writeErrorBestEffort(400, herr)
		return true, herr
	}
	if verr := http11.ValidateFraming(headers); verr != nil {
		d.writeErrorBestEffort(400, verr)
		return true, verr
	}

	major, minor, vperr := http11.ParseHTTPVersion(line.HTTPVersion)
	if vperr != nil {
		d.writeErrorBestEffort(400, vperr)
		return true, vperr
	}
	if major >= 2 {
		d.writeErrorBestEffort(505, http11.ErrHTTPVersionTooNew)
		return true, http11.ErrHTTPVersionTooNew
	}
	if versionBelow(major, minor, d.cfg.MinHTTPVersion) {
		d.writeErrorBestEffort(426, http11.ErrHTTPVersionTooOld)
		return true, http11.ErrHTTPVersionTooOld
	}
	if major == 1 && minor >= 1 && !headers.Contains("Host") {
		herr := &http11.ParseError{Kind: http11.ErrBadRequest, Message: "Missing Host header."}
		d.writeErrorBestEffort(400, herr)
		return true, herr
	}

	d.state.Store(int32(StateReadingBody))
	d.setDeadline(d.cfg.TimeoutIdleConnection)
	body, berr := d.bindBody(cr, it, headers)
	if berr != nil {
		if isTimeout(berr) {
			werr := wrapTimeout(http11.ErrReqBodyTimeout, berr)
			d.writeErrorBestEffort(408, werr)
			return true, werr
		}
		if errors.Is(berr, http11.ErrMaxBodyBuffer) {
			d.writeErrorBestEffort(413, berr)
			return true, berr
		}
		d.writeErrorBestEffort(400, berr)
		return true, berr
	}

	methodID := http11.ParseMethodID([]byte(line.Method))
	if methodID == http11.MethodTRACE && body != nil && body.Length() != 0 {
		d.writeErrorBestEffort(400, http11.ErrIllegalReqBody)
		return true, http11.ErrIllegalReqBody
	}
	d.cfg.logger().Debug("request", "method", canonicalMethodName(methodID, line.Method), "target", line.Target)

	// Chunked bodies stay streamed (their trailer section is only available
	// once the decoder has drained the stream); length-delimited bodies are
	// converted to bytes up front so both diagnostics and the handler can
	// read them, capped by maxRequestBodyConversionSize.
	if body != nil && !headers.IsChunked() {
		materialized, merr := http11.MaterializeBody(body, d.cfg.MaxRequestBodyConversionSize)
		if merr != nil {
			if isTimeout(merr) {
				werr := wrapTimeout(http11.ErrReqBodyTimeout, merr)
				d.writeErrorBestEffort(408, werr)
				return true, werr
			}
			d.writeErrorBestEffort(413, merr)
			return true, merr
		}
		body = materialized
	}

	head := http11.RequestHead{Line: *line, Headers: headers}
	req := http11.GetRequest()
	defer func() {
		if !abandoned {
			http11.PutRequest(req)
		}
	}()
	req.Head = head
	req.Body = body

	d.state.Store(int32(StateDispatching))
	if d.actions != nil {
		if aerr := d.actions.Before(req); aerr != nil {
			d.writeErrorBestEffort(400, aerr)
			return true, aerr
		}
	}

	resp, timedOut := d.dispatchWithTimeout(req, headers)
	abandoned = timedOut

	if ts, ok := req.Body.(trailerSource); ok {
		req.Trailers = ts.Trailers()
	}

	if d.actions != nil {
		_ = d.actions.After(req, resp)
	}

	handlerClose := req.ShouldClose(minor) || resp.CloseAfterWrite
	if d.cfg.MaxRequestsPerConn > 0 && d.requests.Load()+1 >= int32(d.cfg.MaxRequestsPerConn) {
		handlerClose = true
	}
	d.state.Store(int32(StateWritingHead))
	if werr := d.writeResponse(resp, handlerClose); werr != nil {
		return true, werr
	}
	d.state.Store(int32(StateDone))
	return handlerClose, nil
}

// dispatchWithTimeout bounds dispatch by cfg.TimeoutResponse, spec.md §6's
// "wait on response production". A handler that has not produced a
// response by then gets a 503 with Connection: close instead of blocking
// the connection indefinitely. The second return value reports whether the
// dispatch goroutine was abandoned still running: when true, req and
// headers must not be returned to their pools, since the orphaned goroutine
// may still be reading them.
func (d *ExchangeDriver) dispatchWithTimeout(req *http11.Request, headers *http11.HeaderIndex) (*http11.Response, bool) {
	if d.cfg.TimeoutResponse <= 0 {
		return d.dispatch(req, headers), false
	}
	done := make(chan *http11.Response, 1)
	go func() { done <- d.dispatch(req, headers) }()
	select {
	case resp := <-done:
		return resp, false
	case <-time.After(d.cfg.TimeoutResponse):
		resp := errorResponse(503, http11.ErrResponseTimeout)
		resp.CloseAfterWrite = true
		return resp, true
	}
}

func (d *ExchangeDriver) dispatch(req *http11.Request, headers *http11.HeaderIndex) *http11.Response {
	path := req.Target()
	if q := strings.IndexByte(path, '?'); q >= 0 {
		path = path[:q]
	}

	reqCT, ctErr := headers.ContentType()
	if ctErr != nil {
		return errorResponse(400, ctErr)
	}
	if reqCT == nil {
		reqCT = media.NOTHING
	}
	acceptMT := firstAccept(headers)

	candidates, lerr := d.routes.Lookup(req.Method(), path)
	if lerr != nil || len(candidates) == 0 {
		return errorResponse(404, errors.New("no route"))
	}
	handler, ok := SelectHandler(candidates, reqCT, acceptMT)
	if !ok {
		return errorResponse(406, errors.New("no acceptable handler"))
	}

	d.state.Store(int32(StateReadingBody))
	resp, herr := handler.Handle(req)
	if herr != nil {
		if isTimeout(herr) {
			r := errorResponse(408, wrapTimeout(http11.ErrReqBodyTimeout, herr))
			r.CloseAfterWrite = true
			return r
		}
		return errorResponse(500, herr)
	}
	return resp
}

// canonicalMethodName prefers the interned name for a recognized method ID,
// falling back to the raw request-line token for extension methods (§4.3
// does not restrict the method token to a fixed set).
func canonicalMethodName(id uint8, raw string) string {
	if id == http11.MethodUnknown {
		return raw
	}
	return http11.MethodString(id)
}

func firstAccept(headers *http11.HeaderIndex) *media.MediaType {
	v, ok := headers.FirstValue("Accept")
	if !ok || v == "" {
		return media.NOTHING_AND_ALL
	}
	first := v
	if c := strings.IndexByte(v, ','); c >= 0 {
		first = v[:c]
	}
	mt, err := media.ParseMediaType(first)
	if err != nil {
		return media.NOTHING_AND_ALL
	}
	return mt
}

func errorResponse(status int, cause error) *http11.Response {
	b := http11.NewResponseBuilder().Status(status)
	body := []byte(cause.Error())
	b.Body(wire.NewBytesIterable(body))
	resp, _ := b.Build()
	return resp
}

// bindBody wires the request body to the framing the headers declared:
// chunked, length-delimited, or empty. TRACE-with-body is checked by the
// caller once the length is known.
func (d *ExchangeDriver) bindBody(cr *wire.ChannelReader, it wire.Iterator, headers *http11.HeaderIndex) (wire.Iterable, error) {
	if headers.IsChunked() {
		dec := http11.NewChunkedDecoder(it, d.cfg.MaxRequestTrailersSize)
		return chunkedIterable{dec: dec}, nil
	}
	n, has, err := headers.ContentLength()
	if err != nil {
		return nil, err
	}
	if !has || n == 0 {
		return wire.NewBytesIterable(nil), nil
	}
	if d.cfg.MaxRequestBodyBufferSize > 0 && int64(n) > d.cfg.MaxRequestBodyBufferSize {
		return nil, &http11.ParseError{Kind: http11.ErrMaxBodyBuffer, Message: "Content-Length exceeds maxRequestBodyBufferSize"}
	}
	if lerr := cr.Limit(int64(n)); lerr != nil {
		return nil, lerr
	}
	return limitedIterable{cr: cr, n: int64(n)}, nil
}

type limitedIterable struct {
	cr *wire.ChannelReader
	n  int64
}

func (l limitedIterable) Iterator() (wire.Iterator, error) { return l.cr.Iterator() }
func (l limitedIterable) Length() int64                    { return l.n }

type chunkedIterable struct {
	dec *http11.ChunkedDecoder
}

func (c chunkedIterable) Iterator() (wire.Iterator, error) { return c.dec, nil }
func (c chunkedIterable) Length() int64                    { return -1 }

// Trailers exposes the decoder's trailer section once the body has been
// fully drained (nil before then). Satisfies trailerSource.
func (c chunkedIterable) Trailers() *http11.HeaderIndex { return c.dec.Trailers() }

// trailerSource is implemented by request bodies that may carry a trailer
// section (chunked transfer-coding, spec.md §4.6).
type trailerSource interface {
	Trailers() *http11.HeaderIndex
}

func versionBelow(major, minor int, floor HTTPVersion) bool {
	if major != floor.Major {
		return major < floor.Major
	}
	return minor < floor.Minor
}

func monotonicNow() int64 { return time.Now().UnixNano() }

// isTimeout reports whether err is (or wraps) a net.Error whose deadline
// expired, distinguishing an idle-timeout disconnect from any other I/O
// failure on the connection.
func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// wrapTimeout reports a connection-deadline expiry under the given phase
// error kind (§5's three distinct timeout exceptions), keeping the
// original net.Error's message for diagnostics.
func wrapTimeout(kind error, cause error) error {
	return &http11.ParseError{Kind: kind, Message: cause.Error()}
}

func (d *ExchangeDriver) setDeadline(timeout time.Duration) {
	if timeout > 0 {
		_ = d.conn.SetDeadline(time.Now().Add(timeout))
	}
}

func (d *ExchangeDriver) close() {
	if d.closed.CompareAndSwap(false, true) {
		_ = d.conn.Close()
	}
}

func (d *ExchangeDriver) writeErrorBestEffort(status int, cause error) {
	resp := errorResponse(status, cause)
	_ = d.writeResponse(resp, true)
}

// writeResponse serializes resp to the wire, per spec.md §4.9's header
// serialization rule and §4.6's chunked framing.
func (d *ExchangeDriver) writeResponse(resp *http11.Response, forceClose bool) error {
	bw := bufio.NewWriterSize(d.conn, d.cfg.WriteBufferSize)

	bw.WriteString("HTTP/1.1 ")
	bw.WriteString(strconv.Itoa(resp.StatusCode))
	bw.WriteByte(' ')
	bw.WriteString(resp.ReasonPhrase)
	bw.WriteString("\r\n")

	if err := resp.Headers.WriteTo(bw); err != nil {
		return err
	}
	if forceClose && !resp.Headers.ContainsValue("Connection", "close") {
		bw.WriteString("Connection: close\r\n")
	}
	bw.WriteString("\r\n")

	d.state.Store(int32(StateWritingBody))
	if resp.Body != nil {
		chunked := resp.Headers.ContainsValue("Transfer-Encoding", "chunked")
		srcIt, err := resp.Body.Iterator()
		if err != nil {
			return err
		}
		if chunked {
			enc := http11.NewChunkedEncoder(srcIt)
			if err := drainInto(bw, enc); err != nil {
				return err
			}
			bw.WriteString("\r\n") // empty trailer section terminator
		} else {
			if err := drainInto(bw, srcIt); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

func drainInto(bw *bufio.Writer, it wire.Iterator) error {
	defer it.Close()
	for {
		has, err := it.HasNext()
		if err != nil {
			return err
		}
		if !has {
			return nil
		}
		v, err := it.Next()
		if err != nil {
			if err == wire.ErrNoSuchElement {
				return nil
			}
			return err
		}
		if _, err := bw.Write(v.Bytes()); err != nil {
			return err
		}
	}
}
