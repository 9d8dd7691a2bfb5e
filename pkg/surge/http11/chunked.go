package http11

import (
	"fmt"
	"io"

	"github.com/yourusername/surge/pkg/surge/wire"
)

// ChunkedDecoder decodes Transfer-Encoding: chunked framing into the
// underlying byte stream and exposes the request trailers once the
// terminator chunk is consumed.
//
// Grounded on shockwave/pkg/shockwave/http11/chunked.go's ChunkedReader,
// generalized from a stubbed trailer reader (the teacher's readTrailers is
// a documented no-op, "future enhancement") into a real call into
// ParseHeaders, and from loose chunk-extension/overflow handling into the
// exact 1-16-hex-digit and quoted-extension-rejection rules spec.md §4.5
// requires.
type ChunkedDecoder struct {
	cur             *byteCursor
	maxTrailersSize int64

	remaining  int64 // bytes left in the chunk currently being read
	needCRLF   bool  // data fully read, trailing CRLF not yet consumed
	done       bool
	trailers   *HeaderIndex
}

// NewChunkedDecoder wraps it (an unlimited ChannelReader iterator) as a
// chunked body decoder.
func NewChunkedDecoder(it wire.Iterator, maxTrailersSize int64) *ChunkedDecoder {
	return &ChunkedDecoder{cur: newByteCursor(it), maxTrailersSize: maxTrailersSize}
}

// Trailers returns the parsed trailer section. Valid only after HasNext
// has returned false (the decoder reached the terminator chunk).
func (d *ChunkedDecoder) Trailers() *HeaderIndex { return d.trailers }

func (d *ChunkedDecoder) HasNext() (bool, error) {
	if d.done {
		return false, nil
	}
	if d.remaining > 0 {
		return true, nil
	}
	if err := d.advance(); err != nil {
		return false, err
	}
	return !d.done, nil
}

// advance consumes the trailing CRLF of the previous chunk (if any), then
// the next chunk-size line, populating d.remaining or d.done.
func (d *ChunkedDecoder) advance() error {
	if d.needCRLF {
		if err := d.consumeDataCRLF(); err != nil {
			return err
		}
		d.needCRLF = false
	}

	size, err := d.readChunkSizeLine()
	if err != nil {
		return err
	}
	if size == 0 {
		trailers, err := ParseHeaders(d.trailerIterator(), d.maxTrailersSize, ErrMaxTrailersSize)
		if err != nil {
			return err
		}
		d.trailers = trailers
		d.done = true
		return nil
	}
	d.remaining = size
	return nil
}

// trailerIterator adapts the decoder's own byteCursor back into a
// wire.Iterator so ParseHeaders (which expects one) can keep reading from
// the same underlying source.
func (d *ChunkedDecoder) trailerIterator() wire.Iterator {
	return &cursorIterator{cur: d.cur}
}

type cursorIterator struct {
	cur  *byteCursor
	done bool
}

func (c *cursorIterator) HasNext() (bool, error) { return !c.done, nil }
func (c *cursorIterator) Next() (*wire.ByteView, error) {
	b, err := c.cur.ReadByte()
	if err != nil {
		if err == io.EOF {
			c.done = true
		}
		return nil, err
	}
	return wire.NewByteView([]byte{b}), nil
}
func (c *cursorIterator) Close() error { c.done = true; return nil }

func (d *ChunkedDecoder) Next() (*wire.ByteView, error) {
	if d.remaining <= 0 {
		return nil, wire.ErrNoSuchElement
	}
	v, err := d.cur.ReadChunk(d.remaining)
	if err != nil {
		if err == io.EOF {
			return nil, &ParseError{Kind: ErrDecoder, Message: "No chunk-size specified."}
		}
		return nil, err
	}
	d.remaining -= int64(v.Len())
	if d.remaining == 0 {
		d.needCRLF = true
	}
	return v, nil
}

func (d *ChunkedDecoder) Close() error {
	if !d.done {
		return &ParseError{Kind: ErrDecoder, Message: "No chunk-size specified."}
	}
	return nil
}

func (d *ChunkedDecoder) consumeDataCRLF() error {
	b, err := d.cur.ReadByte()
	if err != nil {
		return wrapDecoderEOF(err)
	}
	if b != '\r' {
		if b == '\n' {
			return nil // bare LF tolerated as terminator, matching header-section tolerance
		}
		return &ParseError{Kind: ErrDecoder, Message: fmt.Sprintf("Expected CR and/or LF after chunk. Received (hex:0x%02x, decimal:%d, char:%q).", b, b, string(b))}
	}
	nb, err := d.cur.ReadByte()
	if err != nil {
		return wrapDecoderEOF(err)
	}
	if nb != '\n' {
		return &ParseError{Kind: ErrDecoder, Message: fmt.Sprintf("Expected LF after CR. Received (hex:0x%02x, decimal:%d, char:%q).", nb, nb, string(nb))}
	}
	return nil
}

// readChunkSizeLine parses "chunk-size [;chunk-ext] CRLF", returning the
// size, or a structured UnsupportedOperation/DecoderException on violation.
func (d *ChunkedDecoder) readChunkSizeLine() (int64, error) {
	var size int64
	digits := 0
	for {
		b, err := d.cur.ReadByte()
		if err != nil {
			return 0, wrapDecoderEOF(err)
		}
		switch {
		case isHexDigit(b):
			digits++
			if digits > 16 {
				return 0, &ParseError{Kind: ErrUnsupportedOp, Message: "Long overflow"}
			}
			size = size<<4 | int64(hexVal(b))
			if size < 0 {
				return 0, &ParseError{Kind: ErrUnsupportedOp, Message: "Long overflow"}
			}
		case b == ';':
			if err := d.discardChunkExtension(); err != nil {
				return 0, err
			}
			return size, nil
		case b == '\r':
			nb, err := d.cur.ReadByte()
			if err != nil {
				return 0, wrapDecoderEOF(err)
			}
			if nb != '\n' {
				return 0, &ParseError{Kind: ErrDecoder, Message: "CR not followed by LF in chunk-size line"}
			}
			return size, nil
		case b == '\n':
			return size, nil
		default:
			return 0, &ParseError{Kind: ErrDecoder, Message: fmt.Sprintf("Invalid chunk-size digit: (hex:0x%02x, decimal:%d, char:%q).", b, b, string(b))}
		}
	}
}

// discardChunkExtension reads and discards tokens up to CRLF, failing if a
// quoted value (not implemented, per spec.md §4.5) appears.
func (d *ChunkedDecoder) discardChunkExtension() error {
	for {
		b, err := d.cur.ReadByte()
		if err != nil {
			return wrapDecoderEOF(err)
		}
		switch b {
		case '"':
			return &ParseError{Kind: ErrUnsupportedOp, Message: "Quoted chunk-extension value."}
		case '\r':
			nb, err := d.cur.ReadByte()
			if err != nil {
				return wrapDecoderEOF(err)
			}
			if nb != '\n' {
				return &ParseError{Kind: ErrDecoder, Message: "CR not followed by LF in chunk-extension"}
			}
			return nil
		case '\n':
			return nil
		}
	}
}

func wrapDecoderEOF(err error) error {
	if err == io.EOF {
		return &ParseError{Kind: ErrEndOfStream, Message: "channel closed before chunked body was complete"}
	}
	return err
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexVal(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	default:
		return b - 'A' + 10
	}
}

// ChunkedEncoder wraps a body Iterator, yielding the chunked-transfer-coding
// framing around each of its views: a fixed 8-digit uppercase hex size
// line, the data itself, and a trailing CRLF, then "0\r\n" once the source
// is exhausted.
//
// Grounded on shockwave/pkg/shockwave/http11/response.go's
// WriteChunk/FinishChunked, generalized from variable-width lowercase hex
// framing to the spec's fixed 8-digit uppercase form.
type ChunkedEncoder struct {
	src  wire.Iterator
	done bool
	pending []*wire.ByteView
}

func NewChunkedEncoder(src wire.Iterator) *ChunkedEncoder {
	return &ChunkedEncoder{src: src}
}

func (e *ChunkedEncoder) HasNext() (bool, error) {
	return len(e.pending) > 0 || !e.done, nil
}

func (e *ChunkedEncoder) Next() (*wire.ByteView, error) {
	if len(e.pending) > 0 {
		v := e.pending[0]
		e.pending = e.pending[1:]
		return v, nil
	}
	if e.done {
		return nil, wire.ErrNoSuchElement
	}

	has, err := e.src.HasNext()
	if err != nil {
		return nil, err
	}
	if !has {
		e.done = true
		return wire.NewByteView([]byte("0\r\n")), nil
	}
	view, err := e.src.Next()
	if err != nil {
		return nil, err
	}
	if view.Len() == 0 {
		e.done = true
		return wire.NewByteView([]byte("0\r\n")), nil
	}
	sizeLine := []byte(fmt.Sprintf("%08X\r\n", view.Len()))
	e.pending = append(e.pending, view, wire.NewByteView([]byte("\r\n")))
	return wire.NewByteView(sizeLine), nil
}

func (e *ChunkedEncoder) Close() error { return e.src.Close() }
