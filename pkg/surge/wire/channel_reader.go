package wire

import (
	"errors"
	"io"

	"github.com/valyala/bytebufferpool"
)

// ErrEndOfStream is raised by an Iterator when a ChannelReader with a set
// limit observes end-of-stream before the limit was exhausted. It is a
// framing error: the caller must shut down further reads on this channel.
var ErrEndOfStream = errors.New("wire: end of stream with residual limit")

var (
	ErrIllegalArgument  = errors.New("wire: illegal argument")
	ErrUnsupportedState = errors.New("wire: unsupported state")
	ErrIllegalState     = errors.New("wire: illegal state")
)

var readBufPool bytebufferpool.Pool

// ChannelReader wraps a readable byte source (typically a net.Conn) and
// exposes it through the Iterable contract, with an optional remaining-byte
// limit for framing length-delimited bodies.
//
// Grounded on the buffering idiom of the teacher's Connection type
// (shockwave/pkg/shockwave/http11/connection.go), generalized from "read
// into one pooled bufio.Reader" to an explicit limited/unlimited iterator
// state machine per spec.md §4.2.
type ChannelReader struct {
	src      io.Reader
	scratch  *bytebufferpool.ByteBuffer
	readSize int

	limitSet bool
	limit    int64

	eos      bool // end-of-stream observed on src (unlimited mode)
	shutdown bool // input permanently shut down
	inIter   bool // an Iterator is currently open
	peeked   []byte // byte consumed by IsEmpty's lookahead, owed to the next Next
}

// NewChannelReader constructs a ChannelReader reading up to readSize bytes
// per underlying Read call.
func NewChannelReader(src io.Reader, readSize int) *ChannelReader {
	if readSize <= 0 {
		readSize = 4096
	}
	buf := readBufPool.Get()
	buf.B = append(buf.B[:0], make([]byte, readSize)...)
	return &ChannelReader{src: src, scratch: buf, readSize: readSize}
}

// Limit sets the remaining byte count for the next iteration.
func (c *ChannelReader) Limit(n int64) error {
	if n < 0 {
		return ErrIllegalArgument
	}
	if c.limitSet {
		return ErrUnsupportedState
	}
	c.limit = n
	c.limitSet = true
	return nil
}

// Reset clears any set limit. Requires the channel not be mid-iteration.
func (c *ChannelReader) Reset() error {
	if c.inIter {
		return ErrIllegalState
	}
	c.limitSet = false
	c.limit = 0
	return nil
}

// Length returns the unread limit, or -1 if unset.
func (c *ChannelReader) Length() int64 {
	if c.limitSet {
		return c.limit
	}
	return -1
}

// IsEmpty triggers a peek that may discover EOS without error only when no
// limit is set; with a limit set it is a pure arithmetic check.
func (c *ChannelReader) IsEmpty() (bool, error) {
	if c.limitSet {
		return c.limit == 0, nil
	}
	if c.eos {
		return true, nil
	}
	n, err := c.src.Read(c.scratch.B[:1])
	if n > 0 {
		// An arbitrary io.Reader cannot un-read, so the byte is stashed in
		// peeked and the next Next returns it before reading from src
		// again: the peek consumes nothing.
		c.peeked = append(c.peeked, c.scratch.B[:1]...)
		return false, nil
	}
	if err == io.EOF {
		c.eos = true
		return true, nil
	}
	return false, err
}

// Iterator begins a new traversal bound to the channel's current limit
// state (or unlimited, draining to EOS).
func (c *ChannelReader) Iterator() (Iterator, error) {
	c.inIter = true
	return &channelIterator{c: c}, nil
}

type channelIterator struct {
	c    *ChannelReader
	done bool
}

func (it *channelIterator) HasNext() (bool, error) {
	c := it.c
	if it.done || c.shutdown {
		return false, nil
	}
	if c.limitSet {
		return c.limit > 0, nil
	}
	return !c.eos, nil
}

func (it *channelIterator) Next() (*ByteView, error) {
	c := it.c
	if it.done {
		return nil, ErrNoSuchElement
	}

	if len(c.peeked) > 0 {
		b := c.peeked
		c.peeked = nil
		if c.limitSet {
			c.limit -= int64(len(b))
		}
		return NewByteView(b), nil
	}

	if c.limitSet {
		if c.limit <= 0 {
			return nil, ErrNoSuchElement
		}
		toRead := int64(c.readSize)
		if c.limit < toRead {
			toRead = c.limit
		}
		n, err := c.src.Read(c.scratch.B[:toRead])
		if n > 0 {
			c.limit -= int64(n)
			out := make([]byte, n)
			copy(out, c.scratch.B[:n])
			return NewByteView(out), nil
		}
		if err == nil {
			err = io.ErrNoProgress
		}
		if errors.Is(err, io.EOF) {
			c.shutdown = true
			it.done = true
			return nil, ErrEndOfStream
		}
		return nil, err
	}

	n, err := c.src.Read(c.scratch.B[:c.readSize])
	if n > 0 {
		out := make([]byte, n)
		copy(out, c.scratch.B[:n])
		return NewByteView(out), nil
	}
	if errors.Is(err, io.EOF) {
		c.eos = true
		c.shutdown = true
		it.done = true
		return NewByteView(nil), nil // EOS sentinel: empty view, no error
	}
	if err == nil {
		err = io.ErrNoProgress
	}
	return nil, err
}

func (it *channelIterator) Close() error {
	it.c.inIter = false
	it.done = true
	return nil
}

// Close releases the pooled scratch buffer. Call once the ChannelReader
// itself is no longer needed (not once per Iterator).
func (c *ChannelReader) Close() error {
	if c.scratch != nil {
		readBufPool.Put(c.scratch)
		c.scratch = nil
	}
	return nil
}
