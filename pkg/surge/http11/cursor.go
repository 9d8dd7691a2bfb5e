package http11

import (
	"io"

	"github.com/yourusername/surge/pkg/surge/wire"
)

// byteCursor adapts a wire.Iterator into a byte-at-a-time reader with a
// running offset, the shape both the request-line and header parsers need.
// Grounded on the teacher's readUntilHeadersEnd scanning idiom
// (shockwave/pkg/shockwave/http11/parser.go), generalized to pull from the
// Iterable abstraction instead of a raw io.Reader.
type byteCursor struct {
	it     wire.Iterator
	view   *wire.ByteView
	offset int64
}

func newByteCursor(it wire.Iterator) *byteCursor {
	return &byteCursor{it: it}
}

// ReadByte returns the next byte, io.EOF if the iterator is exhausted, or
// the iterator's own error (e.g. wire.ErrEndOfStream).
func (c *byteCursor) ReadByte() (byte, error) {
	for c.view == nil || c.view.Len() == 0 {
		has, err := c.it.HasNext()
		if err != nil {
			return 0, err
		}
		if !has {
			return 0, io.EOF
		}
		v, err := c.it.Next()
		if err != nil {
			if err == wire.ErrNoSuchElement {
				return 0, io.EOF
			}
			return 0, err
		}
		if v.Len() == 0 {
			// EOS sentinel view from an unlimited ChannelReader.
			return 0, io.EOF
		}
		c.view = v
	}
	b := c.view.Bytes()[0]
	c.view.Advance(1)
	c.offset++
	return b, nil
}

// Offset returns the number of bytes consumed so far.
func (c *byteCursor) Offset() int64 { return c.offset }

// LastOffset returns the 0-based index of the byte most recently returned by
// ReadByte, for diagnostics that must point at "the byte that caused this"
// rather than "how many bytes have been consumed" (Offset() counts the
// latter; spec.md §8's scenarios report the former).
func (c *byteCursor) LastOffset() int64 { return c.offset - 1 }

// ReadChunk returns a view of at most n bytes, zero-copy from the
// underlying Iterable's views where possible, advancing the cursor.
func (c *byteCursor) ReadChunk(n int64) (*wire.ByteView, error) {
	for c.view == nil || c.view.Len() == 0 {
		has, err := c.it.HasNext()
		if err != nil {
			return nil, err
		}
		if !has {
			return nil, io.EOF
		}
		v, err := c.it.Next()
		if err != nil {
			if err == wire.ErrNoSuchElement {
				return nil, io.EOF
			}
			return nil, err
		}
		if v.Len() == 0 {
			return nil, io.EOF
		}
		c.view = v
	}
	take := int64(c.view.Len())
	if take > n {
		take = n
	}
	out := wire.NewByteView(append([]byte(nil), c.view.Bytes()[:take]...))
	c.view.Advance(int(take))
	c.offset += take
	return out, nil
}
