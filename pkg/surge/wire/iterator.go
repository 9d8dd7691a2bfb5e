// Package wire implements the pull-based byte-view iterator abstraction
// that carries body bytes between the socket and the codecs above it.
//
// The teacher engine (shockwave/pkg/shockwave/http11) hands raw io.Reader
// values and relies on io.LimitReader/bufio.Reader directly; this package
// generalizes that into the lazy, bounded, resumable iterator spec.md's
// Design Notes call for in place of reactive-streams publishers.
package wire

import "errors"

var (
	// ErrNoSuchElement is returned by Next when the iterator is exhausted.
	ErrNoSuchElement = errors.New("wire: no such element")
)

// ByteView exposes a contiguous range of readable bytes plus a movable
// cursor. A view is not retained past the Next call that superseded it.
type ByteView struct {
	data []byte
	pos  int
}

// NewByteView wraps data starting at cursor position 0.
func NewByteView(data []byte) *ByteView {
	return &ByteView{data: data}
}

// Len reports the number of unconsumed bytes left in this view.
func (v *ByteView) Len() int {
	if v == nil {
		return 0
	}
	return len(v.data) - v.pos
}

// Bytes returns the unconsumed slice. Callers must not retain it past the
// next call to the owning Iterator's Next.
func (v *ByteView) Bytes() []byte {
	if v == nil {
		return nil
	}
	return v.data[v.pos:]
}

// Advance moves the cursor forward by n bytes (n may exceed Len, which
// simply empties the view).
func (v *ByteView) Advance(n int) {
	v.pos += n
	if v.pos > len(v.data) {
		v.pos = len(v.data)
	}
}

// Iterator is a single-threaded, closeable sequence of byte views.
type Iterator interface {
	// HasNext reports whether another call to Next is expected to succeed.
	// It may perform I/O to discover end-of-stream.
	HasNext() (bool, error)
	// Next returns the next byte view, or ErrNoSuchElement if exhausted.
	Next() (*ByteView, error)
	// Close releases any held resource. Idempotent.
	Close() error
}

// Iterable produces Iterators over a byte sequence.
type Iterable interface {
	// Iterator begins a new traversal.
	Iterator() (Iterator, error)
	// Length returns the byte count the next Iterator will yield, or -1 if
	// unknown.
	Length() int64
}

// IsEmpty reports whether it's an Iterable whose Length is exactly 0.
func IsEmpty(it Iterable) bool {
	return it.Length() == 0
}

// ForEachRemaining drains it, invoking action on every view, and closes it
// afterward whether draining finished cleanly or action returned an error.
func ForEachRemaining(it Iterator, action func(*ByteView) error) error {
	defer it.Close()
	for {
		has, err := it.HasNext()
		if err != nil {
			return err
		}
		if !has {
			return nil
		}
		view, err := it.Next()
		if err != nil {
			if errors.Is(err, ErrNoSuchElement) {
				return nil
			}
			return err
		}
		if err := action(view); err != nil {
			return err
		}
	}
}
