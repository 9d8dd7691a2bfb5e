package wire

// BytesIterable is a Regenerative Iterable (spec.md Data Model) over an
// in-memory byte slice: iterator() may be called repeatedly and each run
// observes the same bytes. Used for small, already-materialized response
// bodies (error responses, buffered handler output).
type BytesIterable struct {
	data []byte
}

// NewBytesIterable wraps data as a regenerative Iterable.
func NewBytesIterable(data []byte) *BytesIterable {
	return &BytesIterable{data: data}
}

func (b *BytesIterable) Length() int64 { return int64(len(b.data)) }

func (b *BytesIterable) Iterator() (Iterator, error) {
	return &bytesIterator{data: b.data}, nil
}

type bytesIterator struct {
	data   []byte
	done   bool
	closed bool
}

func (it *bytesIterator) HasNext() (bool, error) { return !it.done, nil }

func (it *bytesIterator) Next() (*ByteView, error) {
	if it.done {
		return nil, ErrNoSuchElement
	}
	it.done = true
	return NewByteView(it.data), nil
}

func (it *bytesIterator) Close() error {
	it.closed = true
	return nil
}
