package http11

import (
	"testing"

	"github.com/yourusername/surge/pkg/surge/wire"
)

func drainChunked(t *testing.T, dec *ChunkedDecoder) []byte {
	t.Helper()
	var out []byte
	for {
		has, err := dec.HasNext()
		if err != nil {
			t.Fatalf("HasNext() error: %v", err)
		}
		if !has {
			return out
		}
		v, err := dec.Next()
		if err != nil {
			t.Fatalf("Next() error: %v", err)
		}
		out = append(out, v.Bytes()...)
	}
}

func TestChunkedDecoderSimple(t *testing.T) {
	dec := NewChunkedDecoder(iterFromString("4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n"), 0)
	got := drainChunked(t, dec)
	if string(got) != "Wikipedia" {
		t.Errorf("drained = %q, want %q", got, "Wikipedia")
	}
	if err := dec.Close(); err != nil {
		t.Errorf("Close() after completion = %v, want nil", err)
	}
}

func TestChunkedDecoderWithExtension(t *testing.T) {
	dec := NewChunkedDecoder(iterFromString("4;foo=bar\r\nWiki\r\n0\r\n\r\n"), 0)
	got := drainChunked(t, dec)
	if string(got) != "Wiki" {
		t.Errorf("drained = %q, want %q", got, "Wiki")
	}
}

func TestChunkedDecoderRejectsQuotedExtension(t *testing.T) {
	dec := NewChunkedDecoder(iterFromString("4;foo=\"bar\"\r\nWiki\r\n0\r\n\r\n"), 0)
	_, err := dec.HasNext()
	pe, ok := err.(*ParseError)
	if !ok || pe.Kind != ErrUnsupportedOp {
		t.Fatalf("error = %v, want *ParseError{Kind: ErrUnsupportedOp}", err)
	}
}

func TestChunkedDecoderOverflowRejected(t *testing.T) {
	dec := NewChunkedDecoder(iterFromString("fffffffffffffffff\r\nx\r\n0\r\n\r\n"), 0)
	_, err := dec.HasNext()
	pe, ok := err.(*ParseError)
	if !ok || pe.Kind != ErrUnsupportedOp {
		t.Fatalf("error = %v, want *ParseError{Kind: ErrUnsupportedOp} (overflow), got %v", err, err)
	}
}

func TestChunkedDecoderTrailers(t *testing.T) {
	dec := NewChunkedDecoder(iterFromString("4\r\nWiki\r\n0\r\nX-Trailer: done\r\n\r\n"), 1024)
	got := drainChunked(t, dec)
	if string(got) != "Wiki" {
		t.Errorf("drained = %q, want %q", got, "Wiki")
	}
	trailers := dec.Trailers()
	if trailers == nil {
		t.Fatal("Trailers() = nil after full drain")
	}
	if v, ok := trailers.FirstValue("X-Trailer"); !ok || v != "done" {
		t.Errorf("trailer X-Trailer = %q, %v, want done, true", v, ok)
	}
}

func TestChunkedDecoderBadCRLFAfterChunk(t *testing.T) {
	dec := NewChunkedDecoder(iterFromString("4\r\nWikiXX0\r\n\r\n"), 0)

	has, err := dec.HasNext()
	if err != nil || !has {
		t.Fatalf("HasNext() before first chunk = (%v, %v), want (true, nil)", has, err)
	}
	if _, err := dec.Next(); err != nil {
		t.Fatalf("Next() for first chunk data = %v, want nil", err)
	}

	// The chunk's trailing CRLF is actually "XX": consuming it is deferred
	// to the next advance(), triggered here by HasNext().
	_, err = dec.HasNext()
	pe, ok := err.(*ParseError)
	if !ok || pe.Kind != ErrDecoder {
		t.Fatalf("error = %v, want *ParseError{Kind: ErrDecoder}", err)
	}
}

func TestChunkedEncoderRoundTrip(t *testing.T) {
	src, _ := wire.NewBytesIterable([]byte("hello")).Iterator()
	enc := NewChunkedEncoder(src)

	var out []byte
	for {
		has, err := enc.HasNext()
		if err != nil {
			t.Fatalf("HasNext() error: %v", err)
		}
		if !has {
			break
		}
		v, err := enc.Next()
		if err != nil {
			t.Fatalf("Next() error: %v", err)
		}
		out = append(out, v.Bytes()...)
	}

	want := "00000005\r\nhello\r\n0\r\n"
	if string(out) != want {
		t.Errorf("encoded = %q, want %q", out, want)
	}
}
