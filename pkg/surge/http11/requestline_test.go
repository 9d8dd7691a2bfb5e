package http11

import (
	"testing"

	"github.com/yourusername/surge/pkg/surge/wire"
)

func iterFromString(s string) wire.Iterator {
	it, _ := wire.NewBytesIterable([]byte(s)).Iterator()
	return it
}

func TestParseRequestLineSimple(t *testing.T) {
	line, err := ParseRequestLine(iterFromString("GET /index.html HTTP/1.1\r\n"), 0, func() int64 { return 42 })
	if err != nil {
		t.Fatalf("ParseRequestLine() error: %v", err)
	}
	if line.Method != "GET" {
		t.Errorf("Method = %q, want GET", line.Method)
	}
	if line.Target != "/index.html" {
		t.Errorf("Target = %q, want /index.html", line.Target)
	}
	if line.HTTPVersion != "HTTP/1.1" {
		t.Errorf("HTTPVersion = %q, want HTTP/1.1", line.HTTPVersion)
	}
	if line.NanoTimeOnStart != 42 {
		t.Errorf("NanoTimeOnStart = %d, want 42", line.NanoTimeOnStart)
	}
}

func TestParseRequestLineBareCROnDelimiters(t *testing.T) {
	// Tolerant on method/target delimiters: a bare CR not followed by LF is
	// accepted as a delimiter there, unlike the strict version terminator.
	line, err := ParseRequestLine(iterFromString("GET\r/\rHTTP/1.1\r\n"), 0, func() int64 { return 0 })
	if err != nil {
		t.Fatalf("ParseRequestLine() error: %v", err)
	}
	if line.Method != "GET" || line.Target != "/" {
		t.Errorf("Method/Target = %q/%q, want GET//", line.Method, line.Target)
	}
}

func TestParseRequestLineStrictVersionTerminator(t *testing.T) {
	_, err := ParseRequestLine(iterFromString("GET / HTTP/1.1\rX"), 0, func() int64 { return 0 })
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("error = %v (%T), want *ParseError", err, err)
	}
	if pe.Kind != ErrRequestLineParse {
		t.Errorf("Kind = %v, want ErrRequestLineParse", pe.Kind)
	}
}

func TestParseRequestLineEmptyTargetRejected(t *testing.T) {
	_, err := ParseRequestLine(iterFromString("GET \rHTTP/1.1\r\n"), 0, func() int64 { return 0 })
	pe, ok := err.(*ParseError)
	if !ok || pe.Kind != ErrRequestLineParse {
		t.Fatalf("error = %v, want *ParseError{Kind: ErrRequestLineParse}", err)
	}
}

func TestParseRequestLineMaxHeadSizeExceeded(t *testing.T) {
	_, err := ParseRequestLine(iterFromString("GET /very/long/path/here HTTP/1.1\r\n"), 8, func() int64 { return 0 })
	pe, ok := err.(*ParseError)
	if !ok || pe.Kind != ErrMaxHeadSize {
		t.Fatalf("error = %v, want *ParseError{Kind: ErrMaxHeadSize}", err)
	}
}

func TestParseRequestLineTruncatedIsEndOfStream(t *testing.T) {
	_, err := ParseRequestLine(iterFromString("GET / HTTP/1.1"), 0, func() int64 { return 0 })
	pe, ok := err.(*ParseError)
	if !ok || pe.Kind != ErrEndOfStream {
		t.Fatalf("error = %v, want *ParseError{Kind: ErrEndOfStream}", err)
	}
}

func TestParseRequestLineBareLFOffsetMatchesViolatingByte(t *testing.T) {
	// spec.md §8 Scenario 2: "GET \n/hello..." => offset 4 (0-based index of
	// the '\n'), not 5 (bytes consumed including it).
	_, err := ParseRequestLine(iterFromString("GET \n/hello HTTP/1.1\r\n"), 0, func() int64 { return 0 })
	pe, ok := err.(*ParseError)
	if !ok || pe.Kind != ErrRequestLineParse {
		t.Fatalf("error = %v, want *ParseError{Kind: ErrRequestLineParse}", err)
	}
	if pe.Offset != 4 {
		t.Errorf("Offset = %d, want 4", pe.Offset)
	}
	if pe.PreviousByte != ' ' || pe.CurrentByte != '\n' {
		t.Errorf("Prev/Curr = %q/%q, want ' '/'\\n'", pe.PreviousByte, pe.CurrentByte)
	}
}

func TestParseRequestLineSkipsLeadingWhitespace(t *testing.T) {
	line, err := ParseRequestLine(iterFromString("  \r\nGET / HTTP/1.1\r\n"), 0, func() int64 { return 0 })
	if err != nil {
		t.Fatalf("ParseRequestLine() error: %v", err)
	}
	if line.Method != "GET" {
		t.Errorf("Method = %q, want GET", line.Method)
	}
}
