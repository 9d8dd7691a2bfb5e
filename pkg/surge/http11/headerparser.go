package http11

import (
	"io"
	"strings"

	"github.com/yourusername/surge/pkg/surge/wire"
)

// ParseHeaders parses a CRLF-delimited header field section terminated by
// an empty line, per spec.md §4.4. The same function parses both request
// headers and chunked trailers (capKind selects which cap-exceeded error to
// report, and is the one parser for both — Open Question #2 in
// SPEC_FULL.md).
//
// Grounded on shockwave/pkg/shockwave/http11/parser.go's parseHeaders, kept
// the fatal-on-leading-whitespace-in-name and fold-by-one-space behavior,
// generalized to run identically over trailers.
func ParseHeaders(it wire.Iterator, maxBytes int64, capKind error) (*HeaderIndex, error) {
	h := NewHeaderIndex()
	if err := ParseHeadersInto(it, maxBytes, capKind, h); err != nil {
		return nil, err
	}
	return h, nil
}

// ParseHeadersInto parses into a caller-supplied HeaderIndex instead of
// allocating a fresh one, letting callers recycle an index obtained from
// GetHeaderIndex across exchanges.
func ParseHeadersInto(it wire.Iterator, maxBytes int64, capKind error, h *HeaderIndex) error {
	cur := newByteCursor(it)
	var lastName string
	haveLast := false

	for {
		line, firstOffset, err := readHeaderLine(cur, maxBytes, capKind)
		if err != nil {
			return err
		}
		if line == nil {
			return &ParseError{Kind: ErrHeaderParse, Offset: cur.Offset(), Message: "channel closed gracefully before parser was done"}
		}
		if len(line) == 0 {
			h.Publish()
			return nil
		}

		if line[0] == ' ' || line[0] == '\t' {
			if !haveLast {
				return &ParseError{Kind: ErrHeaderParse, Offset: firstOffset, CurrentByte: line[0], Message: "Unexpected fold with no preceding header field."}
			}
			folded := strings.TrimSpace(string(line))
			idx := h.indices(lastName)
			last := &h.fields[idx[len(idx)-1]]
			last.Value = last.Value + " " + folded
			continue
		}

		// readHeaderLine already rejected any whitespace ahead of the first
		// colon (at the violating byte's own offset); this just locates it.
		colon := -1
		for i, b := range line {
			if b == ':' {
				colon = i
				break
			}
		}
		if colon <= 0 {
			return &ParseError{Kind: ErrHeaderParse, Offset: cur.Offset(), Message: "Header line missing ':' or has empty name."}
		}

		name := string(line[:colon])
		value := strings.TrimSpace(string(line[colon+1:]))
		h.Add(name, value)
		lastName = name
		haveLast = true
	}
}

// readHeaderLine reads one CRLF- or bare-LF-terminated line (terminator
// stripped), returns nil on EOF with no bytes read (section incomplete),
// and an empty non-nil slice for the section-terminating blank line.
// firstOffset is the 0-based offset of line's first byte (meaningless when
// line is empty), needed so a fold-with-no-preceding-field error can be
// reported at the byte that caused it rather than at the end of the line.
//
// The whitespace-before-colon check runs inline, byte by byte, rather than
// as a second pass over the buffered line in ParseHeaders: by the time that
// second pass would run, the cursor has already consumed the whole line
// plus its terminator, so cur.Offset() no longer points at the violating
// byte (spec.md §8 Scenario 3).
func readHeaderLine(cur *byteCursor, maxBytes int64, capKind error) (line []byte, firstOffset int64, err error) {
	line = make([]byte, 0)
	isFold := false
	sawColon := false
	first := true

	for {
		b, rerr := cur.ReadByte()
		if rerr != nil {
			if rerr == io.EOF {
				if len(line) == 0 {
					return nil, 0, nil
				}
				return nil, 0, &ParseError{Kind: ErrHeaderParse, Offset: cur.Offset(), Message: "channel closed gracefully before parser was done"}
			}
			return nil, 0, rerr
		}
		if maxBytes > 0 && cur.Offset() > maxBytes {
			return nil, 0, &ParseError{Kind: capKind, Offset: cur.LastOffset(), CurrentByte: b, Message: "header section exceeded byte cap"}
		}
		if b == '\r' {
			nb, err2 := cur.ReadByte()
			if err2 != nil {
				if err2 == io.EOF {
					return nil, 0, &ParseError{Kind: ErrHeaderParse, Offset: cur.Offset(), PreviousByte: b, Message: "channel closed gracefully before parser was done"}
				}
				return nil, 0, err2
			}
			if nb != '\n' {
				return nil, 0, &ParseError{Kind: ErrHeaderParse, Offset: cur.LastOffset(), PreviousByte: b, CurrentByte: nb, Message: "CR not followed by LF"}
			}
			return line, firstOffset, nil
		}
		if b == '\n' {
			return line, firstOffset, nil
		}

		if first {
			first = false
			firstOffset = cur.LastOffset()
			if b == ' ' || b == '\t' {
				isFold = true
			}
		} else if !isFold && !sawColon {
			if b == ' ' || b == '\t' {
				return nil, 0, &ParseError{Kind: ErrHeaderParse, Offset: cur.LastOffset(), CurrentByte: b, Message: "Whitespace in header name or before colon is not accepted."}
			}
			if b == ':' {
				sawColon = true
			}
		}
		line = append(line, b)
	}
}

// ValidateFraming enforces the smuggling guards from SPEC_FULL.md §4: CL+TE
// together is BadRequest, disagreeing duplicate Content-Length is
// BadRequest, and more than one Host header is BadRequest. The teacher
// tracks these as parser-local flags set while scanning
// (processSpecialHeader in shockwave/pkg/shockwave/http11/parser.go); this
// runs as a pure post-parse pass instead, keeping HeaderIndex a plain data
// carrier with no hidden mutable state during parsing.
func ValidateFraming(h *HeaderIndex) error {
	clIdx := h.indices("Content-Length")
	teIdx := h.indices("Transfer-Encoding")
	if len(clIdx) > 0 && len(teIdx) > 0 {
		return &ParseError{Kind: ErrBadRequest, Message: "Content-Length and Transfer-Encoding must not both be present."}
	}
	if len(clIdx) > 1 {
		first := strings.TrimSpace(h.fields[clIdx[0]].Value)
		for _, i := range clIdx[1:] {
			if strings.TrimSpace(h.fields[i].Value) != first {
				return &ParseError{Kind: ErrBadRequest, Message: "Multiple, disagreeing Content-Length headers."}
			}
		}
	}
	if len(h.indices("Host")) > 1 {
		return &ParseError{Kind: ErrBadRequest, Message: "Multiple Host headers."}
	}
	return nil
}
