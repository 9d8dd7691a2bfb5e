package http11

import (
	"io"

	"github.com/yourusername/surge/pkg/surge/wire"
)

// RequestLine is the immutable, ordered tuple the request-line parser
// produces: method, target, httpVersion, the monotonic start time, and the
// exact byte count consumed (leading whitespace and terminating CRLF
// included).
type RequestLine struct {
	Method          string
	Target          string
	HTTPVersion     string
	NanoTimeOnStart int64
	BytesConsumed   int64
}

type lineState int

const (
	stateSkipLead lineState = iota
	stateMethod
	stateTargetLead
	stateTarget
	stateVersionLead
	stateVersion
	stateCRSeen
)

func isSP(b byte) bool { return b == ' ' }
func isHT(b byte) bool { return b == '\t' }
func isCR(b byte) bool { return b == '\r' }
func isLF(b byte) bool { return b == '\n' }
func isSPorHT(b byte) bool { return isSP(b) || isHT(b) }

// ParseRequestLine parses "method SP target SP version CRLF" per the state
// machine in spec.md §4.3, grounded on shockwave/pkg/shockwave/http11/
// parser.go's parseRequestLine but generalized from a single split-on-space
// pass into the exact tolerant state machine the spec requires (bare-CR
// tolerance on the method/target delimiters, strict CRLF on the version
// terminator — see the CR-without-LF Open Question in SPEC_FULL.md).
//
// nowNanos is captured once, before the first byte is read, and reported
// back as NanoTimeOnStart.
func ParseRequestLine(it wire.Iterator, maxBytes int64, nowNanos func() int64) (*RequestLine, error) {
	cur := newByteCursor(it)
	start := nowNanos()

	state := stateSkipLead
	var method, target, version []byte
	var prev byte

	for {
		b, err := cur.ReadByte()
		if err != nil {
			if err == io.EOF {
				return nil, &ParseError{Kind: ErrEndOfStream, Offset: cur.Offset(), PreviousByte: prev, Message: "channel closed before request line was complete"}
			}
			return nil, err
		}
		if maxBytes > 0 && cur.Offset() > maxBytes {
			return nil, &ParseError{Kind: ErrMaxHeadSize, Offset: cur.LastOffset(), PreviousByte: prev, CurrentByte: b, Message: "request-line exceeded maxRequestHeadSize"}
		}

		switch state {
		case stateSkipLead:
			if isCR(b) || isLF(b) || isHT(b) || isSP(b) {
				// stay
			} else {
				state = stateMethod
				method = append(method, b)
			}

		case stateMethod:
			switch {
			case isHT(b) || isSP(b) || isCR(b):
				state = stateTargetLead
			case isLF(b):
				return nil, newParseError(ErrRequestLineParse, cur.LastOffset(), prev, b, "Unexpected LF")
			default:
				method = append(method, b)
			}

		case stateTargetLead:
			switch {
			case isHT(b) || isSP(b):
				// stay
			case isLF(b):
				return nil, newParseError(ErrRequestLineParse, cur.LastOffset(), prev, b, "Unexpected LF")
			case isCR(b):
				return nil, newParseError(ErrRequestLineParse, cur.LastOffset(), prev, b, "Empty request-target")
			default:
				state = stateTarget
				target = append(target, b)
			}

		case stateTarget:
			switch {
			case isHT(b) || isSP(b) || isCR(b):
				state = stateVersionLead
			case isLF(b):
				return nil, newParseError(ErrRequestLineParse, cur.LastOffset(), prev, b, "Unexpected LF")
			default:
				target = append(target, b)
			}

		case stateVersionLead:
			switch {
			case isHT(b) || isSP(b):
				// stay
			case isLF(b):
				return nil, newParseError(ErrRequestLineParse, cur.LastOffset(), prev, b, "Empty HTTP-version")
			default:
				state = stateVersion
				version = append(version, b)
			}

		case stateVersion:
			switch {
			case isHT(b) || isSP(b):
				return nil, newParseError(ErrRequestLineParse, cur.LastOffset(), prev, b, "Whitespace in HTTP-version not accepted")
			case isCR(b):
				state = stateCRSeen
			case isLF(b):
				return &RequestLine{
					Method:          string(method),
					Target:          string(target),
					HTTPVersion:     string(version),
					NanoTimeOnStart: start,
					BytesConsumed:   cur.Offset(),
				}, nil
			default:
				version = append(version, b)
			}

		case stateCRSeen:
			if isLF(b) {
				return &RequestLine{
					Method:          string(method),
					Target:          string(target),
					HTTPVersion:     string(version),
					NanoTimeOnStart: start,
					BytesConsumed:   cur.Offset(),
				}, nil
			}
			return nil, newParseError(ErrRequestLineParse, cur.LastOffset(), prev, b, "CR followed by something other than LF")
		}

		prev = b
	}
}
