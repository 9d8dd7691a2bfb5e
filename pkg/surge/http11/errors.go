package http11

import (
	"errors"
	"fmt"
)

// ParseError carries the byte-level diagnostics the request-line and header
// parsers attach to every syntax failure: the offset into the section being
// parsed, the byte before and at the failure, and a human message.
type ParseError struct {
	Kind         error
	Offset       int64
	PreviousByte byte
	CurrentByte  byte
	Message      string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at offset %d (prev=%q curr=%q): %s", e.Kind, e.Offset, e.PreviousByte, e.CurrentByte, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Kind }

func newParseError(kind error, offset int64, prev, curr byte, msg string) *ParseError {
	return &ParseError{Kind: kind, Offset: offset, PreviousByte: prev, CurrentByte: curr, Message: msg}
}

// Sentinel error kinds. Each is wrapped into a *ParseError where the spec
// requires structured fields, and used bare where it doesn't.
var (
	ErrRequestLineParse  = errors.New("RequestLineParseException")
	ErrHeaderParse       = errors.New("HeaderParseException")
	ErrHTTPVersionParse  = errors.New("HttpVersionParseException")
	ErrHTTPVersionTooOld = errors.New("HttpVersionTooOld")
	ErrHTTPVersionTooNew = errors.New("HttpVersionTooNew")
	ErrBadRequest        = errors.New("BadRequest")
	ErrBadHeader         = errors.New("BadHeaderException")
	ErrMediaTypeParse    = errors.New("MediaTypeParseException")
	ErrDecoder           = errors.New("DecoderException")
	ErrEndOfStream       = errors.New("EndOfStreamException")
	ErrIllegalReqBody    = errors.New("IllegalRequestBody")
	ErrIllegalRespBody   = errors.New("IllegalResponseBody")
	ErrMaxHeadSize       = errors.New("MaxRequestHeadSizeExceeded")
	ErrMaxTrailersSize   = errors.New("MaxRequestTrailersSizeExceeded")
	ErrMaxBodyBuffer     = errors.New("MaxRequestBodyBufferSize")
	ErrMaxBodyConversion = errors.New("MaxRequestBodyConversionSize")
	ErrReqHeadTimeout    = errors.New("RequestHeadTimeoutException")
	ErrReqBodyTimeout    = errors.New("RequestBodyTimeoutException")
	ErrResponseTimeout   = errors.New("ResponseTimeoutException")
	ErrUnsupportedOp     = errors.New("UnsupportedOperation")
	ErrClosedPublisher   = errors.New("ClosedPublisherException")
	ErrIllegalState      = errors.New("IllegalState")
	ErrNoSuchElement     = errors.New("NoSuchElement")
	ErrUnsupportedState  = errors.New("UnsupportedState")
	ErrIllegalArgument   = errors.New("IllegalArgument")
)
