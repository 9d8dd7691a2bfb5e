package http11

// Method IDs, grounded on the teacher's length-then-byte-compare dispatch
// in shockwave/pkg/shockwave/http11/method.go.
const (
	MethodUnknown uint8 = iota
	MethodGET
	MethodHEAD
	MethodPOST
	MethodPUT
	MethodDELETE
	MethodCONNECT
	MethodOPTIONS
	MethodTRACE
	MethodPATCH
)

var methodNames = map[uint8]string{
	MethodGET:     "GET",
	MethodHEAD:    "HEAD",
	MethodPOST:    "POST",
	MethodPUT:     "PUT",
	MethodDELETE:  "DELETE",
	MethodCONNECT: "CONNECT",
	MethodOPTIONS: "OPTIONS",
	MethodTRACE:   "TRACE",
	MethodPATCH:   "PATCH",
}

// ParseMethodID maps a raw method token to its ID. Unknown tokens (and any
// extension method RFC 7230 permits) return MethodUnknown; the request-line
// parser stores unknown tokens verbatim rather than rejecting them, since
// §4.3 of the wire grammar does not restrict the method token to a fixed
// set.
func ParseMethodID(b []byte) uint8 {
	switch len(b) {
	case 3:
		if string(b) == "GET" {
			return MethodGET
		}
		if string(b) == "PUT" {
			return MethodPUT
		}
	case 4:
		if string(b) == "HEAD" {
			return MethodHEAD
		}
		if string(b) == "POST" {
			return MethodPOST
		}
	case 5:
		if string(b) == "PATCH" {
			return MethodPATCH
		}
		if string(b) == "TRACE" {
			return MethodTRACE
		}
	case 6:
		if string(b) == "DELETE" {
			return MethodDELETE
		}
	case 7:
		if string(b) == "CONNECT" {
			return MethodCONNECT
		}
		if string(b) == "OPTIONS" {
			return MethodOPTIONS
		}
	}
	return MethodUnknown
}

// MethodString returns the canonical name for a known method ID.
func MethodString(id uint8) string {
	return methodNames[id]
}
