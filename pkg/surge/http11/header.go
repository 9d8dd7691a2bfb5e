package http11

import (
	"strconv"
	"strings"

	"github.com/yourusername/surge/pkg/surge/media"
)

// HeaderField is a single (name, value) pair as received: name carries no
// whitespace or colon, value has had surrounding whitespace stripped while
// interior whitespace is preserved. Casing is exactly as received.
type HeaderField struct {
	Name  string
	Value string
}

// HeaderIndex is a case-insensitive, insertion-ordered multi-map of header
// fields with cached typed accessors.
//
// Grounded on shockwave/pkg/shockwave/http11/header.go, whose fixed-size
// array-of-slots-plus-map-overflow design already behaves like an
// insertion-ordered multi-map for duplicate names; this generalizes the
// backing store to an unbounded slice (the teacher caps at MaxHeaders=32,
// which the request-head byte cap already bounds indirectly, so a second,
// lower, hard array cap would only duplicate that limit) while keeping the
// same lookup idiom (lower-cased name as map key).
type HeaderIndex struct {
	fields    []HeaderField
	byName    map[string][]int // lower-cased name -> indices into fields, in arrival order
	nameOrder []string         // lower-cased names, in first-occurrence order

	published bool // true once handed to a consumer; mutation after this is a bug

	contentTypeCached   bool
	contentType         *media.MediaType
	contentTypeErr      error
	contentLengthCached bool
	contentLength       uint64
	contentLengthOK     bool
	contentLengthErr    error
}

// NewHeaderIndex returns an empty, writable HeaderIndex.
func NewHeaderIndex() *HeaderIndex {
	return &HeaderIndex{byName: make(map[string][]int, 8)}
}

// Add appends a field, preserving arrival order including for duplicate
// names. Panics if called after Publish (a parser bug, not a runtime
// condition callers should handle).
func (h *HeaderIndex) Add(name, value string) {
	if h.published {
		panic("http11: HeaderIndex mutated after publish")
	}
	h.fields = append(h.fields, HeaderField{Name: name, Value: value})
	key := strings.ToLower(name)
	if len(h.byName[key]) == 0 {
		h.nameOrder = append(h.nameOrder, key)
	}
	h.byName[key] = append(h.byName[key], len(h.fields)-1)
}

// Remove deletes every value stored under name. Only valid before Publish.
func (h *HeaderIndex) Remove(name string) {
	if h.published {
		panic("http11: HeaderIndex mutated after publish")
	}
	key := strings.ToLower(name)
	if _, ok := h.byName[key]; !ok {
		return
	}
	kept := h.fields[:0]
	for _, f := range h.fields {
		if strings.ToLower(f.Name) != key {
			kept = append(kept, f)
		}
	}
	h.fields = kept
	delete(h.byName, key)
	for i, n := range h.nameOrder {
		if n == key {
			h.nameOrder = append(h.nameOrder[:i], h.nameOrder[i+1:]...)
			break
		}
	}
	h.rebuildIndex()
}

// Set replaces every value stored under name with a single (name, value)
// pair, preserving the name's original first-occurrence position.
func (h *HeaderIndex) Set(name, value string) {
	if h.published {
		panic("http11: HeaderIndex mutated after publish")
	}
	key := strings.ToLower(name)
	if _, ok := h.byName[key]; ok {
		replaced := false
		kept := h.fields[:0]
		for _, f := range h.fields {
			if strings.ToLower(f.Name) == key {
				if !replaced {
					kept = append(kept, HeaderField{Name: name, Value: value})
					replaced = true
				}
				continue
			}
			kept = append(kept, f)
		}
		h.fields = kept
		h.rebuildIndex()
		return
	}
	h.Add(name, value)
}

func (h *HeaderIndex) rebuildIndex() {
	h.byName = make(map[string][]int, len(h.fields))
	for i, f := range h.fields {
		key := strings.ToLower(f.Name)
		h.byName[key] = append(h.byName[key], i)
	}
}

// WriteTo serializes the header section as "name: value\r\n" lines,
// grouping duplicate names at their first-occurrence position, per
// spec.md §4.9.
func (h *HeaderIndex) WriteTo(w writerLike) error {
	for _, key := range h.nameOrder {
		for _, i := range h.byName[key] {
			f := h.fields[i]
			if _, err := w.WriteString(f.Name); err != nil {
				return err
			}
			if _, err := w.WriteString(": "); err != nil {
				return err
			}
			if _, err := w.WriteString(f.Value); err != nil {
				return err
			}
			if _, err := w.WriteString("\r\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

type writerLike interface {
	WriteString(s string) (int, error)
}

// Publish freezes the index: the parser is the single writer, downstream
// consumers get read-only access from here on (§5 Shared resources).
func (h *HeaderIndex) Publish() { h.published = true }

// Len returns the number of fields, counting duplicates.
func (h *HeaderIndex) Len() int { return len(h.fields) }

// ForEach visits every field in insertion order.
func (h *HeaderIndex) ForEach(action func(name, value string)) {
	for _, f := range h.fields {
		action(f.Name, f.Value)
	}
}

func (h *HeaderIndex) indices(name string) []int {
	return h.byName[strings.ToLower(name)]
}

// Contains reports whether any value is stored under name.
func (h *HeaderIndex) Contains(name string) bool {
	return len(h.indices(name)) > 0
}

// ContainsValue reports whether any value under name contains substr,
// case-insensitively.
func (h *HeaderIndex) ContainsValue(name, substr string) bool {
	substr = strings.ToLower(substr)
	for _, i := range h.indices(name) {
		if strings.Contains(strings.ToLower(h.fields[i].Value), substr) {
			return true
		}
	}
	return false
}

// FirstValue returns the first value stored under name, if any.
func (h *HeaderIndex) FirstValue(name string) (string, bool) {
	idx := h.indices(name)
	if len(idx) == 0 {
		return "", false
	}
	return h.fields[idx[0]].Value, true
}

// FirstValueAsLong parses the first value under name as a base-10 int64.
func (h *HeaderIndex) FirstValueAsLong(name string) (int64, bool, error) {
	v, ok := h.FirstValue(name)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, true, err
	}
	return n, true, nil
}

// IsMissingOrEmpty reports whether name is absent, or its first value is
// the empty string.
func (h *HeaderIndex) IsMissingOrEmpty(name string) bool {
	v, ok := h.FirstValue(name)
	return !ok || v == ""
}

// AllTokens splits every value stored under name on commas, trims each
// token, and drops empties.
func (h *HeaderIndex) AllTokens(name string) []string {
	var out []string
	for _, i := range h.indices(name) {
		for _, tok := range strings.Split(h.fields[i].Value, ",") {
			tok = strings.TrimSpace(tok)
			if tok != "" {
				out = append(out, tok)
			}
		}
	}
	return out
}

// AllTokensKeepQuotes behaves like AllTokens but does not split commas that
// fall inside a double-quoted span.
func (h *HeaderIndex) AllTokensKeepQuotes(name string) []string {
	var out []string
	for _, i := range h.indices(name) {
		out = append(out, splitRespectingQuotes(h.fields[i].Value)...)
	}
	return out
}

func splitRespectingQuotes(s string) []string {
	var out []string
	var cur strings.Builder
	inQuotes := false
	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			cur.WriteRune(r)
		case r == ',' && !inQuotes:
			tok := strings.TrimSpace(cur.String())
			if tok != "" {
				out = append(out, tok)
			}
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if tok := strings.TrimSpace(cur.String()); tok != "" {
		out = append(out, tok)
	}
	return out
}

// ContentType parses and caches the Content-Type header via the media
// package. Fails with ErrBadHeader if more than one Content-Type value is
// present.
func (h *HeaderIndex) ContentType() (*media.MediaType, error) {
	if h.contentTypeCached {
		return h.contentType, h.contentTypeErr
	}
	h.contentTypeCached = true
	idx := h.indices("Content-Type")
	if len(idx) == 0 {
		return nil, nil
	}
	if len(idx) > 1 {
		h.contentTypeErr = wrapBadHeader("multiple Content-Type headers")
		return nil, h.contentTypeErr
	}
	mt, err := media.ParseMediaType(h.fields[idx[0]].Value)
	if err != nil {
		h.contentTypeErr = err
		return nil, err
	}
	h.contentType = mt
	return mt, nil
}

// ContentLength parses and caches the Content-Length header. Agreeing
// duplicates resolve to their common value (ValidateFraming already rejects
// disagreeing duplicates before this is ever reached on the request path);
// fails with ErrBadHeader if non-numeric or negative.
func (h *HeaderIndex) ContentLength() (uint64, bool, error) {
	if h.contentLengthCached {
		return h.contentLength, h.contentLengthOK, h.contentLengthErr
	}
	h.contentLengthCached = true
	idx := h.indices("Content-Length")
	if len(idx) == 0 {
		return 0, false, nil
	}
	raw := strings.TrimSpace(h.fields[idx[0]].Value)
	for _, i := range idx[1:] {
		if strings.TrimSpace(h.fields[i].Value) != raw {
			h.contentLengthErr = wrapBadHeader("multiple, disagreeing Content-Length headers")
			return 0, false, h.contentLengthErr
		}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		h.contentLengthErr = wrapBadHeader("Content-Length is not a valid non-negative integer")
		return 0, false, h.contentLengthErr
	}
	h.contentLength = uint64(n)
	h.contentLengthOK = true
	return h.contentLength, true, nil
}

// TransferEncoding returns the ordered tokens of the Transfer-Encoding
// header. Fails with ErrBadHeader if the last token isn't "chunked".
func (h *HeaderIndex) TransferEncoding() ([]string, error) {
	toks := h.AllTokens("Transfer-Encoding")
	if len(toks) == 0 {
		return nil, nil
	}
	if !strings.EqualFold(toks[len(toks)-1], "chunked") {
		return nil, wrapBadHeader("final Transfer-Encoding token is not \"chunked\"")
	}
	return toks, nil
}

// IsChunked reports whether Transfer-Encoding contains "chunked".
func (h *HeaderIndex) IsChunked() bool {
	return h.ContainsValue("Transfer-Encoding", "chunked")
}

func wrapBadHeader(msg string) error {
	return &ParseError{Kind: ErrBadHeader, Message: msg}
}
