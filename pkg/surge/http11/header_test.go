package http11

import (
	"strings"
	"testing"
)

func TestHeaderIndexAddAndFirstValue(t *testing.T) {
	h := NewHeaderIndex()
	h.Add("Content-Type", "text/plain")
	if v, ok := h.FirstValue("content-type"); !ok || v != "text/plain" {
		t.Errorf("FirstValue = %q, %v, want text/plain, true", v, ok)
	}
	if h.Len() != 1 {
		t.Errorf("Len() = %d, want 1", h.Len())
	}
}

func TestHeaderIndexDuplicateNamesGroupedAtFirstOccurrence(t *testing.T) {
	h := NewHeaderIndex()
	h.Add("X-A", "1")
	h.Add("X-B", "2")
	h.Add("X-A", "3")

	var buf strings.Builder
	if err := h.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error: %v", err)
	}
	want := "X-A: 1\r\nX-A: 3\r\nX-B: 2\r\n"
	if buf.String() != want {
		t.Errorf("WriteTo() = %q, want %q", buf.String(), want)
	}
}

func TestHeaderIndexSetReplacesAllKeepingPosition(t *testing.T) {
	h := NewHeaderIndex()
	h.Add("X-A", "1")
	h.Add("X-B", "2")
	h.Add("X-A", "3")
	h.Set("X-A", "final")

	var buf strings.Builder
	h.WriteTo(&buf)
	want := "X-A: final\r\nX-B: 2\r\n"
	if buf.String() != want {
		t.Errorf("WriteTo() after Set = %q, want %q", buf.String(), want)
	}
}

func TestHeaderIndexRemove(t *testing.T) {
	h := NewHeaderIndex()
	h.Add("X-A", "1")
	h.Add("X-B", "2")
	h.Remove("X-A")
	if h.Contains("X-A") {
		t.Error("Contains(X-A) = true after Remove")
	}
	if !h.Contains("X-B") {
		t.Error("Contains(X-B) = false, want true")
	}
}

func TestHeaderIndexAddAfterPublishPanics(t *testing.T) {
	h := NewHeaderIndex()
	h.Publish()
	defer func() {
		if recover() == nil {
			t.Error("Add() after Publish() did not panic")
		}
	}()
	h.Add("X", "Y")
}

func TestHeaderIndexContentTypeMultipleIsError(t *testing.T) {
	h := NewHeaderIndex()
	h.Add("Content-Type", "text/plain")
	h.Add("Content-Type", "application/json")
	if _, err := h.ContentType(); err == nil {
		t.Error("ContentType() with duplicates = nil error, want error")
	}
}

func TestHeaderIndexContentLengthValidation(t *testing.T) {
	cases := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid", "42", false},
		{"negative", "-1", true},
		{"non-numeric", "abc", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHeaderIndex()
			h.Add("Content-Length", tc.value)
			_, ok, err := h.ContentLength()
			if tc.wantErr {
				if err == nil {
					t.Errorf("ContentLength(%q) error = nil, want error", tc.value)
				}
				return
			}
			if err != nil || !ok {
				t.Errorf("ContentLength(%q) = (_, %v, %v), want (_, true, nil)", tc.value, ok, err)
			}
		})
	}
}

func TestHeaderIndexContentLengthAgreeingDuplicatesResolve(t *testing.T) {
	h := NewHeaderIndex()
	h.Add("Content-Length", "5")
	h.Add("Content-Length", "5")
	n, ok, err := h.ContentLength()
	if err != nil || !ok || n != 5 {
		t.Errorf("ContentLength() = (%d, %v, %v), want (5, true, nil) for agreeing duplicates", n, ok, err)
	}
}

func TestHeaderIndexContentLengthDisagreeingDuplicatesReject(t *testing.T) {
	h := NewHeaderIndex()
	h.Add("Content-Length", "5")
	h.Add("Content-Length", "6")
	if _, _, err := h.ContentLength(); err == nil {
		t.Error("ContentLength() with disagreeing duplicates = nil error, want error")
	}
}

func TestHeaderIndexTransferEncodingMustEndInChunked(t *testing.T) {
	h := NewHeaderIndex()
	h.Add("Transfer-Encoding", "gzip")
	if _, err := h.TransferEncoding(); err == nil {
		t.Error("TransferEncoding() with non-chunked final token = nil error, want error")
	}

	h2 := NewHeaderIndex()
	h2.Add("Transfer-Encoding", "gzip, chunked")
	toks, err := h2.TransferEncoding()
	if err != nil {
		t.Fatalf("TransferEncoding() error: %v", err)
	}
	if len(toks) != 2 || toks[1] != "chunked" {
		t.Errorf("TransferEncoding() = %v, want [gzip chunked]", toks)
	}
	if !h2.IsChunked() {
		t.Error("IsChunked() = false, want true")
	}
}

func TestHeaderIndexAllTokensKeepQuotes(t *testing.T) {
	h := NewHeaderIndex()
	h.Add("X-Tokens", `a, "b,c", d`)
	got := h.AllTokensKeepQuotes("X-Tokens")
	want := []string{"a", `"b,c"`, "d"}
	if len(got) != len(want) {
		t.Fatalf("AllTokensKeepQuotes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
