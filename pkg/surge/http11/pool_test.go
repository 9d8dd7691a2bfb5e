package http11

import "testing"

func TestRequestPoolResetsState(t *testing.T) {
	r := GetRequest()
	r.Attrs.Set("k", "v")
	PutRequest(r)

	r2 := GetRequest()
	if _, ok := r2.Attrs.Get("k"); ok {
		t.Error("GetRequest() returned a Request with a stale attribute")
	}
	PutRequest(r2)
}

func TestHeaderIndexPoolResetsState(t *testing.T) {
	h := GetHeaderIndex()
	h.Add("X-Stale", "yes")
	h.Publish()
	PutHeaderIndex(h)

	h2 := GetHeaderIndex()
	if h2.Contains("X-Stale") {
		t.Error("GetHeaderIndex() returned a HeaderIndex with a stale field")
	}
	// Must be writable again (Publish()'s latch was reset).
	h2.Add("X-Fresh", "1")
	PutHeaderIndex(h2)
}

func TestBodyBufferPoolRoundTrip(t *testing.T) {
	buf := GetBodyBuffer()
	buf.B = append(buf.B, "payload"...)
	PutBodyBuffer(buf)

	buf2 := GetBodyBuffer()
	if len(buf2.B) != 0 {
		t.Errorf("GetBodyBuffer() returned non-empty buffer: %q", buf2.B)
	}
	PutBodyBuffer(buf2)
}
