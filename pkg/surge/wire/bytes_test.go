package wire

import "testing"

func TestBytesIterableRegenerates(t *testing.T) {
	b := NewBytesIterable([]byte("payload"))
	if b.Length() != 7 {
		t.Fatalf("Length() = %d, want 7", b.Length())
	}

	for run := 0; run < 2; run++ {
		it, err := b.Iterator()
		if err != nil {
			t.Fatalf("run %d: Iterator() error: %v", run, err)
		}
		has, err := it.HasNext()
		if err != nil || !has {
			t.Fatalf("run %d: HasNext() = (%v, %v), want (true, nil)", run, has, err)
		}
		v, err := it.Next()
		if err != nil {
			t.Fatalf("run %d: Next() error: %v", run, err)
		}
		if string(v.Bytes()) != "payload" {
			t.Errorf("run %d: Next() = %q, want %q", run, v.Bytes(), "payload")
		}
		has, err = it.HasNext()
		if err != nil || has {
			t.Fatalf("run %d: HasNext() after drain = (%v, %v), want (false, nil)", run, has, err)
		}
		if _, err := it.Next(); err != ErrNoSuchElement {
			t.Errorf("run %d: Next() after drain = %v, want ErrNoSuchElement", run, err)
		}
		it.Close()
	}
}

func TestBytesIterableEmpty(t *testing.T) {
	b := NewBytesIterable(nil)
	it, _ := b.Iterator()
	has, err := it.HasNext()
	if err != nil || !has {
		t.Fatalf("HasNext() on empty backing slice = (%v, %v), want (true, nil) -- a single zero-length view is still yielded once", has, err)
	}
	v, err := it.Next()
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if v.Len() != 0 {
		t.Errorf("Len() = %d, want 0", v.Len())
	}
}
