package http11

import (
	"errors"
	"testing"
)

func TestParseHTTPVersion(t *testing.T) {
	cases := []struct {
		token      string
		wantMajor  int
		wantMinor  int
		wantErr    bool
	}{
		{"HTTP/1.1", 1, 1, false},
		{"HTTP/1.0", 1, 0, false},
		{"HTTP/2.0", 2, 0, false},
		{"HTTP/10.5", 10, 5, false},
		{"HTTP1.1", 0, 0, true},
		{"HTTP/1", 0, 0, true},
		{"HTTP/a.b", 0, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.token, func(t *testing.T) {
			major, minor, err := ParseHTTPVersion(tc.token)
			if tc.wantErr {
				if !errors.Is(err, ErrHTTPVersionParse) {
					t.Fatalf("ParseHTTPVersion(%q) error = %v, want ErrHTTPVersionParse", tc.token, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHTTPVersion(%q) error: %v", tc.token, err)
			}
			if major != tc.wantMajor || minor != tc.wantMinor {
				t.Errorf("ParseHTTPVersion(%q) = (%d, %d), want (%d, %d)", tc.token, major, minor, tc.wantMajor, tc.wantMinor)
			}
		})
	}
}
