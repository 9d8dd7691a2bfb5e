package http11

import "testing"

func TestParseMethodIDKnownMethods(t *testing.T) {
	cases := []struct {
		token string
		want  uint8
	}{
		{"GET", MethodGET},
		{"HEAD", MethodHEAD},
		{"POST", MethodPOST},
		{"PUT", MethodPUT},
		{"DELETE", MethodDELETE},
		{"CONNECT", MethodCONNECT},
		{"OPTIONS", MethodOPTIONS},
		{"TRACE", MethodTRACE},
		{"PATCH", MethodPATCH},
	}
	for _, tc := range cases {
		t.Run(tc.token, func(t *testing.T) {
			if got := ParseMethodID([]byte(tc.token)); got != tc.want {
				t.Errorf("ParseMethodID(%q) = %d, want %d", tc.token, got, tc.want)
			}
			if got := MethodString(tc.want); got != tc.token {
				t.Errorf("MethodString(%d) = %q, want %q", tc.want, got, tc.token)
			}
		})
	}
}

func TestParseMethodIDUnknown(t *testing.T) {
	if got := ParseMethodID([]byte("PROPFIND")); got != MethodUnknown {
		t.Errorf("ParseMethodID(PROPFIND) = %d, want MethodUnknown", got)
	}
	if got := ParseMethodID([]byte("FOO")); got != MethodUnknown {
		t.Errorf("ParseMethodID(FOO) = %d, want MethodUnknown (same length as GET but different bytes)", got)
	}
}
