package http11

import "fmt"

// ParseHTTPVersion splits a "HTTP/major.minor" token into its numeric
// components. The request-line parser itself only captures the raw token
// (C3); version semantics (too old / too new) are an ExchangeDriver policy
// per spec.md §4.11, so this lives alongside the request-line parser as a
// small pure helper rather than inside it.
func ParseHTTPVersion(token string) (major, minor int, err error) {
	if len(token) < 8 || token[:5] != "HTTP/" {
		return 0, 0, fmt.Errorf("%w: %q is not an HTTP-version token", ErrHTTPVersionParse, token)
	}
	rest := token[5:]
	dot := -1
	for i, r := range rest {
		if r == '.' {
			dot = i
			break
		}
	}
	if dot < 0 {
		return 0, 0, fmt.Errorf("%w: %q is missing '.'", ErrHTTPVersionParse, token)
	}
	majStr, minStr := rest[:dot], rest[dot+1:]
	maj, ok1 := parseDigits(majStr)
	min, ok2 := parseDigits(minStr)
	if !ok1 || !ok2 {
		return 0, 0, fmt.Errorf("%w: %q has non-numeric version components", ErrHTTPVersionParse, token)
	}
	return maj, min, nil
}

func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
