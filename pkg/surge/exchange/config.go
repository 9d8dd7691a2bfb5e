package exchange

import "time"

// HTTPVersion is a bare (major, minor) pair used for the minHttpVersion
// floor.
type HTTPVersion struct {
	Major, Minor int
}

// Config carries the exchange tunables enumerated in spec.md §6, plus the
// ambient connection knobs (buffer sizes, per-connection request cap) the
// teacher's ConnectionConfig/server.Config already expose.
//
// Grounded on shockwave/pkg/shockwave/http11/connection.go's
// ConnectionConfig and shockwave/pkg/shockwave/server/server.go's Config.
type Config struct {
	MaxRequestHeadSize           int64
	MaxRequestTrailersSize       int64
	MaxRequestBodyBufferSize     int64
	MaxRequestBodyConversionSize int64

	TimeoutIdleConnection time.Duration
	TimeoutResponse       time.Duration

	MinHTTPVersion HTTPVersion

	ReadBufferSize     int
	WriteBufferSize    int
	MaxRequestsPerConn int

	Logger Logger
}

// DefaultConfig mirrors shockwave's DefaultConnectionConfig /
// server.Config defaults where the concerns overlap.
func DefaultConfig() *Config {
	return &Config{
		MaxRequestHeadSize:           8192,
		MaxRequestTrailersSize:       8192,
		MaxRequestBodyBufferSize:     10 << 20, // 10MB
		MaxRequestBodyConversionSize: 10 << 20,
		TimeoutIdleConnection:        60 * time.Second,
		TimeoutResponse:              60 * time.Second,
		MinHTTPVersion:               HTTPVersion{1, 0},
		ReadBufferSize:               4096,
		WriteBufferSize:              4096,
		MaxRequestsPerConn:           0, // unlimited
		Logger:                       NoopLogger,
	}
}

func (c *Config) logger() Logger {
	if c.Logger == nil {
		return NoopLogger
	}
	return c.Logger
}
