package config

import (
	"math"
	"time"
)

type (
	NET struct {
		// ReadBufferSize is a size of buffer in bytes which will be used to read from
		// the socket.
		ReadBufferSize int
		// HeaderReadTimeout bounds how long a connection may take to deliver the head
		// of its next request. A connection exceeding it is closed, with a timeout
		// response rendered when the transport is still writable.
		HeaderReadTimeout time.Duration
		// KeepAlive is the maximal lifetime of an idle connection between two
		// requests. Zero disables keep-alive: the connection is closed right after
		// the first response.
		KeepAlive time.Duration
		// GracefulDisconnectTimeout bounds how long a half-closed connection is kept
		// around to flush the remaining response data.
		GracefulDisconnectTimeout time.Duration
		// AcceptLoopInterruptPeriod controls how often the Accept() call is
		// interrupted in order to check whether it's time to stop.
		AcceptLoopInterruptPeriod time.Duration
	}

	Body struct {
		// MaxSize limits the size of a body that can be processed. 0 discards any
		// request carrying a body. In order to disable the limit, use math.MaxUint64.
		MaxSize uint64
		// BufferPrealloc is the initial length of a buffer storing a whole request
		// body, if its length isn't known in advance (e.g. chunked transfer encoding).
		BufferPrealloc uint64
	}

	Headers struct {
		// Prealloc is the number of seats in the headers storage allocated in advance.
		Prealloc int
		// Default headers are included into every response implicitly, unless
		// explicitly overridden.
		Default map[string]string
	}
)

// Config holds settings used across the dispatch pipeline, mainly restrictions,
// limitations and pre-allocations.
type Config struct {
	NET     NET
	Body    Body
	Headers Headers
}

// Default returns an initially well-balanced configuration.
func Default() *Config {
	return &Config{
		NET: NET{
			ReadBufferSize:            4 * 1024,
			HeaderReadTimeout:         90 * time.Second,
			KeepAlive:                 90 * time.Second,
			GracefulDisconnectTimeout: 5 * time.Second,
			AcceptLoopInterruptPeriod: 5 * time.Second,
		},
		Body: Body{
			MaxSize:        512 * 1024 * 1024, // 512 megabytes
			BufferPrealloc: 1024,
		},
		Headers: Headers{
			Prealloc: 10,
			Default:  make(map[string]string),
		},
	}
}

// Fill replaces zero values of the config with defaults.
func Fill(partial *Config) *Config {
	defaults := Default()

	fill(&partial.NET.ReadBufferSize, defaults.NET.ReadBufferSize)
	fill(&partial.NET.HeaderReadTimeout, defaults.NET.HeaderReadTimeout)
	fill(&partial.NET.KeepAlive, defaults.NET.KeepAlive)
	fill(&partial.NET.GracefulDisconnectTimeout, defaults.NET.GracefulDisconnectTimeout)
	fill(&partial.NET.AcceptLoopInterruptPeriod, defaults.NET.AcceptLoopInterruptPeriod)
	fill(&partial.Body.MaxSize, defaults.Body.MaxSize)
	fill(&partial.Body.BufferPrealloc, defaults.Body.BufferPrealloc)
	fill(&partial.Headers.Prealloc, defaults.Headers.Prealloc)
	if partial.Headers.Default == nil {
		partial.Headers.Default = defaults.Headers.Default
	}

	return partial
}

// Unlimited is a handy alias for the body size limit knob.
const Unlimited = uint64(math.MaxUint64)

func fill[T comparable](target *T, value T) {
	var zero T
	if *target == zero {
		*target = value
	}
}
