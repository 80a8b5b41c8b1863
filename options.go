package oggseek

import "log/slog"

// Option configures a Reader.
//
// Options use the functional options pattern.
//
// Example:
//
//	r, err := oggseek.Open("movie.ogv",
//	    oggseek.WithLogger(slog.Default()),
//	    oggseek.WithSeekTolerance(250),
//	)
type Option func(*options)

// Capability is a set of operations a Reader allows.
type Capability uint8

const (
	// CapRead enables Read and ReadInput.
	CapRead Capability = 1 << iota
	// CapSeek enables the seek family, Duration and DataBeginsHere.
	CapSeek
)

// options holds Reader configuration.
type options struct {
	autoDetect     bool         // Identify codecs and install metrics
	logger         *slog.Logger // Destination for debug and warning logs
	caps           Capability   // Allowed operations
	seekTolerance  int64        // Bisection stops this many units short of the target
	bufferSize     int          // File source buffer (0 = default)
	ignoreWarnings bool         // Don't collect warnings
}

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		autoDetect:    true,
		logger:        slog.New(slog.DiscardHandler),
		caps:          CapRead | CapSeek,
		seekTolerance: 500,
	}
}

// WithAutoDetect enables or disables codec detection.
//
// With detection on (the default), the Reader recognises the codec of each
// new logical stream, installs a millisecond metric from its headers and
// fills in granule positions that pages leave out. Turn it off to see raw
// granule positions only.
func WithAutoDetect(on bool) Option {
	return func(o *options) {
		o.autoDetect = on
	}
}

// WithLogger sets the logger. By default nothing is logged.
//
// New streams, detected codecs and seek landings are logged at Debug;
// holes in content data and resync skips at Warn.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithCapabilities restricts the operations the Reader allows. Operations
// outside the set return ErrDisabled.
//
// Example:
//
//	// A reader over a pipe that must never seek
//	r := oggseek.New(src, oggseek.WithCapabilities(oggseek.CapRead))
func WithCapabilities(c Capability) Option {
	return func(o *options) {
		o.caps = c
	}
}

// WithSeekTolerance sets how close, in units, bisection must get to a seek
// target before switching to a linear scan. Default is 500.
func WithSeekTolerance(units int64) Option {
	return func(o *options) {
		if units >= 0 {
			o.seekTolerance = units
		}
	}
}

// WithBufferSize sets the read buffer of the file source created by Open.
func WithBufferSize(bytes int) Option {
	return func(o *options) {
		o.bufferSize = bytes
	}
}

// WithIgnoreWarnings suppresses warnings.
//
// By default, non-fatal issues (holes in content data, resync skips,
// unreadable headers) are collected and returned by Warnings.
func WithIgnoreWarnings() Option {
	return func(o *options) {
		o.ignoreWarnings = true
	}
}
