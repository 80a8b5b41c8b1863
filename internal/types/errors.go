package types

import "fmt"

// Code classifies an error. Values are fixed negative numbers, stable
// across releases so they stay recognisable in logs.
type Code int

const (
	CodeGeneric     Code = -1  // Generic
	CodeBadHandle   Code = -2  // BadHandle
	CodeInvalid     Code = -3  // Invalid
	CodeNoStreams   Code = -4  // NoStreams
	CodeBOS         Code = -5  // BOS
	CodeEOS         Code = -6  // EOS
	CodeBadMetric   Code = -7  // BadMetric
	CodeSystem      Code = -10 // System
	CodeDisabled    Code = -11 // Disabled
	CodeNoSeek      Code = -13 // NoSeek
	CodeStopOK      Code = -14 // StopOK
	CodeStopErr     Code = -15 // StopErr
	CodeAgain       Code = -16 // Again
	CodeHoleInData  Code = -17 // HoleInData
	CodeOutOfMemory Code = -18 // OutOfMemory
	CodeBadSerial   Code = -20 // BadSerial
)

var codeText = map[Code]string{
	CodeGeneric:     "generic error",
	CodeBadHandle:   "bad handle",
	CodeInvalid:     "invalid operation",
	CodeNoStreams:   "no streams",
	CodeBOS:         "beginning of stream",
	CodeEOS:         "end of stream",
	CodeBadMetric:   "no metric",
	CodeSystem:      "system error",
	CodeDisabled:    "operation disabled",
	CodeNoSeek:      "source is not seekable",
	CodeStopOK:      "stopped by callback",
	CodeStopErr:     "callback error",
	CodeAgain:       "try again",
	CodeHoleInData:  "hole in data",
	CodeOutOfMemory: "out of memory",
	CodeBadSerial:   "bad serial number",
}

// String returns a short description of the code.
func (c Code) String() string {
	if s, ok := codeText[c]; ok {
		return s
	}
	return fmt.Sprintf("error %d", int(c))
}

// Error is the error type returned by the engine.
//
// Op names the operation that failed ("read", "seek", ...). Serial is set
// when the error concerns one logical stream. Err holds the underlying cause
// for system errors.
type Error struct {
	Code   Code
	Op     string
	Serial uint32
	Stream bool // Serial is meaningful
	Err    error
}

func (e *Error) Error() string {
	msg := e.Code.String()
	if e.Stream {
		msg = fmt.Sprintf("%s (serial %d)", msg, e.Serial)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Warning represents a non-fatal issue encountered while reading.
//
// Warnings are collected on the reader. Examples include:
//   - A hole in the page sequence of a content stream
//   - Bytes skipped to regain page sync
//   - A codec header too short to extract a granule rate
type Warning struct {
	// Stage where the warning occurred
	Stage string // "read", "auto", "seek"

	// Warning message
	Message string

	// Byte offset where the issue occurred (0 if not applicable)
	Offset int64
}

// String returns a human-readable warning message.
func (w Warning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("%s (at offset %d): %s", w.Stage, w.Offset, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Stage, w.Message)
}
