package oggseek

import (
	"github.com/simonhull/oggseek/internal/types"
)

// Error is an alias to types.Error. Every error returned by a Reader is an
// *Error, so callers can switch on Code with errors.As, or compare against
// the sentinels below with errors.Is.
type Error = types.Error

// Code is an alias to types.Code.
type Code = types.Code

// Warning is an alias to types.Warning.
type Warning = types.Warning

// Error codes.
const (
	CodeGeneric     = types.CodeGeneric
	CodeBadHandle   = types.CodeBadHandle
	CodeInvalid     = types.CodeInvalid
	CodeNoStreams   = types.CodeNoStreams
	CodeBOS         = types.CodeBOS
	CodeEOS         = types.CodeEOS
	CodeBadMetric   = types.CodeBadMetric
	CodeSystem      = types.CodeSystem
	CodeDisabled    = types.CodeDisabled
	CodeNoSeek      = types.CodeNoSeek
	CodeStopOK      = types.CodeStopOK
	CodeStopErr     = types.CodeStopErr
	CodeAgain       = types.CodeAgain
	CodeHoleInData  = types.CodeHoleInData
	CodeOutOfMemory = types.CodeOutOfMemory
	CodeBadSerial   = types.CodeBadSerial
)

// Sentinels for use with errors.Is. Matching is by code only.
var (
	ErrGeneric    = &Error{Code: CodeGeneric}
	ErrBadHandle  = &Error{Code: CodeBadHandle}
	ErrInvalid    = &Error{Code: CodeInvalid}
	ErrNoStreams  = &Error{Code: CodeNoStreams}
	ErrBOS        = &Error{Code: CodeBOS}
	ErrEOS        = &Error{Code: CodeEOS}
	ErrBadMetric  = &Error{Code: CodeBadMetric}
	ErrSystem     = &Error{Code: CodeSystem}
	ErrDisabled   = &Error{Code: CodeDisabled}
	ErrNoSeek     = &Error{Code: CodeNoSeek}
	ErrStopOK     = &Error{Code: CodeStopOK}
	ErrStopErr    = &Error{Code: CodeStopErr}
	ErrAgain      = &Error{Code: CodeAgain}
	ErrHoleInData = &Error{Code: CodeHoleInData}
	// ErrOutOfMemory is never returned; allocation failure ends the process.
	ErrOutOfMemory = &Error{Code: CodeOutOfMemory}
	ErrBadSerial   = &Error{Code: CodeBadSerial}
)

func newError(code Code, op string) *Error {
	return &Error{Code: code, Op: op}
}

func streamError(code Code, op string, serial uint32) *Error {
	return &Error{Code: code, Op: op, Serial: serial, Stream: true}
}

func systemError(op string, err error) *Error {
	return &Error{Code: CodeSystem, Op: op, Err: err}
}
