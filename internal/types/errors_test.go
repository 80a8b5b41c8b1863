package types

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestError_Is(t *testing.T) {
	sentinel := &Error{Code: CodeHoleInData}
	err := &Error{Code: CodeHoleInData, Op: "read", Serial: 42, Stream: true}

	if !errors.Is(err, sentinel) {
		t.Error("errors.Is() should match on code")
	}
	if errors.Is(err, &Error{Code: CodeSystem}) {
		t.Error("errors.Is() matched a different code")
	}
}

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want []string
	}{
		{"plain", &Error{Code: CodeInvalid}, []string{"invalid operation"}},
		{"op", &Error{Code: CodeDisabled, Op: "seek"}, []string{"seek: ", "disabled"}},
		{"serial", &Error{Code: CodeBadSerial, Serial: 7, Stream: true}, []string{"serial 7"}},
		{"cause", &Error{Code: CodeSystem, Op: "read", Err: io.ErrUnexpectedEOF}, []string{"read: system error", "unexpected EOF"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.want {
				if !strings.Contains(msg, want) {
					t.Errorf("Error() = %q, missing %q", msg, want)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	err := &Error{Code: CodeSystem, Err: io.ErrClosedPipe}
	if !errors.Is(err, io.ErrClosedPipe) {
		t.Error("cause not reachable through errors.Is")
	}
}

func TestWarning_String(t *testing.T) {
	w := Warning{Stage: "read", Message: "hole in data", Offset: 4096}
	if got := w.String(); got != "read (at offset 4096): hole in data" {
		t.Errorf("String() = %q", got)
	}
	w.Offset = 0
	if got := w.String(); got != "read: hole in data" {
		t.Errorf("String() = %q", got)
	}
}

func TestContent_String(t *testing.T) {
	if ContentVorbis.String() != "Vorbis" || ContentUnknown.String() != "Unknown" {
		t.Error("unexpected content names")
	}
	if Content(99).String() != "Unknown" {
		t.Error("out of range content should be Unknown")
	}
	if ContentUnknown.Known() || !ContentOpus.Known() {
		t.Error("Known() wrong")
	}
}
