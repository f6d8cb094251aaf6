package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("connection reset")
	err := Wrap(ErrTransient, "captions", "list", "watch page", base)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected wrapped error to match ErrTransient: %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to preserve cause: %v", err)
	}
	want := "transient failure: captions: list: watch page: connection reset"
	if err.Error() != want {
		t.Fatalf("unexpected message: got %q want %q", err.Error(), want)
	}
}

func TestWrapNilMarkerDefaultsTransient(t *testing.T) {
	err := Wrap(nil, "audio", "download", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("nil marker should default to ErrTransient: %v", err)
	}
}

func TestWrapEmptyDetail(t *testing.T) {
	err := Wrap(ErrExternalTool, "", "", "", nil)
	if err.Error() != "external tool error: service failure" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestDefinitive(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{Wrap(ErrUnavailable, "captions", "list", "captions disabled", nil), true},
		{fmt.Errorf("outer: %w", ErrUnavailable), true},
		{Wrap(ErrTransient, "captions", "list", "", nil), false},
		{errors.New("plain"), false},
	}
	for _, tc := range cases {
		if got := Definitive(tc.err); got != tc.want {
			t.Errorf("Definitive(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
