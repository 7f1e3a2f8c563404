package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("SOMETHING_ELSE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", meta.HTTPStatus)
	}
}

func TestConflictMapsTo409(t *testing.T) {
	if got := MetadataFor(CodeConflict).HTTPStatus; got != http.StatusConflict {
		t.Fatalf("expected 409 got %d", got)
	}
}

func TestAsFindsWrappedError(t *testing.T) {
	base := New(CodeNotFound, "rental not found")
	wrapped := fmt.Errorf("load: %w", base)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodeNotFound {
		t.Fatalf("unexpected code %s", typed.Code())
	}
	if !IsCode(wrapped, CodeNotFound) {
		t.Fatal("expected IsCode to match")
	}
	if IsCode(stdErrors.New("plain"), CodeNotFound) {
		t.Fatal("plain errors carry no code")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stdErrors.New("db down")
	err := Wrap(CodeInternal, cause, "load rental")
	if !stdErrors.Is(err, cause) {
		t.Fatal("expected cause to be reachable")
	}
	if err.Error() != "INTERNAL_ERROR: load rental: db down" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
