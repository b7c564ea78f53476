package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := Config("Config is not provided.")
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected config error to match ErrConfig")
	}
	if errors.Is(err, ErrFetch) {
		t.Fatalf("config error must not match ErrFetch")
	}
	wrapped := fmt.Errorf("outer: %w", err)
	if !errors.Is(wrapped, ErrConfig) {
		t.Fatalf("expected wrapped error to match ErrConfig")
	}
	if KindOf(wrapped) != KindConfig {
		t.Fatalf("expected KindConfig, got %v", KindOf(wrapped))
	}
}

func TestUnsupportedMethod_PreservesCase(t *testing.T) {
	err := UnsupportedMethod("DeLeTe")
	if err.Error() != "Unsupported method: DeLeTe" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestNotANumber_Message(t *testing.T) {
	err := NotANumber("Jack")
	want := "Only numerical output is supported. 'Jack' is not a number."
	if err.Error() != want {
		t.Fatalf("got %q want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrNumericType) {
		t.Fatalf("expected numeric kind")
	}
}

func TestFetch_Messages(t *testing.T) {
	cause := errors.New("Request failed with status code 404")
	err := Fetch("https://api.example.com/data", cause)
	want := "Failed fetching the file: https://api.example.com/data. Request failed with status code 404"
	if err.Error() != want {
		t.Fatalf("got %q want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be unwrappable")
	}

	noMsg := Fetch("http://x", nil)
	if noMsg.Error() != "Failed fetching the file: http://x. Unknown error occurred." {
		t.Fatalf("unexpected message: %q", noMsg.Error())
	}
	if noMsg.Kind != KindFetch {
		t.Fatalf("expected fetch kind")
	}
}

func TestPassthrough(t *testing.T) {
	if !Passthrough(UnsupportedMethod("DELETE")) {
		t.Fatalf("unsupported method must pass through")
	}
	if Passthrough(errors.New("dial tcp: refused")) {
		t.Fatalf("plain errors must be wrapped")
	}
}
