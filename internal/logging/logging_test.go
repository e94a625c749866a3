package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestAnnotator(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	a := &Annotator{Out: &out, Err: &errOut}

	a.Notice("3 new contributors")
	a.Warning("quiet period\nno items")
	a.Error("cmd/generate-report/main.go", "rate limit exceeded")
	a.Error("", "boom 100%")

	if got, want := out.String(), "::notice::3 new contributors\n::warning::quiet period%0Ano items\n"; got != want {
		t.Fatalf("stdout = %q, want %q", got, want)
	}
	if got, want := errOut.String(), "::error file=cmd/generate-report/main.go::rate limit exceeded\n::error::boom 100%25\n"; got != want {
		t.Fatalf("stderr = %q, want %q", got, want)
	}
}

func TestSetLogLevel(t *testing.T) {
	if err := SetLogLevel("debug"); err != nil {
		t.Fatalf("SetLogLevel(debug) unexpected error: %v", err)
	}
	if Log.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %s, want debug", Log.GetLevel())
	}
	if err := SetLogLevel("verbose"); err == nil {
		t.Fatalf("SetLogLevel(verbose) expected error")
	}
	if err := SetLogLevel("info"); err != nil {
		t.Fatalf("SetLogLevel(info) unexpected error: %v", err)
	}
}
