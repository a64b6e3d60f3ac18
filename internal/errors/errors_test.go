package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewUsesRegistry(t *testing.T) {
	err := New("S002")
	if err.Category != CategoryConfig {
		t.Errorf("expected category config, got %s", err.Category)
	}
	if err.Message != "Invalid configuration" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if err.Suggestion == "" {
		t.Error("expected suggestion from registry")
	}
}

func TestNewUnknownCode(t *testing.T) {
	err := New("S999")
	if err.Message != "Unknown error" {
		t.Errorf("expected Unknown error, got %q", err.Message)
	}
	if Registered("S999") {
		t.Error("S999 should not be registered")
	}
}

func TestErrorString(t *testing.T) {
	cause := fmt.Errorf("disk on fire")
	err := New("S001").WithDetail("site.json").Wrap(cause)

	got := err.Error()
	for _, want := range []string{"S001", "Cannot read configuration file", "site.json", "disk on fire"} {
		if !strings.Contains(got, want) {
			t.Errorf("Error() = %q, missing %q", got, want)
		}
	}
}

func TestUnwrapAndIs(t *testing.T) {
	cause := stderrors.New("boom")
	err := fmt.Errorf("outer: %w", New("S021").Wrap(cause))

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}
	if !stderrors.Is(err, New("S021")) {
		t.Error("errors.Is should match on code")
	}
	if stderrors.Is(err, New("S020")) {
		t.Error("errors.Is should not match a different code")
	}
	if CodeOf(err) != "S021" {
		t.Errorf("CodeOf = %q", CodeOf(err))
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "S001") != nil {
		t.Fatal("FromError(nil) should be nil")
	}

	orig := New("S010")
	if got := FromError(fmt.Errorf("wrapped: %w", orig), "S001"); got != orig {
		t.Error("FromError should return the existing SiteError")
	}

	plain := stderrors.New("plain")
	got := FromError(plain, "S030")
	if got.Code != "S030" || got.Wrapped != plain {
		t.Errorf("FromError = %+v", got)
	}
}

func TestFormatWithoutColors(t *testing.T) {
	SetColor(false)
	defer SetColor(true)

	err := New("S020").WithDetail(`backend "ftp"`)
	out := err.Format()

	if strings.Contains(out, "\033[") {
		t.Error("Format should not contain ANSI codes when colors are disabled")
	}
	for _, want := range []string{"ERROR S020:", `backend "ftp"`, "Hint:"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
}

func TestFormatCompactAndJSON(t *testing.T) {
	err := New("S002").WithDetailf("server.port %d out of range", 0)

	if got := err.FormatCompact(); got != "S002: Invalid configuration (server.port 0 out of range)" {
		t.Errorf("FormatCompact() = %q", got)
	}

	js := err.FormatJSON()
	if !strings.Contains(js, `"code":"S002"`) || !strings.Contains(js, `"category":"config"`) {
		t.Errorf("FormatJSON() = %s", js)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six", 9)
	for _, line := range lines {
		if len(line) > 9 {
			t.Errorf("line %q longer than width", line)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six" {
		t.Errorf("wrapText lost words: %v", lines)
	}
}
