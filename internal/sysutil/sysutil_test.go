package sysutil

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestSetLogLevel(t *testing.T) {
	orig := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(orig) })

	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{" warn ", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tc := range cases {
		SetLogLevel(tc.in)
		if got := zerolog.GlobalLevel(); got != tc.want {
			t.Fatalf("SetLogLevel(%q): global level = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestIsTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", "True", " YES ", "y", "on", "ON"} {
		if !IsTruthy(v) {
			t.Fatalf("IsTruthy(%q) = false, want true", v)
		}
	}
	for _, v := range []string{"", "0", "false", "off", "no", "n", "   ", "enabled"} {
		if IsTruthy(v) {
			t.Fatalf("IsTruthy(%q) = true, want false", v)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty(); got != "" {
		t.Fatalf("FirstNonEmpty() = %q, want empty", got)
	}
	if got := FirstNonEmpty("", "  ", "\t"); got != "" {
		t.Fatalf("all blank: got %q, want empty", got)
	}
	// The winning value keeps its original spacing.
	if got := FirstNonEmpty("", " AC123 ", "fallback"); got != " AC123 " {
		t.Fatalf("got %q, want %q", got, " AC123 ")
	}
	if got := FirstNonEmpty("explicit", "env"); got != "explicit" {
		t.Fatalf("got %q, want %q", got, "explicit")
	}
}
