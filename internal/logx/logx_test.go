package logx

import (
	"bytes"
	"context"
	"log"
	"os"
	"strings"
	"testing"

	"pkt.systems/pslog"
)

func TestVerbosity(t *testing.T) {
	tests := []struct {
		name    string
		verbose int
		quiet   int
		want    int
	}{
		{name: "default", want: 2},
		{name: "verbose", verbose: 1, want: 3},
		{name: "very-verbose", verbose: 3, want: 5},
		{name: "quiet", quiet: 1, want: 1},
		{name: "silent", quiet: 2, want: 0},
		{name: "saturates", quiet: 5, want: 0},
		{name: "mixed", verbose: 2, quiet: 1, want: 3},
	}
	for _, tc := range tests {
		if got := Verbosity(tc.verbose, tc.quiet); got != tc.want {
			t.Fatalf("%s: Verbosity(%d, %d) = %d, want %d", tc.name, tc.verbose, tc.quiet, got, tc.want)
		}
	}
}

func TestOptionsLevels(t *testing.T) {
	if off, on := Options(0); on || off.MinLevel != pslog.Disabled {
		t.Fatalf("expected logging disabled at verbosity 0, got %+v", off)
	}
	tests := []struct {
		verbosity int
		want      pslog.Options
	}{
		{verbosity: 1, want: pslog.Options{Mode: pslog.ModeConsole, MinLevel: pslog.ErrorLevel}},
		{verbosity: 2, want: pslog.Options{Mode: pslog.ModeConsole, MinLevel: pslog.WarnLevel}},
		{verbosity: 3, want: pslog.Options{Mode: pslog.ModeConsole, MinLevel: pslog.InfoLevel}},
		{verbosity: 4, want: pslog.Options{Mode: pslog.ModeConsole, MinLevel: pslog.DebugLevel}},
		{verbosity: 9, want: pslog.Options{Mode: pslog.ModeConsole, MinLevel: pslog.TraceLevel}},
	}
	for _, tc := range tests {
		got, on := Options(tc.verbosity)
		if !on {
			t.Fatalf("verbosity %d: expected logging on", tc.verbosity)
		}
		if got.MinLevel != tc.want.MinLevel || got.Mode != tc.want.Mode {
			t.Fatalf("verbosity %d: unexpected options %+v", tc.verbosity, got)
		}
	}
}

func TestNewSilentDiscards(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, 0)
	logger.Error("should not appear")
	logger.Warn("nor this")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestNewFiltersBelowWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, DefaultVerbosity)
	logger.Info("hidden info")
	logger.Warn("shown warning")
	out := buf.String()
	if strings.Contains(out, "hidden info") {
		t.Fatalf("expected info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "shown warning") {
		t.Fatalf("expected warning in output, got %q", out)
	}
}

func TestSetupRoutesStdLogOnlyWithDebug(t *testing.T) {
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(log.LstdFlags)
	})

	var quiet bytes.Buffer
	ctx := Setup(context.Background(), &quiet, 5, false)
	log.Print("third-party noise")
	if quiet.Len() != 0 {
		t.Fatalf("expected std log discarded without debug, got %q", quiet.String())
	}
	Ctx(ctx).Info("own message")
	if !strings.Contains(quiet.String(), "own message") {
		t.Fatalf("expected context logger output, got %q", quiet.String())
	}

	var loud bytes.Buffer
	Setup(context.Background(), &loud, 5, true)
	log.Print("third-party detail")
	if !strings.Contains(loud.String(), "third-party detail") {
		t.Fatalf("expected std log routed with debug, got %q", loud.String())
	}
}
