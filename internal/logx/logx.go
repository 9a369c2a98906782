// Package logx configures the oci-run logger from command-line verbosity.
package logx

import (
	"context"
	"io"
	"log"

	"pkt.systems/pslog"
)

// DefaultVerbosity shows warnings and above.
const DefaultVerbosity = 2

// Verbosity combines repeated -v and -q flags into a level index.
func Verbosity(verbose, quiet int) int {
	v := DefaultVerbosity + max(verbose, 0) - max(quiet, 0)
	return max(v, 0)
}

// Options returns the logger options for a verbosity and whether logging is on.
func Options(verbosity int) (pslog.Options, bool) {
	opts := pslog.Options{Mode: pslog.ModeConsole}
	switch {
	case verbosity <= 0:
		opts.MinLevel = pslog.Disabled
		return opts, false
	case verbosity == 1:
		opts.MinLevel = pslog.ErrorLevel
	case verbosity == 2:
		opts.MinLevel = pslog.WarnLevel
	case verbosity == 3:
		opts.MinLevel = pslog.InfoLevel
	case verbosity == 4:
		opts.MinLevel = pslog.DebugLevel
	default:
		opts.MinLevel = pslog.TraceLevel
	}
	return opts, true
}

// New builds a logger writing to w at the given verbosity.
func New(w io.Writer, verbosity int) pslog.Logger {
	opts, _ := Options(verbosity)
	return pslog.NewWithOptions(w, opts)
}

// Setup attaches a logger to ctx. With debug set, output from the standard
// log package (used by third-party code) is routed through the logger;
// otherwise it is discarded.
func Setup(ctx context.Context, w io.Writer, verbosity int, debug bool) context.Context {
	logger := New(w, verbosity)
	if debug {
		log.SetOutput(pslog.LogLogger(logger).Writer())
	} else {
		log.SetOutput(io.Discard)
	}
	log.SetFlags(0)
	return pslog.ContextWithLogger(ctx, logger)
}

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}
