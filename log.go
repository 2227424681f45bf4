package privatesend

import (
	"github.com/dashpay/privatesend/build"
	"github.com/dashpay/privatesend/keyscratch"
	"github.com/dashpay/privatesend/manager"
	"github.com/dashpay/privatesend/orchestrator"
	"github.com/dashpay/privatesend/planner"
	"github.com/dashpay/privatesend/pool"
	"github.com/dashpay/privatesend/queue"
	"github.com/dashpay/privatesend/session"
	"github.com/dashpay/privatesend/txbuilder"
	"github.com/decred/slog"
)

// AddSubLogger creates and registers the logger of one or more subsystems
// (mirrors the teacher's AddSubLogger helper).
func AddSubLogger(root *build.RotatingLogWriter, subsystem string, useLoggers ...func(slog.Logger)) {
	logger := build.NewSubLogger(subsystem, root.GenSubLogger)
	SetSubLogger(root, subsystem, logger, useLoggers...)
}

// SetSubLogger registers logger under subsystem and applies it to every
// useLoggers setter.
func SetSubLogger(root *build.RotatingLogWriter, subsystem string, logger slog.Logger, useLoggers ...func(slog.Logger)) {
	root.RegisterSubLogger(subsystem, logger)
	for _, useLogger := range useLoggers {
		useLogger(logger)
	}
}

// SetupLoggers wires every package-level logger in this module to root.
func SetupLoggers(root *build.RotatingLogWriter) {
	AddSubLogger(root, "DENM", planner.UseLogger)
	AddSubLogger(root, "TXBL", txbuilder.UseLogger)
	AddSubLogger(root, "KSCR", keyscratch.UseLogger)
	AddSubLogger(root, "SESN", session.UseLogger)
	AddSubLogger(root, "ORCH", orchestrator.UseLogger)
	AddSubLogger(root, "POOL", pool.UseLogger)
	AddSubLogger(root, "DSQL", queue.UseLogger)
	AddSubLogger(root, "MGR", manager.UseLogger)
}
