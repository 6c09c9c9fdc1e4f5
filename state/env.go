// Package state carries per run environment of mjmlc commands (configuration,
// logger, debug report and command line switches) through context.
package state

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"mjmlc/config"
)

type envKey struct{}

// LocalEnv is prepared by cmd/mjmlc before any command runs and is shared by
// all documents of the run.
type LocalEnv struct {
	Cfg *config.Config
	// Rpt is nil unless --debug was requested, its methods accept nil.
	Rpt *config.Report
	Log *zap.Logger

	// NoDirs flattens output, source directories are not recreated.
	NoDirs bool
	// Overwrite allows replacing existing HTML outputs.
	Overwrite bool
	// CodePage decodes non UTF-8 entry names of source archives, nil keeps
	// names as stored.
	CodePage encoding.Encoding

	start         time.Time
	restoreStdLog func()
}

// EnvFromContext returns environment installed by ContextWithEnv.
func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

// ContextWithEnv installs empty environment, uptime is counted from now.
func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &LocalEnv{start: time.Now()})
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// RedirectStdLog sends output of standard library log (used by some
// dependencies) to program logger.
func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
		e.restoreStdLog = nil
	}
}
