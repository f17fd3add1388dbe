package log

import "context"

// Logger is the structured logger used across the module.
// Every method takes the request or session context first so that fields
// attached with WithFields travel with it.
type Logger interface {
	Debug(ctx context.Context, arg ...any)
	Debugf(ctx context.Context, template string, arg ...any)
	Info(ctx context.Context, arg ...any)
	Infof(ctx context.Context, template string, arg ...any)
	Warn(ctx context.Context, arg ...any)
	Warnf(ctx context.Context, template string, arg ...any)
	Error(ctx context.Context, arg ...any)
	Errorf(ctx context.Context, template string, arg ...any)
	Fatal(ctx context.Context, arg ...any)
	Fatalf(ctx context.Context, template string, arg ...any)

	// WithFields returns a child context whose log lines carry the given
	// key/value pairs, e.g. WithFields(ctx, "channel", "gold_price").
	WithFields(ctx context.Context, keysAndValues ...any) context.Context
}

// Init builds a zap-backed Logger from cfg.
func Init(cfg ZapConfig) Logger {
	l := &zapLogger{cfg: cfg}
	l.init()
	return l
}

// NewNop returns a Logger that discards everything.
func NewNop() Logger {
	return newNop()
}
