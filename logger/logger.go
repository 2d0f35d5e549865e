package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Logger is a thin key/value wrapper around zap's sugared logger.
type Logger struct {
	sugar *zap.SugaredLogger
}

// New builds a logger for the given mode. "prod"/"production" emits JSON at
// info level, anything else uses zap's development console encoder.
func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{sugar: z.Sugar()}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// FromZap wraps an existing zap logger.
func FromZap(z *zap.Logger) *Logger {
	return &Logger{sugar: z.Sugar()}
}

func (l *Logger) Sync() {
	if l == nil {
		return
	}
	_ = l.sugar.Sync()
}

func (l *Logger) Debug(msg string, kv ...interface{}) {
	if l == nil {
		return
	}
	l.sugar.Debugw(msg, sanitize(kv)...)
}

func (l *Logger) Info(msg string, kv ...interface{}) {
	if l == nil {
		return
	}
	l.sugar.Infow(msg, sanitize(kv)...)
}

func (l *Logger) Warn(msg string, kv ...interface{}) {
	if l == nil {
		return
	}
	l.sugar.Warnw(msg, sanitize(kv)...)
}

func (l *Logger) Error(msg string, kv ...interface{}) {
	if l == nil {
		return
	}
	l.sugar.Errorw(msg, sanitize(kv)...)
}

func (l *Logger) Fatal(msg string, kv ...interface{}) {
	l.sugar.Fatalw(msg, sanitize(kv)...)
}

// With returns a child logger carrying the given fields on every entry.
func (l *Logger) With(kv ...interface{}) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{sugar: l.sugar.With(sanitize(kv)...)}
}

// sanitize masks values whose key looks like a credential or contact detail.
func sanitize(kv []interface{}) []interface{} {
	if len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key, _ := kv[i].(string)
		if redacted(strings.ToLower(key)) {
			out = append(out, kv[i], "[REDACTED]")
			continue
		}
		out = append(out, kv[i], kv[i+1])
	}
	return out
}

func redacted(key string) bool {
	for _, s := range []string{"token", "password", "secret", "authorization", "email"} {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}
