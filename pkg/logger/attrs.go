package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// ensureInstanceID: явное значение, затем INSTANCE_ID, затем hostname с суффиксом.
// Суффикс различает несколько координаторов на одном хосте.
func ensureInstanceID(v string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	if env := strings.TrimSpace(os.Getenv("INSTANCE_ID")); env != "" {
		return env
	}

	hn, err := os.Hostname()
	if err != nil || hn == "" {
		hn = "call"
	}
	return hn + "-" + uuid.NewString()[:8]
}

func commonAttr(cfg Config) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("service", cfg.Service),
		slog.String("env", string(cfg.Env)),
		slog.String("version", cfg.Version),
		slog.String("instance_id", cfg.InstanceID),
	}
	if cfg.Backend == BackendZap {
		attrs = append(attrs, slog.Int("pid", os.Getpid()))
	}
	return attrs
}
