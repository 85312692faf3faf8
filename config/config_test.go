package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Parse([]byte("http:\n  addr: \":8080\"\ngrpc:\n  addr: \":9090\"\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Storage.Driver != DriverMemory {
		t.Fatalf("driver = %q, want memory", cfg.Storage.Driver)
	}
	if cfg.Logging.Service != "call-service" || cfg.Logging.Backend != "std" {
		t.Fatalf("logging defaults not applied: %+v", cfg.Logging)
	}
	if cfg.Redis.Channel != "call-events" {
		t.Fatalf("redis channel = %q", cfg.Redis.Channel)
	}
	if cfg.WS.ReadLimit != 1<<20 {
		t.Fatalf("read limit = %d", cfg.WS.ReadLimit)
	}
	if got := cfg.WS.PingPeriodOr(15 * time.Second); got != 15*time.Second {
		t.Fatalf("ping period = %v", got)
	}
}

func TestParse_Errors(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")

	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"no http", "grpc:\n  addr: \":1\"\n", "http.addr"},
		{"no grpc", "http:\n  addr: \":1\"\n", "grpc.addr"},
		{"bad driver", "http:\n  addr: \":1\"\ngrpc:\n  addr: \":2\"\nstorage:\n  driver: mongo\n", "not supported"},
		{"postgres without dsn", "http:\n  addr: \":1\"\ngrpc:\n  addr: \":2\"\nstorage:\n  driver: postgres\n", "postgres.dsn"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want containing %q", err, tc.want)
			}
		})
	}
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://u:p@localhost/calls")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Parse([]byte("http:\n  addr: \":1\"\ngrpc:\n  addr: \":2\"\nstorage:\n  driver: postgres\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Postgres.DSN != "postgres://u:p@localhost/calls" {
		t.Fatalf("dsn = %q", cfg.Postgres.DSN)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("redis addr = %q", cfg.Redis.Addr)
	}
}

func TestLoadConfig_File(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("REDIS_ADDR", "")

	data, err := os.ReadFile("config.yaml")
	if err != nil {
		t.Fatalf("read sample config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" || cfg.GRPC.Addr != ":9090" {
		t.Fatalf("addrs = %q %q", cfg.HTTP.Addr, cfg.GRPC.Addr)
	}
	if cfg.HTTP.WriteTimeoutOr(time.Second) != 15*time.Second {
		t.Fatalf("write timeout = %v", cfg.HTTP.WriteTimeoutOr(time.Second))
	}
}
