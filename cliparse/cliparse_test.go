// cliparse/cliparse_test.go
package cliparse

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestParseFlags_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3318 {
		t.Errorf("expected default port 3318, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected default database type sqlite, got %q", cfg.DatabaseType)
	}
	if cfg.StreamBuffer != 16 || cfg.StreamWriteTimeout != 5*time.Second || cfg.StreamKeepAlive != 15*time.Second {
		t.Errorf("unexpected stream defaults: %+v", cfg)
	}
}

func TestParseFlags_EnvVars(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("STREAM_KEEPALIVE", "0s")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected postgres, got %q", cfg.DatabaseType)
	}
	if cfg.StreamKeepAlive != 0 {
		t.Errorf("expected keep-alive disabled, got %v", cfg.StreamKeepAlive)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "postgres://db", "-t", "postgres", "-jwt-secret", "s1", "-stream-buffer", "4"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://db" || cfg.JWTSecret != "s1" || cfg.StreamBuffer != 4 {
		t.Errorf("flags not applied: %+v", cfg)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"missing database url", map[string]string{"JWT_SECRET": "s"}, nil},
		{"missing jwt secret", map[string]string{"DATABASE_URL": "file:x.db"}, nil},
		{"invalid port env", map[string]string{"DATABASE_URL": "file:x.db", "JWT_SECRET": "s", "PORT": "abc"}, nil},
		{"port out of range", map[string]string{"DATABASE_URL": "file:x.db", "JWT_SECRET": "s"}, []string{"-p", "70000"}},
		{"unknown database type", map[string]string{"DATABASE_URL": "file:x.db", "JWT_SECRET": "s"}, []string{"-t", "mysql"}},
		{"zero stream buffer", map[string]string{"DATABASE_URL": "file:x.db", "JWT_SECRET": "s"}, []string{"-stream-buffer", "0"}},
		{"unknown flag", map[string]string{"DATABASE_URL": "file:x.db", "JWT_SECRET": "s"}, []string{"-nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			t.Setenv("JWT_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}
