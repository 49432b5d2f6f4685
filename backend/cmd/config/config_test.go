package config

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLoad_Defaults(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)

	cfg, err := Load(fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIListenAddr != ":8080" || cfg.WSListenAddr != ":8888" {
		t.Fatalf("listen addrs: %#v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level: got %q want \"debug\"", cfg.LogLevel)
	}
	if cfg.JWTSecret != "" {
		t.Fatalf("jwt secret default: got %q want empty", cfg.JWTSecret)
	}
}

func TestLoad_FlagsOverrideDefaults(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("log-level", "debug", "")
	if err := fs.Parse([]string{"--log-level=error"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg, err := Load(fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Fatalf("log level: got %q want \"error\"", cfg.LogLevel)
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("VIORA_WS_LISTEN_ADDR", ":9999")
	t.Setenv("VIORA_JWT_SECRET", "s3cret")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg, err := Load(fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WSListenAddr != ":9999" {
		t.Fatalf("ws listen addr: got %q want \":9999\"", cfg.WSListenAddr)
	}
	if cfg.JWTSecret != "s3cret" {
		t.Fatalf("jwt secret: got %q want \"s3cret\"", cfg.JWTSecret)
	}
}
