package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.APISecure {
		t.Fatalf("api_secure should default to true")
	}
	if cfg.APIHost != "api.steampowered.com" {
		t.Fatalf("api_host = %q", cfg.APIHost)
	}
	if cfg.PollInterval != 300*time.Second {
		t.Fatalf("poll interval = %v", cfg.PollInterval)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Fatalf("http timeout = %v", cfg.HTTPTimeout)
	}
	if cfg.StorageTTL != 24*time.Hour || cfg.StorageCleanupInterval != 6*time.Hour {
		t.Fatalf("storage durations = %v / %v", cfg.StorageTTL, cfg.StorageCleanupInterval)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("API_KEY", "0123456789ABCDEF0123456789ABCDEF")
	t.Setenv("API_SECURE", "false")
	t.Setenv("POLL_INTERVAL", "60")

	cfg, err := Load(nil, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "0123456789ABCDEF0123456789ABCDEF" {
		t.Fatalf("api_key = %q", cfg.APIKey)
	}
	if cfg.APISecure {
		t.Fatalf("api_secure should be false")
	}
	if cfg.PollInterval != time.Minute {
		t.Fatalf("poll interval = %v", cfg.PollInterval)
	}
}

func TestLoadRejectsNonPositiveInterval(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "0")
	if _, err := Load(nil, nil); err == nil {
		t.Fatalf("expected error for zero poll interval")
	}
}

func TestLoadFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("API_HOST", "env.example")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("host", "", "")
	flags.Bool("insecure", false, "")
	if err := flags.Parse([]string{"--host", "flag.example"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg, err := Load(flags, FlagKeys{"host": "api_host"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIHost != "flag.example" {
		t.Fatalf("api_host = %q", cfg.APIHost)
	}

	if _, err := Load(flags, FlagKeys{"missing": "api_host"}); err == nil {
		t.Fatalf("expected error for unknown flag")
	}
}

func TestStringHidesKey(t *testing.T) {
	cfg := Config{APIKey: "0123456789ABCDEF0123456789ABCDEF"}
	if s := cfg.String(); strings.Contains(s, cfg.APIKey) || !strings.Contains(s, "SECRET") {
		t.Fatalf("String leaked key: %s", s)
	}
}
