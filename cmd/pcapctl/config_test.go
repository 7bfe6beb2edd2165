package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danmuck/pcapctl/internal/protocol/control"
	"github.com/danmuck/pcapctl/internal/protocol/frame"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pcapctl.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadRunConfigDefaultsWithoutFile(t *testing.T) {
	cfg, err := loadRunConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Session.SocketPath != control.DefaultSocketPath {
		t.Fatalf("unexpected socket path: %q", cfg.Session.SocketPath)
	}
	if cfg.Session.ClientVersion != control.DefaultClientVersion {
		t.Fatalf("unexpected version: %q", cfg.Session.ClientVersion)
	}
	if cfg.Session.Limits.MaxRequestBytes != frame.DefaultMaxRequestBytes {
		t.Fatalf("unexpected request limit: %d", cfg.Session.Limits.MaxRequestBytes)
	}
	if cfg.Session.Strict || cfg.Probe || cfg.FailOnSubmitError {
		t.Fatalf("expected lenient defaults: %+v", cfg)
	}
}

func TestLoadRunConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
socket_path = "/run/suricata/suricata-command.socket"
client_version = "0.2"
strict = true
probe = true
fail_on_submit_error = true
read_timeout = "2s"
connect_timeout = "250ms"
max_request_bytes = 4096
max_reply_bytes = 8192
max_line_bytes = 1024
max_entries = 10
`)
	cfg, err := loadRunConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Session.SocketPath != "/run/suricata/suricata-command.socket" {
		t.Fatalf("unexpected socket path: %q", cfg.Session.SocketPath)
	}
	if cfg.Session.ClientVersion != "0.2" {
		t.Fatalf("unexpected version: %q", cfg.Session.ClientVersion)
	}
	if !cfg.Session.Strict || !cfg.Probe || !cfg.FailOnSubmitError {
		t.Fatalf("expected flags enabled: %+v", cfg)
	}
	if cfg.Session.ReadTimeout != 2*time.Second {
		t.Fatalf("unexpected read timeout: %v", cfg.Session.ReadTimeout)
	}
	if cfg.Session.ConnectTimeout != 250*time.Millisecond {
		t.Fatalf("unexpected connect timeout: %v", cfg.Session.ConnectTimeout)
	}
	if cfg.Session.WriteTimeout != control.DefaultConfig().WriteTimeout {
		t.Fatalf("expected default write timeout, got %v", cfg.Session.WriteTimeout)
	}
	if cfg.Session.Limits.MaxRequestBytes != 4096 || cfg.Session.Limits.MaxReplyBytes != 8192 {
		t.Fatalf("unexpected limits: %+v", cfg.Session.Limits)
	}
	if cfg.Parse.MaxLineBytes != 1024 || cfg.Parse.MaxEntries != 10 {
		t.Fatalf("unexpected parse options: %+v", cfg.Parse)
	}
}

func TestLoadRunConfigBadDuration(t *testing.T) {
	path := writeConfig(t, `read_timeout = "abc"`)
	if _, err := loadRunConfig(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadRunConfigNonPositiveDuration(t *testing.T) {
	path := writeConfig(t, `write_timeout = "0s"`)
	if _, err := loadRunConfig(path); err == nil {
		t.Fatalf("expected error for zero duration")
	}
}

func TestLoadRunConfigUnknownKey(t *testing.T) {
	path := writeConfig(t, `sokcet_path = "/tmp/x"`)
	if _, err := loadRunConfig(path); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestLoadRunConfigMissingFile(t *testing.T) {
	if _, err := loadRunConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("expected load error")
	}
}
