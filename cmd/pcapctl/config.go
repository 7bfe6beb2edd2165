package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/pcapctl/internal/replay"
)

type fileConfig struct {
	SocketPath        string `toml:"socket_path"`
	ClientVersion     string `toml:"client_version"`
	Strict            bool   `toml:"strict"`
	Probe             bool   `toml:"probe"`
	FailOnSubmitError bool   `toml:"fail_on_submit_error"`
	ConnectTimeout    string `toml:"connect_timeout"`
	HandshakeTimeout  string `toml:"handshake_timeout"`
	ReadTimeout       string `toml:"read_timeout"`
	WriteTimeout      string `toml:"write_timeout"`
	MaxRequestBytes   int    `toml:"max_request_bytes"`
	MaxReplyBytes     int    `toml:"max_reply_bytes"`
	MaxLineBytes      int    `toml:"max_line_bytes"`
	MaxEntries        int    `toml:"max_entries"`
}

func loadRunConfig(path string) (replay.Config, error) {
	cfg := replay.DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return replay.Config{}, fmt.Errorf("load pcapctl config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return replay.Config{}, fmt.Errorf("load pcapctl config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("socket_path") {
		cfg.Session.SocketPath = strings.TrimSpace(raw.SocketPath)
	}
	if meta.IsDefined("client_version") {
		cfg.Session.ClientVersion = strings.TrimSpace(raw.ClientVersion)
	}
	if meta.IsDefined("strict") {
		cfg.Session.Strict = raw.Strict
	}
	if meta.IsDefined("probe") {
		cfg.Probe = raw.Probe
	}
	if meta.IsDefined("fail_on_submit_error") {
		cfg.FailOnSubmitError = raw.FailOnSubmitError
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"connect_timeout", raw.ConnectTimeout, &cfg.Session.ConnectTimeout},
		{"handshake_timeout", raw.HandshakeTimeout, &cfg.Session.HandshakeTimeout},
		{"read_timeout", raw.ReadTimeout, &cfg.Session.ReadTimeout},
		{"write_timeout", raw.WriteTimeout, &cfg.Session.WriteTimeout},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return replay.Config{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		if v <= 0 {
			return replay.Config{}, fmt.Errorf("parse %s: must be positive", d.key)
		}
		*d.dst = v
	}

	if meta.IsDefined("max_request_bytes") {
		cfg.Session.Limits.MaxRequestBytes = raw.MaxRequestBytes
	}
	if meta.IsDefined("max_reply_bytes") {
		cfg.Session.Limits.MaxReplyBytes = raw.MaxReplyBytes
	}
	if meta.IsDefined("max_line_bytes") {
		cfg.Parse.MaxLineBytes = raw.MaxLineBytes
	}
	if meta.IsDefined("max_entries") {
		cfg.Parse.MaxEntries = raw.MaxEntries
	}
	return cfg, nil
}
