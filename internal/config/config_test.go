package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/safetrade/site/internal/errors"
	"github.com/safetrade/site/internal/inbox"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewDefaults(t *testing.T) {
	cfg := New()

	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Addr() != "localhost:8080" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
	if cfg.Contact.SubmitDelay.Std() != 1500*time.Millisecond {
		t.Errorf("SubmitDelay = %v", cfg.Contact.SubmitDelay)
	}
	if cfg.Contact.SuccessDisplay.Std() != 5*time.Second {
		t.Errorf("SuccessDisplay = %v", cfg.Contact.SuccessDisplay)
	}
	if cfg.Contact.Backend != inbox.BackendSimulated {
		t.Errorf("Backend = %q", cfg.Contact.Backend)
	}
	if cfg.Site.DefaultLocale != "en-US" {
		t.Errorf("DefaultLocale = %q", cfg.Site.DefaultLocale)
	}
	if cfg.Log.Format != "json" || cfg.Log.Level != "info" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestDevDefaults(t *testing.T) {
	cfg := &Config{Dev: true}
	cfg.applyDefaults()
	if cfg.Log.Format != "text" || cfg.Log.Level != "debug" {
		t.Errorf("dev Log = %+v", cfg.Log)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `{
		"server": {"port": 9000, "readTimeout": "3s"},
		"contact": {"submitDelay": 250, "successDisplay": "2s", "backend": "memory"},
		"rateLimit": {"rps": 2, "burst": 1}
	}`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout.Std() != 3*time.Second {
		t.Errorf("ReadTimeout = %v", cfg.Server.ReadTimeout)
	}
	if cfg.Contact.SubmitDelay.Std() != 250*time.Millisecond {
		t.Errorf("SubmitDelay = %v, want 250ms from a bare number", cfg.Contact.SubmitDelay)
	}
	if cfg.Contact.SuccessDisplay.Std() != 2*time.Second {
		t.Errorf("SuccessDisplay = %v", cfg.Contact.SuccessDisplay)
	}
	if cfg.Server.WriteTimeout == 0 {
		t.Error("unset fields should receive defaults")
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q", cfg.Path())
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != DefaultPort {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	if errors.CodeOf(err) != "S001" {
		t.Errorf("missing file code = %q, want S001", errors.CodeOf(err))
	}

	_, err = LoadFile(writeConfig(t, `{"server": `))
	if errors.CodeOf(err) != "S002" {
		t.Errorf("bad JSON code = %q, want S002", errors.CodeOf(err))
	}

	_, err = LoadFile(writeConfig(t, `{"contact": {"submitDelay": "soon"}}`))
	if errors.CodeOf(err) != "S002" {
		t.Errorf("bad duration code = %q, want S002", errors.CodeOf(err))
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := New()
	err := cfg.ApplyEnv(map[string]string{
		"SAFETRADE_SERVER_PORT":          "9100",
		"SAFETRADE_CONTACT_BACKEND":      "s3",
		"SAFETRADE_CONTACT_S3_BUCKET":    "inbox",
		"SAFETRADE_CONTACT_S3_REGION":    "eu-central-1",
		"SAFETRADE_CONTACT_SUBMIT_DELAY": "20ms",
		"SAFETRADE_RATE_LIMIT_BURST":     "9",
		"SAFETRADE_LOG_FORMAT":           "text",
		"UNRELATED":                      "x",
	})
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.Contact.SubmitDelay.Std() != 20*time.Millisecond {
		t.Errorf("SubmitDelay = %v", cfg.Contact.SubmitDelay)
	}
	if cfg.RateLimit.Burst != 9 {
		t.Errorf("Burst = %d", cfg.RateLimit.Burst)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q", cfg.Log.Format)
	}
	if cfg.Server.Host != DefaultHost {
		t.Errorf("unset variable changed Host to %q", cfg.Server.Host)
	}

	ic := cfg.Inbox()
	if ic.Backend != inbox.BackendS3 || ic.S3.Bucket != "inbox" || ic.S3.Region != "eu-central-1" {
		t.Errorf("Inbox() = %+v", ic)
	}
	if ic.SubmitDelay != 20*time.Millisecond {
		t.Errorf("Inbox().SubmitDelay = %v", ic.SubmitDelay)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	cfg := New()
	err := cfg.ApplyEnv(map[string]string{"SAFETRADE_SERVER_PORT": "eighty"})
	if errors.CodeOf(err) != "S003" {
		t.Errorf("code = %q, want S003 (err %v)", errors.CodeOf(err), err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"unknown backend", func(c *Config) { c.Contact.Backend = "smtp" }, "contact.backend"},
		{"s3 without bucket", func(c *Config) { c.Contact.Backend = inbox.BackendS3 }, "bucket"},
		{"negative delay", func(c *Config) { c.Contact.SubmitDelay = Duration(-time.Second) }, "negative"},
		{"zero burst", func(c *Config) { c.RateLimit.Burst = 0 }, "burst"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if errors.CodeOf(err) != "S002" {
				t.Errorf("code = %q", errors.CodeOf(err))
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := New()
	cfg.Log.Level = "warn"
	log := cfg.Logger(&buf)

	log.Info("hidden")
	log.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line written at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("expected JSON line, got %s", out)
	}

	buf.Reset()
	cfg.Log.Format = "text"
	cfg.Logger(&buf).Warn("plain")
	if !strings.Contains(buf.String(), "msg=plain") {
		t.Errorf("expected text line, got %s", buf.String())
	}
}
