package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.CommandPrefix != "!" {
		t.Errorf("CommandPrefix = %q, want !", cfg.CommandPrefix)
	}
	if cfg.GeminiModel != "gemini-1.5-flash" {
		t.Errorf("GeminiModel = %q", cfg.GeminiModel)
	}
	if cfg.SendInterval != time.Second {
		t.Errorf("SendInterval = %v, want 1s", cfg.SendInterval)
	}
	if cfg.RetryCooldown != 5*time.Second {
		t.Errorf("RetryCooldown = %v, want 5s", cfg.RetryCooldown)
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without GEMINI_API_KEY")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("COMMAND_PREFIX", "?")
	t.Setenv("SESSION_TTL_MINUTES", "5")
	t.Setenv("SEND_INTERVAL_MS", "250")
	t.Setenv("TRANSCRIPT_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.CommandPrefix != "?" {
		t.Errorf("CommandPrefix = %q, want ?", cfg.CommandPrefix)
	}
	if cfg.SessionTTL != 5*time.Minute {
		t.Errorf("SessionTTL = %v, want 5m", cfg.SessionTTL)
	}
	if cfg.SendInterval != 250*time.Millisecond {
		t.Errorf("SendInterval = %v, want 250ms", cfg.SendInterval)
	}
	if cfg.Transcript.Enabled {
		t.Error("Transcript.Enabled = true, want false")
	}
}
