package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.GeminiModel != "gemini-3-flash-preview" {
		t.Errorf("GeminiModel = %q", cfg.GeminiModel)
	}
	if cfg.HistoryWindow != 6 {
		t.Errorf("HistoryWindow = %d, want 6", cfg.HistoryWindow)
	}
	if cfg.AlertRetention != 50 {
		t.Errorf("AlertRetention = %d, want 50", cfg.AlertRetention)
	}
	if cfg.AITimeout != 45*time.Second {
		t.Errorf("AITimeout = %s, want 45s", cfg.AITimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CHAT_HISTORY_WINDOW", "10")
	t.Setenv("AI_TIMEOUT", "5s")
	t.Setenv("ALERT_RETENTION", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.HistoryWindow != 10 {
		t.Errorf("HistoryWindow = %d, want 10", cfg.HistoryWindow)
	}
	if cfg.AITimeout != 5*time.Second {
		t.Errorf("AITimeout = %s, want 5s", cfg.AITimeout)
	}
	if cfg.AlertRetention != 50 {
		t.Errorf("unparseable ALERT_RETENTION must fall back to 50, got %d", cfg.AlertRetention)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Port:           "8080",
			DBPath:         "./data/test.db",
			GeminiModel:    "gemini-3-flash-preview",
			HistoryWindow:  6,
			AlertRetention: 50,
			AITimeout:      45 * time.Second,
		}
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Port = "" }},
		{"empty db path", func(c *Config) { c.DBPath = "" }},
		{"empty model", func(c *Config) { c.GeminiModel = "" }},
		{"zero window", func(c *Config) { c.HistoryWindow = 0 }},
		{"zero retention", func(c *Config) { c.AlertRetention = 0 }},
		{"zero timeout", func(c *Config) { c.AITimeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestIsDevelopment(t *testing.T) {
	tests := []struct {
		frontendURL string
		want        bool
	}{
		{"", true},
		{"http://localhost:5173", true},
		{"http://127.0.0.1:3000", true},
		{"https://smartstudent.example.com", false},
	}
	for _, tt := range tests {
		cfg := &Config{FrontendURL: tt.frontendURL}
		if got := cfg.IsDevelopment(); got != tt.want {
			t.Errorf("IsDevelopment(%q) = %v, want %v", tt.frontendURL, got, tt.want)
		}
	}
}
