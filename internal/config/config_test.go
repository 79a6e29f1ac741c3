package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chihoong/discord-summarizer-bot/internal/models"
)

var configKeys = []string{
	"DISCORD_BOT_TOKEN", "COMMAND_PREFIX", "AI_PROVIDER", "ANTHROPIC_API_KEY",
	"GEMINI_API_KEY", "AI_MODEL", "AI_TIMEOUT", "AI_MAX_TOKENS", "AI_TEMPERATURE",
	"MAX_PROMPT_CHARS", "MAX_RANGE_DAYS", "MAX_FETCH_LIMIT", "COMMAND_TIMEOUT",
	"LOG_LEVEL", "ENVIRONMENT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_BOT_TOKEN", "token")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.CommandPrefix != "!" {
		t.Errorf("CommandPrefix = %q, want !", cfg.CommandPrefix)
	}
	if cfg.Provider != models.ProviderAnthropic {
		t.Errorf("Provider = %q, want anthropic", cfg.Provider)
	}
	if cfg.Model != models.ProviderAnthropic.DefaultModel() {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.AITimeout != 120 || cfg.MaxOutputTokens != 1000 || cfg.Temperature != 0.3 {
		t.Errorf("unexpected generation defaults: %+v", cfg)
	}
	if cfg.MaxPromptChars != 150000 || cfg.MaxRangeDays != 90 || cfg.MaxFetchLimit != 1000 {
		t.Errorf("unexpected pipeline defaults: %+v", cfg)
	}
	if cfg.APIKey() != "" {
		t.Errorf("APIKey() = %q, want empty", cfg.APIKey())
	}
}

func TestLoadGeminiProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_BOT_TOKEN", "token")
	t.Setenv("AI_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("ANTHROPIC_API_KEY", "a-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Provider != models.ProviderGemini {
		t.Errorf("Provider = %q, want gemini", cfg.Provider)
	}
	if cfg.Model != "gemini-2.0-flash" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.APIKey() != "g-key" {
		t.Errorf("APIKey() = %q, want g-key", cfg.APIKey())
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing token",
			env:     map[string]string{},
			wantErr: "DISCORD_BOT_TOKEN",
		},
		{
			name:    "unknown provider",
			env:     map[string]string{"DISCORD_BOT_TOKEN": "x", "AI_PROVIDER": "openai"},
			wantErr: "AI_PROVIDER",
		},
		{
			name:    "negative timeout",
			env:     map[string]string{"DISCORD_BOT_TOKEN": "x", "AI_TIMEOUT": "-1"},
			wantErr: "AI_TIMEOUT",
		},
		{
			name:    "temperature out of range",
			env:     map[string]string{"DISCORD_BOT_TOKEN": "x", "AI_TEMPERATURE": "1.5"},
			wantErr: "AI_TEMPERATURE",
		},
		{
			name:    "bad log level",
			env:     map[string]string{"DISCORD_BOT_TOKEN": "x", "LOG_LEVEL": "trace"},
			wantErr: "LOG_LEVEL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load("")
			if err == nil {
				t.Fatalf("Load() error = nil, want error mentioning %s", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("DISCORD_BOT_TOKEN")
	os.Unsetenv("COMMAND_PREFIX")

	path := filepath.Join(t.TempDir(), "bot.env")
	if err := os.WriteFile(path, []byte("DISCORD_BOT_TOKEN=from-file\nCOMMAND_PREFIX=?\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("DISCORD_BOT_TOKEN")
		os.Unsetenv("COMMAND_PREFIX")
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DiscordToken != "from-file" || cfg.CommandPrefix != "?" {
		t.Errorf("env file not applied: token=%q prefix=%q", cfg.DiscordToken, cfg.CommandPrefix)
	}
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_BOT_TOKEN", "token")

	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("Load() error = %v, want nil for missing file", err)
	}
}
