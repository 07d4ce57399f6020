package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	SetEnvFileLoadingForTest(false)
	t.Cleanup(func() { SetEnvFileLoadingForTest(true) })

	for _, key := range []string{"SERVER_PORT", "DB_DRIVER", "JWT_SECRET", "AI_PROVIDER", "AI_TIMEOUT", "APP_MODE", "AI_DAILY_QUOTA"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Port != "8000" {
		t.Fatalf("expected default port 8000, got %s", cfg.Server.Port)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Fatalf("expected sqlite driver, got %s", cfg.Database.Driver)
	}
	if !cfg.Auth.UsingDevSecret {
		t.Fatalf("expected dev secret flag when JWT_SECRET is empty")
	}
	if cfg.AI.Timeout != 15*time.Second {
		t.Fatalf("expected default ai timeout 15s, got %s", cfg.AI.Timeout)
	}
	if cfg.Runtime.IsLocal() {
		t.Fatalf("expected online mode by default")
	}
	if len(cfg.Server.CORSOrigins) != 2 {
		t.Fatalf("expected 2 default cors origins, got %v", cfg.Server.CORSOrigins)
	}
}

func TestLoadParsesDurationsAndQuota(t *testing.T) {
	SetEnvFileLoadingForTest(false)
	t.Cleanup(func() { SetEnvFileLoadingForTest(true) })

	t.Setenv("AI_TIMEOUT", "3")
	t.Setenv("JWT_ACCESS_TTL", "45m")
	t.Setenv("AI_DAILY_QUOTA", "20")
	t.Setenv("AI_PROVIDER", "volcengine")
	t.Setenv("AI_MODEL", "ep-20260301-abcde")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.AI.Timeout != 3*time.Second {
		t.Fatalf("expected 3s timeout, got %s", cfg.AI.Timeout)
	}
	if cfg.Auth.AccessTTL != 45*time.Minute {
		t.Fatalf("expected 45m access ttl, got %s", cfg.Auth.AccessTTL)
	}
	if cfg.AI.DailyQuota != 20 {
		t.Fatalf("expected quota 20, got %d", cfg.AI.DailyQuota)
	}
	if cfg.AI.Provider != "volcengine" {
		t.Fatalf("unexpected provider %s", cfg.AI.Provider)
	}
}

func TestLoadResolvesModelPerProvider(t *testing.T) {
	SetEnvFileLoadingForTest(false)
	t.Cleanup(func() { SetEnvFileLoadingForTest(true) })

	cases := []struct {
		provider string
		model    string
		want     string
	}{
		{provider: "openai", want: "gpt-4o"},
		{provider: "deepseek", want: "deepseek-chat"},
		{provider: "deepseek", model: "deepseek-reasoner", want: "deepseek-reasoner"},
		{provider: "none", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.provider+"/"+tc.want, func(t *testing.T) {
			t.Setenv("AI_PROVIDER", tc.provider)
			t.Setenv("AI_MODEL", tc.model)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("load config: %v", err)
			}
			if cfg.AI.Model != tc.want {
				t.Fatalf("expected model %q, got %q", tc.want, cfg.AI.Model)
			}
		})
	}
}

func TestLoadRequiresModelForVolcengine(t *testing.T) {
	SetEnvFileLoadingForTest(false)
	t.Cleanup(func() { SetEnvFileLoadingForTest(true) })

	t.Setenv("AI_PROVIDER", "volcengine")
	t.Setenv("AI_MODEL", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "AI_MODEL") {
		t.Fatalf("expected AI_MODEL error, got %v", err)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	SetEnvFileLoadingForTest(false)
	t.Cleanup(func() { SetEnvFileLoadingForTest(true) })

	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("AI_PROVIDER", "claude")
	t.Setenv("REDIS_DB", "abc")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected configuration error")
	}
	for _, fragment := range []string{"DB_DRIVER", "AI_PROVIDER", "REDIS_DB"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected error to mention %s, got %v", fragment, err)
		}
	}
}

func TestLocalModeForcesSQLite(t *testing.T) {
	SetEnvFileLoadingForTest(false)
	t.Cleanup(func() { SetEnvFileLoadingForTest(true) })

	t.Setenv("APP_MODE", "LOCAL")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("LOCAL_USER_ID", "7")
	t.Setenv("LOCAL_USER_ADMIN", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Fatalf("local mode must use sqlite, got %s", cfg.Database.Driver)
	}
	if cfg.Runtime.Local.UserID != 7 || cfg.Runtime.Local.IsAdmin {
		t.Fatalf("unexpected local runtime %+v", cfg.Runtime.Local)
	}
}
