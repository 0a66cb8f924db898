package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"habitlog/internal/core"
)

var habitEnvVars = []string{
	"PORT", "DATA_DIR", "DAILY_FILE", "WEEKLY_FILE", "DATA_BACKEND",
	"SQLITE_DB_PATH", "AMQP_URL", "AMQP_EXCHANGE", "AMQP_QUEUE",
	"GIST_ID", "GITHUB_TOKEN", "GIST_API_URL", "SYNC_INTERVAL",
	"ACTIVITIES_FILE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range habitEnvVars {
		if v, ok := os.LookupEnv(key); ok {
			old := v
			key := key
			t.Cleanup(func() { os.Setenv(key, old) })
			os.Unsetenv(key)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8082" {
		t.Fatalf("port = %s", cfg.Port)
	}
	if cfg.DataBackend != BackendFile {
		t.Fatalf("backend = %s", cfg.DataBackend)
	}
	if cfg.DailyFile != "daily_data.json" || cfg.WeeklyFile != "weekly_data.json" {
		t.Fatalf("collection files = %s / %s", cfg.DailyFile, cfg.WeeklyFile)
	}
	if cfg.SyncInterval != 5*time.Minute {
		t.Fatalf("sync interval = %v", cfg.SyncInterval)
	}
	if len(cfg.DailyActivities) == 0 || len(cfg.WeeklyActivities) == 0 {
		t.Fatal("default activities missing")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATA_BACKEND", BackendMemory)
	t.Setenv("SYNC_INTERVAL", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9000" || cfg.DataBackend != BackendMemory || cfg.SyncInterval != 30*time.Second {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestLoadActivitiesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "activities.json")
	content := `{
  "daily": [
    {"id": "meditation", "name": "Meditation", "category": "Life"},
    {"id": "running", "name": "Running", "category": "Life", "extra": "minutes"}
  ],
  "weekly": [
    {"id": "meal_prep", "name": "Meal prep"}
  ]
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write activities file: %v", err)
	}
	t.Setenv("ACTIVITIES_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.DailyActivities) != 2 || len(cfg.WeeklyActivities) != 1 {
		t.Fatalf("activities = %d daily, %d weekly", len(cfg.DailyActivities), len(cfg.WeeklyActivities))
	}
	if cfg.DailyActivities[1].ExtraField() != "running_minutes" {
		t.Fatalf("extra field = %s", cfg.DailyActivities[1].ExtraField())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadActivitiesFileMalformed(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "activities.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("ACTIVITIES_FILE", path)

	if _, err := Load(); err == nil {
		t.Fatal("malformed activities file must be an error")
	}
}

func TestValidateRejections(t *testing.T) {
	clearEnv(t)
	base, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Port = "nope" }},
		{"port out of range", func(c *Config) { c.Port = "70000" }},
		{"bad backend", func(c *Config) { c.DataBackend = "postgres" }},
		{"shared collection file", func(c *Config) { c.DailyFile = "x.json"; c.WeeklyFile = "x.json" }},
		{"bad amqp scheme", func(c *Config) { c.AMQPURL = "http://localhost:5672/" }},
		{"amqp without queue", func(c *Config) { c.AMQPURL = "amqp://localhost:5672/"; c.AMQPQueue = "" }},
		{"gist without token", func(c *Config) { c.GistID = "abc123"; c.GistToken = "" }},
		{"sync interval too small", func(c *Config) { c.SyncInterval = 100 * time.Millisecond }},
		{"duplicate activity", func(c *Config) {
			c.DailyActivities = append(c.DailyActivities, c.DailyActivities[0])
		}},
		{"unknown extra", func(c *Config) {
			c.WeeklyActivities[0].Extra = "hours"
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := *base
			cfg.DailyActivities = append([]core.Activity(nil), base.DailyActivities...)
			cfg.WeeklyActivities = append([]core.Activity(nil), base.WeeklyActivities...)
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
