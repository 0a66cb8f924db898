package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"habitlog/internal/core"
)

type Config struct {
	// HTTP Server
	Port string

	// Storage
	DataDir      string
	DailyFile    string
	WeeklyFile   string
	DataBackend  string
	SQLiteDBPath string

	// AMQP (optional: feeds the gist sync worker)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// GitHub Gist mirror (optional)
	GistID     string
	GistToken  string
	GistAPIURL string

	// Worker
	SyncInterval time.Duration

	// Tracked activity definitions, loaded from ActivitiesFile when set.
	ActivitiesFile   string
	DailyActivities  []core.Activity
	WeeklyActivities []core.Activity
}

// Backend names accepted by DATA_BACKEND.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnv("PORT", "8082"),

		DataDir:      getEnv("DATA_DIR", "data"),
		DailyFile:    getEnv("DAILY_FILE", "daily_data.json"),
		WeeklyFile:   getEnv("WEEKLY_FILE", "weekly_data.json"),
		DataBackend:  getEnv("DATA_BACKEND", BackendFile),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/habitlog.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "habitlog"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_collections"),

		GistID:     getEnv("GIST_ID", ""),
		GistToken:  getEnv("GITHUB_TOKEN", ""),
		GistAPIURL: getEnv("GIST_API_URL", "https://api.github.com"),

		SyncInterval: getEnvDuration("SYNC_INTERVAL", 5*time.Minute),

		ActivitiesFile: getEnv("ACTIVITIES_FILE", ""),
	}

	daily, weekly, err := loadActivities(cfg.ActivitiesFile)
	if err != nil {
		return nil, err
	}
	cfg.DailyActivities = daily
	cfg.WeeklyActivities = weekly

	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [%s %s %s]",
			c.DataBackend, BackendFile, BackendSQLite, BackendMemory))
	}

	if c.DataBackend == BackendFile {
		if c.DataDir == "" {
			errors = append(errors, "data directory cannot be empty when using file backend")
		}
		if c.DailyFile == "" || c.WeeklyFile == "" {
			errors = append(errors, "daily and weekly filenames cannot be empty when using file backend")
		} else if c.DailyFile == c.WeeklyFile {
			errors = append(errors, "daily and weekly collections cannot share one file")
		}
	}

	if c.DataBackend == BackendSQLite {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GistID != "" && c.GistToken == "" {
		errors = append(errors, "GITHUB_TOKEN is required when GIST_ID is provided")
	}
	if c.GistAPIURL == "" {
		errors = append(errors, "gist API URL cannot be empty")
	} else if u, err := url.Parse(c.GistAPIURL); err != nil || u.Scheme == "" {
		errors = append(errors, fmt.Sprintf("invalid gist API URL '%s'", c.GistAPIURL))
	}

	if c.SyncInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}

	if err := validateActivities(c.DailyActivities); err != nil {
		errors = append(errors, fmt.Sprintf("daily activities: %v", err))
	}
	if err := validateActivities(c.WeeklyActivities); err != nil {
		errors = append(errors, fmt.Sprintf("weekly activities: %v", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func validateActivities(acts []core.Activity) error {
	seen := map[string]struct{}{}
	for _, a := range acts {
		if strings.TrimSpace(a.ID) == "" {
			return fmt.Errorf("activity with empty id")
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("duplicate activity id '%s'", a.ID)
		}
		seen[a.ID] = struct{}{}
		switch a.Extra {
		case core.ExtraNone, core.ExtraMinutes, core.ExtraWordCount:
		default:
			return fmt.Errorf("activity '%s' has unknown extra '%s'", a.ID, a.Extra)
		}
	}
	return nil
}

// activitiesFile is the on-disk shape of ACTIVITIES_FILE.
type activitiesFile struct {
	Daily  []core.Activity `json:"daily"`
	Weekly []core.Activity `json:"weekly"`
}

// loadActivities reads activity definitions from path, or returns the
// built-in defaults when path is empty. A file that exists but cannot be
// parsed is a configuration error, not something to paper over.
func loadActivities(path string) ([]core.Activity, []core.Activity, error) {
	if path == "" {
		return defaultDailyActivities(), defaultWeeklyActivities(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read activities file: %w", err)
	}
	var f activitiesFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, nil, fmt.Errorf("parse activities file %s: %w", path, err)
	}
	return f.Daily, f.Weekly, nil
}

func defaultDailyActivities() []core.Activity {
	return []core.Activity{
		{ID: "reading", Name: "Reading", Category: "Study"},
		{ID: "language", Name: "Language practice", Category: "Study"},
		{ID: "thesis", Name: "Thesis", Category: "Study", Extra: core.ExtraWordCount},

		{ID: "exercise", Name: "Exercise", Category: "Life", Extra: core.ExtraMinutes},
		{ID: "going_out", Name: "Going out", Category: "Life"},
		{ID: "dog_walking", Name: "Dog walking", Category: "Life"},

		{ID: "drawing", Name: "Drawing", Category: "Leisure"},
		{ID: "journaling", Name: "Journaling", Category: "Leisure"},
		{ID: "watching_shows", Name: "Watching shows", Category: "Leisure"},
		{ID: "friends", Name: "Friends", Category: "Leisure"},
	}
}

func defaultWeeklyActivities() []core.Activity {
	return []core.Activity{
		{ID: "housework", Name: "Housework"},
		{ID: "eating_out", Name: "Eating out"},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
