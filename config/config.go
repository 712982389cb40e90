package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr        string
	DBPath      string
	DatabaseURL string // when set, Postgres is used instead of SQLite
	WebhookURL  string
	LogPath     string

	Scheduler SchedulerConfig
	Scraper   ScraperConfig
	Watch     WatchConfig
}

type SchedulerConfig struct {
	RefreshCron    string        // optional cron expression overriding the poll loop
	RefreshPoll    time.Duration // how often the refresh loop wakes up
	RefreshMaxAge  time.Duration // refresh is due once the data is older than this
	NotifyInterval time.Duration
}

type ScraperConfig struct {
	LookupDelay    time.Duration // base spacing between login lookups
	LookupJitter   time.Duration // random extra on top of the base delay
	RequestTimeout time.Duration
}

// WatchConfig holds the data-source quirks and notification filters. It is
// data, not code: the site grows noise entries and admin houses over time.
type WatchConfig struct {
	BaseURL          string   `yaml:"base_url"`
	UserAgent        string   `yaml:"user_agent"`
	Contact          string   `yaml:"contact"`
	PlaceholderImage string   `yaml:"placeholder_image"`
	NotifyCities     []string `yaml:"notify_cities"`
	IgnoredPrefixes  []string `yaml:"ignored_prefixes"`
	ExcludeUnnamedIn string   `yaml:"exclude_unnamed_in"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:        getEnv("LISTEN_ADDR", ":8000"),
		DBPath:      getEnv("DB_PATH", "houses.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		WebhookURL:  os.Getenv("DISCORD_WEBHOOK_URL"),
		LogPath:     getEnv("LOG_PATH", "watcher.log"),
		Scheduler: SchedulerConfig{
			RefreshCron:    os.Getenv("REFRESH_CRON"),
			RefreshPoll:    getEnvDuration("REFRESH_POLL", 30*time.Minute),
			RefreshMaxAge:  getEnvDuration("REFRESH_MAX_AGE", 12*time.Hour),
			NotifyInterval: getEnvDuration("NOTIFY_INTERVAL", 5*time.Minute),
		},
		Scraper: ScraperConfig{
			LookupDelay:    time.Duration(getEnvInt("LOOKUP_DELAY_MS", 1500)) * time.Millisecond,
			LookupJitter:   time.Duration(getEnvInt("LOOKUP_JITTER_MS", 1500)) * time.Millisecond,
			RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),
		},
		Watch: defaultWatchConfig(),
	}

	if err := cfg.loadWatchConfig(getEnv("WATCH_CONFIG", "config/watch.yaml")); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultWatchConfig() WatchConfig {
	return WatchConfig{
		BaseURL:          "https://cyleria.pl",
		UserAgent:        "CyleriaHouseWatcher/1.0",
		PlaceholderImage: "/static/no-image.png",
	}
}

func (c *Config) loadWatchConfig(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	watch := defaultWatchConfig()
	if err := yaml.Unmarshal(data, &watch); err != nil {
		return err
	}
	c.Watch = watch
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
