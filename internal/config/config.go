package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SourceQuery is the fixed search-parameter set sent to a listing API.
type SourceQuery struct {
	Terms      string `yaml:"terms"`
	Country    string `yaml:"country"`
	MaxDaysOld int    `yaml:"max_days_old"`
	Pages      int    `yaml:"pages"`
	PageSize   int    `yaml:"page_size"`
}

// Source describes one external job-listing API. All HTTP sources share a
// single fetch implementation parameterized by this descriptor.
type Source struct {
	Name        string            `yaml:"name"`
	DisplayName string            `yaml:"display_name"`
	BaseURL     string            `yaml:"base_url"`
	AuthHeaders map[string]string `yaml:"auth_headers"`
	// KeyringAccount, when set, resolves an API key from the OS keyring
	// and sends it as the value of KeyHeader.
	KeyringAccount string      `yaml:"keyring_account"`
	KeyHeader      string      `yaml:"key_header"`
	Query          SourceQuery `yaml:"query"`
}

// Email configures the supplemental job-alert mailbox source. The IMAP
// password lives in the OS keyring, not in this file.
type Email struct {
	Enabled          bool     `yaml:"enabled"`
	IMAPHost         string   `yaml:"imap_host"`
	IMAPPort         int      `yaml:"imap_port"`
	Username         string   `yaml:"username"`
	Mailbox          string   `yaml:"mailbox"`
	SearchSubjectAny []string `yaml:"search_subject_any"`
	MaxDaysOld       int      `yaml:"max_days_old"`
}

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
		JSONLog bool   `yaml:"json_log"`
		Debug   bool   `yaml:"debug"`
	} `yaml:"app"`

	Sync struct {
		IntervalMinutes   int     `yaml:"interval_minutes"`
		FirstDelaySeconds int     `yaml:"first_delay_seconds"`
		SourceTimeoutSecs int     `yaml:"source_timeout_seconds"`
		CleanupDaysOld    int     `yaml:"cleanup_days_old"`
		CleanupChance     float64 `yaml:"cleanup_chance"`
		RatePerSec        float64 `yaml:"rate_per_sec"`
		RateBurst         int     `yaml:"rate_burst"`
	} `yaml:"sync"`

	Sources []Source `yaml:"sources"`
	Email   Email    `yaml:"email"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Port == 0 {
		c.App.Port = 38471
	}
	if c.Sync.IntervalMinutes <= 0 {
		c.Sync.IntervalMinutes = 60
	}
	if c.Sync.FirstDelaySeconds <= 0 {
		c.Sync.FirstDelaySeconds = 30
	}
	if c.Sync.SourceTimeoutSecs <= 0 {
		c.Sync.SourceTimeoutSecs = 30
	}
	if c.Sync.CleanupDaysOld <= 0 {
		c.Sync.CleanupDaysOld = 30
	}
	if c.Sync.CleanupChance <= 0 {
		c.Sync.CleanupChance = 0.1
	}
	if c.Sync.RatePerSec <= 0 {
		c.Sync.RatePerSec = 1.0
	}
	if c.Sync.RateBurst <= 0 {
		c.Sync.RateBurst = 2
	}
	for i := range c.Sources {
		q := &c.Sources[i].Query
		if q.Pages <= 0 {
			q.Pages = 3
		}
		if q.PageSize <= 0 {
			q.PageSize = 50
		}
	}
	if c.Email.Mailbox == "" {
		c.Email.Mailbox = "INBOX"
	}
	if c.Email.MaxDaysOld <= 0 {
		c.Email.MaxDaysOld = 7
	}
}

// Interval returns the recurring sync interval.
func (c Config) Interval() time.Duration {
	return time.Duration(c.Sync.IntervalMinutes) * time.Minute
}

// FirstDelay returns the delay before the first sync after Start.
func (c Config) FirstDelay() time.Duration {
	return time.Duration(c.Sync.FirstDelaySeconds) * time.Second
}

// SourceTimeout bounds a single source's fetch within a cycle.
func (c Config) SourceTimeout() time.Duration {
	return time.Duration(c.Sync.SourceTimeoutSecs) * time.Second
}
