package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the application configuration
type Config struct {
	LogLevel string `toml:"log_level"`

	Workbook WorkbookConfig `toml:"workbook"`
	Mailbox  MailboxConfig  `toml:"mailbox"`
	Archive  ArchiveConfig  `toml:"archive"`
	History  HistoryConfig  `toml:"history"`
}

// WorkbookConfig locates the rule workbook and its mapping sheet
type WorkbookConfig struct {
	Path  string `toml:"path"`
	Sheet string `toml:"sheet"`
}

// MailboxConfig holds IMAP settings plus the receive-time cutoff used to
// filter the inbox snapshot for a run
type MailboxConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Folder   string `toml:"folder"`

	// Messages received before FilterHour:FilterMinute on the prior
	// business day (in Timezone) are ignored.
	FilterHour   int    `toml:"filter_hour"`
	FilterMinute int    `toml:"filter_minute"`
	Timezone     string `toml:"timezone"`
}

// ArchiveConfig holds the root under which dated archive folders are created
type ArchiveConfig struct {
	BasePath string `toml:"base_path"`
}

// HistoryConfig locates the local run-history database. An empty path
// disables history recording.
type HistoryConfig struct {
	Path string `toml:"path"`
}

// Load reads configuration from a TOML file and applies defaults
func Load(path string) (*Config, error) {
	cfg := &Config{
		LogLevel: "info",
		Workbook: WorkbookConfig{Sheet: "Automated"},
		Mailbox: MailboxConfig{
			Port:       993,
			Folder:     "INBOX",
			FilterHour: 16,
			Timezone:   "America/New_York",
		},
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Workbook.Path == "" {
		return fmt.Errorf("workbook.path is required")
	}
	if c.Workbook.Sheet == "" {
		return fmt.Errorf("workbook.sheet is required")
	}
	if c.Mailbox.Host == "" {
		return fmt.Errorf("mailbox.host is required")
	}
	if c.Mailbox.Username == "" {
		return fmt.Errorf("mailbox.username is required")
	}
	if c.Mailbox.Password == "" {
		return fmt.Errorf("mailbox.password is required")
	}
	if c.Mailbox.Port < 1 || c.Mailbox.Port > 65535 {
		return fmt.Errorf("mailbox.port must be between 1 and 65535")
	}
	if c.Mailbox.FilterHour < 0 || c.Mailbox.FilterHour > 23 {
		return fmt.Errorf("mailbox.filter_hour must be between 0 and 23")
	}
	if c.Mailbox.FilterMinute < 0 || c.Mailbox.FilterMinute > 59 {
		return fmt.Errorf("mailbox.filter_minute must be between 0 and 59")
	}
	if c.Archive.BasePath == "" {
		return fmt.Errorf("archive.base_path is required")
	}
	return nil
}
