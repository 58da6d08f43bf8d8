// Package config loads coachsite settings using Viper from a .coachsite.yml
// file, COACHSITE_ environment variables and command-line flags.
//
// Settings cover the HTTP server, where content is read from and whether it
// is watched for changes, how contact enquiries are relayed, and logging.
package config

import (
	"fmt"
	"net"
	"net/mail"
	"path/filepath"
	"strings"
	"time"

	"github.com/conneroisu/coachsite/internal/errors"
	"github.com/spf13/viper"
)

// Environments the server distinguishes.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Content ContentConfig `mapstructure:"content" yaml:"content"`
	Contact ContactConfig `mapstructure:"contact" yaml:"contact"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port" yaml:"port"`
	Host           string   `mapstructure:"host" yaml:"host"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	Environment    string   `mapstructure:"environment" yaml:"environment"`
}

// Address returns host:port for net.Listen.
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, fmt.Sprint(s.Port))
}

// IsProduction reports whether development-only endpoints must be disabled.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == EnvProduction
}

// ContentConfig says where content documents live. An empty Dir serves the
// content embedded in the binary.
type ContentConfig struct {
	Dir      string        `mapstructure:"dir" yaml:"dir"`
	Watch    bool          `mapstructure:"watch" yaml:"watch"`
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

type ContactConfig struct {
	Recipient   string `mapstructure:"recipient" yaml:"recipient"`
	FromAddress string `mapstructure:"from_address" yaml:"from_address"`
	FromName    string `mapstructure:"from_name" yaml:"from_name"`
	Subject     string `mapstructure:"subject" yaml:"subject"`
	InboxPath   string `mapstructure:"inbox_path" yaml:"inbox_path"`

	// RateLimit is the number of enquiries one client may send per minute.
	// Zero disables the limit.
	RateLimit int        `mapstructure:"rate_limit" yaml:"rate_limit"`
	SMTP      SMTPConfig `mapstructure:"smtp" yaml:"smtp"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SetDefaults registers every key with its default so that environment
// variables are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.environment", EnvDevelopment)

	v.SetDefault("content.dir", "")
	v.SetDefault("content.watch", true)
	v.SetDefault("content.debounce", 300*time.Millisecond)

	v.SetDefault("contact.recipient", "")
	v.SetDefault("contact.from_address", "")
	v.SetDefault("contact.from_name", "")
	v.SetDefault("contact.subject", "New website enquiry")
	v.SetDefault("contact.inbox_path", ".coachsite/inbox.db")
	v.SetDefault("contact.rate_limit", 5)
	v.SetDefault("contact.smtp.host", "")
	v.SetDefault("contact.smtp.port", 587)
	v.SetDefault("contact.smtp.username", "")
	v.SetDefault("contact.smtp.password", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Load reads the configuration from the global Viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads and validates the configuration held by v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "failed to decode configuration")
	}

	// A comma separated env var arrives as a single element.
	if len(config.Server.AllowedOrigins) == 1 && strings.Contains(config.Server.AllowedOrigins[0], ",") {
		config.Server.AllowedOrigins = splitList(config.Server.AllowedOrigins[0])
	}
	if config.Contact.Subject == "" {
		config.Contact.Subject = "New website enquiry"
	}
	if config.Content.Debounce <= 0 {
		config.Content.Debounce = 300 * time.Millisecond
	}

	if err := validateConfig(&config); err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "invalid configuration")
	}

	return &config, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := validateContentConfig(&config.Content); err != nil {
		return fmt.Errorf("content config: %w", err)
	}
	if err := validateContactConfig(&config.Contact); err != nil {
		return fmt.Errorf("contact config: %w", err)
	}
	if err := validateLoggingConfig(&config.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

var (
	hostDangerousChars = []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
	pathDangerousChars = []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
)

func validateServerConfig(config *ServerConfig) error {
	// Port 0 lets the system pick one, which tests rely on.
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	for _, char := range hostDangerousChars {
		if strings.Contains(config.Host, char) {
			return fmt.Errorf("host contains dangerous character: %s", char)
		}
	}

	switch config.Environment {
	case EnvDevelopment, EnvProduction, "test":
	default:
		return fmt.Errorf("unknown environment %q (development, production, test)", config.Environment)
	}

	for _, origin := range config.AllowedOrigins {
		if strings.ContainsAny(origin, " \t\r\n") {
			return fmt.Errorf("allowed origin contains whitespace: %q", origin)
		}
	}

	return nil
}

func validateContentConfig(config *ContentConfig) error {
	if config.Dir == "" {
		return nil
	}
	if err := validatePath(config.Dir); err != nil {
		return fmt.Errorf("invalid dir '%s': %w", config.Dir, err)
	}
	return nil
}

func validateContactConfig(config *ContactConfig) error {
	if config.Recipient != "" {
		if _, err := mail.ParseAddress(config.Recipient); err != nil {
			return fmt.Errorf("recipient %q is not an email address", config.Recipient)
		}
	}
	if config.FromAddress != "" {
		if _, err := mail.ParseAddress(config.FromAddress); err != nil {
			return fmt.Errorf("from_address %q is not an email address", config.FromAddress)
		}
	}
	if strings.ContainsAny(config.Subject+config.FromName, "\r\n") {
		return fmt.Errorf("subject and from_name must be a single line")
	}
	if config.InboxPath != "" && config.InboxPath != ":memory:" {
		if err := validatePath(config.InboxPath); err != nil {
			return fmt.Errorf("invalid inbox_path '%s': %w", config.InboxPath, err)
		}
	}
	if config.RateLimit < 0 {
		return fmt.Errorf("rate_limit %d must not be negative", config.RateLimit)
	}
	if config.SMTP.Port < 0 || config.SMTP.Port > 65535 {
		return fmt.Errorf("smtp port %d is not in valid range 0-65535", config.SMTP.Port)
	}
	return nil
}

func validateLoggingConfig(config *LoggingConfig) error {
	switch strings.ToLower(config.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown level %q (debug, info, warn, error)", config.Level)
	}
	switch config.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown format %q (text, json)", config.Format)
	}
	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	cleanPath := filepath.Clean(path)

	for _, part := range strings.Split(filepath.ToSlash(cleanPath), "/") {
		if part == ".." {
			return fmt.Errorf("path contains traversal: %s", path)
		}
	}

	for _, char := range pathDangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
