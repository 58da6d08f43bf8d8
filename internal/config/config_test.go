package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/conneroisu/coachsite/internal/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	config, err := LoadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, EnvDevelopment, config.Server.Environment)
	assert.Empty(t, config.Server.AllowedOrigins)
	assert.Equal(t, "localhost:8080", config.Server.Address())
	assert.False(t, config.Server.IsProduction())

	assert.Equal(t, "", config.Content.Dir)
	assert.True(t, config.Content.Watch)
	assert.Equal(t, 300*time.Millisecond, config.Content.Debounce)

	assert.Equal(t, "New website enquiry", config.Contact.Subject)
	assert.Equal(t, ".coachsite/inbox.db", config.Contact.InboxPath)
	assert.Equal(t, 5, config.Contact.RateLimit)
	assert.Equal(t, 587, config.Contact.SMTP.Port)
	assert.Empty(t, config.Contact.SMTP.Host)

	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "text", config.Logging.Format)
}

func TestLoadGlobalViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("server.port", 3000)

	config, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, config.Server.Port)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".coachsite.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
  host: 0.0.0.0
  environment: production
  allowed_origins:
    - https://coach.example.com
content:
  dir: ./content
  watch: false
  debounce: 1s
contact:
  recipient: coach@example.com
  from_name: Website
  smtp:
    host: smtp.example.com
    port: 465
    username: coach
logging:
  level: debug
  format: json
`), 0o644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	config, err := LoadFrom(v)
	require.NoError(t, err)

	assert.Equal(t, 9090, config.Server.Port)
	assert.True(t, config.Server.IsProduction())
	assert.Equal(t, []string{"https://coach.example.com"}, config.Server.AllowedOrigins)
	assert.Equal(t, "./content", config.Content.Dir)
	assert.False(t, config.Content.Watch)
	assert.Equal(t, time.Second, config.Content.Debounce)
	assert.Equal(t, "coach@example.com", config.Contact.Recipient)
	assert.Equal(t, "Website", config.Contact.FromName)
	assert.Equal(t, "smtp.example.com", config.Contact.SMTP.Host)
	assert.Equal(t, 465, config.Contact.SMTP.Port)
	assert.Equal(t, "coach", config.Contact.SMTP.Username)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("COACHSITE_SERVER_PORT", "7070")
	t.Setenv("COACHSITE_CONTACT_SMTP_HOST", "mail.example.com")
	t.Setenv("COACHSITE_SERVER_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	v := viper.New()
	v.SetEnvPrefix("COACHSITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	config, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, "mail.example.com", config.Contact.SMTP.Host)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, config.Server.AllowedOrigins)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
		msg   string
	}{
		{"port too large", "server.port", 70000, "port 70000"},
		{"negative port", "server.port", -1, "port -1"},
		{"dangerous host", "server.host", "localhost;rm", "dangerous character"},
		{"unknown environment", "server.environment", "staging", "unknown environment"},
		{"content traversal", "content.dir", "../../etc", "traversal"},
		{"content shell chars", "content.dir", "content$(id)", "dangerous character"},
		{"bad recipient", "contact.recipient", "not-an-email", "recipient"},
		{"bad from address", "contact.from_address", "nope", "from_address"},
		{"multi-line subject", "contact.subject", "Hi\r\nBcc: x@example.com", "single line"},
		{"inbox traversal", "contact.inbox_path", "../inbox.db", "traversal"},
		{"negative rate limit", "contact.rate_limit", -1, "rate_limit"},
		{"smtp port", "contact.smtp.port", 100000, "smtp port"},
		{"log level", "logging.level", "verbose", "unknown level"},
		{"log format", "logging.format", "xml", "unknown format"},
		{"unparseable port", "server.port", "eighty", "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)

			config, err := LoadFrom(v)
			require.Error(t, err)
			assert.Nil(t, config)
			assert.Contains(t, err.Error(), tt.msg)

			var siteErr *errors.SiteError
			require.ErrorAs(t, err, &siteErr)
			assert.Equal(t, errors.ErrorTypeConfig, siteErr.Type)
		})
	}
}

func TestLoadAcceptsSafeValues(t *testing.T) {
	v := viper.New()
	v.Set("server.port", 0)
	v.Set("server.environment", "test")
	v.Set("content.dir", "/srv/coachsite/content")
	v.Set("contact.inbox_path", ":memory:")
	v.Set("contact.recipient", "Coach <coach@example.com>")
	v.Set("logging.level", "WARN")

	config, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, 0, config.Server.Port)
	assert.Equal(t, "/srv/coachsite/content", config.Content.Dir)
}
