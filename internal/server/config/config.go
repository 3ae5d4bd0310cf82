// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

// Config holds runtime settings for the stashbox server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the HTTP API.
//   - DatabaseDSN: storage DSN; a "sqlite:" scheme selects the embedded
//     engine, anything else is a PostgreSQL DSN (pgx).
//   - APIKey: static key required by the API routes; empty disables auth.
//   - TelegramWebhookSecret: shared secret for the Telegram webhook; empty
//     disables the check.
//   - MigrateOnly: run migrations and exit without serving.
type Config struct {
	EndpointAddrHTTP      string
	DatabaseDSN           string
	APIKey                string
	TelegramWebhookSecret string
	MigrateOnly           bool
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = "127.0.0.1:3000"
	c.DatabaseDSN = "sqlite:./data/stashbox.db"
	c.APIKey = ""
	c.TelegramWebhookSecret = ""
	c.MigrateOnly = false
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
