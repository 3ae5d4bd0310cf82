package config

import (
	"flag"
	"os"

	"stashbox/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., "127.0.0.1:3000")
//	-d string   database DSN ("sqlite:<path>" or a PostgreSQL DSN)
//	-k string   static API key
//	-w string   Telegram webhook shared secret
//	-m          run migrations and exit
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-k", "-w", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.APIKey, "k", config.APIKey, "API key")
	fs.StringVar(&config.TelegramWebhookSecret, "w", config.TelegramWebhookSecret, "telegram webhook secret")
	fs.BoolVar(&config.MigrateOnly, "m", config.MigrateOnly, "run migrations and exit")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
