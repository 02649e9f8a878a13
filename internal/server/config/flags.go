package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-g string   gRPC ops bind address (e.g. ":50051")
//	-d string   PostgreSQL DSN
//	-s string   session HMAC secret key
//	-t int      session token validity, hours
//	-q string   Redis URL for the mail queue
//	-l string   log level
//	-m string   ops metrics bind address, empty to disable
//
// Only these flags are read from the argument list; everything else is left
// for other parsers. A malformed value panics.
func parseFlags(config *Config) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run HTTP server")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "address and port to run gRPC ops server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	sessionHours := fs.Int("t", int(config.SessionTokenValidityDuration.Hours()), "session token validity (in hours)")
	fs.StringVar(&config.QueueRedisURL, "q", config.QueueRedisURL, "redis URL for the mail queue")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address of the ops metrics listener, empty to disable")

	if err := fs.Parse(flagx.FilterArgs(args(), []string{"-a", "-g", "-d", "-s", "-t", "-q", "-l", "-m"})); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.SessionTokenValidityDuration = time.Duration(*sessionHours) * time.Hour
		}
	})
}
