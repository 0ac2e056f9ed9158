package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/docvault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string        server base URL
//	-d string        local database path
//	-u string        account user id (uuid); "anonymous" works offline
//	-t string        bearer access token
//	-login           read the access token from the terminal without echo
//	-m string        directory for imported media
//	-timeout int     per request timeout in seconds
//	-retries int     retries for transient server errors
//	-log-level str   debug, info, warn or error
//
// Unknown flags are filtered out with flagx so other components can share
// the command line.
func parseFlags(cfg *Config) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "server base URL")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.UserID, "u", cfg.UserID, "account user id")
	fs.StringVar(&cfg.AccessToken, "t", cfg.AccessToken, "access token")
	fs.BoolVar(&cfg.PromptToken, "login", cfg.PromptToken, "prompt for the access token")
	fs.StringVar(&cfg.MediaDir, "m", cfg.MediaDir, "media directory")
	timeout := fs.Int("timeout", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.IntVar(&cfg.RetryCount, "retries", cfg.RetryCount, "retries for transient errors")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	if err := flagx.ParseKnown(fs, os.Args[1:]); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
