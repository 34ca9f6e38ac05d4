package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/bacheca/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC bind address ("" disables gRPC)
//	-d string   PostgreSQL DSN
//	-m string   storage backend: postgres | memory
//	-r string   Redis address for sessions
//	-w int      expired-session sweep interval, minutes (0 disables)
//	-k int      bcrypt cost
//
// Args are filtered with flagx.FilterArgs first, so flags owned by other
// loaders (-c, -env) or by the admin tool do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-m", "-r", "-w", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.Storage, "m", config.Storage, "storage backend (postgres|memory)")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address for sessions")
	sweepInterval := fs.Int("w", int(config.SweepInterval.Minutes()), "expired session sweep interval (in minutes)")
	fs.IntVar(&config.BcryptCost, "k", config.BcryptCost, "bcrypt cost")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// only an explicit -w overrides, so sub-minute values from other sources survive
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "w" {
			config.SweepInterval = time.Duration(*sweepInterval) * time.Minute
		}
	})
}
