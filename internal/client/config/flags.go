package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/flagx"
)

// parseFlags reads the short flags:
//
//	-a string   server address
//	-i int      online check interval, seconds
//	-t int      per-call timeout, seconds
//	-d string   session database path
//	-l string   log level
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-t", "-d", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	callTimeout := fs.Int("t", int(cfg.CallTimeout.Seconds()), "call timeout (in seconds)")
	fs.StringVar(&cfg.SessionDBPath, "d", cfg.SessionDBPath, "session database path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.CallTimeout = time.Duration(*callTimeout) * time.Second
}
