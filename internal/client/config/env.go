package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/flagx"
)

// parseEnv overlays cfg with INVENTORY_* variables. A dotenv file named by
// -env is loaded first; it never overrides variables already set. Panics on
// an unreadable dotenv file or a malformed duration.
func parseEnv(cfg *Config) {
	if err := flagx.LoadEnvFile(flagx.EnvFileFlag()); err != nil {
		panic(err)
	}

	if v, ok := os.LookupEnv("INVENTORY_SERVER_ADDR"); ok {
		cfg.ServerEndpointAddr = v
	}
	if v, ok := os.LookupEnv("INVENTORY_SESSION_DB"); ok {
		cfg.SessionDBPath = v
	}
	if v, ok := os.LookupEnv("INVENTORY_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("INVENTORY_CALL_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.CallTimeout = d
	}
}
