// Package config resolves the inventory client settings.
//
// Sources, later overriding earlier: built-in defaults, INVENTORY_*
// environment variables (optionally read from a dotenv file given with
// -env), a JSON file given with -c/-config, and command-line flags.
package config

import "time"

type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	CallTimeout         time.Duration
	SessionDBPath       string
	LogLevel            string
}

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.CallTimeout = 10 * time.Second
	c.SessionDBPath = "session.db"
	c.LogLevel = "warn"
}

func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
