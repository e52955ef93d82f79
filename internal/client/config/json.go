package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/stockkeeper/internal/flagx"
	"github.com/dmitrijs2005/stockkeeper/internal/timex"
)

// JsonConfig mirrors Config for JSON files; durations accept "3s" or nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	CallTimeout         timex.Duration `json:"call_timeout"`
	SessionDBPath       string         `json:"session_db_path"`
	LogLevel            string         `json:"log_level"`
}

// parseJson overlays the fields present in the file named by -c/-config.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.CallTimeout.Duration != 0 {
		cfg.CallTimeout = jc.CallTimeout.Duration
	}
	if jc.SessionDBPath != "" {
		cfg.SessionDBPath = jc.SessionDBPath
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
