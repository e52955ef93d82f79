package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/stockkeeper/internal/flagx"
	"github.com/dmitrijs2005/stockkeeper/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations use timex.Duration, so
// both "1m" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	ProductStore                 string         `json:"product_store"`
	MongoURI                     string         `json:"mongo_uri"`
	MongoDatabase                string         `json:"mongo_database"`
	RedisAddr                    string         `json:"redis_addr"`
	RedisChannel                 string         `json:"redis_channel"`
	KafkaBrokers                 []string       `json:"kafka_brokers"`
	KafkaTopic                   string         `json:"kafka_topic"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	ExportURLValidityDuration    timex.Duration `json:"export_url_validity_duration"`
	LogLevel                     string         `json:"log_level"`
}

// parseJson overlays config with the non-empty fields of the file given by
// -c/-config. Without the flag nothing is loaded. Panics if the file cannot
// be read or holds invalid JSON.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.ProductStore, c.ProductStore)
	setString(&config.MongoURI, c.MongoURI)
	setString(&config.MongoDatabase, c.MongoDatabase)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisChannel, c.RedisChannel)
	setString(&config.KafkaTopic, c.KafkaTopic)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogLevel, c.LogLevel)

	if len(c.KafkaBrokers) > 0 {
		config.KafkaBrokers = c.KafkaBrokers
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration != 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.ExportURLValidityDuration.Duration != 0 {
		config.ExportURLValidityDuration = c.ExportURLValidityDuration.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
