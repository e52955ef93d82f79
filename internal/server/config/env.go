package config

import (
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/flagx"
)

// parseEnv overlays cfg with INVENTORY_* variables, after loading the
// dotenv file named by -env. Panics on an unreadable file or a malformed
// duration.
func parseEnv(cfg *Config) {
	if err := flagx.LoadEnvFile(flagx.EnvFileFlag()); err != nil {
		panic(err)
	}

	strs := map[string]*string{
		"INVENTORY_GRPC_ADDR":      &cfg.EndpointAddrGRPC,
		"INVENTORY_HTTP_ADDR":      &cfg.EndpointAddrHTTP,
		"INVENTORY_DATABASE_DSN":   &cfg.DatabaseDSN,
		"INVENTORY_PRODUCT_STORE":  &cfg.ProductStore,
		"INVENTORY_MONGO_URI":      &cfg.MongoURI,
		"INVENTORY_MONGO_DATABASE": &cfg.MongoDatabase,
		"INVENTORY_REDIS_ADDR":     &cfg.RedisAddr,
		"INVENTORY_REDIS_CHANNEL":  &cfg.RedisChannel,
		"INVENTORY_KAFKA_TOPIC":    &cfg.KafkaTopic,
		"INVENTORY_SECRET_KEY":     &cfg.SecretKey,
		"INVENTORY_S3_USER":        &cfg.S3RootUser,
		"INVENTORY_S3_PASSWORD":    &cfg.S3RootPassword,
		"INVENTORY_S3_BUCKET":      &cfg.S3Bucket,
		"INVENTORY_S3_REGION":      &cfg.S3Region,
		"INVENTORY_S3_ENDPOINT":    &cfg.S3BaseEndpoint,
		"INVENTORY_LOG_LEVEL":      &cfg.LogLevel,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("INVENTORY_KAFKA_BROKERS"); ok {
		cfg.KafkaBrokers = splitList(v)
	}

	durations := map[string]*time.Duration{
		"INVENTORY_ACCESS_TOKEN_TTL":  &cfg.AccessTokenValidityDuration,
		"INVENTORY_REFRESH_TOKEN_TTL": &cfg.RefreshTokenValidityDuration,
		"INVENTORY_EXPORT_URL_TTL":    &cfg.ExportURLValidityDuration,
	}
	for name, dst := range durations {
		v, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		*dst = d
	}
}

// splitList splits a comma separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
