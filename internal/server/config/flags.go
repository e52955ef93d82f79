package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-m string   metrics/health HTTP bind address
//	-d string   PostgreSQL DSN
//	-o string   product store: postgres, mongo or memory
//	-x string   Redis address for change fan-out
//	-k string   comma separated Kafka brokers
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-l string   log level
//
// Duration flags are integers in minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-m", "-d", "-o", "-x", "-k", "-s", "-t", "-r", "-u", "-p", "-b", "-g", "-e", "-l",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.EndpointAddrHTTP, "m", config.EndpointAddrHTTP, "address and port for metrics and health")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.ProductStore, "o", config.ProductStore, "product store: postgres, mongo, memory")
	fs.StringVar(&config.RedisAddr, "x", config.RedisAddr, "redis address")
	kafkaBrokers := fs.String("k", strings.Join(config.KafkaBrokers, ","), "kafka brokers, comma separated")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.KafkaBrokers = splitList(*kafkaBrokers)
	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
}
