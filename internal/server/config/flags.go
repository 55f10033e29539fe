package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/vidtube/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string        HTTP bind address (e.g., ":8000")
//	-g string        gRPC bind address (e.g., ":50051")
//	-d string        PostgreSQL DSN
//	-storage string  storage backend: postgres or memory
//	-t duration      access token validity (e.g., "15m")
//	-r duration      refresh token validity (e.g., "240h")
//	-b string        S3 bucket name
//	-e string        S3 endpoint
//	-u string        upload staging directory
//	-log-level string
//	-log-format string
//
// Signing keys are deliberately not accepted on the command line.
//
// args is filtered with flagx.FilterArgs first so flags owned by other
// components do not cause parse errors.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{
		"-a", "-g", "-d", "-storage", "-t", "-r", "-b", "-e", "-u", "-log-level", "-log-format",
	})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port to run server")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "gRPC address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.StorageBackend, "storage", config.StorageBackend, "storage backend (postgres|memory)")
	fs.DurationVar(&config.AccessTokenTTL, "t", config.AccessTokenTTL, "access token validity")
	fs.DurationVar(&config.RefreshTokenTTL, "r", config.RefreshTokenTTL, "refresh token validity")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Endpoint, "e", config.S3Endpoint, "S3 endpoint")
	fs.StringVar(&config.UploadDir, "u", config.UploadDir, "upload staging directory")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level (debug|info|warn|error)")
	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "log format (json|text|zerolog)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
