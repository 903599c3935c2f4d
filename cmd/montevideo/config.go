package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/montevideo/internal/logger"
	"github.com/nkiryanov/montevideo/internal/service/youtube"
)

const (
	defaultListenAddr     = "localhost:8000"
	defaultLoggingLevel   = logger.LevelInfo
	defaultEnvironment    = logger.EnvProduction
	defaultAccessTTL      = time.Hour
	defaultRequestTimeout = 10 * time.Second
)

type Config struct {
	// Default logging level
	LogLevel string

	// Environment: 'dev' or 'prod'
	Environment string

	// Address on which the service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Secret keys to sign access and refresh tokens. Both required and must differ
	AccessSecret  string
	RefreshSecret string

	// Tokens lifetime. Zero refresh TTL means refresh token never expires
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Issue new refresh token on every refresh
	RotateRefresh bool

	// Deadline for every http request, including db calls made during it
	RequestTimeout time.Duration

	// YouTube Data API key. Import disabled if empty
	YouTubeAPIKey string

	// YouTube Data API address
	YouTubeAddr string

	// Import most popular videos periodically. Zero disables periodic import
	YouTubeImportInterval time.Duration
}

func NewConfig() *Config {
	return &Config{
		LogLevel:       defaultLoggingLevel,
		Environment:    defaultEnvironment,
		ListenAddr:     defaultListenAddr,
		AccessTTL:      defaultAccessTTL,
		RequestTimeout: defaultRequestTimeout,
		YouTubeAddr:    youtube.DefaultAddr,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}
	setDuration := func(o *time.Duration) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			*o = d
			return nil
		}
	}
	setBool := func(o *bool) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			b, err := strconv.ParseBool(value)
			if err != nil {
				return err
			}
			*o = b
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":          setString(&c.ListenAddr),
		"DATABASE_URI":         setString(&c.DatabaseDSN),
		"ACCESS_TOKEN_SECRET":  setString(&c.AccessSecret),
		"REFRESH_TOKEN_SECRET": setString(&c.RefreshSecret),
		"LOG_LEVEL":            setString(&c.LogLevel),
		"ENVIRONMENT":          setString(&c.Environment),
		"ACCESS_TOKEN_TTL":     setDuration(&c.AccessTTL),
		"REFRESH_TOKEN_TTL":    setDuration(&c.RefreshTTL),
		"ROTATE_REFRESH_TOKEN": setBool(&c.RotateRefresh),
		"REQUEST_TIMEOUT":      setDuration(&c.RequestTimeout),
		"YOUTUBE_API_KEY":      setString(&c.YouTubeAPIKey),
		"YOUTUBE_API_ADDRESS":  setString(&c.YouTubeAddr),
		"YT_IMPORT_INTERVAL":   setDuration(&c.YouTubeImportInterval),
	}

	var errs []error
	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			errs = append(errs, fmt.Errorf("env %s: %w", key, err))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("montevideo", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVar(&c.AccessSecret, "access-secret", c.AccessSecret, "Secret key to sign access tokens")
	fs.StringVar(&c.RefreshSecret, "refresh-secret", c.RefreshSecret, "Secret key to sign refresh tokens")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.DurationVar(&c.AccessTTL, "access-ttl", c.AccessTTL, "Access token lifetime")
	fs.DurationVar(&c.RefreshTTL, "refresh-ttl", c.RefreshTTL, "Refresh token lifetime, 0 means never expires")
	fs.BoolVar(&c.RotateRefresh, "rotate-refresh", c.RotateRefresh, "Issue new refresh token on every refresh")
	fs.DurationVar(&c.RequestTimeout, "request-timeout", c.RequestTimeout, "Deadline for every request, 0 disables it")
	fs.StringVar(&c.YouTubeAPIKey, "youtube-api-key", c.YouTubeAPIKey, "YouTube Data API key")
	fs.StringVar(&c.YouTubeAddr, "youtube-addr", c.YouTubeAddr, "YouTube Data API address")
	fs.DurationVar(&c.YouTubeImportInterval, "yt-import-interval", c.YouTubeImportInterval, "Import most popular YouTube videos periodically, 0 disables it")

	return fs.Parse(args)
}
