// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	configPath = pflag.String("config", ".", "Directory containing config.toml")

	validLogLevels  = []string{"debug", "info", "warn", "error", "fatal"}
	validDBDrivers  = []string{"sqlite", "postgres"}
	validCodeStores = []string{"memory", "redis"}
)

// ErrMissingSecret is returned when no JWT secret is configured
var ErrMissingSecret = errors.New("jwt.secret is not set")

// GenSecret returns a random hex string suitable for jwt.secret
func GenSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configPath)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}

		zap.L().Warn("No config.toml found, using defaults and environment")
	}

	return Load(v.GetViper())
}

// Load binds environment variables and defaults onto c and validates the
// result
func Load(c *v.Viper) error {
	c.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	c.AutomaticEnv()

	//
	// ENVS
	//
	for _, key := range []string{
		"app.log_level",
		"host.port",
		"host.cors",
		"jwt.secret",
		"jwt.ttl",
		"db.driver",
		"db.dsn",
		"codes.store",
		"codes.ttl",
		"codes.cleanup_schedule",
		"codes.cleanup_grace",
		"redis.addr",
		"redis.password",
		"redis.db",
		"mail.transport",
		"mail.host",
		"mail.port",
		"mail.user",
		"mail.password",
		"mail.sender",
		"mail.from_name",
		"mail.mailersend_key",
		"security.rate_limit",
		"security.max_body_size",
		"cloudflare.turnstile.enabled",
		"cloudflare.turnstile.secret_token",
	} {
		c.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	}

	//
	// Defaults
	//
	c.SetDefault("app.log_level", "info")

	c.SetDefault("host.port", 5000)
	c.SetDefault("host.cors", []string{"http://localhost:5173"})

	c.SetDefault("jwt.ttl", "24h")

	c.SetDefault("db.driver", "sqlite")
	c.SetDefault("db.dsn", "iskacare.db")

	c.SetDefault("codes.store", "memory")
	c.SetDefault("codes.ttl", "10m")
	c.SetDefault("codes.cleanup_schedule", "@hourly")
	c.SetDefault("codes.cleanup_grace", "24h")

	c.SetDefault("redis.addr", "localhost:6379")
	c.SetDefault("redis.db", 0)

	c.SetDefault("mail.transport", "log")
	c.SetDefault("mail.port", 587)
	c.SetDefault("mail.from_name", "Iska-Care")

	c.SetDefault("security.rate_limit", 5)
	c.SetDefault("security.max_body_size", 1<<20)

	c.SetDefault("cloudflare.turnstile.enabled", false)

	return validate(c)
}

func validate(c *v.Viper) error {
	if !slices.Contains(validLogLevels, c.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if c.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if c.GetString("jwt.secret") == "" {
		return ErrMissingSecret
	}

	if c.GetDuration("jwt.ttl") <= 0 {
		return errors.New("jwt.ttl must be a positive duration")
	}

	if !slices.Contains(validDBDrivers, c.GetString("db.driver")) {
		return errors.New("invalid db.driver provided")
	}

	if c.GetString("db.dsn") == "" {
		return errors.New("db.dsn can't be empty")
	}

	if !slices.Contains(validCodeStores, c.GetString("codes.store")) {
		return errors.New("invalid codes.store provided")
	}

	if c.GetDuration("codes.ttl") <= 0 {
		return errors.New("codes.ttl must be a positive duration")
	}

	if c.GetString("codes.store") == "redis" && c.GetString("redis.addr") == "" {
		return errors.New("redis.addr can't be empty when codes.store is redis")
	}

	switch c.GetString("mail.transport") {
	case "smtp":
		if c.GetString("mail.host") == "" {
			return errors.New("mail.host can't be empty")
		}
		if c.GetString("mail.sender") == "" {
			return errors.New("mail.sender can't be empty")
		}
	case "mailersend":
		if c.GetString("mail.mailersend_key") == "" {
			return errors.New("mail.mailersend_key can't be empty")
		}
		if c.GetString("mail.sender") == "" {
			return errors.New("mail.sender can't be empty")
		}
	case "log":
		zap.L().Warn("Mail transport is set to log. Codes will be written to the log instead of being sent")
	default:
		return errors.New("invalid mail.transport provided")
	}

	if c.GetFloat64("security.rate_limit") <= 0 {
		return errors.New("security.rate_limit must be bigger than 0")
	}

	if c.GetInt64("security.max_body_size") <= 0 {
		return errors.New("security.max_body_size must be bigger than 0")
	}

	if !c.GetBool("cloudflare.turnstile.enabled") {
		zap.L().Warn("Cloudflare's turnstile is disabled. Code sending endpoints won't be guarded against bots")
	} else if c.GetString("cloudflare.turnstile.secret_token") == "" {
		return errors.New("turnstile secret token is missing")
	}

	return nil
}
