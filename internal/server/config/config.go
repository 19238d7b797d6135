// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the content API server.
//
// Fields:
//   - HTTPAddr: bind address for the HTTP API.
//   - GRPCAddr: bind address for the gRPC health endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty keeps all data in memory.
//   - SecretKey: HMAC secret for signing bearer tokens (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration: bearer token lifetime.
//   - RedisAddr: Redis address for shared throttle counters. Empty keeps counters in memory.
//   - BaseURL: public URL prefix used in verification links.
//   - LogLevel: debug, info, warn or error.
//   - VerificationTokenValidity: lifetime of an email verification token.
//   - ThrottleRates: per-scope "N/period" overrides of the default budgets.
//   - ShutdownTimeout: grace period for in-flight requests on shutdown.
type Config struct {
	HTTPAddr                    string
	GRPCAddr                    string
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	RedisAddr                   string
	BaseURL                     string
	LogLevel                    string
	VerificationTokenValidity   time.Duration
	ThrottleRates               map[string]string
	ShutdownTimeout             time.Duration
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret key is insecure for production and must be overridden.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8000"
	c.GRPCAddr = ":50051"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 60 * time.Minute
	c.RedisAddr = ""
	c.BaseURL = "http://localhost:8000"
	c.LogLevel = "info"
	c.VerificationTokenValidity = 24 * time.Hour
	c.ShutdownTimeout = 10 * time.Second
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
