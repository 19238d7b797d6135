package config

import (
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/dmitrijs2005/cms/internal/flagx"
	"github.com/dmitrijs2005/cms/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration, so both "90s" and integer nanoseconds are accepted.
// Fields left out of the file keep their current value.
type JsonConfig struct {
	HTTPAddr                    string            `json:"http_addr"`
	GRPCAddr                    string            `json:"grpc_addr"`
	DatabaseDSN                 string            `json:"database_dsn"`
	SecretKey                   string            `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration    `json:"access_token_validity_duration"`
	RedisAddr                   string            `json:"redis_addr"`
	BaseURL                     string            `json:"base_url"`
	LogLevel                    string            `json:"log_level"`
	VerificationTokenValidity   timex.Duration    `json:"verification_token_validity"`
	ThrottleRates               map[string]string `json:"throttle_rates"`
	ShutdownTimeout             timex.Duration    `json:"shutdown_timeout"`
}

// parseJson loads configuration values from the JSON file named by the -c
// or -config flag into config. Without the flag nothing is loaded. An
// unreadable or malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])
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

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.BaseURL, c.BaseURL)
	setString(&config.LogLevel, c.LogLevel)
	setDuration(&config.VerificationTokenValidity, c.VerificationTokenValidity)
	setDuration(&config.ShutdownTimeout, c.ShutdownTimeout)
	if len(c.ThrottleRates) > 0 {
		config.ThrottleRates = c.ThrottleRates
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration > 0 {
		*dst = v.Duration
	}
}
