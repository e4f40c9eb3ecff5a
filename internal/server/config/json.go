package config

import (
	"encoding/json"
	"os"

	"github.com/PPPP98/SSAFY-SecondBrain/internal/flagx"
	"github.com/PPPP98/SSAFY-SecondBrain/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Duration fields
// accept "15m" style strings or integer nanoseconds.
type JsonConfig struct {
	HTTPAddr                     string         `json:"http_addr"`
	GRPCAddr                     string         `json:"grpc_addr"`
	DatabaseDSN                  string         `json:"database_dsn"`
	RedisAddr                    string         `json:"redis_addr"`
	RedisPassword                string         `json:"redis_password"`
	RedisDB                      int            `json:"redis_db"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	SessionKeyPrefix             string         `json:"session_key_prefix"`
	RevokeScanBatch              int            `json:"revoke_scan_batch"`
	StoreTimeout                 timex.Duration `json:"store_timeout"`
	CookieSecure                 bool           `json:"cookie_secure"`
	CookieDomain                 string         `json:"cookie_domain"`
	OAuthClientID                string         `json:"oauth_client_id"`
	OAuthClientSecret            string         `json:"oauth_client_secret"`
	OAuthRedirectURL             string         `json:"oauth_redirect_url"`
	OAuthAuthURL                 string         `json:"oauth_auth_url"`
	OAuthTokenURL                string         `json:"oauth_token_url"`
	OAuthUserInfoURL             string         `json:"oauth_user_info_url"`
	LogLevel                     string         `json:"log_level"`
}

// parseJson overlays values from the file named by -c/-config. Keys missing
// from the file keep their current value. An unreadable file or invalid JSON
// panics: the process must not start on a half-read configuration.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFilePath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := fromConfig(config)
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}
	c.apply(config)
}

func fromConfig(cfg *Config) *JsonConfig {
	return &JsonConfig{
		HTTPAddr:                     cfg.HTTPAddr,
		GRPCAddr:                     cfg.GRPCAddr,
		DatabaseDSN:                  cfg.DatabaseDSN,
		RedisAddr:                    cfg.RedisAddr,
		RedisPassword:                cfg.RedisPassword,
		RedisDB:                      cfg.RedisDB,
		SecretKey:                    cfg.SecretKey,
		AccessTokenValidityDuration:  timex.Duration{Duration: cfg.AccessTokenValidityDuration},
		RefreshTokenValidityDuration: timex.Duration{Duration: cfg.RefreshTokenValidityDuration},
		SessionKeyPrefix:             cfg.SessionKeyPrefix,
		RevokeScanBatch:              cfg.RevokeScanBatch,
		StoreTimeout:                 timex.Duration{Duration: cfg.StoreTimeout},
		CookieSecure:                 cfg.CookieSecure,
		CookieDomain:                 cfg.CookieDomain,
		OAuthClientID:                cfg.OAuthClientID,
		OAuthClientSecret:            cfg.OAuthClientSecret,
		OAuthRedirectURL:             cfg.OAuthRedirectURL,
		OAuthAuthURL:                 cfg.OAuthAuthURL,
		OAuthTokenURL:                cfg.OAuthTokenURL,
		OAuthUserInfoURL:             cfg.OAuthUserInfoURL,
		LogLevel:                     cfg.LogLevel,
	}
}

func (c *JsonConfig) apply(cfg *Config) {
	cfg.HTTPAddr = c.HTTPAddr
	cfg.GRPCAddr = c.GRPCAddr
	cfg.DatabaseDSN = c.DatabaseDSN
	cfg.RedisAddr = c.RedisAddr
	cfg.RedisPassword = c.RedisPassword
	cfg.RedisDB = c.RedisDB
	cfg.SecretKey = c.SecretKey
	cfg.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	cfg.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	cfg.SessionKeyPrefix = c.SessionKeyPrefix
	cfg.RevokeScanBatch = c.RevokeScanBatch
	cfg.StoreTimeout = c.StoreTimeout.Duration
	cfg.CookieSecure = c.CookieSecure
	cfg.CookieDomain = c.CookieDomain
	cfg.OAuthClientID = c.OAuthClientID
	cfg.OAuthClientSecret = c.OAuthClientSecret
	cfg.OAuthRedirectURL = c.OAuthRedirectURL
	cfg.OAuthAuthURL = c.OAuthAuthURL
	cfg.OAuthTokenURL = c.OAuthTokenURL
	cfg.OAuthUserInfoURL = c.OAuthUserInfoURL
	cfg.LogLevel = c.LogLevel
}
