package config

import "strconv"

const (
	EnvSecretKey         = "SECONDBRAIN_JWT_SECRET"
	EnvRedisPassword     = "SECONDBRAIN_REDIS_PASSWORD"
	EnvOAuthClientSecret = "SECONDBRAIN_OAUTH_CLIENT_SECRET"
	EnvCookieSecure      = "SECONDBRAIN_COOKIE_SECURE"
)

// parseEnv lets deployments keep secrets out of files and argv.
func parseEnv(config *Config, getenv func(string) string) {
	if v := getenv(EnvSecretKey); v != "" {
		config.SecretKey = v
	}
	if v := getenv(EnvRedisPassword); v != "" {
		config.RedisPassword = v
	}
	if v := getenv(EnvOAuthClientSecret); v != "" {
		config.OAuthClientSecret = v
	}
	if v := getenv(EnvCookieSecure); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.CookieSecure = b
		}
	}
}
