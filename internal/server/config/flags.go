package config

import (
	"flag"
	"time"

	"github.com/PPPP98/SSAFY-SecondBrain/internal/flagx"
)

var flagNames = []string{
	"a", "g", "d", "s", "t", "r",
	"redis-addr", "redis-password", "redis-db",
	"cookie-secure", "cookie-domain",
	"oauth-client-id", "oauth-client-secret", "oauth-redirect-url",
	"log-level",
}

// parseFlags overlays command-line flags onto config.
//
//	-a string   HTTP bind address
//	-g string   gRPC bind address
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key (>= 32 bytes)
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//
// plus long-form flags for Redis, cookies, OAuth and logging. Boolean flags
// take their value inline (-cookie-secure=false).
//
// Invalid flags panic, like an invalid JSON file.
func parseFlags(config *Config, args []string) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "gRPC address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "JWT secret key")

	accessMinutes := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshMinutes := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")

	fs.StringVar(&config.RedisAddr, "redis-addr", config.RedisAddr, "Redis address")
	fs.StringVar(&config.RedisPassword, "redis-password", config.RedisPassword, "Redis password")
	fs.IntVar(&config.RedisDB, "redis-db", config.RedisDB, "Redis database index")
	fs.BoolVar(&config.CookieSecure, "cookie-secure", config.CookieSecure, "mark auth cookies Secure")
	fs.StringVar(&config.CookieDomain, "cookie-domain", config.CookieDomain, "auth cookie domain")
	fs.StringVar(&config.OAuthClientID, "oauth-client-id", config.OAuthClientID, "OAuth2 client id")
	fs.StringVar(&config.OAuthClientSecret, "oauth-client-secret", config.OAuthClientSecret, "OAuth2 client secret")
	fs.StringVar(&config.OAuthRedirectURL, "oauth-redirect-url", config.OAuthRedirectURL, "OAuth2 redirect URL")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(flagx.FilterArgs(args, flagNames...)); err != nil {
		panic(err)
	}

	// Lifetimes from earlier layers may be finer than a minute; only an
	// explicit -t or -r replaces them.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessMinutes) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = time.Duration(*refreshMinutes) * time.Minute
		}
	})
}
