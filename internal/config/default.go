package config

import "time"

type ctxKey string

const (
	UidKey    ctxKey = "uid"
	DeviceKey ctxKey = "device"
)

const ErrorSpanTag = "error"

const (
	DefaultCacheTime = time.Hour

	MaxSessionsPerUser = 5
	SweepInterval      = time.Hour * 24
)

const (
	AccessCookieName  = "access"
	RefreshCookieName = "refresh"
	DeviceCookieName  = "deviceId"
	CSRFHeaderName    = "x-csrf-token"

	AccessTokenDuration  = time.Minute * 30
	RefreshTokenDuration = time.Hour * 24 * 7
)

const (
	RateLimitWindow   = time.Minute
	RateLimitRequests = 30
)

// CSRFCookieName returns the csrf cookie name for the given server mode.
// The __Host- prefix requires Secure and Path=/, so it is prod-only.
func CSRFCookieName(mode string) string {
	if mode == "prod" {
		return "__Host-csrf"
	}
	return "csrf"
}
