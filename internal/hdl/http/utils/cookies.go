package utils

import (
	"net/http"
	"time"

	"github.com/ndavydov/auth-sessions/internal/config"
)

// SetAuthCookies issues the access/refresh pair. Expiries come from the
// token issuer so cookies die together with the tokens they carry; the
// refresh cookie always outlives the access cookie.
func SetAuthCookies(w http.ResponseWriter, access, refresh string, accessExp, refreshExp time.Time) {
	http.SetCookie(
		w, &http.Cookie{
			Name:     config.AccessCookieName,
			Value:    access,
			Expires:  accessExp,
			MaxAge:   int(time.Until(accessExp).Seconds()),
			HttpOnly: true,
			Path:     "/",
			SameSite: http.SameSiteLaxMode,
		},
	)

	http.SetCookie(
		w, &http.Cookie{
			Name:     config.RefreshCookieName,
			Value:    refresh,
			Expires:  refreshExp,
			MaxAge:   int(time.Until(refreshExp).Seconds()),
			HttpOnly: true,
			Path:     "/",
			SameSite: http.SameSiteLaxMode,
		},
	)
}

func SetDeviceCookie(w http.ResponseWriter, deviceID string) {
	http.SetCookie(
		w, &http.Cookie{
			Name:     config.DeviceCookieName,
			Value:    deviceID,
			MaxAge:   int((time.Hour * 24 * 365).Seconds()),
			HttpOnly: true,
			Path:     "/",
			SameSite: http.SameSiteLaxMode,
		},
	)
}

func SetCSRFCookie(w http.ResponseWriter, mode, value string) {
	http.SetCookie(
		w, &http.Cookie{
			Name:     config.CSRFCookieName(mode),
			Value:    value,
			HttpOnly: true,
			Secure:   mode == "prod",
			Path:     "/",
			SameSite: http.SameSiteLaxMode,
		},
	)
}

// ClearAuthCookies re-sets access, refresh and device cookies with an epoch
// expiry, terminating the browser's hold on them.
func ClearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{
		config.AccessCookieName,
		config.RefreshCookieName,
		config.DeviceCookieName,
	} {
		http.SetCookie(
			w, &http.Cookie{
				Name:     name,
				Value:    "",
				MaxAge:   -1,
				Expires:  time.Unix(0, 0),
				HttpOnly: true,
				Path:     "/",
				SameSite: http.SameSiteLaxMode,
			},
		)
	}
}
