package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ndavydov/auth-sessions/internal/auth/csrf"
	"github.com/ndavydov/auth-sessions/internal/auth/jwt"
	"github.com/ndavydov/auth-sessions/internal/config"
	"github.com/ndavydov/auth-sessions/internal/dto"
	"github.com/ndavydov/auth-sessions/internal/hdl"
	"github.com/ndavydov/auth-sessions/internal/hdl/http/utils"
	md "github.com/ndavydov/auth-sessions/internal/models"
	metrics "github.com/ndavydov/auth-sessions/internal/observability/metrics/prometheus"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

type SessionValidator interface {
	ValidateAccessToken(ctx context.Context, uid, deviceID uuid.UUID) (*md.User, error)
}

type RateCounter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) bool
}

// Device requires the device identity cookie: a session-mutating endpoint
// cannot run without knowing which (user, device) slot it addresses.
func Device(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(config.DeviceCookieName)
			if err != nil {
				utils.ErrResponse(w, http.StatusBadRequest, ErrNoDeviceCookie)
				return
			}

			id, err := uuid.Parse(cookie.Value)
			if err != nil || id.Version() != 4 {
				utils.ErrResponse(w, http.StatusBadRequest, ErrNoDeviceCookie)
				return
			}

			ctx := context.WithValue(
				r.Context(), config.DeviceKey, dto.DeviceRequest{
					ID: id,
					IP: r.RemoteAddr,
					UA: r.UserAgent(),
				},
			)
			next.ServeHTTP(w, r.WithContext(ctx))
		},
	)
}

// DeviceIssue mints a device id for browsers that do not hold one yet.
// The id is a plain correlation token; it carries no authority by itself.
func DeviceIssue(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if _, err := r.Cookie(config.DeviceCookieName); err != nil {
				utils.SetDeviceCookie(w, uuid.NewString())
			}

			next.ServeHTTP(w, r)
		},
	)
}

// CSRF is the double-submit gate: the header must echo the token half of
// the signed cookie on every mutating request.
func CSRF(c csrf.Port, mode string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				cookie, err := r.Cookie(config.CSRFCookieName(mode))
				if err != nil {
					utils.ErrResponse(w, http.StatusUnauthorized, csrf.ErrValidationFailed)
					return
				}

				if err = c.Verify(cookie.Value, r.Header.Get(config.CSRFHeaderName)); err != nil {
					utils.ErrResponse(w, http.StatusUnauthorized, csrf.ErrValidationFailed)
					return
				}

				next.ServeHTTP(w, r)
			},
		)
	}
}

// Auth verifies the access cookie and the backing session, then puts the
// uid in context. Every failure is one 401: callers cannot tell a missing
// user from an expired session from a store error.
func Auth(au jwt.Port, sv SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				access, err := r.Cookie(config.AccessCookieName)
				if err != nil {
					utils.ErrResponse(w, http.StatusUnauthorized, hdl.ErrUnauthorized)
					return
				}

				claims, err := au.ParseClaims(r.Context(), access.Value)
				if err != nil {
					utils.ErrResponse(w, http.StatusUnauthorized, hdl.ErrUnauthorized)
					return
				}

				d, ok := utils.ParseDeviceByRequest(r.Context())
				if !ok {
					utils.ErrResponse(w, http.StatusUnauthorized, hdl.ErrUnauthorized)
					return
				}

				if _, err = sv.ValidateAccessToken(r.Context(), claims.UID, d.ID); err != nil {
					utils.ErrResponse(w, http.StatusUnauthorized, hdl.ErrUnauthorized)
					return
				}

				ctx := context.WithValue(r.Context(), config.UidKey, claims.UID)
				next.ServeHTTP(w, r.WithContext(ctx))
			},
		)
	}
}

// RateLimit counts per client ip within a fixed window.
func RateLimit(rc RateCounter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				key := fmt.Sprintf("rl:%s:%s", r.RemoteAddr, r.URL.Path)
				if !rc.Allow(r.Context(), key, config.RateLimitRequests, config.RateLimitWindow) {
					utils.ErrResponse(w, http.StatusTooManyRequests, ErrTooManyRequests)
					return
				}

				next.ServeHTTP(w, r)
			},
		)
	}
}

type LoggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func NewLoggingResponseWriter(w http.ResponseWriter) *LoggingResponseWriter {
	return &LoggingResponseWriter{w, http.StatusOK}
}

func (lrw *LoggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func Prometheus(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			s := time.Now()
			op := fmt.Sprintf("%s %s", r.Method, r.URL.Path)

			lrw := NewLoggingResponseWriter(w)
			next.ServeHTTP(lrw, r)
			metrics.ObserveRequest(time.Since(s), lrw.statusCode, op)
		},
	)
}

func Logger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				start := time.Now()
				lrw := NewLoggingResponseWriter(w)
				logger.Debug(
					"-->",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote", r.RemoteAddr),
				)

				next.ServeHTTP(lrw, r)

				logger.Info(
					"<--",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", lrw.statusCode),
					zap.Duration("duration", time.Since(start)),
					zap.String("remote", r.RemoteAddr),
				)
			},
		)
	}
}

func OT(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			span, ctx := opentracing.StartSpanFromContext(r.Context(), fmt.Sprintf("%s %s", r.Method, r.RequestURI))
			defer span.Finish()

			next.ServeHTTP(w, r.WithContext(ctx))
		},
	)
}
