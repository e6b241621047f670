package csrf

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/ndavydov/auth-sessions/internal/config"
	"go.uber.org/zap"
)

const tokenBytes = 64

type Port interface {
	NewToken() (string, string, error)
	Verify(cookieVal, headerToken string) error
}

// Core implements the double-submit check: the cookie carries
// "token|signature", the client echoes the token portion in a header and
// both must match. Signing the cookie keeps a subdomain attacker from
// planting a cookie/header pair of their own choosing.
type Core struct {
	secret []byte
}

func New(conf config.Config) *Core {
	return &Core{secret: []byte(conf.Auth.CSRF.Secret)}
}

// NewToken returns the raw token (128 hex chars) and the cookie value.
func (c *Core) NewToken() (string, string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		zap.L().Error("failed to generate csrf token", zap.Error(err))
		return "", "", ErrGenerationFailed
	}

	token := hex.EncodeToString(b)
	return token, token + "|" + c.sign(token), nil
}

func (c *Core) Verify(cookieVal, headerToken string) error {
	if cookieVal == "" || headerToken == "" {
		return ErrValidationFailed
	}

	token, sig, found := strings.Cut(cookieVal, "|")
	if !found {
		return ErrValidationFailed
	}

	if !hmac.Equal([]byte(c.sign(token)), []byte(sig)) {
		return ErrValidationFailed
	}

	if subtle.ConstantTimeCompare([]byte(token), []byte(headerToken)) != 1 {
		return ErrValidationFailed
	}

	return nil
}

func (c *Core) sign(token string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}
