package csrf

import (
	"strings"
	"testing"

	"github.com/ndavydov/auth-sessions/internal/config"
	"github.com/stretchr/testify/assert"
)

func newTestCore(secret string) *Core {
	conf := config.Config{}
	conf.Auth.CSRF.Secret = secret
	return New(conf)
}

func TestCore_NewToken(t *testing.T) {
	core := newTestCore("test-secret")

	token, cookieVal, err := core.NewToken()
	assert.NoError(t, err)
	assert.Len(t, token, 128)
	assert.True(t, strings.HasPrefix(cookieVal, token+"|"))

	// Cookie value carries the token plus its signature.
	_, sig, found := strings.Cut(cookieVal, "|")
	assert.True(t, found)
	assert.Len(t, sig, 64)
}

func TestCore_Verify(t *testing.T) {
	core := newTestCore("test-secret")

	token, cookieVal, err := core.NewToken()
	assert.NoError(t, err)

	otherToken, otherCookie, err := core.NewToken()
	assert.NoError(t, err)

	tests := []struct {
		name    string
		cookie  string
		header  string
		wantErr bool
	}{
		{
			name:   "Match",
			cookie: cookieVal,
			header: token,
		},
		{
			name:    "HeaderMismatch",
			cookie:  cookieVal,
			header:  otherToken,
			wantErr: true,
		},
		{
			name:    "EmptyHeader",
			cookie:  cookieVal,
			header:  "",
			wantErr: true,
		},
		{
			name:    "EmptyCookie",
			cookie:  "",
			header:  token,
			wantErr: true,
		},
		{
			name:    "CookieWithoutSignature",
			cookie:  token,
			header:  token,
			wantErr: true,
		},
		{
			name:    "ForgedSignature",
			cookie:  token + "|" + strings.Repeat("0", 64),
			header:  token,
			wantErr: true,
		},
		{
			name:    "SwappedCookie",
			cookie:  otherCookie,
			header:  token,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := core.Verify(tt.cookie, tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidationFailed)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCore_Verify_SignedWithDifferentSecret(t *testing.T) {
	core := newTestCore("test-secret")
	other := newTestCore("other-secret")

	token, cookieVal, err := other.NewToken()
	assert.NoError(t, err)

	// A cookie signed under another key never verifies here.
	assert.NoError(t, other.Verify(cookieVal, token))
	assert.ErrorIs(t, core.Verify(cookieVal, token), ErrValidationFailed)
}
