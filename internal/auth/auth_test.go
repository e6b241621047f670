package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasher(t *testing.T) {
	h := NewHasher()

	hashed, err := h.Hash("validpassword123!")
	assert.NoError(t, err)
	assert.NotEmpty(t, hashed)
	assert.NotEqual(t, "validpassword123!", hashed)

	assert.NoError(t, h.ComparePasswords([]byte(hashed), []byte("validpassword123!")))
	assert.ErrorIs(
		t,
		h.ComparePasswords([]byte(hashed), []byte("wrongpassword")),
		ErrInvalidCredentials,
	)
}

func TestHashSecret(t *testing.T) {
	first := HashSecret("some-secret")
	second := HashSecret("some-secret")

	// Deterministic, so a conditional update can match the stored value.
	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	assert.NotEqual(t, first, HashSecret("other-secret"))
	assert.NotContains(t, first, "some-secret")
}
