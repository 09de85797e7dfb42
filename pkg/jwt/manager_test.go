package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateAndVerify(t *testing.T) {
	m := NewManager("test-secret", 900)

	token, err := m.GenerateToken("42")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := m.VerifyToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, "42", claims.Subject)
}

func TestVerifyExpired(t *testing.T) {
	m := NewManager("test-secret", -1)

	token, err := m.GenerateToken("42")
	assert.NoError(t, err)

	_, err = m.VerifyToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", 900)
	verifier := NewManager("secret-b", 900)

	token, err := issuer.GenerateToken("42")
	assert.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyGarbage(t *testing.T) {
	m := NewManager("test-secret", 900)

	_, err := m.VerifyToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNoSecret(t *testing.T) {
	m := NewManager("", 900)
	assert.False(t, m.Ready())

	_, err := m.GenerateToken("42")
	assert.ErrorIs(t, err, ErrNoSecret)

	_, err = m.VerifyToken("anything")
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestExpirySetFromConfig(t *testing.T) {
	m := NewManager("test-secret", 3600)

	token, err := m.GenerateToken("7")
	assert.NoError(t, err)

	claims, err := m.VerifyToken(token)
	assert.NoError(t, err)

	remaining := time.Until(claims.ExpiresAt.Time)
	assert.Greater(t, remaining, 59*time.Minute)
	assert.LessOrEqual(t, remaining, time.Hour)
}
