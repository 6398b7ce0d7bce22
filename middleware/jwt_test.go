package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret-32bytes-padded!!"

func TestGenerateToken_Valid(t *testing.T) {
	tok, err := GenerateToken("sess-1", testSecret, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, tok)
}

func TestParseToken_Valid(t *testing.T) {
	tok, err := GenerateToken("sess-42", testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(tok, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "sess-42", claims.SessionID)
}

func TestParseToken_WrongSecret(t *testing.T) {
	tok, err := GenerateToken("sess-1", testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok, "wrong-secret")
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	tok, err := GenerateToken("sess-1", testSecret, -time.Second)
	require.NoError(t, err)

	_, err = ParseToken(tok, testSecret)
	assert.Error(t, err)
}

func TestParseToken_Garbage(t *testing.T) {
	_, err := ParseToken("not.a.jwt", testSecret)
	assert.Error(t, err)
}
