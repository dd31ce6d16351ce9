package native

import (
	"crypto/ecdsa"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testKey = "1dd37fba80fec4e6a6f13fd708d8dcb3b29def768017052f6c930fa1c5d90bbb"

func TestParsePrivateKey(t *testing.T) {
	key, err := ParsePrivateKey(testKey)
	require.NoError(t, err)
	require.True(t, key.Curve.IsOnCurve(key.X, key.Y))

	owner := OwnerID(&key.PublicKey)
	require.Len(t, owner, 66)
	require.True(t, strings.HasPrefix(owner, "02") || strings.HasPrefix(owner, "03"))

	again, err := ParsePrivateKey("0x" + testKey)
	require.NoError(t, err)
	require.Equal(t, owner, OwnerID(&again.PublicKey))
}

func TestParsePrivateKeyRandom(t *testing.T) {
	k1, err := ParsePrivateKey("")
	require.NoError(t, err)
	k2, err := ParsePrivateKey("")
	require.NoError(t, err)
	require.NotEqual(t, OwnerID(&k1.PublicKey), OwnerID(&k2.PublicKey))
}

func TestParsePrivateKeyInvalid(t *testing.T) {
	for _, bad := range []string{
		"not a key",
		"abcd",
		testKey + "00",
		strings.Repeat("00", 32),
		strings.Repeat("ff", 32),
	} {
		_, err := ParsePrivateKey(bad)
		require.ErrorIs(t, err, ErrInvalidCredential, bad)
	}
}

func TestSessionToken(t *testing.T) {
	key, err := ParsePrivateKey(testKey)
	require.NoError(t, err)

	tok, exp, err := NewSessionToken(key, time.Hour)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	owner, err := VerifySessionToken(tok)
	require.NoError(t, err)
	require.Equal(t, OwnerID(&key.PublicKey), owner)
}

func TestSessionTokenRejected(t *testing.T) {
	key, err := ParsePrivateKey(testKey)
	require.NoError(t, err)

	expired, _, err := NewSessionToken(key, -time.Minute)
	require.NoError(t, err)
	_, err = VerifySessionToken(expired)
	require.ErrorIs(t, err, ErrInvalidSession)

	tok, _, err := NewSessionToken(key, time.Hour)
	require.NoError(t, err)
	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	other, _, err := NewSessionToken(mustRandomKey(t), time.Hour)
	require.NoError(t, err)
	// payload of one token with signature of another
	forged := parts[0] + "." + parts[1] + "." + strings.Split(other, ".")[2]
	_, err = VerifySessionToken(forged)
	require.ErrorIs(t, err, ErrInvalidSession)

	_, err = VerifySessionToken("garbage")
	require.ErrorIs(t, err, ErrInvalidSession)
}

func mustRandomKey(t *testing.T) *ecdsa.PrivateKey {
	k, err := ParsePrivateKey("")
	require.NoError(t, err)
	return k
}
