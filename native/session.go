package native

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const privateKeySize = 32

var (
	// ErrInvalidCredential is a configuration error, the credential can't be used as a private key
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrInvalidEndpoint is a configuration error, the endpoint is empty
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	// ErrInvalidSession bearer session token is malformed, expired or badly signed
	ErrInvalidSession = errors.New("invalid session token")
)

// SessionClaims of a self-signed session token, Subject is an owner id
type SessionClaims struct {
	// Key base64url compressed P-256 public key of a token signer
	Key string `json:"key"`
	jwt.RegisteredClaims
}

// ParsePrivateKey decodes hex encoded P-256 private key, empty string generates a new random key
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	if hexKey == "" {
		return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, errors.Wrap(ErrInvalidCredential, "not a hex string")
	}
	if len(raw) != privateKeySize {
		return nil, errors.Wrapf(ErrInvalidCredential, "expected %d bytes key, got %d", privateKeySize, len(raw))
	}
	curve := elliptic.P256()
	d := new(big.Int).SetBytes(raw)
	if d.Sign() == 0 || d.Cmp(curve.Params().N) >= 0 {
		return nil, errors.Wrap(ErrInvalidCredential, "key is out of curve order")
	}
	key := &ecdsa.PrivateKey{D: d}
	key.PublicKey.Curve = curve
	key.PublicKey.X, key.PublicKey.Y = curve.ScalarBaseMult(raw)
	return key, nil
}

// OwnerID identifies key holder as hex of compressed public key
func OwnerID(pub *ecdsa.PublicKey) string {
	return hex.EncodeToString(elliptic.MarshalCompressed(pub.Curve, pub.X, pub.Y))
}

// NewSessionToken signs session token with a key, no network I/O involved
func NewSessionToken(key *ecdsa.PrivateKey, lifetime time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(lifetime)
	claims := SessionClaims{
		Key: base64.RawURLEncoding.EncodeToString(elliptic.MarshalCompressed(key.Curve, key.X, key.Y)),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   OwnerID(&key.PublicKey),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(key)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign session token")
	}
	return tok, exp, nil
}

// VerifySessionToken checks token signature against the key it carries and returns owner id
func VerifySessionToken(token string) (string, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		c, ok := t.Claims.(*SessionClaims)
		if !ok {
			return nil, errors.New("unexpected claims")
		}
		pub, err := decodePublicKey(c.Key)
		if err != nil {
			return nil, err
		}
		if OwnerID(pub) != c.Subject {
			return nil, errors.New("owner doesn't match key")
		}
		return pub, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", errors.Wrap(ErrInvalidSession, err.Error())
	}
	return claims.Subject, nil
}

func decodePublicKey(s string) (*ecdsa.PublicKey, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "bad key encoding")
	}
	curve := elliptic.P256()
	x, y := elliptic.UnmarshalCompressed(curve, raw)
	if x == nil {
		return nil, errors.New("bad public key")
	}
	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}
