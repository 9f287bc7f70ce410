package services

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrVerifierNotReady = errors.New("verification key not installed")
	ErrInvalidToken     = errors.New("invalid rating token")
)

// RatingClaims is the claim set carried by a rating token.
type RatingClaims struct {
	ClientID       string `json:"clientId"`
	TargetClientID string `json:"targetClientId"`
	RoomID         string `json:"roomId"`
	Emoji          string `json:"emoji"`
	jwt.RegisteredClaims
}

// Verifier validates rating tokens against the hub-issued RSA public key.
// The key arrives asynchronously after the hub handshake; until it is
// installed every Verify call fails closed with ErrVerifierNotReady.
type Verifier struct {
	mu  sync.RWMutex
	key *rsa.PublicKey
}

func NewVerifier() *Verifier {
	return &Verifier{}
}

// InstallKey makes the verifier start accepting tokens signed by the
// matching private key.
func (v *Verifier) InstallKey(key *rsa.PublicKey) {
	v.mu.Lock()
	v.key = key
	v.mu.Unlock()
}

func (v *Verifier) Ready() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.key != nil
}

// Verify parses and validates a rating token and returns its claims.
func (v *Verifier) Verify(tokenString string) (*RatingClaims, error) {
	v.mu.RLock()
	key := v.key
	v.mu.RUnlock()
	if key == nil {
		return nil, ErrVerifierNotReady
	}

	claims := &RatingClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
