package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionTokenTTL = 24 * time.Hour

var ErrTokenInvalid = errors.New("token invalid")

type Claims struct {
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// Issuer signs and checks session tokens. A token names the one session it may
// drive and lets a browser reopen that session later.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    sessionTokenTTL,
		now:    time.Now,
	}
}

// TTL is how long a signed token stays valid.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

func (i *Issuer) Sign(sessionID string) (string, error) {
	now := i.now()
	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verify returns the session id carried by a valid token.
func (i *Issuer) Verify(token string) (string, error) {
	parsed, err := parseClaimsFn(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return i.secret, nil
	})
	if err != nil {
		return "", errors.Join(ErrTokenInvalid, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.SessionID == "" {
		return "", ErrTokenInvalid
	}
	return claims.SessionID, nil
}

var parseClaimsFn = func(token string, claims jwt.Claims, keyFunc jwt.Keyfunc) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, claims, keyFunc)
}
