package devbackend

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
)

var errInvalidToken = errors.New("invalid token")

// tokenClaims is the payload of both token kinds.
type tokenClaims struct {
	Kind string `json:"typ"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (i *Issuer) issue(kind, userID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Kind: kind,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(i.secret)
}

// Access issues an access token bound to the active role.
func (i *Issuer) Access(userID, role string) (string, error) {
	return i.issue(kindAccess, userID, role, i.accessTTL)
}

// Refresh issues a refresh token.
func (i *Issuer) Refresh(userID string) (string, error) {
	return i.issue(kindRefresh, userID, "", i.refreshTTL)
}

// AccessTTL is reported to clients as expiresIn.
func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }

// Parse verifies token and checks it is of the wanted kind.
func (i *Issuer) Parse(token, kind string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return i.secret, nil
	})
	if err != nil || !tkn.Valid || claims.Kind != kind || claims.Subject == "" {
		return nil, errInvalidToken
	}
	return claims, nil
}
