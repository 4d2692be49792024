package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"staffdir/internal/domain"
)

var (
	// ErrTokenInvalid covers malformed tokens, bad signatures and wrong
	// signing algorithms.
	ErrTokenInvalid = errors.New("token: invalid")
	// ErrTokenExpired is returned for a well-formed, correctly signed token
	// whose expiry is in the past.
	ErrTokenExpired = errors.New("token: expired")
)

// roleClaim is fixed; the service has no role management.
const roleClaim = "ADMIN"

// Claims is the decoded payload of an access token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Codec issues and verifies HMAC-SHA256 signed access tokens. The secret is
// loaded once at startup and never mutated, so a single Codec is safe for
// concurrent use.
type Codec struct {
	secret    []byte
	accessTTL time.Duration
}

func NewCodec(secret string, accessTTL time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token: secret is required")
	}
	if accessTTL == 0 {
		return nil, errors.New("token: access ttl is required")
	}
	return &Codec{secret: []byte(secret), accessTTL: accessTTL}, nil
}

// Issue builds a signed access token for the user: subject is the username,
// issued-at is now, expiry is now plus the configured TTL.
func (c *Codec) Issue(user *domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: roleClaim,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature and structure. Expired tokens yield ErrTokenExpired,
// every other failure ErrTokenInvalid; the two are distinguishable with
// errors.Is so callers can log them apart.
func (c *Codec) Parse(tokenString string) (*Claims, error) {
	claims, err := c.parse(tokenString, jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Subject extracts the username a valid token was issued for.
func (c *Codec) Subject(tokenString string) (string, error) {
	claims, err := c.Parse(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// IsExpired reports whether a structurally valid token is past its expiry.
// It does not fail on expired tokens; a malformed token counts as expired.
func (c *Codec) IsExpired(tokenString string) bool {
	claims, err := c.parse(tokenString, jwt.WithoutClaimsValidation())
	if err != nil || claims.ExpiresAt == nil {
		return true
	}
	return !time.Now().Before(claims.ExpiresAt.Time)
}

func (c *Codec) parse(tokenString string, opts ...jwt.ParserOption) (*Claims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return &claims, nil
}
