// Package auth issues and verifies the signed access and refresh tokens that
// carry a principal's identity between requests.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ClaimsVersion is the only claim schema version the issuer accepts.
const ClaimsVersion = 1

// Kind distinguishes access tokens from refresh tokens.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims is the fixed claim schema shared by both token kinds. Refresh tokens
// leave the profile fields empty.
type Claims struct {
	jwt.RegisteredClaims
	Version     int    `json:"ver"`
	Kind        Kind   `json:"kind"`
	Email       string `json:"email,omitempty"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// IssuerConfig holds the signing keys and lifetimes of both token kinds.
type IssuerConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Issuer mints and verifies tokens. It is safe for concurrent use.
type Issuer struct {
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewIssuer validates cfg and returns an Issuer.
func NewIssuer(cfg IssuerConfig) (*Issuer, error) {
	switch {
	case cfg.AccessSecret == "":
		return nil, errors.New("access token secret is not set")
	case cfg.RefreshSecret == "":
		return nil, errors.New("refresh token secret is not set")
	case cfg.AccessSecret == cfg.RefreshSecret:
		return nil, errors.New("access and refresh token secrets must differ")
	case cfg.AccessTTL <= 0:
		return nil, fmt.Errorf("access token ttl must be positive, got %s", cfg.AccessTTL)
	case cfg.RefreshTTL <= 0:
		return nil, fmt.Errorf("refresh token ttl must be positive, got %s", cfg.RefreshTTL)
	}

	return &Issuer{
		accessKey:  []byte(cfg.AccessSecret),
		refreshKey: []byte(cfg.RefreshSecret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}, nil
}

// RefreshTTL is the lifetime of refresh tokens minted by i.
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

// IssueAccessToken mints a short-lived token carrying u's public profile.
func (i *Issuer) IssueAccessToken(u *models.User) (string, error) {
	c := i.claims(u, KindAccess, i.accessTTL)
	c.Email = u.Email
	c.Username = u.Username
	c.DisplayName = u.DisplayName
	return i.sign(c, i.accessKey)
}

// IssueRefreshToken mints a long-lived token that identifies u only.
func (i *Issuer) IssueRefreshToken(u *models.User) (string, error) {
	return i.sign(i.claims(u, KindRefresh, i.refreshTTL), i.refreshKey)
}

func (i *Issuer) claims(u *models.User, kind Kind, ttl time.Duration) *Claims {
	now := i.now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Version: ClaimsVersion,
		Kind:    kind,
	}
}

func (i *Issuer) sign(c *Claims, key []byte) (string, error) {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", c.Kind, err)
	}
	return s, nil
}

// Verify checks the signature, expiry and schema of token against the key of
// the expected kind. Errors are common.ErrTokenMissing, common.ErrTokenExpired
// or common.ErrTokenMalformed.
func (i *Issuer) Verify(token string, kind Kind) (*Claims, error) {
	if token == "" {
		return nil, common.ErrTokenMissing
	}

	var key []byte
	switch kind {
	case KindAccess:
		key = i.accessKey
	case KindRefresh:
		key = i.refreshKey
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", common.ErrTokenMalformed, kind)
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", common.ErrTokenMalformed, err)
	}

	switch {
	case claims.Version != ClaimsVersion:
		return nil, fmt.Errorf("%w: unsupported version %d", common.ErrTokenMalformed, claims.Version)
	case claims.Kind != kind:
		return nil, fmt.Errorf("%w: expected %s token, got %q", common.ErrTokenMalformed, kind, claims.Kind)
	case claims.Subject == "":
		return nil, fmt.Errorf("%w: missing subject", common.ErrTokenMalformed)
	}

	return claims, nil
}
