package jwt

import (
	"errors"
	"time"

	"github.com/MrEthical07/tokenguard/internal"
	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptySubject is returned when a token is requested for an empty subject.
var ErrEmptySubject = errors.New("token subject is empty")

// Issuer mints access and refresh tokens through a [Codec]. Both kinds are
// structurally identical apart from the type claim and their default TTL.
type Issuer struct {
	codec      *Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
	newID      func() (string, error)
}

// NewIssuer returns an Issuer that falls back to accessTTL / refreshTTL when
// a caller passes a non-positive ttl.
func NewIssuer(codec *Codec, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	if codec == nil {
		return nil, errors.New("issuer requires a codec")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	return &Issuer{
		codec:      codec,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		newID:      internal.NewTokenID,
	}, nil
}

// AccessTTL returns the default access-token lifetime.
func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }

// RefreshTTL returns the default refresh-token lifetime.
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

// IssueAccess mints an access token for subject valid for ttl.
func (i *Issuer) IssueAccess(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = i.accessTTL
	}
	return i.issue(subject, KindAccess, ttl)
}

// IssueRefresh mints a refresh token for subject valid for ttl.
//
// Validation does not separate kinds; endpoints that mint new tokens from a
// presented one must check Claims.Type == KindRefresh themselves.
func (i *Issuer) IssueRefresh(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = i.refreshTTL
	}
	return i.issue(subject, KindRefresh, ttl)
}

func (i *Issuer) issue(subject string, kind Kind, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", ErrEmptySubject
	}

	jti, err := i.newID()
	if err != nil {
		return "", err
	}

	now := i.codec.Now()
	claims := Claims{
		Type: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return i.codec.Encode(claims)
}
