// Package auth issues and verifies the capability credentials accepted by
// the reward engine. A capability is an HMAC-signed token carrying a subject
// and a role claim; possession of a token verifiable by the configured
// authority is necessary and sufficient for admin-gated operations.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleRewardAdmin grants the administrative escape hatch on reward records:
// creation in strict mode, deadline/expiry extension and status overrides.
const RoleRewardAdmin = "ROLE_REWARD_ADMIN"

const minSecretLength = 32

var (
	ErrInvalidCredential = errors.New("auth: invalid credential")
	ErrRoleMismatch      = errors.New("auth: credential role mismatch")
	errShortSecret       = fmt.Errorf("auth: signing secret must be at least %d bytes", minSecretLength)
)

// Capability is the verified identity extracted from a credential token.
type Capability struct {
	Subject   string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type capabilityClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authority mints and verifies capability tokens with a shared HMAC secret.
// Tokens are bearer credentials: the authority never stores them, so a token
// exists only with whichever principal currently holds it.
type Authority struct {
	secret []byte
	issuer string
	ttl    time.Duration
	nowFn  func() time.Time
}

// NewAuthority creates an authority signing with the given secret. Tokens are
// valid for ttl after issuance.
func NewAuthority(secret []byte, issuer string, ttl time.Duration) (*Authority, error) {
	if len(secret) < minSecretLength {
		return nil, errShortSecret
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token ttl must be positive")
	}
	return &Authority{
		secret: append([]byte(nil), secret...),
		issuer: strings.TrimSpace(issuer),
		ttl:    ttl,
		nowFn:  time.Now,
	}, nil
}

// SetNowFunc overrides the clock used for issuance and expiry checks.
// Primarily intended for tests.
func (a *Authority) SetNowFunc(now func() time.Time) {
	if now == nil {
		a.nowFn = time.Now
		return
	}
	a.nowFn = now
}

func (a *Authority) now() time.Time {
	if a == nil || a.nowFn == nil {
		return time.Now()
	}
	return a.nowFn()
}

// Mint issues a signed capability token for the subject and role.
func (a *Authority) Mint(subject, role string) (string, error) {
	if a == nil {
		return "", ErrInvalidCredential
	}
	subject = strings.TrimSpace(subject)
	role = strings.TrimSpace(role)
	if subject == "" || role == "" {
		return "", errors.New("auth: subject and role are required")
	}
	now := a.now()
	claims := capabilityClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign credential: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a capability token, returning the verified
// capability on success.
func (a *Authority) Verify(token string) (*Capability, error) {
	if a == nil || strings.TrimSpace(token) == "" {
		return nil, ErrInvalidCredential
	}
	claims := &capabilityClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidCredential
	}
	if a.issuer != "" && claims.Issuer != a.issuer {
		return nil, ErrInvalidCredential
	}
	role := strings.TrimSpace(claims.Role)
	if role == "" {
		return nil, ErrInvalidCredential
	}
	capability := &Capability{
		Subject: claims.Subject,
		Role:    role,
	}
	if claims.IssuedAt != nil {
		capability.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		capability.ExpiresAt = claims.ExpiresAt.Time
	}
	return capability, nil
}

// VerifyAdmin reports whether the token carries the reward admin role. It
// satisfies the engine's CapabilityVerifier contract.
func (a *Authority) VerifyAdmin(token string) error {
	capability, err := a.Verify(token)
	if err != nil {
		return err
	}
	if capability.Role != RoleRewardAdmin {
		return ErrRoleMismatch
	}
	return nil
}
