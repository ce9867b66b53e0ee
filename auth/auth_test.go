package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestAuthority(t *testing.T) *Authority {
	t.Helper()
	authority, err := NewAuthority(testSecret, "pointsledger-test", time.Hour)
	require.NoError(t, err)
	return authority
}

func TestAuthorityRejectsWeakSetup(t *testing.T) {
	_, err := NewAuthority([]byte("short"), "svc", time.Hour)
	require.Error(t, err)

	_, err = NewAuthority(testSecret, "svc", 0)
	require.Error(t, err)
}

func TestMintVerifyRoundtrip(t *testing.T) {
	authority := newTestAuthority(t)

	token, err := authority.Mint("ops@example.com", RoleRewardAdmin)
	require.NoError(t, err)

	capability, err := authority.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "ops@example.com", capability.Subject)
	require.Equal(t, RoleRewardAdmin, capability.Role)
	require.NoError(t, authority.VerifyAdmin(token))
}

func TestVerifyAdminRejectsOtherRoles(t *testing.T) {
	authority := newTestAuthority(t)

	token, err := authority.Mint("reporting@example.com", "ROLE_REPORTING")
	require.NoError(t, err)
	require.ErrorIs(t, authority.VerifyAdmin(token), ErrRoleMismatch)
}

func TestVerifyRejectsForgedTokens(t *testing.T) {
	authority := newTestAuthority(t)

	forger, err := NewAuthority([]byte("ffffffffffffffffffffffffffffffff"), "pointsledger-test", time.Hour)
	require.NoError(t, err)
	forged, err := forger.Mint("intruder", RoleRewardAdmin)
	require.NoError(t, err)

	_, err = authority.Verify(forged)
	require.ErrorIs(t, err, ErrInvalidCredential)
	require.ErrorIs(t, authority.VerifyAdmin(forged), ErrInvalidCredential)

	_, err = authority.Verify("")
	require.ErrorIs(t, err, ErrInvalidCredential)
	_, err = authority.Verify("not-a-token")
	require.ErrorIs(t, err, ErrInvalidCredential)
}

func TestVerifyRejectsExpiredTokens(t *testing.T) {
	authority := newTestAuthority(t)
	issued := time.Unix(1_700_000_000, 0)
	authority.SetNowFunc(func() time.Time { return issued })

	token, err := authority.Mint("ops@example.com", RoleRewardAdmin)
	require.NoError(t, err)

	authority.SetNowFunc(func() time.Time { return issued.Add(2 * time.Hour) })
	_, err = authority.Verify(token)
	require.ErrorIs(t, err, ErrInvalidCredential)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	authority := newTestAuthority(t)
	other, err := NewAuthority(testSecret, "another-service", time.Hour)
	require.NoError(t, err)

	token, err := other.Mint("ops@example.com", RoleRewardAdmin)
	require.NoError(t, err)
	_, err = authority.Verify(token)
	require.ErrorIs(t, err, ErrInvalidCredential)
}
