package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimson07/postFlow/internal/domain"
)

const testSecret = "test-secret-key-that-is-long-enough-for-hs256"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestIssuer(clock *fakeClock) *TokenIssuer {
	return NewTokenIssuer(testSecret, 5*time.Minute, WithClock(clock.Now))
}

func testUser() *domain.User {
	return &domain.User{ID: "user-123", Email: "jane@example.com", Role: domain.RoleAdmin}
}

// ---------------------------------------------------------------------------
// Issue / Verify round trip
// ---------------------------------------------------------------------------

func TestIssueVerify_RoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	issuer := newTestIssuer(clock)

	token, err := issuer.Issue(testUser())
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, Issuer, claims.Issuer)
	assert.Equal(t, clock.t, claims.IssuedAt.Time.UTC())
	assert.Equal(t, clock.t.Add(5*time.Minute), claims.ExpiresAt.Time.UTC())
}

func TestIssue_TruncatesIssuedAtToSecond(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 900_000_000, time.UTC)}
	issuer := newTestIssuer(clock)

	token, err := issuer.Issue(testUser())
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), claims.IssuedAt.Time.UTC())
}

func TestNewTokenIssuer_DefaultExpiry(t *testing.T) {
	assert.Equal(t, DefaultExpiry, NewTokenIssuer(testSecret, 0).Expiry())
	assert.Equal(t, time.Hour, NewTokenIssuer(testSecret, time.Hour).Expiry())
}

// ---------------------------------------------------------------------------
// Expiry boundary
// ---------------------------------------------------------------------------

func TestVerify_ValidJustBeforeExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	issuer := newTestIssuer(clock)

	token, err := issuer.Issue(testUser())
	require.NoError(t, err)

	clock.Advance(5*time.Minute - time.Millisecond)
	_, err = issuer.Verify(token)
	assert.NoError(t, err)
}

func TestVerify_ExpiredAfterWindow(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	issuer := newTestIssuer(clock)

	token, err := issuer.Issue(testUser())
	require.NoError(t, err)

	clock.Advance(5*time.Minute + time.Millisecond)
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

// ---------------------------------------------------------------------------
// Malformed tokens
// ---------------------------------------------------------------------------

func TestVerify_TamperedPayload(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	issuer := newTestIssuer(clock)

	token, err := issuer.Issue(testUser())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	parts[1] = parts[1][:len(parts[1])-2] + "xx"
	_, err = issuer.Verify(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestVerify_WrongKey(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	token, err := NewTokenIssuer("another-secret-entirely-different-0000", time.Minute, WithClock(clock.Now)).Issue(testUser())
	require.NoError(t, err)

	_, err = newTestIssuer(clock).Verify(token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestVerify_Garbage(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Minute)
	for _, raw := range []string{"", "abc", "a.b.c", "not-a-jwt-at-all"} {
		_, err := issuer.Verify(raw)
		assert.ErrorIs(t, err, ErrTokenMalformed, "raw=%q", raw)
	}
}

func TestVerify_RejectsAlgNone(t *testing.T) {
	now := time.Now()
	claims := &Claims{
		UserID: "user-123",
		Role:   domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenIssuer(testSecret, time.Minute).Verify(token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestVerify_RejectsForeignIssuer(t *testing.T) {
	now := time.Now()
	claims := &Claims{
		UserID: "user-123",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = NewTokenIssuer(testSecret, time.Minute).Verify(token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestVerify_RequiresExpiry(t *testing.T) {
	claims := &Claims{
		UserID:           "user-123",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = NewTokenIssuer(testSecret, time.Minute).Verify(token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}
