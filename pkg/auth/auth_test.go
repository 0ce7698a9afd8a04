package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestJWT_RoundTrip(t *testing.T) {
	cfg := JWTConfig{SecretKey: "s3cret", Issuer: "string-analyzer"}
	gen, err := NewJWTGenerator(cfg)
	require.NoError(t, err)
	validator, err := NewJWTValidator(cfg)
	require.NoError(t, err)

	token, err := gen.GenerateToken("admin", []string{"writer"})
	require.NoError(t, err)

	claims, err := validator.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, []string{"writer"}, claims.Roles)

	ctx := WithClaims(context.Background(), claims)
	got, ok := ClaimsFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, claims, got)
}

func TestJWT_Rejections(t *testing.T) {
	validator, err := NewJWTValidator(JWTConfig{SecretKey: "s3cret", Issuer: "string-analyzer"})
	require.NoError(t, err)

	wrongKey, _ := NewJWTGenerator(JWTConfig{SecretKey: "other", Issuer: "string-analyzer"})
	badSig, _ := wrongKey.GenerateToken("admin", nil)
	_, err = validator.ValidateToken(badSig)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	expiredGen, _ := NewJWTGenerator(JWTConfig{SecretKey: "s3cret", Issuer: "string-analyzer", Expiry: -time.Minute})
	expired, _ := expiredGen.GenerateToken("admin", nil)
	_, err = validator.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrExpiredToken)

	otherIssuer, _ := NewJWTGenerator(JWTConfig{SecretKey: "s3cret", Issuer: "someone-else"})
	foreign, _ := otherIssuer.GenerateToken("admin", nil)
	_, err = validator.ValidateToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidClaims)

	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "string-analyzer"},
	}).SignedString([]byte("s3cret"))
	_, err = validator.ValidateToken(noSubject)
	assert.ErrorIs(t, err, ErrInvalidClaims)

	_, err = validator.ValidateToken("   ")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = validator.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewJWTValidator(JWTConfig{})
	assert.Error(t, err)
}

func TestTokenBucketLimiter(t *testing.T) {
	l := NewTokenBucketLimiter(60, 2)
	defer l.Stop()

	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "ip:1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "ip:1")
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "ip:2")
	assert.True(t, ok, "keys have independent buckets")

	clock = clock.Add(time.Second)
	ok, _ = l.Allow(ctx, "ip:1")
	assert.True(t, ok, "one token refills per second at 60/min")

	require.NoError(t, l.Reset(ctx, "ip:1"))
	ok, _ = l.Allow(ctx, "ip:1")
	assert.True(t, ok)

	clock = clock.Add(2 * time.Hour)
	l.evictIdle()
	l.mu.Lock()
	assert.Empty(t, l.buckets)
	l.mu.Unlock()
}
