package service

import (
	"testing"
	"time"

	"procurement/internal/apperror"
	"procurement/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("secret", 7*24*time.Hour)
	user := &model.User{ID: uuid.New(), Role: model.RoleProcurement}

	signed, err := svc.Issue(user)
	require.NoError(t, err)

	id, err := svc.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	var claims Claims
	_, _, err = jwt.NewParser().ParseUnverified(signed, &claims)
	require.NoError(t, err)
	assert.Equal(t, model.RoleProcurement, claims.Role)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenRejected(t *testing.T) {
	user := &model.User{ID: uuid.New(), Role: model.RoleRequester}

	expired := &tokenService{secret: []byte("secret"), expiry: time.Hour, now: func() time.Time { return time.Now().Add(-2 * time.Hour) }}
	expiredToken, err := expired.Issue(user)
	require.NoError(t, err)

	otherSecret, err := NewTokenService("other", time.Hour).Issue(user)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: user.ID.String()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "not-a-uuid",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	svc := NewTokenService("secret", time.Hour)
	tests := map[string]string{
		"expired":      expiredToken,
		"wrong secret": otherSecret,
		"alg none":     unsigned,
		"bad subject":  badSubject,
		"garbage":      "not.a.token",
		"empty":        "",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Parse(token)
			assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))
		})
	}
}
