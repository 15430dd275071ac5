package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewJWTService("secret", "clinic-schedule")
	clinicID := uuid.New()

	token, err := svc.GenerateToken(clinicID, "front-desk", time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	got, err := claims.Clinic()
	require.NoError(t, err)
	assert.Equal(t, clinicID, got)
	assert.Equal(t, "front-desk", claims.Subject)
}

func TestValidateToken_Rejects(t *testing.T) {
	svc := NewJWTService("secret", "clinic-schedule")
	clinicID := uuid.New()

	expired, err := svc.GenerateToken(clinicID, "x", -time.Minute)
	require.NoError(t, err)

	otherKey, err := NewJWTService("other", "clinic-schedule").GenerateToken(clinicID, "x", time.Hour)
	require.NoError(t, err)

	otherIssuer, err := NewJWTService("secret", "someone-else").GenerateToken(clinicID, "x", time.Hour)
	require.NoError(t, err)

	noClinic, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "clinic-schedule",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{ClinicID: clinicID.String()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":      expired,
		"wrong key":    otherKey,
		"wrong issuer": otherIssuer,
		"no clinic":    noClinic,
		"alg none":     unsigned,
		"garbage":      "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
