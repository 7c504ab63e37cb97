package jwt_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/dairy-ledger/pkg/jwt"
)

const (
	testSecret = "test-secret-key-for-unit-tests"
	testUserID = "00000000-0000-0000-0000-000000000001"
	testFarmID = "00000000-0000-0000-0000-000000000002"
)

func TestGenerateAndParse_ConGranjaYRol(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testUserID, testFarmID, "worker", "dairy-ledger-test", 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, farmID, role, err := pkgjwt.Parse(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, testUserID, userID)
	assert.Equal(t, testFarmID, farmID)
	assert.Equal(t, "worker", role)
}

func TestParse_TokenExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testUserID, testFarmID, "owner", "dairy-ledger-test", -1)
	require.NoError(t, err)

	_, _, _, err = pkgjwt.Parse(testSecret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, testUserID, testFarmID, "owner", "dairy-ledger-test", 60)
	require.NoError(t, err)

	_, _, _, err = pkgjwt.Parse("otro-secret", tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", testUserID, testFarmID, "owner", "x", 60)
	assert.Error(t, err)
}

func TestParseClaims_RechazaOtroAlgoritmo(t *testing.T) {
	claims := pkgjwt.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           testUserID,
		FarmID:           testFarmID,
		Role:             "owner",
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = pkgjwt.ParseClaims(testSecret, tok)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestParseClaims_SinExpiracionRechazado(t *testing.T) {
	claims := pkgjwt.Claims{UserID: testUserID, FarmID: testFarmID, Role: "owner"}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = pkgjwt.ParseClaims(testSecret, tok)
	assert.ErrorIs(t, err, jwt.ErrTokenRequiredClaimMissing)
}

func TestParseClaims_UserIDDesdeSubject(t *testing.T) {
	claims := pkgjwt.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   testUserID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		FarmID: testFarmID,
		Role:   "worker",
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	got, err := pkgjwt.ParseClaims(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, testUserID, got.UserID)
	assert.Equal(t, testFarmID, got.FarmID)
}
