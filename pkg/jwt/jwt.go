package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// leeway tolera desfases de reloj entre el emisor de tokens y este servicio.
const leeway = 30 * time.Second

// Claims incluye los claims estándar JWT más la granja activa y el rol del usuario.
// FarmID es el tenant de todas las operaciones del libro de inventario.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	FarmID string `json:"farm_id"`
	Role   string `json:"role"` // "owner" | "manager" | "worker"
}

var errEmptySecret = errors.New("jwt: secret vacío")

// Generate genera un token JWT firmado con userID, farmID y role.
// El servicio solo valida tokens; Generate existe para herramientas internas y tests.
func Generate(secret, userID, farmID, role, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", errEmptySecret
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID: userID,
		FarmID: farmID,
		Role:   role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseClaims valida firma (solo HS256), expiración y devuelve los claims.
// Si el token no trae user_id se usa el subject.
func ParseClaims(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, errEmptySecret
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
	)
	if err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	return claims, nil
}

// Parse valida el token y devuelve userID, farmID y role.
func Parse(secret, tokenString string) (userID, farmID, role string, err error) {
	claims, err := ParseClaims(secret, tokenString)
	if err != nil {
		return "", "", "", err
	}
	return claims.UserID, claims.FarmID, claims.Role, nil
}
