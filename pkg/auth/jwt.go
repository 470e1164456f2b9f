package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	SecretKey       []byte
	Duration        time.Duration
	RefreshDuration time.Duration
}

func NewJWTManager(secretKey string, duration, refreshDuration time.Duration) *JWTManager {
	return &JWTManager{
		SecretKey:       []byte(secretKey),
		Duration:        duration,
		RefreshDuration: refreshDuration,
	}
}

func (j *JWTManager) GenerateToken(userID, email, role string) (string, error) {
	return j.generate(userID, email, role, j.Duration)
}

// GenerateRefreshToken issues a longer-lived token used only at the
// refresh endpoint.
func (j *JWTManager) GenerateRefreshToken(userID, email, role string) (string, error) {
	return j.generate(userID, email, role, j.RefreshDuration)
}

func (j *JWTManager) generate(userID, email, role string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.SecretKey)
}

func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return j.SecretKey, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
