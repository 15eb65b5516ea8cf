package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const deviceRole = "device"

// Claims is the JWT payload issued to sensor devices.
type Claims struct {
	DeviceID string `json:"device_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and validates device tokens.
type TokenService struct {
	secret    []byte
	expiresIn time.Duration
	now       func() time.Time
}

// NewTokenService returns configured token service.
func NewTokenService(secret string, expiresIn time.Duration) *TokenService {
	if expiresIn <= 0 {
		expiresIn = time.Hour
	}
	return &TokenService{secret: []byte(secret), expiresIn: expiresIn, now: time.Now}
}

// GenerateToken issues a token for deviceID.
func (t *TokenService) GenerateToken(deviceID string) (string, time.Time, error) {
	if deviceID == "" {
		return "", time.Time{}, errors.New("token: device id is required")
	}

	now := t.now().UTC()
	expiresAt := now.Add(t.expiresIn)
	claims := Claims{
		DeviceID: deviceID,
		Role:     deviceRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   deviceID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateToken verifies and decodes a device token.
func (t *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("token: unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("token: invalid claims")
	}
	if claims.Role != deviceRole || claims.DeviceID == "" {
		return nil, errors.New("token: not a device token")
	}
	return claims, nil
}
