package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown device or wrong secret.
var ErrInvalidCredentials = errors.New("invalid device credentials")

// DeviceVerifier checks a device secret against a configured bcrypt hash.
type DeviceVerifier struct {
	deviceID   string
	secretHash []byte
}

// NewDeviceVerifier returns verifier for a single registered device.
func NewDeviceVerifier(deviceID, secretHash string) *DeviceVerifier {
	return &DeviceVerifier{deviceID: deviceID, secretHash: []byte(secretHash)}
}

// Verify returns nil when deviceID and secret match the registration.
func (v *DeviceVerifier) Verify(deviceID, secret string) error {
	if v.deviceID == "" || len(v.secretHash) == 0 {
		return ErrInvalidCredentials
	}
	idMatch := subtle.ConstantTimeCompare([]byte(deviceID), []byte(v.deviceID)) == 1
	// Compare the hash even on an id mismatch so both paths cost the same.
	hashErr := bcrypt.CompareHashAndPassword(v.secretHash, []byte(secret))
	if !idMatch || hashErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashSecret produces a bcrypt hash suitable for the deviceSecretHash setting.
func HashSecret(secret string, cost int) (string, error) {
	if secret == "" {
		return "", errors.New("auth: empty secret")
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
