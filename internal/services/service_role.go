package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const ServiceRole = "service_role"

var (
	ErrServiceRoleDisabled = errors.New("service role is not configured")
	ErrServiceRoleInvalid  = errors.New("invalid service role token")
)

// ServiceRoleVerifier checks HS256 bearer tokens carrying role=service_role.
// These tokens grant administrative capabilities such as deleting any account.
type ServiceRoleVerifier struct {
	secret []byte
}

func NewServiceRoleVerifier(secret string) *ServiceRoleVerifier {
	return &ServiceRoleVerifier{secret: []byte(secret)}
}

func (v *ServiceRoleVerifier) Enabled() bool {
	return v != nil && len(v.secret) > 0
}

func (v *ServiceRoleVerifier) Verify(tokenString string) (jwt.MapClaims, error) {
	if !v.Enabled() {
		return nil, ErrServiceRoleDisabled
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceRoleInvalid, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrServiceRoleInvalid
	}
	if role, _ := claims["role"].(string); role != ServiceRole {
		return nil, ErrServiceRoleInvalid
	}

	return claims, nil
}

// NewServiceRoleToken signs a service-role token. A zero ttl omits exp.
func NewServiceRoleToken(secret string, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrServiceRoleDisabled
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"role": ServiceRole,
		"sub":  subject,
		"iat":  now.Unix(),
	}
	if ttl > 0 {
		claims["exp"] = now.Add(ttl).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing service role token: %w", err)
	}
	return signed, nil
}
