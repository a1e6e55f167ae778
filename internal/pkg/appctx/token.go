package appctx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 是 BaaS 签发的访问令牌里用到的字段
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenVerifier 用项目的 JWT secret 校验 HS256 令牌
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Verify 校验令牌，接受带或不带 "Bearer " 前缀的字符串
func (v *TokenVerifier) Verify(bearer string) (*Claims, error) {
	raw := strings.TrimSpace(bearer)
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	}
	if raw == "" {
		return nil, ErrUnauthenticated
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, errors.Join(ErrUnauthenticated, fmt.Errorf("invalid token: %w", err))
	}
	if claims.Subject == "" {
		return nil, errors.Join(ErrUnauthenticated, errors.New("token has no subject"))
	}
	return claims, nil
}
