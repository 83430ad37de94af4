package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	userModel "kosan_backend/internals/features/users/user/model"
)

const accessTTLDefault = 24 * time.Hour

var (
	ErrTokenInvalid = errors.New("token tidak valid")
	ErrTokenExpired = errors.New("token kedaluwarsa")
)

type AccessClaims struct {
	UserID    uuid.UUID
	Role      string
	ExpiresAt time.Time
}

// TokenService menerbitkan dan memverifikasi access token HS256.
type TokenService struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = accessTTLDefault
	}
	return &TokenService{Secret: []byte(secret), TTL: ttl, Now: time.Now}
}

func (t *TokenService) Issue(user *userModel.UserModel) (string, time.Time, error) {
	if len(t.Secret) == 0 {
		return "", time.Time{}, errors.New("JWT_SECRET kosong")
	}
	now := t.Now().UTC()
	exp := now.Add(t.TTL)
	claims := jwt.MapClaims{
		"typ":  "access",
		"sub":  user.ID.String(),
		"id":   user.ID.String(),
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse memverifikasi tanda tangan lalu exp (dengan jam milik service).
func (t *TokenService) Parse(raw string) (*AccessClaims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrTokenInvalid
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.Secret, nil
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, ErrTokenInvalid
	}
	expAt := time.Unix(int64(exp), 0).UTC()
	if !t.Now().UTC().Before(expAt) {
		return nil, ErrTokenExpired
	}

	idStr, _ := claims["id"].(string)
	if idStr == "" {
		idStr, _ = claims["sub"].(string)
	}
	uid, err := uuid.Parse(idStr)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	role, _ := claims["role"].(string)
	return &AccessClaims{UserID: uid, Role: strings.ToLower(role), ExpiresAt: expAt}, nil
}
