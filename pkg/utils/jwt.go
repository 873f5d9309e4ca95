package utils

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired or not yet valid")
	ErrRefreshToken = errors.New("cannot use refresh token here")
	ErrAccessToken  = errors.New("refresh token required")
)

// TokenClaims is the payload carried by both access and refresh tokens.
// Refresh distinguishes the two kinds.
type TokenClaims struct {
	UserID  uint
	Refresh bool
	Iat     int64
	Exp     int64
	JTI     string
}

// TokenPair holds a freshly issued access + refresh token.
type TokenPair struct {
	TokenType             string `json:"token_type"`
	AccessToken           string `json:"access_token"`
	IssuedAt              int64  `json:"issued_at"`
	ExpiresAt             int64  `json:"expires_at"`
	RefreshToken          string `json:"refresh_token"`
	RefreshTokenID        string `json:"-"`
	RefreshTokenIssuedAt  int64  `json:"refresh_token_issued_at"`
	RefreshTokenExpiresAt int64  `json:"refresh_token_expires_at"`
}

func signToken(userID uint, refresh bool, ttl time.Duration, now time.Time) (string, string, int64, error) {
	jti := uuid.NewString()
	claims := jwt.MapClaims{
		"id":      userID,
		"refresh": refresh,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
		"jti":     jti,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	return signed, jti, now.Add(ttl).Unix(), err
}

// GenerateTokenPair issues a short-lived access token and a longer-lived
// refresh token for the user.
func GenerateTokenPair(userID uint, accessTTL, refreshTTL time.Duration) (*TokenPair, error) {
	now := time.Now()

	access, _, accessExp, err := signToken(userID, false, accessTTL, now)
	if err != nil {
		return nil, err
	}
	refresh, jti, refreshExp, err := signToken(userID, true, refreshTTL, now)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		TokenType:             "Bearer",
		AccessToken:           access,
		IssuedAt:              now.Unix(),
		ExpiresAt:             accessExp,
		RefreshToken:          refresh,
		RefreshTokenID:        jti,
		RefreshTokenIssuedAt:  now.Unix(),
		RefreshTokenExpiresAt: refreshExp,
	}, nil
}

// ValidateToken verifies the signature and the [iat, exp] window and returns
// the decoded claims.
func ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	id, ok := mapClaims["id"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}
	iat, ok := mapClaims["iat"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}
	exp, ok := mapClaims["exp"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}
	refresh, _ := mapClaims["refresh"].(bool)
	jti, _ := mapClaims["jti"].(string)

	now := time.Now().Unix()
	if now < int64(iat) || now > int64(exp) {
		return nil, ErrTokenExpired
	}

	return &TokenClaims{
		UserID:  uint(id),
		Refresh: refresh,
		Iat:     int64(iat),
		Exp:     int64(exp),
		JTI:     jti,
	}, nil
}

// ValidateAccessToken is ValidateToken plus the access-only check.
func ValidateAccessToken(tokenString string) (*TokenClaims, error) {
	claims, err := ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Refresh {
		return nil, ErrRefreshToken
	}
	return claims, nil
}

// ValidateRefreshToken accepts only refresh tokens.
func ValidateRefreshToken(tokenString string) (*TokenClaims, error) {
	claims, err := ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if !claims.Refresh {
		return nil, ErrAccessToken
	}
	return claims, nil
}
