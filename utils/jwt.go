package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// SupabaseAudience is the aud claim Supabase puts on user access tokens.
const SupabaseAudience = "authenticated"

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrMissingSubject   = errors.New("token does not contain a valid 'sub' claim")
	ErrJWTSecretMissing = errors.New("jwt secret is not configured")
)

// AuthClaims are the fields this service reads from a Supabase access token.
type AuthClaims struct {
	Subject string
	Email   string
	Role    string
}

// GenerateToken creates an HS256 token shaped like a Supabase access token.
// It is used by tooling and tests; production tokens are minted by Supabase Auth.
func GenerateToken(subject, email, secret string, duration time.Duration) (string, error) {
	if secret == "" {
		return "", ErrJWTSecretMissing
	}
	claims := jwt.MapClaims{
		"sub":   subject,
		"email": email,
		"role":  SupabaseAudience,
		"aud":   SupabaseAudience,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString, secret string) (*jwt.Token, error) {
	if secret == "" {
		return nil, ErrJWTSecretMissing
	}
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
}

// ParseAuthClaims validates a Supabase access token and extracts its claims.
func ParseAuthClaims(tokenString, secret string) (*AuthClaims, error) {
	token, err := ValidateToken(tokenString, secret)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if !claims.VerifyAudience(SupabaseAudience, false) {
		return nil, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, ErrMissingSubject
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return &AuthClaims{Subject: sub, Email: email, Role: role}, nil
}
