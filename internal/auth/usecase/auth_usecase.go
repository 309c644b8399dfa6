package usecase

import (
	"errors"
	"fmt"
	"strings"
	"time"

	authdomain "trialfinder-backend/internal/auth/domain"
	"trialfinder-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidClaims = errors.New("invalid token claims")
)

// AuthUsecase verifies session tokens issued by the identity provider
type AuthUsecase interface {
	ValidateToken(tokenString string) (*authdomain.Principal, error)
	GenerateToken(p authdomain.Principal, ttl time.Duration) (string, error)
}

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	config *config.Config
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(cfg *config.Config) AuthUsecase {
	return &authUsecase{
		config: cfg,
	}
}

// GenerateToken signs a session token for p. The identity provider issues
// tokens in production; this is used by tests and local tooling.
func (u *authUsecase) GenerateToken(p authdomain.Principal, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   p.UserID,
		"email": p.Email,
		"role":  string(p.Role),
		"exp":   time.Now().Add(ttl).Unix(),
		"iat":   time.Now().Unix(),
	}
	if u.config.JWTIssuer != "" {
		claims["iss"] = u.config.JWTIssuer
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}

func (u *authUsecase) ValidateToken(tokenString string) (*authdomain.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if u.config.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(u.config.JWTIssuer))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.config.JWTSecret), nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidClaims
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		userID, _ = claims["user_id"].(string)
	}
	if userID == "" {
		return nil, ErrInvalidClaims
	}
	email, _ := claims["email"].(string)

	return &authdomain.Principal{
		UserID: userID,
		Email:  email,
		Role:   roleFromClaims(claims),
	}, nil
}

// roleFromClaims reads the role from the top level or from the provider's
// metadata objects. Unknown or missing roles default to patient.
func roleFromClaims(claims jwt.MapClaims) authdomain.Role {
	candidates := []any{claims["role"]}
	for _, key := range []string{"metadata", "public_metadata", "publicMetadata"} {
		if m, ok := claims[key].(map[string]interface{}); ok {
			candidates = append(candidates, m["role"])
		}
	}
	for _, c := range candidates {
		s, ok := c.(string)
		if !ok {
			continue
		}
		if role := authdomain.Role(strings.ToLower(strings.TrimSpace(s))); role.Valid() {
			return role
		}
	}
	return authdomain.RolePatient
}
