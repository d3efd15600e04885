package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Principal is the verified caller of a request.
type Principal struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// Verifier turns a bearer token into a Principal.
type Verifier interface {
	Verify(ctx context.Context, token string) (Principal, error)
}

// JWTVerifier checks HS256 tokens signed by the identity provider.
type JWTVerifier struct {
	key []byte
}

func NewJWTVerifier(key string) *JWTVerifier {
	return &JWTVerifier{key: []byte(key)}
}

func (v *JWTVerifier) Verify(_ context.Context, tokenString string) (Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.key, nil
	})
	if err != nil || !token.Valid {
		return Principal{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, ErrInvalidToken
	}
	p := Principal{
		UserID: claimString(claims, "user_id"),
		Email:  claimString(claims, "email"),
		Name:   claimString(claims, "name"),
		Role:   claimString(claims, "role"),
	}
	if p.UserID == "" {
		p.UserID = claimString(claims, "sub")
	}
	if p.UserID == "" {
		return Principal{}, ErrInvalidToken
	}
	return p, nil
}

// Sign issues a token for p. It is used by tests and local tooling; production
// tokens come from the identity provider.
func (v *JWTVerifier) Sign(p Principal, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": p.UserID,
		"name":    p.Name,
		"role":    p.Role,
		"email":   p.Email,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.key)
}

func claimString(claims jwt.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return fmt.Sprintf("%.0f", v)
	}
	return ""
}

// IntrospectVerifier asks a remote endpoint to validate the token. The
// endpoint answers {"active": bool, "user_id", "email", "name", "role"}.
type IntrospectVerifier struct {
	client *resty.Client
	url    string
}

func NewIntrospectVerifier(url string) *IntrospectVerifier {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetRetryCount(1)
	return &IntrospectVerifier{client: client, url: url}
}

func (v *IntrospectVerifier) Verify(ctx context.Context, token string) (Principal, error) {
	var body struct {
		Active bool `json:"active"`
		Principal
	}
	resp, err := v.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{"token": token}).
		SetResult(&body).
		Post(v.url)
	if err != nil {
		return Principal{}, fmt.Errorf("introspect token: %w", err)
	}
	if resp.StatusCode() != 200 || !body.Active || body.UserID == "" {
		return Principal{}, ErrInvalidToken
	}
	return body.Principal, nil
}
