package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTVerifierRoundTrip(t *testing.T) {
	v := NewJWTVerifier("secret")
	token, err := v.Sign(Principal{UserID: "u-1", Email: "a@b.c", Name: "Ana", Role: "admin"}, time.Hour)
	require.NoError(t, err)

	p, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, Principal{UserID: "u-1", Email: "a@b.c", Name: "Ana", Role: "admin"}, p)
}

func TestJWTVerifierRejects(t *testing.T) {
	v := NewJWTVerifier("secret")

	other, err := NewJWTVerifier("other").Sign(Principal{UserID: "u-1"}, time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := v.Sign(Principal{UserID: "u-1"}, -time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "x"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), noSubject)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTVerifierFallsBackToSub(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u-9"}).SignedString([]byte("k"))
	require.NoError(t, err)

	p, err := NewJWTVerifier("k").Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u-9", p.UserID)
}

func TestIntrospectVerifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		if r.PostForm.Get("token") != "good" {
			_ = json.NewEncoder(w).Encode(map[string]any{"active": false})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"active": true, "user_id": "u-7", "email": "u7@example.com", "role": "participant",
		})
	}))
	defer srv.Close()

	v := NewIntrospectVerifier(srv.URL)

	p, err := v.Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "u-7", p.UserID)
	assert.Equal(t, "participant", p.Role)

	_, err = v.Verify(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
