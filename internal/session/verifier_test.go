package session_test

import (
	"context"
	"crypto/rsa"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jaekwang-park/todo-app/internal/session"
)

const (
	testIssuer   = "https://cognito-idp.ap-northeast-1.amazonaws.com/pool-1"
	testAudience = "client-1"
	testKid      = "verifier-kid"
)

func signedToken(t *testing.T, privKey *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(privKey)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func newTestVerifier(t *testing.T) (*session.Verifier, *rsa.PrivateKey) {
	t.Helper()
	jwksData, privKey := generateTestJWKS(t, testKid)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(jwksData)
	}))
	t.Cleanup(srv.Close)
	return session.NewVerifier(session.NewKeySet(srv.URL), testIssuer, testAudience), privKey
}

func TestVerifier_Valid(t *testing.T) {
	v, privKey := newTestVerifier(t)

	token := signedToken(t, privKey, testKid, jwt.MapClaims{
		"sub":       "cognito-sub-123",
		"email":     "user@example.com",
		"iss":       testIssuer,
		"aud":       testAudience,
		"exp":       time.Now().Add(time.Hour).Unix(),
		"token_use": "id",
	})

	claims, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != "cognito-sub-123" {
		t.Errorf("Subject = %q, want cognito-sub-123", claims.Subject)
	}
	if claims.Email != "user@example.com" {
		t.Errorf("Email = %q, want user@example.com", claims.Email)
	}
}

func TestVerifier_Rejects(t *testing.T) {
	v, privKey := newTestVerifier(t)
	valid := func() jwt.MapClaims {
		return jwt.MapClaims{
			"sub":       "cognito-sub-123",
			"iss":       testIssuer,
			"aud":       testAudience,
			"exp":       time.Now().Add(time.Hour).Unix(),
			"token_use": "id",
		}
	}

	tests := []struct {
		name   string
		mutate func(c jwt.MapClaims)
		kid    string
	}{
		{"expired", func(c jwt.MapClaims) { c["exp"] = time.Now().Add(-time.Hour).Unix() }, testKid},
		{"wrong issuer", func(c jwt.MapClaims) { c["iss"] = "https://wrong-issuer.example.com" }, testKid},
		{"wrong audience", func(c jwt.MapClaims) { c["aud"] = "other-client" }, testKid},
		{"access token", func(c jwt.MapClaims) { c["token_use"] = "access" }, testKid},
		{"missing sub", func(c jwt.MapClaims) { delete(c, "sub") }, testKid},
		{"missing exp", func(c jwt.MapClaims) { delete(c, "exp") }, testKid},
		{"unknown kid", func(c jwt.MapClaims) {}, "other-kid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := valid()
			tt.mutate(claims)
			token := signedToken(t, privKey, tt.kid, claims)

			_, err := v.Verify(context.Background(), token)
			if !errors.Is(err, session.ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestVerifier_Garbage(t *testing.T) {
	v, _ := newTestVerifier(t)

	if _, err := v.Verify(context.Background(), "not-a-jwt"); !errors.Is(err, session.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
