package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when an ID token fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the identity claims read from a verified ID token.
type Claims struct {
	Subject string
	Email   string
}

type idTokenClaims struct {
	Email    string `json:"email"`
	TokenUse string `json:"token_use"`
	jwt.RegisteredClaims
}

// Verifier checks RS256 ID tokens issued by a Cognito user pool.
type Verifier struct {
	keys     *KeySet
	issuer   string
	audience string
}

func NewVerifier(keys *KeySet, issuer, audience string) *Verifier {
	return &Verifier{keys: keys, issuer: issuer, audience: audience}
}

// Verify validates signature, issuer, audience and expiry of an ID token and
// returns its identity claims.
func (v *Verifier) Verify(ctx context.Context, idToken string) (Claims, error) {
	var claims idTokenClaims
	_, err := jwt.ParseWithClaims(idToken, &claims, func(token *jwt.Token) (any, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok {
			return nil, fmt.Errorf("kid header not found")
		}
		return v.keys.Key(ctx, kid)
	},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.TokenUse != "" && claims.TokenUse != "id" {
		return Claims{}, fmt.Errorf("%w: token_use %q is not an id token", ErrInvalidToken, claims.TokenUse)
	}
	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: sub claim not found", ErrInvalidToken)
	}

	return Claims{Subject: claims.Subject, Email: claims.Email}, nil
}
