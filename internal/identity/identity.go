// Package identity adapts the external identity provider's bearer tokens to
// the engine's actor model. Token issuance and password handling live with
// the provider; the engine only verifies.
package identity

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "agorax/pkg/domain"
	dErrors "agorax/pkg/domain-errors"
	"agorax/pkg/requestcontext"
)

// RoleAdministrator in the role claim grants lifecycle and directory
// administration.
const RoleAdministrator = "administrator"

// Claims is the token shape the identity provider issues: sub carries the
// owner id, role the capability.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 bearer tokens. It implements
// middleware.TokenVerifier.
type Verifier struct {
	signingKey []byte
}

func NewVerifier(signingKey string) *Verifier {
	return &Verifier{signingKey: []byte(signingKey)}
}

// Verify parses and validates the token, yielding the acting owner and
// whether they hold the administrative capability.
func (v *Verifier) Verify(tokenString string) (requestcontext.Actor, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return requestcontext.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return requestcontext.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return requestcontext.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	ownerUUID, err := uuid.Parse(claims.Subject)
	if err != nil || ownerUUID == uuid.Nil {
		return requestcontext.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "token subject is not an owner id")
	}

	return requestcontext.Actor{
		OwnerID:         id.OwnerID(ownerUUID),
		IsAdministrator: claims.Role == RoleAdministrator,
	}, nil
}
