// services/identity_service.go
package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/golang-jwt/jwt"
	"github.com/lestrrat-go/jwx/jwk"
)

// IdentityService verifies identity tokens issued by the external auth
// provider against its published JWK set. The core trusts the verified
// claims for login only; authorization is driven by the local user record.
type IdentityService struct {
	jwksURL  string
	issuer   string
	audience string
}

// NewIdentityService creates an identity service from environment config.
func NewIdentityService() *IdentityService {
	jwksURL := os.Getenv("IDP_JWKS_URL")
	if jwksURL == "" {
		jwksURL = "https://www.googleapis.com/oauth2/v3/certs"
	}
	return &IdentityService{
		jwksURL:  jwksURL,
		issuer:   os.Getenv("IDP_ISSUER"),
		audience: os.Getenv("IDP_AUDIENCE"),
	}
}

// IdentityClaims are the verified fields the core needs from the provider.
type IdentityClaims struct {
	Subject string
	Email   string
	Name    string
}

// VerifyIdentityToken validates the token signature against the provider's
// JWK set and returns the identity claims.
func (s *IdentityService) VerifyIdentityToken(ctx context.Context, identityToken string) (*IdentityClaims, error) {
	header, err := decodeTokenHeader(identityToken)
	if err != nil {
		return nil, fmt.Errorf("invalid identity token: %w", err)
	}

	jwkSet, err := jwk.Fetch(ctx, s.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch provider public keys: %w", err)
	}

	key, found := jwkSet.LookupKeyID(header.Kid)
	if !found {
		return nil, fmt.Errorf("provider public key %q not found", header.Kid)
	}

	var pubkey interface{}
	if err := key.Raw(&pubkey); err != nil {
		return nil, fmt.Errorf("failed to parse provider public key: %w", err)
	}

	parsedToken, err := jwt.Parse(identityToken, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != header.Alg {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return pubkey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("identity token verification failed: %w", err)
	}
	if !parsedToken.Valid {
		return nil, fmt.Errorf("identity token is not valid")
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected identity token claims")
	}

	if s.issuer != "" {
		if iss, _ := claims["iss"].(string); iss != s.issuer {
			return nil, fmt.Errorf("unexpected token issuer %q", claims["iss"])
		}
	}
	if s.audience != "" {
		if !claims.VerifyAudience(s.audience, true) {
			return nil, fmt.Errorf("unexpected token audience")
		}
	}

	identity := &IdentityClaims{}
	identity.Subject, _ = claims["sub"].(string)
	identity.Email, _ = claims["email"].(string)
	identity.Name, _ = claims["name"].(string)
	if identity.Email == "" {
		return nil, fmt.Errorf("identity token carries no email claim")
	}

	log.Printf("Verified provider identity for %s", identity.Email)
	return identity, nil
}

type tokenHeader struct {
	Kid string `json:"kid"`
	Alg string `json:"alg"`
}

func decodeTokenHeader(token string) (*tokenHeader, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("token must have three segments")
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("failed to decode token header: %w", err)
	}

	var header tokenHeader
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("failed to parse token header: %w", err)
	}
	if header.Kid == "" {
		return nil, fmt.Errorf("token header missing key id")
	}
	return &header, nil
}
