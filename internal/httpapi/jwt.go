package httpapi

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// JWTRoleExtractorConfig configures NewJWTRoleExtractor.
type JWTRoleExtractorConfig struct {
	// RoleClaim is the claim path carrying the role, dot-notation for
	// nested claims (e.g. "realm_access.roles"). Default "role".
	RoleClaim string

	// OperatorRoleValue is the claim value mapped to RoleOperator; every
	// other value, or a missing claim, maps to RoleViewer. Default
	// "operator".
	OperatorRoleValue string

	// PublicKeyPath, if set, is a PEM RSA public key used for RS256
	// verification. Left empty, tokens are parsed without verification
	// ("trusted proxy" mode: a fronting gateway is assumed to have already
	// authenticated the caller).
	PublicKeyPath string

	Issuer   string
	Audience string

	Logger *slog.Logger
}

// NewJWTRoleExtractor builds a RoleExtractor that reads the role from a
// Bearer token's claims. Missing or unparsable tokens default to
// RoleViewer.
func NewJWTRoleExtractor(cfg JWTRoleExtractorConfig) (RoleExtractor, error) {
	if cfg.RoleClaim == "" {
		cfg.RoleClaim = "role"
	}
	if cfg.OperatorRoleValue == "" {
		cfg.OperatorRoleValue = "operator"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	var publicKey *rsa.PublicKey
	if cfg.PublicKeyPath != "" {
		keyData, err := os.ReadFile(cfg.PublicKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read JWT public key from %s: %w", cfg.PublicKeyPath, err)
		}
		block, _ := pem.Decode(keyData)
		if block == nil {
			return nil, fmt.Errorf("decode PEM block from %s", cfg.PublicKeyPath)
		}
		parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse public key: %w", err)
		}
		rsaKey, ok := parsed.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("public key is not RSA (got %T)", parsed)
		}
		publicKey = rsaKey
		cfg.Logger.Info("jwt role extractor: RS256 verification enabled", "keyPath", cfg.PublicKeyPath)
	} else {
		cfg.Logger.Warn("jwt role extractor: no public key configured, tokens parsed unverified")
	}

	return func(r *http.Request) Role {
		token := extractBearerToken(r)
		if token == "" {
			return RoleViewer
		}
		claims, err := parseJWTClaims(token, publicKey, cfg)
		if err != nil {
			cfg.Logger.Debug("jwt parse failed, defaulting to viewer", "error", err)
			return RoleViewer
		}
		return extractRoleFromClaims(claims, cfg.RoleClaim, cfg.OperatorRoleValue)
	}, nil
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func parseJWTClaims(tokenString string, publicKey *rsa.PublicKey, cfg JWTRoleExtractorConfig) (jwt.MapClaims, error) {
	var opts []jwt.ParserOption
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	var token *jwt.Token
	var err error
	if publicKey != nil {
		token, err = jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return publicKey, nil
		}, opts...)
	} else {
		parser := jwt.NewParser(opts...)
		token, _, err = parser.ParseUnverified(tokenString, jwt.MapClaims{})
	}
	if err != nil {
		return nil, fmt.Errorf("jwt parse error: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type")
	}
	return claims, nil
}

// extractRoleFromClaims resolves claimPath (dot-notation) against claims,
// handling both a single string value and an array of strings (e.g.
// Keycloak's realm_access.roles).
func extractRoleFromClaims(claims jwt.MapClaims, claimPath, operatorValue string) Role {
	parts := strings.Split(claimPath, ".")
	var current interface{} = map[string]interface{}(claims)

	for _, part := range parts {
		m, ok := current.(map[string]interface{})
		if !ok {
			return RoleViewer
		}
		current, ok = m[part]
		if !ok {
			return RoleViewer
		}
	}

	if strVal, ok := current.(string); ok {
		if strings.EqualFold(strVal, operatorValue) {
			return RoleOperator
		}
		return RoleViewer
	}

	if arrVal, ok := current.([]interface{}); ok {
		for _, v := range arrVal {
			if s, ok := v.(string); ok && strings.EqualFold(s, operatorValue) {
				return RoleOperator
			}
		}
	}

	return RoleViewer
}
