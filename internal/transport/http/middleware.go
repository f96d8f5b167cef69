package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"quizmaster-service/internal/domain"
)

// Identity is the verified caller extracted from a bearer token. Token
// issuance (the OAuth exchange) lives outside this service; we only verify.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   domain.Role
}

type ctxKey struct{}

// IdentityFrom returns the authenticated identity stored on the context.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Authenticator verifies HMAC-signed bearer tokens and gates handlers by
// role.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Require rejects requests without a valid token and stores the identity on
// the request context.
func (a *Authenticator) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := a.identify(r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorBody{Message: "authentication required"})
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, identity)))
	}
}

// RequireAdmin additionally rejects callers whose token does not carry the
// admin role.
func (a *Authenticator) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return a.Require(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := IdentityFrom(r.Context())
		if identity.Role != domain.RoleAdmin {
			writeJSON(w, http.StatusForbidden, errorBody{Message: domain.ErrForbidden.Message})
			return
		}
		next(w, r)
	})
}

// identify reads the token from the Authorization header, falling back to a
// "token" query parameter for websocket clients that cannot set headers.
// The fallback is limited to upgrade requests so bearer tokens on plain REST
// calls never travel in URLs that end up in access logs.
func (a *Authenticator) identify(r *http.Request) (Identity, error) {
	raw := ""
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		raw = strings.TrimPrefix(header, "Bearer ")
	} else if isWebSocketUpgrade(r) {
		raw = r.URL.Query().Get("token")
	}
	if raw == "" {
		return Identity{}, jwt.ErrTokenMalformed
	}

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, jwt.ErrTokenSignatureInvalid
	}

	return Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
		Role:   domain.Role(claims.Role),
	}, nil
}

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// SignToken issues a token for an identity. Used by the dev token command
// and tests; production tokens come from the auth frontend.
func SignToken(secret string, identity Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: identity.Email,
		Name:  identity.Name,
		Role:  string(identity.Role),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
