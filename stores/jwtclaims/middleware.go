package jwtclaims

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/chr1sbest/permguard/internal/logging"
)

// ErrInvalidToken wraps every token rejection.
var ErrInvalidToken = errors.New("invalid token")

// Verifier checks HS256 bearer tokens.
type Verifier struct {
	secret []byte
	issuer string
	logger *slog.Logger
}

// NewVerifier returns a Verifier for tokens signed with secret. A non-empty
// issuer is enforced on the "iss" claim.
func NewVerifier(secret []byte, issuer string, logger *slog.Logger) *Verifier {
	return &Verifier{secret: secret, issuer: issuer, logger: logging.Resolve(logger)}
}

// Parse validates raw and returns its claims. Tokens without a subject are
// rejected.
func (v *Verifier) Parse(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return &claims, nil
}

// Middleware authenticates requests carrying "Authorization: Bearer <token>".
// Valid tokens put their claims and subject on the request context; invalid
// ones get 401. Requests without the header continue anonymously so public
// routes keep working.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		raw, ok := bearerToken(header)
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		claims, err := v.Parse(raw)
		if err != nil {
			v.logger.InfoContext(r.Context(), "bearer token rejected",
				"event", "authn_token_rejected",
				"module", "stores/jwtclaims",
				"path", r.URL.Path,
				"error", err.Error(),
			)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
	})
}

// bearerToken extracts the credentials of a Bearer authorization header. The
// scheme name is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
