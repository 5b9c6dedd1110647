package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"flashquiz-service/internal/auth"
	"flashquiz-service/internal/domain"
	"flashquiz-service/pkg/httputil"
)

// TokenVerifier はベアラートークンを検証するインターフェース。
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.VerifiedClaims, error)
}

// IdentityResolver は検証済みのsubjectからユーザーを解決するインターフェース。
type IdentityResolver interface {
	Resolve(ctx context.Context, subject string) (*domain.Principal, error)
}

// PrincipalHandlerFunc は認証済みユーザーを受け取るハンドラ。
type PrincipalHandlerFunc func(w http.ResponseWriter, r *http.Request, principal domain.Principal)

// AuthGate は保護されたハンドラの前段でベアラートークンを検証する。
type AuthGate struct {
	verifier TokenVerifier
	identity IdentityResolver
}

// NewAuthGate は新しいAuthGateを生成する。
func NewAuthGate(verifier TokenVerifier, identity IdentityResolver) *AuthGate {
	return &AuthGate{verifier: verifier, identity: identity}
}

// Guard はnextを認証で保護する。
// 認証に成功した場合のみnextが呼ばれ、Principalはnextの引数としてのみ渡される。
func (g *AuthGate) Guard(next PrincipalHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token, ok := bearerToken(r)
		if !ok {
			g.reject(ctx, w, domain.ErrAuthMalformed, "missing bearer token")
			return
		}

		claims, err := g.verifier.Verify(ctx, token)
		if err != nil {
			g.reject(ctx, w, err, "token verification failed")
			return
		}

		principal, err := g.identity.Resolve(ctx, claims.Subject)
		if err != nil {
			if errors.Is(err, domain.ErrIdentityNotFound) {
				slog.WarnContext(ctx, "authenticated subject has no identity",
					"operation", "resolve_identity",
					"subject", claims.Subject,
				)
				httputil.Error(w, http.StatusNotFound, "IDENTITY_NOT_FOUND", "user not found")
				return
			}
			slog.ErrorContext(ctx, "failed to resolve identity",
				"operation", "resolve_identity",
				"subject", claims.Subject,
				"error", err,
			)
			httputil.Error(w, http.StatusBadGateway, "IDENTITY_LOOKUP_FAILED", "identity provider unavailable")
			return
		}

		next(w, r, *principal)
	}
}

func (g *AuthGate) reject(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	reason := auth.Reason(err)
	AuthFailures.WithLabelValues(reason).Inc()
	slog.WarnContext(ctx, msg,
		"operation", "authenticate",
		"reason", reason,
		"error", err,
	)
	w.Header().Set("WWW-Authenticate", `Bearer realm="flashquiz"`)
	httputil.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
}

// bearerToken はAuthorizationヘッダーからトークンを取り出す。スキーム名の大小は区別しない。
func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
