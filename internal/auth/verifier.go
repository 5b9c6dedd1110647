package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"flashquiz-service/internal/domain"
)

// KeyResolver はkidから署名鍵を解決するインターフェース。
type KeyResolver interface {
	GetKey(ctx context.Context, kid string) (*domain.SigningKey, error)
}

// VerifierConfig はトークン検証の期待値を表す。
type VerifierConfig struct {
	Issuer   string
	Audience string
	// Leeway はexpの判定で許容する時計のずれ。
	Leeway time.Duration
}

// TokenVerifier はRS256で署名されたベアラートークンを検証する。
type TokenVerifier struct {
	keys      KeyResolver
	cfg       VerifierConfig
	structure *jwt.Parser
	signature *jwt.Parser
	claims    *jwt.Validator
}

// NewTokenVerifier は新しいTokenVerifierを生成する。
func NewTokenVerifier(keys KeyResolver, cfg VerifierConfig) *TokenVerifier {
	return &TokenVerifier{
		keys:      keys,
		cfg:       cfg,
		structure: jwt.NewParser(),
		signature: jwt.NewParser(
			jwt.WithValidMethods([]string{domain.SigningAlgorithm}),
			jwt.WithoutClaimsValidation(),
		),
		claims: jwt.NewValidator(
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithAudience(cfg.Audience),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(cfg.Leeway),
		),
	}
}

// Verify はトークンを検証し、成功した場合のみVerifiedClaimsを返す。
// 失敗時はdomain.ErrAuth*のいずれかをラップしたエラーを返す。
func (v *TokenVerifier) Verify(ctx context.Context, token string) (*domain.VerifiedClaims, error) {
	// 1. 署名を検証せずにヘッダーを読む。algはここで固定値と照合し、検証方式の選択には使わない
	unverified, _, err := v.structure.ParseUnverified(token, &jwt.RegisteredClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthMalformed, err)
	}
	alg, _ := unverified.Header["alg"].(string)
	if alg != domain.SigningAlgorithm {
		return nil, fmt.Errorf("%w: algorithm %q not allowed", domain.ErrAuthMalformed, alg)
	}
	kid, _ := unverified.Header["kid"].(string)
	if kid == "" {
		return nil, fmt.Errorf("%w: missing kid", domain.ErrAuthMalformed)
	}

	// 2. 署名鍵の解決
	key, err := v.keys.GetKey(ctx, kid)
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %v", domain.ErrAuthUnknownKey, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthUpstreamUnavailable, err)
	}

	// 3. 署名検証
	claims := &jwt.RegisteredClaims{}
	_, err = v.signature.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return key.PublicKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, fmt.Errorf("%w: %v", domain.ErrAuthBadSignature, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthMalformed, err)
	}

	// 4. exp/iss/audの検証
	if err := v.claims.Validate(claims); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthExpiredOrInvalid, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrAuthExpiredOrInvalid)
	}

	return &domain.VerifiedClaims{
		Subject:   claims.Subject,
		Issuer:    claims.Issuer,
		Audience:  v.cfg.Audience,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Reason は認証エラーをメトリクス・ログ用の理由ラベルに変換する。
func Reason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, domain.ErrAuthMalformed):
		return "malformed"
	case errors.Is(err, domain.ErrAuthUnknownKey):
		return "unknown_key"
	case errors.Is(err, domain.ErrAuthUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, domain.ErrAuthBadSignature):
		return "bad_signature"
	case errors.Is(err, domain.ErrAuthExpiredOrInvalid):
		return "expired_or_invalid"
	default:
		return "unknown"
	}
}
