// Package auth はIdPが発行したベアラートークンの検証を提供する。
package auth

import (
	"context"
	"crypto/rsa"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"flashquiz-service/internal/domain"
)

const maxJWKSBytes = 1 << 20

// keySnapshot は取得済みの鍵セット。取得後は変更せず、丸ごと差し替える。
type keySnapshot struct {
	set       jwk.Set
	fetchedAt time.Time
}

// KeySource はIdPのJWKSを取得・キャッシュする。
// 読み取りはロックを取らず、更新中も直前のスナップショットを参照できる。
type KeySource struct {
	jwksURL   string
	client    *http.Client
	freshness time.Duration
	limiter   *rate.Limiter
	now       func() time.Time

	current atomic.Pointer[keySnapshot]
	group   singleflight.Group
}

// KeySourceOption はKeySourceを設定する。
type KeySourceOption func(*KeySource)

// WithHTTPClient はJWKS取得に使うHTTPクライアントを設定する。
func WithHTTPClient(c *http.Client) KeySourceOption {
	return func(s *KeySource) { s.client = c }
}

// WithFreshness は鍵セットを新鮮とみなす期間を設定する。
func WithFreshness(d time.Duration) KeySourceOption {
	return func(s *KeySource) { s.freshness = d }
}

// WithMinRefreshInterval は未知のkidによる再取得の最小間隔を設定する。0は制限なし。
func WithMinRefreshInterval(d time.Duration) KeySourceOption {
	return func(s *KeySource) {
		if d <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// NewKeySource は新しいKeySourceを生成する。鍵セットは初回の参照時に取得する。
func NewKeySource(jwksURL string, opts ...KeySourceOption) *KeySource {
	s := &KeySource{
		jwksURL:   jwksURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		freshness: time.Hour,
		limiter:   rate.NewLimiter(rate.Every(10*time.Second), 1),
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GetKey はkidに対応する署名鍵を返す。
// キャッシュにない場合は鍵セットを1回だけ再取得し、それでも無ければErrKeyNotFoundを返す。
// 取得自体の失敗はErrKeySourceUnavailableとして区別する。
func (s *KeySource) GetKey(ctx context.Context, kid string) (*domain.SigningKey, error) {
	snap := s.current.Load()

	if snap != nil {
		if key, ok := snap.lookup(kid); ok {
			if s.isFresh(snap) {
				return key, nil
			}
			if err := s.refresh(ctx); err != nil {
				slog.WarnContext(ctx, "serving stale signing key after refresh failure",
					"operation", "get_key",
					"kid", kid,
					"error", err,
				)
				return key, nil
			}
			return s.lookupCurrent(kid)
		}

		if s.limiter != nil && !s.limiter.Allow() {
			return nil, fmt.Errorf("%w: kid %q", domain.ErrKeyNotFound, kid)
		}
	}

	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	return s.lookupCurrent(kid)
}

// Refresh は鍵セットを強制的に再取得する。
func (s *KeySource) Refresh(ctx context.Context) error {
	return s.refresh(ctx)
}

func (s *KeySource) lookupCurrent(kid string) (*domain.SigningKey, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, fmt.Errorf("%w: kid %q", domain.ErrKeyNotFound, kid)
	}
	key, ok := snap.lookup(kid)
	if !ok {
		return nil, fmt.Errorf("%w: kid %q", domain.ErrKeyNotFound, kid)
	}
	return key, nil
}

func (s *KeySource) isFresh(snap *keySnapshot) bool {
	return s.now().Sub(snap.fetchedAt) < s.freshness
}

// refresh は同時に発生した更新要求を1回の取得にまとめる。
// 取得は待機中の全員で共有するため、起動したリクエストのキャンセルを引き継がない。
// 取得時間の上限はHTTPクライアントのタイムアウトで決まる。
// 呼び出し元は自身のctxが終了した時点で待機をやめる。
func (s *KeySource) refresh(ctx context.Context) error {
	ch := s.group.DoChan(s.jwksURL, func() (interface{}, error) {
		snap, err := s.fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		s.current.Store(snap)
		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", domain.ErrKeySourceUnavailable, ctx.Err())
	}
}

func (s *KeySource) fetch(ctx context.Context) (*keySnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.jwksURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", domain.ErrKeySourceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch jwks",
			"operation", "fetch_jwks",
			"url", s.jwksURL,
			"error", err,
		)
		return nil, fmt.Errorf("%w: fetch: %v", domain.ErrKeySourceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		slog.ErrorContext(ctx, "unexpected jwks status",
			"operation", "fetch_jwks",
			"url", s.jwksURL,
			"status", resp.StatusCode,
		)
		return nil, fmt.Errorf("%w: status %d", domain.ErrKeySourceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJWKSBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrKeySourceUnavailable, err)
	}

	set, err := jwk.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse: %v", domain.ErrKeySourceUnavailable, err)
	}

	return &keySnapshot{set: set, fetchedAt: s.now()}, nil
}

// lookup はkidに対応するRSA公開鍵を返す。RSA以外の鍵は使用できないものとして扱う。
func (k *keySnapshot) lookup(kid string) (*domain.SigningKey, bool) {
	key, found := k.set.LookupKeyID(kid)
	if !found {
		return nil, false
	}

	var raw interface{}
	if err := jwk.Export(key, &raw); err != nil {
		return nil, false
	}
	pub, ok := raw.(*rsa.PublicKey)
	if !ok {
		return nil, false
	}

	return &domain.SigningKey{
		KeyID:     kid,
		Algorithm: domain.SigningAlgorithm,
		PublicKey: pub,
	}, true
}
