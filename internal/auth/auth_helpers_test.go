package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// jwksServer はテスト用のJWKSエンドポイント。公開する鍵を差し替えられる。
type jwksServer struct {
	*httptest.Server
	hits atomic.Int32

	mu      sync.Mutex
	body    []byte
	status  int
	gate    chan struct{}
	arrived chan struct{}
}

func newJWKSServer(t *testing.T, keys map[string]*rsa.PublicKey) *jwksServer {
	t.Helper()
	s := &jwksServer{status: http.StatusOK}
	s.setKeys(t, keys)
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		s.mu.Lock()
		gate, arrived := s.gate, s.arrived
		s.mu.Unlock()
		if gate != nil {
			arrived <- struct{}{}
			<-gate
		}

		s.mu.Lock()
		status, body := s.status, s.body
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *jwksServer) setKeys(t *testing.T, keys map[string]*rsa.PublicKey) {
	t.Helper()
	set := jwk.NewSet()
	for kid, pub := range keys {
		key, err := jwk.Import(pub)
		if err != nil {
			t.Fatalf("failed to import public key: %v", err)
		}
		if err := key.Set(jwk.KeyIDKey, kid); err != nil {
			t.Fatalf("failed to set key ID: %v", err)
		}
		if err := key.Set(jwk.AlgorithmKey, "RS256"); err != nil {
			t.Fatalf("failed to set algorithm: %v", err)
		}
		if err := key.Set(jwk.KeyUsageKey, "sig"); err != nil {
			t.Fatalf("failed to set key usage: %v", err)
		}
		if err := set.AddKey(key); err != nil {
			t.Fatalf("failed to add key to set: %v", err)
		}
	}
	body, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("failed to marshal key set: %v", err)
	}
	s.mu.Lock()
	s.body = body
	s.mu.Unlock()
}

// hold は以降のリクエストをreleaseが呼ばれるまで止める。
// arrivedにはリクエストが届くたびに通知が入る。
func (s *jwksServer) hold(t *testing.T) (arrived <-chan struct{}, release func()) {
	t.Helper()
	gate := make(chan struct{})
	ch := make(chan struct{}, 16)
	s.mu.Lock()
	s.gate, s.arrived = gate, ch
	s.mu.Unlock()

	var once sync.Once
	release = func() { once.Do(func() { close(gate) }) }
	t.Cleanup(release)
	return ch, release
}

func (s *jwksServer) setStatus(status int) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

func generateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate RSA key: %v", err)
	}
	return key
}

func signToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	s, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return s
}
