package domain

import (
	"crypto/rsa"
	"time"
)

// SigningAlgorithm は受け入れる唯一の署名アルゴリズム。
const SigningAlgorithm = "RS256"

// SigningKey はIdPが公開するトークン検証用の公開鍵。
type SigningKey struct {
	KeyID     string
	Algorithm string
	PublicKey *rsa.PublicKey
}

// VerifiedClaims は署名とクレームの検証に成功したトークンの内容。
type VerifiedClaims struct {
	Subject   string
	Issuer    string
	Audience  string
	ExpiresAt time.Time
}

// Principal は認証済みの呼び出し元を表す。
// IdPから取得したユーザー情報のみで構成され、リクエストをまたいでキャッシュしない。
type Principal struct {
	ID        string
	Username  string
	FirstName string
	LastName  string
	Email     string
	ImageURL  string
}
