package domain

import "errors"

// 認証エラー。境界では区別せず401として返し、理由はログとメトリクスにのみ残す。
var (
	// ErrAuthMalformed はトークンの構造不正、または許可されていないアルゴリズムを表す。
	ErrAuthMalformed = errors.New("auth: malformed token")

	// ErrAuthUnknownKey はトークンのkidに対応する公開鍵が見つからない場合のエラー。
	ErrAuthUnknownKey = errors.New("auth: unknown signing key")

	// ErrAuthUpstreamUnavailable はJWKSの取得に失敗した場合のエラー。
	ErrAuthUpstreamUnavailable = errors.New("auth: key source unavailable")

	// ErrAuthBadSignature は署名検証に失敗した場合のエラー。
	ErrAuthBadSignature = errors.New("auth: bad signature")

	// ErrAuthExpiredOrInvalid は有効期限切れ、またはiss/aud/subが不正な場合のエラー。
	ErrAuthExpiredOrInvalid = errors.New("auth: expired or invalid claims")
)

var (
	// ErrKeyNotFound はJWKSを再取得しても指定のkidが存在しない場合のエラー。
	ErrKeyNotFound = errors.New("signing key not found")

	// ErrKeySourceUnavailable はJWKSエンドポイントから鍵セットを取得できない場合のエラー。
	ErrKeySourceUnavailable = errors.New("key source unavailable")
)

var (
	// ErrIdentityNotFound はIdPにユーザーが存在しない場合のエラー。
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrIdentityLookupFailed はIdPへのユーザー照会に失敗した場合のエラー。
	ErrIdentityLookupFailed = errors.New("identity lookup failed")

	// ErrSourceNotFound はトピックの要約を取得できない場合のエラー。
	ErrSourceNotFound = errors.New("source content not found")

	// ErrGenerationFailed は生成モデルから利用可能なカードが得られなかった場合のエラー。
	ErrGenerationFailed = errors.New("flashcard generation failed")

	// ErrValidation はリクエスト内容が不正な場合のエラー。
	ErrValidation = errors.New("validation error")
)

var (
	// ErrDeckNotFound は指定されたデッキが存在しない、または所有者でない場合のエラー。
	ErrDeckNotFound = errors.New("deck not found")

	// ErrFlashcardNotFound は指定されたカードが存在しない、または所有者でない場合のエラー。
	ErrFlashcardNotFound = errors.New("flashcard not found")

	// ErrFeedbackNotFound は指定されたフィードバックが存在しない場合のエラー。
	ErrFeedbackNotFound = errors.New("feedback not found")

	// ErrDeckAlreadyExists は同じタイトルのデッキが既に存在する場合のエラー。
	ErrDeckAlreadyExists = errors.New("deck already exists")
)

var (
	// ErrMigrationFailed はマイグレーション実行時のエラー。
	ErrMigrationFailed = errors.New("migration failed")

	// ErrInvalidMigrationFile はマイグレーションファイルのフォーマットが不正な場合のエラー。
	ErrInvalidMigrationFile = errors.New("invalid migration file")
)
