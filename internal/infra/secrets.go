package infra

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

// Decrypter は暗号文を復号するインターフェース。
type Decrypter interface {
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// ResolveSecret は平文の値があればそれを返し、なければBase64の暗号文を復号して返す。
// 起動時に一度だけ呼び出す。
func ResolveSecret(ctx context.Context, d Decrypter, name, plain, encrypted string) (string, error) {
	if plain != "" {
		return plain, nil
	}
	if encrypted == "" {
		return "", nil
	}
	if d == nil {
		return "", fmt.Errorf("%s: encrypted value set but no decrypter configured", name)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encrypted))
	if err != nil {
		return "", fmt.Errorf("%s: decoding ciphertext: %w", name, err)
	}
	plaintext, err := d.Decrypt(ctx, ciphertext)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return strings.TrimSpace(string(plaintext)), nil
}
