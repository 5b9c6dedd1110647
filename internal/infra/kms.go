package infra

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"log/slog"

	kms "cloud.google.com/go/kms/apiv1"
	kmspb "cloud.google.com/go/kms/apiv1/kmspb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ErrKMSIntegrity はKMSの応答がCRC32Cの検証に失敗したことを表す。
var ErrKMSIntegrity = errors.New("kms response failed integrity check")

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// keyManagementAPI はKMSClientが使うCloud KMSの操作。
type keyManagementAPI interface {
	Encrypt(ctx context.Context, req *kmspb.EncryptRequest, opts ...gax.CallOption) (*kmspb.EncryptResponse, error)
	Decrypt(ctx context.Context, req *kmspb.DecryptRequest, opts ...gax.CallOption) (*kmspb.DecryptResponse, error)
	Close() error
}

// KMSClient は外部APIの認証情報をCloud KMSで暗号化・復号する。
// 要求と応答の両方にCRC32Cを付け、転送中の破損を検出する。
type KMSClient struct {
	api     keyManagementAPI
	keyName string
}

// NewKMSClient は指定された鍵名でKMSClientを生成する。
func NewKMSClient(ctx context.Context, keyName string) (*KMSClient, error) {
	if keyName == "" {
		return nil, errors.New("KMS key name is required")
	}

	client, err := kms.NewKeyManagementClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating KMS client: %w", err)
	}
	return newKMSClient(client, keyName), nil
}

func newKMSClient(api keyManagementAPI, keyName string) *KMSClient {
	return &KMSClient{api: api, keyName: keyName}
}

func checksum(data []byte) *wrapperspb.Int64Value {
	return wrapperspb.Int64(int64(crc32.Checksum(data, castagnoli)))
}

func checksumMatches(data []byte, got *wrapperspb.Int64Value) bool {
	return got != nil && got.GetValue() == checksum(data).GetValue()
}

// Encrypt は認証情報の平文を暗号化する。
func (c *KMSClient) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	resp, err := c.api.Encrypt(ctx, &kmspb.EncryptRequest{
		Name:            c.keyName,
		Plaintext:       plaintext,
		PlaintextCrc32C: checksum(plaintext),
	})
	if err != nil {
		return nil, fmt.Errorf("encrypting with %s: %w", c.keyName, err)
	}
	if !resp.GetVerifiedPlaintextCrc32C() {
		return nil, fmt.Errorf("%w: plaintext checksum not verified by %s", ErrKMSIntegrity, c.keyName)
	}
	if !checksumMatches(resp.GetCiphertext(), resp.GetCiphertextCrc32C()) {
		return nil, fmt.Errorf("%w: ciphertext checksum mismatch from %s", ErrKMSIntegrity, c.keyName)
	}

	slog.DebugContext(ctx, "secret encrypted",
		"operation", "kms_encrypt",
		"key_version", resp.GetName(),
	)
	return resp.GetCiphertext(), nil
}

// Decrypt は起動時に暗号化済みの認証情報を復号する。
func (c *KMSClient) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	resp, err := c.api.Decrypt(ctx, &kmspb.DecryptRequest{
		Name:             c.keyName,
		Ciphertext:       ciphertext,
		CiphertextCrc32C: checksum(ciphertext),
	})
	if err != nil {
		return nil, fmt.Errorf("decrypting with %s: %w", c.keyName, err)
	}
	if !checksumMatches(resp.GetPlaintext(), resp.GetPlaintextCrc32C()) {
		return nil, fmt.Errorf("%w: plaintext checksum mismatch from %s", ErrKMSIntegrity, c.keyName)
	}
	return resp.GetPlaintext(), nil
}

// Close はKMSクライアントを閉じる。
func (c *KMSClient) Close() error {
	return c.api.Close()
}
