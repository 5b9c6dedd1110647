package infra

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"flashquiz-service/internal/domain"
)

const maxProfileBytes = 1 << 20

// ClerkClient はClerkのBackend APIからユーザー情報を取得する。
type ClerkClient struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

// NewClerkClient は新しいClerkClientを生成する。
func NewClerkClient(baseURL, secretKey string, client *http.Client) *ClerkClient {
	return &ClerkClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		client:    client,
	}
}

// Resolve は検証済みのsubjectに対応するユーザーを取得する。
// 結果はキャッシュしない。
func (c *ClerkClient) Resolve(ctx context.Context, subject string) (*domain.Principal, error) {
	endpoint := fmt.Sprintf("%s/v1/users/%s", c.baseURL, url.PathEscape(subject))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", domain.ErrIdentityLookupFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "failed to call identity provider",
			"operation", "resolve_identity",
			"subject", subject,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrIdentityLookupFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: subject %q", domain.ErrIdentityNotFound, subject)
	case resp.StatusCode != http.StatusOK:
		slog.ErrorContext(ctx, "unexpected identity provider status",
			"operation", "resolve_identity",
			"subject", subject,
			"status", resp.StatusCode,
		)
		return nil, fmt.Errorf("%w: status %d", domain.ErrIdentityLookupFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrIdentityLookupFailed, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid profile payload", domain.ErrIdentityLookupFailed)
	}

	profile := gjson.ParseBytes(body)
	if id := profile.Get("id").String(); id != subject {
		return nil, fmt.Errorf("%w: profile id %q does not match subject", domain.ErrIdentityLookupFailed, id)
	}

	return &domain.Principal{
		ID:        subject,
		Username:  profile.Get("username").String(),
		FirstName: profile.Get("first_name").String(),
		LastName:  profile.Get("last_name").String(),
		Email:     primaryEmail(profile),
		ImageURL:  profile.Get("image_url").String(),
	}, nil
}

func primaryEmail(profile gjson.Result) string {
	primaryID := profile.Get("primary_email_address_id").String()
	var email string
	profile.Get("email_addresses").ForEach(func(_, addr gjson.Result) bool {
		if email == "" {
			email = addr.Get("email_address").String()
		}
		if primaryID != "" && addr.Get("id").String() == primaryID {
			email = addr.Get("email_address").String()
			return false
		}
		return true
	})
	return email
}
