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
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"flashquiz-service/internal/domain"
)

const maxSummaryBytes = 1 << 20

// WikipediaClient はWikimedia Core APIからページの説明文を取得する。
type WikipediaClient struct {
	baseURL     string
	accessToken string
	userAgent   string
	client      *http.Client
}

// NewWikipediaClient は新しいWikipediaClientを生成する。
func NewWikipediaClient(baseURL, accessToken, userAgent string, client *http.Client) *WikipediaClient {
	return &WikipediaClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		userAgent:   userAgent,
		client:      client,
	}
}

// NormalizeTopic はトピックをページ名の形式に変換する (例: "dwayne johnson" -> "Dwayne_Johnson")。
func NormalizeTopic(topic string) string {
	titled := cases.Title(language.Und).String(strings.TrimSpace(topic))
	return strings.ReplaceAll(titled, " ", "_")
}

// FetchSummary はトピックの要約を返す。取得できない場合はErrSourceNotFoundを返す。
func (c *WikipediaClient) FetchSummary(ctx context.Context, topic string) (string, error) {
	page := NormalizeTopic(topic)
	endpoint := fmt.Sprintf("%s/core/v1/wikipedia/en/page/%s/description", c.baseURL, url.PathEscape(page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", domain.ErrSourceNotFound, err)
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "failed to call content source",
			"operation", "fetch_summary",
			"page", page,
			"error", err,
		)
		return "", fmt.Errorf("%w: %v", domain.ErrSourceNotFound, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: page %q returned status %d", domain.ErrSourceNotFound, page, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSummaryBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", domain.ErrSourceNotFound, err)
	}

	summary := strings.TrimSpace(gjson.GetBytes(body, "description").String())
	if summary == "" {
		return "", fmt.Errorf("%w: page %q has no description", domain.ErrSourceNotFound, page)
	}
	return summary, nil
}
