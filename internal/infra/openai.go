package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"flashquiz-service/internal/domain"
)

const maxCompletionBytes = 4 << 20

type responsesRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// OpenAIClient はOpenAI Responses APIにプロンプトを送り、生のテキストを受け取る。
type OpenAIClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewOpenAIClient は新しいOpenAIClientを生成する。
func NewOpenAIClient(baseURL, apiKey, model string, client *http.Client) *OpenAIClient {
	return &OpenAIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  client,
	}
}

// Generate はプロンプトを送信し、モデルの出力テキストを返す。
// 出力の形式は保証されないため、解析は呼び出し側で行う。
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(responsesRequest{Model: c.model, Input: prompt})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", domain.ErrGenerationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/responses", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", domain.ErrGenerationFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "failed to call generation provider",
			"operation", "generate",
			"model", c.model,
			"error", err,
		)
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCompletionBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", domain.ErrGenerationFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.ErrorContext(ctx, "unexpected generation provider status",
			"operation", "generate",
			"model", c.model,
			"status", resp.StatusCode,
			"error_message", gjson.GetBytes(body, "error.message").String(),
		)
		return "", fmt.Errorf("%w: status %d", domain.ErrGenerationFailed, resp.StatusCode)
	}

	return outputText(body), nil
}

// outputText はレスポンス中のoutput_textをすべて連結する。
func outputText(body []byte) string {
	if direct := gjson.GetBytes(body, "output_text"); direct.Type == gjson.String {
		return direct.Str
	}

	var sb strings.Builder
	gjson.GetBytes(body, "output").ForEach(func(_, item gjson.Result) bool {
		item.Get("content").ForEach(func(_, part gjson.Result) bool {
			if part.Get("type").String() == "output_text" {
				sb.WriteString(part.Get("text").String())
			}
			return true
		})
		return true
	})
	return sb.String()
}
