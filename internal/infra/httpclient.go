package infra

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewHTTPClient は外部API呼び出し用のHTTPクライアントを生成する。
// すべての呼び出しにタイムアウトを設け、トレースを伝搬する。
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: otelhttp.NewTransport(&http.Transport{
			Proxy: http.ProxyFromEnvironment,
		}),
	}
}
