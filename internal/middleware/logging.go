// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// 監査ログの結果
const (
	ResultSuccess = "SUCCESS"
	ResultFailed  = "FAILED"
)

// AuditLog は監査ログの構造体。
type AuditLog struct {
	Operation  string `json:"operation"`
	UserID     string `json:"user_id"`
	ResourceID string `json:"resource_id,omitempty"`
	Result     string `json:"result"`
	Timestamp  string `json:"timestamp"`
}

// WriteAuditLog は監査ログを出力する。
func WriteAuditLog(ctx context.Context, operation, userID, resourceID, result string) {
	entry := AuditLog{
		Operation:  operation,
		UserID:     userID,
		ResourceID: resourceID,
		Result:     result,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	slog.InfoContext(ctx, "resource operation completed",
		"operation", entry.Operation,
		"user_id", entry.UserID,
		"resource_id", entry.ResourceID,
		"result", entry.Result,
		"timestamp", entry.Timestamp,
	)
}

// RequestLogger はアクセスログを構造化ログとして出力する。
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		slog.InfoContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
