// Package main はAPIサーバーのエントリポイント。
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"flashquiz-service/config"
	"flashquiz-service/internal/auth"
	"flashquiz-service/internal/handler"
	"flashquiz-service/internal/infra"
	"flashquiz-service/internal/middleware"
	"flashquiz-service/internal/repository"
	"flashquiz-service/internal/usecase"
)

func main() {
	ctx := context.Background()

	// .envファイルを読み込む（存在しない場合は無視）
	// 既存の環境変数は上書きしない
	_ = godotenv.Load()

	// 設定読み込み
	cfg := config.Load()

	// トレーサー初期化（ロガー設定の前に実行）
	tp, err := infra.InitTracer(ctx, cfg)
	if err != nil {
		slog.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	if tp != nil {
		defer func() {
			if err := tp.Shutdown(ctx); err != nil {
				slog.Error("failed to shutdown tracer", "error", err)
			}
		}()
	}

	// トレース情報付きロガーを設定
	infra.SetupLogger(cfg)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// 暗号化されたシークレットがあればKMSで復号する
	var decrypter infra.Decrypter
	if cfg.KMSKeyName != "" {
		kmsClient, err := infra.NewKMSClient(ctx, cfg.KMSKeyName)
		if err != nil {
			slog.Error("failed to init KMS client", "error", err)
			os.Exit(1)
		}
		defer func() {
			if closeErr := kmsClient.Close(); closeErr != nil {
				slog.Error("failed to close KMS client", "error", closeErr)
			}
		}()
		decrypter = kmsClient
	}

	clerkSecret, err := infra.ResolveSecret(ctx, decrypter, "CLERK_SECRET_KEY", cfg.ClerkSecretKey, cfg.ClerkSecretKeyEncrypted)
	if err != nil {
		slog.Error("failed to resolve secret", "error", err)
		os.Exit(1)
	}
	openAIKey, err := infra.ResolveSecret(ctx, decrypter, "OPENAI_API_KEY", cfg.OpenAIAPIKey, cfg.OpenAIAPIKeyEncrypted)
	if err != nil {
		slog.Error("failed to resolve secret", "error", err)
		os.Exit(1)
	}
	wikipediaToken, err := infra.ResolveSecret(ctx, decrypter, "WIKIPEDIA_ACCESS_TOKEN", cfg.WikipediaAccessToken, cfg.WikipediaAccessTokenEncrypted)
	if err != nil {
		slog.Error("failed to resolve secret", "error", err)
		os.Exit(1)
	}

	// DB初期化
	db, err := infra.NewDB(cfg.DatabaseURL, cfg)
	if err != nil {
		slog.Error("failed to init database", "error", err)
		os.Exit(1)
	}

	// 認証
	upstream := infra.NewHTTPClient(cfg.UpstreamTimeout)
	keySource := auth.NewKeySource(cfg.ClerkJWKSURL,
		auth.WithHTTPClient(upstream),
		auth.WithFreshness(cfg.JWKSFreshness),
		auth.WithMinRefreshInterval(cfg.JWKSMinRefreshInterval),
	)
	verifier := auth.NewTokenVerifier(keySource, auth.VerifierConfig{
		Issuer:   cfg.ClerkIssuer,
		Audience: cfg.ClerkAudience,
	})
	identity := infra.NewClerkClient(cfg.ClerkAPIURL, clerkSecret, upstream)
	gate := middleware.NewAuthGate(verifier, identity)

	// 外部サービス
	wikipedia := infra.NewWikipediaClient(cfg.WikipediaBaseURL, wikipediaToken, cfg.UserAgent, upstream)
	openAI := infra.NewOpenAIClient(cfg.OpenAIBaseURL, openAIKey, cfg.OpenAIModel, infra.NewHTTPClient(cfg.OpenAITimeout))

	// DI
	decks := repository.NewDeckRepository(db)
	cards := repository.NewFlashcardRepository(db)
	feedback := repository.NewFeedbackRepository(db)

	generation := usecase.NewGenerationService(wikipedia, openAI, decks, func(outcome string) {
		middleware.Generations.WithLabelValues(outcome).Inc()
	})

	router := handler.NewRouter(gate, handler.Handlers{
		Decks:      handler.NewDeckHandler(usecase.NewDeckService(decks)),
		Flashcards: handler.NewFlashcardHandler(usecase.NewFlashcardService(decks, cards)),
		Feedback:   handler.NewFeedbackHandler(usecase.NewFeedbackService(decks, feedback)),
		Generate:   handler.NewGenerateHandler(generation),
	}, cfg)

	// サーバー起動
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		<-sigCh

		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("starting server", "port", cfg.Port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
