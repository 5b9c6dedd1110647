// Package main はCLIツールのエントリポイント。
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var (
	apiURL  string
	token   string
	output  string
	timeout time.Duration
)

// HTTPクライアント
var httpClient *http.Client

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "flashctl",
		Short: "Flashquiz service CLI",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if apiURL == "" {
				apiURL = os.Getenv("FLASHCTL_API_URL")
			}
			if token == "" {
				token = os.Getenv("FLASHCTL_TOKEN")
			}
			httpClient = &http.Client{Timeout: timeout}
		},
	}

	// グローバルフラグ
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API endpoint URL (or set FLASHCTL_API_URL)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token (or set FLASHCTL_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&output, "output", "text", "Output format: text, json")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 90*time.Second, "Request timeout")

	// サブコマンド登録
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(decksCmd())
	rootCmd.AddCommand(cardsCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(secretsCmd())
	rootCmd.AddCommand(jwksCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

// versionCmd はバージョン情報を表示する。
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "flashctl version %s\n", version)
		},
	}
}

// generateCmd はトピックからフラッシュカードを生成するコマンド。
func generateCmd() *cobra.Command {
	var topic string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate flashcards for a topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(topic) == "" {
				return fmt.Errorf("--topic is required")
			}

			body, err := callAPI(cmd.Context(), http.MethodPost, "/api/generate-flashcards/",
				map[string]string{"topic": topic}, http.StatusCreated)
			if err != nil {
				return err
			}

			if output == "json" {
				fmt.Fprintln(cmd.OutOrStdout(), string(body))
				return nil
			}
			return printGenerated(cmd.OutOrStdout(), body)
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "Topic to generate flashcards for (required)")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}

// decksCmd はデッキ操作のコマンド。
func decksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decks",
		Short: "Manage decks",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your decks",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := callAPI(cmd.Context(), http.MethodGet, "/api/decks/", nil, http.StatusOK)
			if err != nil {
				return err
			}

			if output == "json" {
				fmt.Fprintln(cmd.OutOrStdout(), string(body))
				return nil
			}
			return printDecks(cmd.OutOrStdout(), body)
		},
	})
	return cmd
}

// cardsCmd はカード操作のコマンド。
func cardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Manage flashcards",
	}

	var deckID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List flashcards in a deck",
		RunE: func(cmd *cobra.Command, args []string) error {
			if deckID == "" {
				return fmt.Errorf("--deck is required")
			}

			body, err := callAPI(cmd.Context(), http.MethodGet, "/api/flashcards/?deck_id="+url.QueryEscape(deckID), nil, http.StatusOK)
			if err != nil {
				return err
			}

			if output == "json" {
				fmt.Fprintln(cmd.OutOrStdout(), string(body))
				return nil
			}
			return printCards(cmd.OutOrStdout(), body)
		},
	}
	list.Flags().StringVar(&deckID, "deck", "", "Deck ID (required)")
	_ = list.MarkFlagRequired("deck")
	cmd.AddCommand(list)
	return cmd
}

// callAPI はAPIを呼び出し、期待したステータスのときだけレスポンスボディを返す。
func callAPI(ctx context.Context, method, path string, payload interface{}, wantStatus int) ([]byte, error) {
	if apiURL == "" {
		return nil, fmt.Errorf("--api-url is required (or set FLASHCTL_API_URL)")
	}
	if token == "" {
		return nil, fmt.Errorf("--token is required (or set FLASHCTL_TOKEN)")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	endpoint := strings.TrimRight(apiURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != wantStatus {
		return nil, handleErrorResponse(resp.StatusCode, body)
	}
	return body, nil
}

func printGenerated(w io.Writer, body []byte) error {
	var result struct {
		Deck struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"deck"`
		Flashcards []struct {
			Question string `json:"question"`
			Answer   string `json:"answer"`
			Hint     string `json:"hint"`
		} `json:"flashcards"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}

	fmt.Fprintf(w, "Deck %q (%s): %d flashcard(s) added\n", result.Deck.Title, result.Deck.ID, len(result.Flashcards))
	for i, c := range result.Flashcards {
		fmt.Fprintf(w, "%d. Q: %s\n   A: %s\n", i+1, c.Question, c.Answer)
		if c.Hint != "" {
			fmt.Fprintf(w, "   Hint: %s\n", c.Hint)
		}
	}
	return nil
}

func printDecks(w io.Writer, body []byte) error {
	var result struct {
		Decks []struct {
			ID        string `json:"id"`
			Title     string `json:"title"`
			CreatedAt string `json:"created_at"`
		} `json:"decks"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCREATED_AT")
	for _, d := range result.Decks {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.ID, d.Title, d.CreatedAt)
	}
	return tw.Flush()
}

func printCards(w io.Writer, body []byte) error {
	var result struct {
		Flashcards []struct {
			ID       string `json:"id"`
			Question string `json:"question"`
			Answer   string `json:"answer"`
		} `json:"flashcards"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "ID\tQUESTION\tANSWER")
	for _, c := range result.Flashcards {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Question, c.Answer)
	}
	return tw.Flush()
}

func handleErrorResponse(statusCode int, body []byte) error {
	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&errResp); err == nil && errResp.Message != "" {
		return fmt.Errorf("Error: %s", errResp.Message)
	}
	return fmt.Errorf("Error: server returned status %d", statusCode)
}
