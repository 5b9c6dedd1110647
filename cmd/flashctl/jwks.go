package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flashquiz-service/internal/auth"
)

// jwksCmd はIdPのJWKSエンドポイントを確認するコマンド。
func jwksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jwks",
		Short: "Inspect the identity provider key set",
	}

	var jwksURL, kid string
	check := &cobra.Command{
		Use:   "check",
		Short: "Fetch the key set and optionally resolve a key ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			if jwksURL == "" {
				jwksURL = os.Getenv("CLERK_JWKS_URL")
			}
			if jwksURL == "" {
				return fmt.Errorf("--jwks-url is required (or set CLERK_JWKS_URL)")
			}

			src := auth.NewKeySource(jwksURL, auth.WithHTTPClient(httpClient))
			if err := src.Refresh(cmd.Context()); err != nil {
				return fmt.Errorf("key set unavailable: %w", err)
			}
			if kid == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Key set fetched successfully.")
				return nil
			}

			key, err := src.GetKey(cmd.Context(), kid)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Key %q resolved (%s, %d bits)\n", key.KeyID, key.Algorithm, key.PublicKey.N.BitLen())
			return nil
		},
	}
	check.Flags().StringVar(&jwksURL, "jwks-url", "", "JWKS endpoint URL (or set CLERK_JWKS_URL)")
	check.Flags().StringVar(&kid, "kid", "", "Key ID to resolve (optional)")
	cmd.AddCommand(check)
	return cmd
}
