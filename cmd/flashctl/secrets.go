package main

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flashquiz-service/internal/infra"
)

// secretsCmd はシークレット管理のコマンド。
func secretsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage encrypted secrets",
	}

	var value, keyName string
	encrypt := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a secret with Cloud KMS",
		Long:  "Encrypt a secret with Cloud KMS and print it base64-encoded for use in *_ENCRYPTED variables",
		RunE: func(cmd *cobra.Command, args []string) error {
			if value == "" {
				return fmt.Errorf("--value is required")
			}
			if keyName == "" {
				keyName = os.Getenv("KMS_KEY_NAME")
			}
			if keyName == "" {
				return fmt.Errorf("--key-name is required (or set KMS_KEY_NAME)")
			}

			kmsClient, err := infra.NewKMSClient(cmd.Context(), keyName)
			if err != nil {
				return fmt.Errorf("failed to init KMS client: %w", err)
			}
			defer kmsClient.Close()

			ciphertext, err := kmsClient.Encrypt(cmd.Context(), []byte(value))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(ciphertext))
			return nil
		},
	}
	encrypt.Flags().StringVar(&value, "value", "", "Plaintext secret (required)")
	encrypt.Flags().StringVar(&keyName, "key-name", "", "Cloud KMS key name (or set KMS_KEY_NAME)")
	_ = encrypt.MarkFlagRequired("value")
	cmd.AddCommand(encrypt)
	return cmd
}
