package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"custodian.io/internal/domain/entity"
	"custodian.io/internal/infrastructure/validator"
)

type signOptions struct {
	secret    string
	account   string
	nonce     string
	timestamp int64
	body      string
	bodyFile  string
}

var signOpts signOptions //nolint:gochecknoglobals

var signCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "sign",
	Short: "Print the signature headers for a request body.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		account, err := entity.ParseAddress(signOpts.account)
		if err != nil {
			return err
		}

		body := []byte(signOpts.body)
		if signOpts.bodyFile != "" {
			if body, err = os.ReadFile(signOpts.bodyFile); err != nil {
				return fmt.Errorf("failed to read body file: %w", err)
			}
		}

		secret := signOpts.secret
		if secret == "" {
			secret = os.Getenv("CUSTODIAN_AUTH_HMAC_SECRET")
		}
		if secret == "" {
			return fmt.Errorf("missing secret: pass --secret or set CUSTODIAN_AUTH_HMAC_SECRET")
		}

		nonce := signOpts.nonce
		if nonce == "" {
			nonce = uuid.New().String()
		}
		timestamp := signOpts.timestamp
		if timestamp == 0 {
			timestamp = time.Now().Unix()
		}
		ts := strconv.FormatInt(timestamp, 10)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %s\n", validator.HeaderAccount, account.Hex())
		fmt.Fprintf(out, "%s: %s\n", validator.HeaderTimestamp, ts)
		fmt.Fprintf(out, "%s: %s\n", validator.HeaderNonce, nonce)
		fmt.Fprintf(out, "%s: %s\n", validator.HeaderSignature, validator.Sign(secret, ts, nonce, account.Hex(), body))
		return nil
	},
}

func init() { //nolint:gochecknoinits
	signCmd.Flags().StringVar(&signOpts.secret, "secret", "", "shared HMAC secret")
	signCmd.Flags().StringVar(&signOpts.account, "account", "", "signing account (0x hex)")
	signCmd.Flags().StringVar(&signOpts.nonce, "nonce", "", "request nonce (random when empty)")
	signCmd.Flags().Int64Var(&signOpts.timestamp, "timestamp", 0, "unix timestamp (now when zero)")
	signCmd.Flags().StringVar(&signOpts.body, "body", "", "raw request body")
	signCmd.Flags().StringVar(&signOpts.bodyFile, "body-file", "", "read the request body from a file")
	_ = signCmd.MarkFlagRequired("account")

	rootCmd.AddCommand(signCmd)
}
