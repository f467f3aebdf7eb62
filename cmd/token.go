package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hmans/coursegraph/internal/entity"
)

var (
	tokenUser string
	tokenRole string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for a user",
	Long: `Signs a token the server accepts in the Authorization header. The token
resolves "me" to the given user; with auth.require_admin enabled, only tokens
with the admin role may call the API.

Examples:
  coursegraph token --user abc
  coursegraph token --user abc --role admin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens := tokenService()
		if tokens == nil {
			return fmt.Errorf("no auth secret configured (set auth.secret or JWT_SECRET)")
		}

		token, err := tokens.Issue(tokenUser, tokenRole)
		if err != nil {
			return fmt.Errorf("issuing token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenUser, "user", "u", "", "User id the token identifies")
	tokenCmd.Flags().StringVarP(&tokenRole, "role", "r", entity.DefaultRole, "Role claim (user or admin)")
	_ = tokenCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(tokenCmd)
}
