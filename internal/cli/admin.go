package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/deckduel/internal/api/response"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator commands",
	}

	cmd.AddCommand(newListCmd[response.Match]("matches", "Show every match", "/api/v1/admin/matches"))
	cmd.AddCommand(newListCmd[response.Topup]("topups", "Show every top-up", "/api/v1/admin/topups"))
	cmd.AddCommand(newListCmd[response.Transaction]("transactions", "Show every power-up purchase", "/api/v1/admin/transactions"))
	cmd.AddCommand(newAdminDeleteMatchCmd())
	cmd.AddCommand(newAdminTopUpCmd())

	return cmd
}

func newAdminDeleteMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-match <id>",
		Short: "Hide a match from every history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/admin/matches/" + url.PathEscape(args[0])); err != nil {
				return err
			}

			output(cmd).PrintMessage("Match deleted")
			return nil
		},
	}
}

func newAdminTopUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "topup <user-id> <amount>",
		Short: "Add funds to a user's balance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			var result response.Balance

			path := fmt.Sprintf("/api/v1/admin/users/%s/topup", url.PathEscape(args[0]))
			if err := client.Post(path, map[string]int64{"amount": amount}, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}
