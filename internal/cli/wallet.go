package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/deckduel/internal/api/response"
)

func newWalletCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Balance, play credit and power-up commands",
	}

	cmd.AddCommand(newWalletShowCmd())
	cmd.AddCommand(newWalletTopUpCmd())
	cmd.AddCommand(newWalletConvertCmd())
	cmd.AddCommand(newWalletBuyCmd())
	cmd.AddCommand(newListCmd[response.Topup]("topups", "Show your top-up history", "/api/v1/wallet/topups"))
	cmd.AddCommand(newListCmd[response.Transaction]("transactions", "Show your power-up purchases", "/api/v1/wallet/transactions"))

	return cmd
}

func parseAmount(arg string) (int64, error) {
	amount, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", arg)
	}
	return amount, nil
}

func newWalletShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show balance, play credits and power-ups",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Account

			if err := client.Get("/api/v1/wallet", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newWalletTopUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "topup <amount>",
		Short: "Add funds to your balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			var result response.Balance

			if err := client.Post("/api/v1/wallet/topup", map[string]int64{"amount": amount}, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newWalletConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <credits>",
		Short: "Buy play credits with your balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			credits, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			var result response.Credits

			if err := client.Post("/api/v1/wallet/convert", map[string]int64{"amount": credits}, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newWalletBuyCmd() *cobra.Command {
	var name string
	var quantity int

	cmd := &cobra.Command{
		Use:   "buy",
		Short: "Buy a power-up",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"name":   name,
				"amount": quantity,
			}
			var result response.Receipt

			if err := client.Post("/api/v1/wallet/powerups", req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Power-up name (required)")
	cmd.Flags().IntVar(&quantity, "quantity", 1, "How many to buy")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// newListCmd builds a GET command printing a list of T
func newListCmd[T any](use, short, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []T

			if err := client.Get(path, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}
