package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/deckduel/internal/api/response"
)

func newMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match commands",
	}

	cmd.AddCommand(newMatchPlayCmd())
	cmd.AddCommand(newMatchHistoryCmd())

	return cmd
}

func newMatchPlayCmd() *cobra.Command {
	var deck, opponent, opponentDeck string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a match against another player",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"deck_player1": deck,
				"player2":      opponent,
				"deck_player2": opponentDeck,
			}
			var result response.MatchOutcome

			if err := client.Post("/api/v1/matches", req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&deck, "deck", "", "Your deck name (required)")
	cmd.Flags().StringVar(&opponent, "opponent", "", "Opponent username (required)")
	cmd.Flags().StringVar(&opponentDeck, "opponent-deck", "", "Opponent's deck name (required)")
	_ = cmd.MarkFlagRequired("deck")
	_ = cmd.MarkFlagRequired("opponent")
	_ = cmd.MarkFlagRequired("opponent-deck")

	return cmd
}

func newMatchHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show your match history",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Match

			if err := client.Get("/api/v1/matches", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}
