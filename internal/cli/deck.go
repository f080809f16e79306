package cli

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/deckduel/internal/api/response"
)

func newDeckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Deck building commands",
	}

	cmd.AddCommand(newDeckCreateCmd())
	cmd.AddCommand(newDeckListCmd())
	cmd.AddCommand(newDeckShowCmd())
	cmd.AddCommand(newDeckUpdateCmd())
	cmd.AddCommand(newDeckDeleteCmd())

	return cmd
}

// deckFlags are shared by create and update
type deckFlags struct {
	name      string
	leader    string
	cards     []string
	cardsFile string
}

func (f *deckFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Deck name (required)")
	cmd.Flags().StringVar(&f.leader, "leader", "", "Leader name (required)")
	cmd.Flags().StringSliceVar(&f.cards, "card", nil, "Card name, repeatable")
	cmd.Flags().StringVar(&f.cardsFile, "cards-file", "", "File with one card name per line")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("leader")
}

func (f *deckFlags) body() (map[string]any, error) {
	cards := f.cards
	if f.cardsFile != "" {
		fromFile, err := readLines(f.cardsFile)
		if err != nil {
			return nil, fmt.Errorf("read cards file: %w", err)
		}
		cards = append(cards, fromFile...)
	}
	return map[string]any{
		"name":   f.name,
		"leader": f.leader,
		"cards":  cards,
	}, nil
}

// readLines returns the non-blank lines of a file
func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

func newDeckCreateCmd() *cobra.Command {
	var flags deckFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a deck",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.body()
			if err != nil {
				return err
			}
			var result response.DeckSaved

			if err := client.Post("/api/v1/decks", req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
	flags.register(cmd)

	return cmd
}

func newDeckListCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your decks",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/decks"
			if name != "" {
				path += "?name=" + url.QueryEscape(name)
			}
			var result []response.Deck

			if err := client.Get(path, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Only decks whose name contains this text")

	return cmd
}

func newDeckShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a deck with its cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.DeckDetail

			if err := client.Get("/api/v1/decks/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newDeckUpdateCmd() *cobra.Command {
	var flags deckFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a deck's name, leader and cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.body()
			if err != nil {
				return err
			}
			var result response.DeckSaved

			if err := client.Put("/api/v1/decks/"+url.PathEscape(args[0]), req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
	flags.register(cmd)

	return cmd
}

func newDeckDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/decks/" + url.PathEscape(args[0])); err != nil {
				return err
			}

			output(cmd).PrintMessage("Deck deleted")
			return nil
		},
	}
}
