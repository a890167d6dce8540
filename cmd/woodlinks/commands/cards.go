package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"woodlinks-backend/internal/services"
)

var (
	issueCount    int
	issueMaterial string
	issueTitle    string
	cardsLimit    uint64
	cardsOffset   uint64
)

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "Manage cards",
}

var cardsIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue blank, unclaimed cards",
	Long: `Issue blank cards for production and print the URL to write to each NFC chip.

Examples:
  woodlinks cards issue --count 20 --material hinoki
  woodlinks cards issue --count 1 --title "Event badge"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.db.Close()

		cardService := services.NewCardService(e.db, e.db, e.db, nil, e.cfg, e.logger)
		cards, err := cardService.IssueCards(cmd.Context(), e.adminCaller(), issueCount, issueMaterial, issueTitle)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSLUG\tNFC URL")
		for _, card := range cards {
			fmt.Fprintf(w, "%s\t%s\t%s\n", card.ID, card.Slug, cardService.NFCURL(card.ID))
		}
		return w.Flush()
	},
}

var cardsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cards, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.db.Close()

		cardService := services.NewCardService(e.db, e.db, e.db, nil, e.cfg, e.logger)
		cards, err := cardService.AdminListCards(cmd.Context(), e.adminCaller(), cardsLimit, cardsOffset)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSLUG\tSTATUS\tCLAIMED\tVIEWS")
		for _, card := range cards {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%d\n", card.ID, card.Slug, card.Status, card.Claimed(), card.ViewCount)
		}
		return w.Flush()
	},
}

func init() {
	cardsIssueCmd.Flags().IntVar(&issueCount, "count", 1, "Number of cards to issue (1-500)")
	cardsIssueCmd.Flags().StringVar(&issueMaterial, "material", "", "Wood material: sugi, hinoki or keyaki")
	cardsIssueCmd.Flags().StringVar(&issueTitle, "title", "", "Initial card title")

	cardsListCmd.Flags().Uint64Var(&cardsLimit, "limit", 50, "Maximum number of cards (max 200)")
	cardsListCmd.Flags().Uint64Var(&cardsOffset, "offset", 0, "Number of cards to skip")

	cardsCmd.AddCommand(cardsIssueCmd)
	cardsCmd.AddCommand(cardsListCmd)
	rootCmd.AddCommand(cardsCmd)
}
