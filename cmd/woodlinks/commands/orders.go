package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"woodlinks-backend/internal/models"
	"woodlinks-backend/internal/services"
)

var (
	listStatus string
	listLimit  uint64
	tracking   string
	carrier    string
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Inspect and update orders",
}

var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List orders, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.db.Close()

		filter := models.OrderFilter{Limit: listLimit}
		if listStatus != "" {
			status := models.OrderStatus(listStatus)
			filter.Status = &status
		}

		orderService := services.NewOrderService(e.db, e.db, nil, nil, e.cfg, e.logger)
		orders, err := orderService.AdminListOrders(cmd.Context(), e.adminCaller(), filter)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tMATERIAL\tQTY\tSHIP TO\tCREATED")
		for _, o := range orders {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
				o.ID, o.Status, o.Material, o.Quantity, o.ShippingName, o.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var ordersSetStatusCmd = &cobra.Command{
	Use:   "set-status <order-id> <status>",
	Short: "Set an order's status as the admin",
	Long: `Set an order's status. shipped stamps shipped_at and paid stamps paid_at.

Examples:
  woodlinks orders set-status 5d0c8b8e-... in_production
  woodlinks orders set-status 5d0c8b8e-... shipped --carrier yamato --tracking 1234-5678`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		orderID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid order id: %w", err)
		}

		e, err := setup()
		if err != nil {
			return err
		}
		defer e.db.Close()

		change := services.StatusChange{Status: args[1]}
		if cmd.Flags().Changed("tracking") {
			change.TrackingNumber = &tracking
		}
		if cmd.Flags().Changed("carrier") {
			change.Carrier = &carrier
		}

		orderService := services.NewOrderService(e.db, e.db, nil, nil, e.cfg, e.logger)
		order, err := orderService.AdminUpdateStatus(cmd.Context(), e.adminCaller(), orderID, change)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Order %s is now %s\n", order.ID, order.Status)
		return nil
	},
}

func init() {
	ordersListCmd.Flags().StringVar(&listStatus, "status", "", "Only orders with this status")
	ordersListCmd.Flags().Uint64Var(&listLimit, "limit", 50, "Maximum rows")

	ordersSetStatusCmd.Flags().StringVar(&tracking, "tracking", "", "Tracking number")
	ordersSetStatusCmd.Flags().StringVar(&carrier, "carrier", "", "Carrier name")

	ordersCmd.AddCommand(ordersListCmd, ordersSetStatusCmd)
	rootCmd.AddCommand(ordersCmd)
}
