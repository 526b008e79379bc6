package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rl1809/storefront/internal/app"
	"github.com/rl1809/storefront/internal/core/domain"
)

func newOrdersCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Look up placed orders",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List orders",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				orders, err := opts.client().ListOrders(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), orders)
			},
		},
		&cobra.Command{
			Use:   "get <order-id>",
			Short: "Show one order",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				order, err := opts.client().GetOrder(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), order)
			},
		},
	)
	return cmd
}

func newCheckoutCommand(opts *rootOptions) *cobra.Command {
	var customer domain.Customer

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for everything in the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(c context.Context, a *app.App) error {
				summary := a.Checkout.Summary()
				fmt.Fprintf(cmd.OutOrStdout(), "Subtotal: %s\nTax:      %s\nTotal:    %s\n",
					summary.Subtotal, summary.Tax, summary.Total)

				order, err := a.Checkout.PlaceOrder(c, customer)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Order %s is %s\n", order.ID, order.Status)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&customer.Name, "name", "", "full name")
	flags.StringVar(&customer.Email, "email", "", "email address")
	flags.StringVar(&customer.Shipping.Address, "address", "", "shipping street address")
	flags.StringVar(&customer.Shipping.City, "city", "", "shipping city")
	flags.StringVar(&customer.Shipping.PostalCode, "postal-code", "", "shipping postal code")
	flags.StringVar(&customer.Shipping.Country, "country", "", "shipping country")
	return cmd
}
