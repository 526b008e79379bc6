package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rl1809/storefront/internal/app"
	"github.com/rl1809/storefront/internal/core/domain"
)

func newCartCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and change the persisted cart",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.withApp(cmd, func(c context.Context, a *app.App) error {
					return printCart(cmd.OutOrStdout(), a.Cart.View())
				})
			},
		},
		&cobra.Command{
			Use:   "add <product-id> [quantity]",
			Short: "Add a product to the cart",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				quantity := 1
				if len(args) == 2 {
					q, err := parseQuantity(args[1])
					if err != nil {
						return err
					}
					quantity = q
				}

				return opts.withApp(cmd, func(c context.Context, a *app.App) error {
					product, err := a.Client.GetProduct(c, args[0])
					if err != nil {
						return fmt.Errorf("fetch product %s: %w", args[0], err)
					}
					if err := a.Cart.AddItem(product, quantity); err != nil {
						return err
					}
					return printCart(cmd.OutOrStdout(), a.Cart.View())
				})
			},
		},
		&cobra.Command{
			Use:   "remove <product-id>",
			Short: "Remove a product from the cart",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.withApp(cmd, func(c context.Context, a *app.App) error {
					a.Cart.RemoveItem(args[0])
					return printCart(cmd.OutOrStdout(), a.Cart.View())
				})
			},
		},
		&cobra.Command{
			Use:   "update <product-id> <quantity>",
			Short: "Set the quantity of a product already in the cart",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				quantity, err := parseQuantity(args[1])
				if err != nil {
					return err
				}
				return opts.withApp(cmd, func(c context.Context, a *app.App) error {
					a.Cart.UpdateQuantity(args[0], quantity)
					return printCart(cmd.OutOrStdout(), a.Cart.View())
				})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.withApp(cmd, func(c context.Context, a *app.App) error {
					a.Cart.ClearCart()
					return printCart(cmd.OutOrStdout(), a.Cart.View())
				})
			},
		},
	)
	return cmd
}

func parseQuantity(s string) (int, error) {
	q, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	return q, nil
}

func printCart(w io.Writer, view domain.CartView) error {
	if len(view.Items) == 0 && view.TotalItems == 0 {
		_, err := fmt.Fprintln(w, "Cart is empty")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tTOTAL")
	for _, item := range view.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			item.ID, item.Product.Name, item.Quantity, item.Product.Price, item.LineTotal())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nItems:    %d\n", view.TotalItems)
	fmt.Fprintf(w, "Subtotal: %s\n", view.Subtotal)
	_, err := fmt.Fprintf(w, "Total:    %s\n", view.Total)
	return err
}
