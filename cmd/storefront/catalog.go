package main

import (
	"github.com/spf13/cobra"
)

func newProductsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the catalog",
	}

	var category string
	list := &cobra.Command{
		Use:   "list",
		Short: "List products, optionally within a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := opts.client().ListProducts(cmd.Context(), category)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), products)
		},
	}
	list.Flags().StringVar(&category, "category", "", "category slug to filter by")

	get := &cobra.Command{
		Use:   "get <product-id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			product, err := opts.client().GetProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), product)
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}

func newCategoriesCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Browse catalog categories",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List categories",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				categories, err := opts.client().ListCategories(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), categories)
			},
		},
		&cobra.Command{
			Use:   "get <category-id>",
			Short: "Show one category",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				category, err := opts.client().GetCategory(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), category)
			},
		},
	)
	return cmd
}
