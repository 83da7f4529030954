package main

import (
	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List taxonomy categories",
		Long:  `List the configured spending categories in taxonomy order.`,
		RunE:  runCategories,
	}

	cmd.Flags().Bool("aliases", false, "Also show the aliases of each category")

	return cmd
}

func runCategories(cmd *cobra.Command, _ []string) error {
	showAliases, _ := cmd.Flags().GetBool("aliases")

	store, err := newTaxonomyStore()
	if err != nil {
		return err
	}

	cats, err := store.Categories()
	if err != nil {
		return err
	}

	for _, cat := range cats {
		cmd.Printf("%-20s %s\n", cat.ID, cat.DisplayName)
		if showAliases {
			for _, alias := range cat.Aliases {
				cmd.Printf("    %s\n", alias)
			}
		}
	}
	return nil
}
