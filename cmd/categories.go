package cmd

import (
	"fmt"

	"bakai-assistant/category"

	"github.com/spf13/cobra"
)

var categoriesQuery string

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List service categories and their links",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		links := category.NewLinks(cfg.BankLinks)

		if categoriesQuery != "" {
			classifier, err := category.NewClassifier(links, 0, logger)
			if err != nil {
				return err
			}
			routed := classifier.Route(categoriesQuery, nil)
			fmt.Fprintf(out, "Query:    %s\nCategory: %s -> %s\n\n", categoriesQuery, routed.Category, routed.URL)
			for _, a := range classifier.Analyze(categoriesQuery) {
				fmt.Fprintf(out, "%-10s raw=%-3d weighted=%-6.2f %v\n", a.Category, a.RawScore, a.WeightedScore, a.MatchedPatterns)
			}
			return nil
		}

		for _, e := range links.List() {
			fmt.Fprintf(out, "%-10s %3d  %-20s %s\n", e.Category, e.Priority, e.Name, e.URL)
		}
		fmt.Fprintf(out, "%-10s      %-20s %s\n", category.General, "", links.For(category.General))

		if err := links.Validate(); err != nil {
			return err
		}
		fmt.Fprintln(out, "\nAll links are valid")
		return nil
	},
}

func init() {
	categoriesCmd.Flags().StringVarP(&categoriesQuery, "query", "q", "", "score one query against every category")
	rootCmd.AddCommand(categoriesCmd)
}
