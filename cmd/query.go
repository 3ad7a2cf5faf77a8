package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"bakai-assistant/web/services"

	"github.com/spf13/cobra"
)

var queryAsJSON bool

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Resolve one question and print the result",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.close()

		if _, err := a.retriever.LoadFrom(ctx, a.source); err != nil {
			return err
		}

		queryLog, _ := a.queryLog()
		resp, err := services.NewQueryService(a.retriever, a.classifier, queryLog, logger).
			Answer(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if queryAsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}

		fmt.Fprintf(out, "Search type: %s (%s)\n", resp.SearchType, resp.QueryType)
		fmt.Fprintf(out, "Category:    %s -> %s [%s]\n", resp.Category.Category, resp.Category.URL, resp.Category.LinkSource)
		if resp.DirectAnswer {
			fmt.Fprintf(out, "\n%s\n", resp.Answer)
			return nil
		}
		for i, m := range resp.Matches {
			fmt.Fprintf(out, "\n%d. [%s %.3f]\n%s\n", i+1, m.Kind, m.Score, m.Text)
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().BoolVar(&queryAsJSON, "json", false, "print the full response as JSON")
	rootCmd.AddCommand(queryCmd)
}
