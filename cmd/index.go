package cmd

import (
	"errors"
	"fmt"

	"bakai-assistant/rag"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	indexImportFile string
	indexReset      bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Load the knowledge collection into the neighbor backend",
	Long: `Reads the configured knowledge source and embeds every entry into the
neighbor backend in batches of INDEX_BATCH_SIZE. With --import, a JSON file is
first copied into the Postgres knowledge table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.close()

		if indexImportFile != "" {
			if cfg.KnowledgeSource != "postgres" || a.store == nil {
				return errors.New("--import needs KNOWLEDGE_SOURCE=postgres")
			}
			entries, err := rag.NewFileSource(indexImportFile).Load(ctx)
			if err != nil {
				return err
			}
			stored, err := a.store.UpsertEntries(ctx, entries)
			if err != nil {
				return err
			}
			logger.Info("Imported knowledge file", zap.String("file", indexImportFile), zap.Int("stored", stored))
		}

		entries, err := a.source.Load(ctx)
		if err != nil {
			return err
		}
		// Validate the collection the same way serving would before embedding it.
		idx, err := rag.BuildIndex(rag.AssignEntryIDs(entries), logger)
		if err != nil {
			return err
		}
		stats := idx.Stats()

		if a.indexer == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Checked %d entries (%d FAQs); no neighbor backend configured\n", stats.TotalEntries, stats.FaqCount)
			return nil
		}

		if indexReset {
			resetter, ok := a.indexer.(interface{ Reset() error })
			if !ok {
				return fmt.Errorf("neighbor backend %q cannot be reset", cfg.NeighborBackend)
			}
			if err := resetter.Reset(); err != nil {
				return err
			}
			logger.Info("Neighbor collection reset")
		}

		indexed, err := a.indexer.IndexEntries(ctx, entries, cfg.IndexBatchSize)
		if err != nil {
			return fmt.Errorf("indexed %d of %d entries: %w", indexed, stats.TotalEntries, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d entries (%d FAQs, %d malformed) into %s\n",
			indexed, stats.FaqCount, stats.Malformed, cfg.NeighborBackend)
		return nil
	},
}

func init() {
	indexCmd.Flags().StringVar(&indexImportFile, "import", "", "JSON knowledge file to copy into Postgres first")
	indexCmd.Flags().BoolVar(&indexReset, "reset", false, "drop the neighbor collection before indexing")
	rootCmd.AddCommand(indexCmd)
}
