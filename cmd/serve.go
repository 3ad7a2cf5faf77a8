package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bakai-assistant/web"
	"bakai-assistant/web/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.close()

		reindex := services.NewReindexService(a.retriever, a.source, a.indexer, cfg.IndexBatchSize, logger)
		// The server still starts without an index so /api/reindex can recover.
		if resp, err := reindex.Reindex(ctx, false); err != nil {
			logger.Error("Initial knowledge load failed", zap.Error(err))
		} else {
			logger.Info("Knowledge index ready",
				zap.Int("entries", resp.Stats.TotalEntries),
				zap.Int("faqs", resp.Stats.FaqCount))
		}

		queryLog, history := a.queryLog()
		server := web.NewServer(web.Dependencies{
			Query:   services.NewQueryService(a.retriever, a.classifier, queryLog, logger),
			Reindex: reindex,
			Stats:   a.retriever,
			Links:   a.links,
			History: history,
		}, logger, cfg)

		port := cfg.WebPort
		if servePort > 0 {
			port = servePort
		}
		addr := fmt.Sprintf(":%d", port)
		logger.Info("Starting Bakai assistant API", zap.String("port", addr))
		return server.Start(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "override WEB_PORT")
	rootCmd.AddCommand(serveCmd)
}
