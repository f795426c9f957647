package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"laptopcatalog/internal/metrics"
	"laptopcatalog/internal/server"
)

func newServeCommand(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the GraphQL API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			repo, closeStore, err := openStore(ctx, cfg, log)
			if err != nil {
				log.Error("store connection failed", zap.Error(err))
				return err
			}
			defer func() {
				if err := closeStore(); err != nil {
					log.Warn("failed to close store", zap.Error(err))
				}
			}()

			mq, err := openEvents(cfg, log)
			if err != nil {
				log.Error("failed to initialize RabbitMQ client", zap.Error(err))
				return err
			}
			if mq != nil {
				defer mq.Close()
			}

			app, err := server.NewApp(server.Options{
				Service:     newService(repo, mq, log),
				Metrics:     metrics.New(),
				Logger:      log,
				Debug:       cfg.Debug,
				CORSOrigins: cfg.CORSOrigins,
			})
			if err != nil {
				return err
			}
			return server.Run(ctx, app, cfg.AppPort, log)
		},
	}
}
