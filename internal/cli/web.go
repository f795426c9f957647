package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"laptopcatalog/internal/server"
	"laptopcatalog/internal/web"
	"laptopcatalog/pkg/client"
)

func newWebCommand(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "web",
		Short: "Run the administration frontend against the API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			api := client.New(cfg.APIURL, client.WithLogger(log))

			mq, err := openEvents(cfg, log)
			if err != nil {
				// the frontend still works without events, only with a staler cache
				log.Warn("catalog events unavailable", zap.Error(err))
			}
			if mq != nil {
				defer mq.Close()
				if err := mq.ConsumeLaptopEvents(web.InvalidateOnEvent(api, log)); err != nil {
					log.Warn("failed to start catalog event consumer", zap.Error(err))
				}
			}

			app := web.NewApp(api, web.NewSubmissionTokens(30*time.Minute), log)
			return server.Run(ctx, app, cfg.WebPort, log)
		},
	}
}
