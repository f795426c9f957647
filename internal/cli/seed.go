package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"laptopcatalog/internal/services"
)

func newSeedCommand(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Replace the catalog with the sample laptops",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			repo, closeStore, err := openStore(cmd.Context(), cfg, log)
			if err != nil {
				log.Error("store connection failed", zap.Error(err))
				return err
			}
			defer closeStore() //nolint:errcheck

			laptops := services.SampleLaptops()
			if err := services.NewLaptopService(repo, nil, log).Seed(cmd.Context(), laptops); err != nil {
				log.Error("error seeding data", zap.Error(err))
				return err
			}
			log.Info("sample laptops inserted", zap.Int("count", len(laptops)))
			return nil
		},
	}
}
