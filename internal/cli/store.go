package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"laptopcatalog/internal/config"
	"laptopcatalog/internal/repositories"
	"laptopcatalog/internal/services"
	"laptopcatalog/pkg/rabbitmq"
)

// openStore validates the store settings, connects, and returns the
// repository together with its close function.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (repositories.LaptopRepository, func() error, error) {
	if err := cfg.ValidateStore(); err != nil {
		return nil, nil, err
	}

	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := repositories.ConnectMongo(ctx, cfg.MongoURI, cfg.StoreConnectTimeout)
		if err != nil {
			return nil, nil, err
		}
		log.Info("connected to mongodb", zap.String("database", cfg.MongoDatabase))
		coll := client.Database(cfg.MongoDatabase).Collection(repositories.LaptopCollection)
		return repositories.NewMongoLaptopRepository(coll, cfg.StoreOperationTimeout),
			func() error { return client.Disconnect(context.Background()) }, nil

	case config.DriverPostgres, config.DriverSQLite:
		db, err := repositories.OpenGORM(cfg.StoreDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		log.Info("connected to database", zap.String("driver", cfg.StoreDriver))
		return repositories.NewGORMLaptopRepository(db), sqlDB.Close, nil

	case config.DriverMemory:
		log.Warn("using the in-memory store; data is lost on exit")
		return repositories.NewMemoryLaptopRepository(), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}

// openEvents connects the catalog event client when RABBITMQ_URL is set.
// A nil client means events are disabled.
func openEvents(cfg *config.Config, log *zap.Logger) (*rabbitmq.Client, error) {
	if cfg.RabbitMQURL == "" {
		log.Info("RABBITMQ_URL not set, catalog events disabled")
		return nil, nil
	}
	return rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: rabbitmq.DefaultQueue}, log)
}

// newService builds the catalog service, publishing events only when mq is set.
func newService(repo repositories.LaptopRepository, mq *rabbitmq.Client, log *zap.Logger) *services.LaptopService {
	if mq == nil {
		return services.NewLaptopService(repo, nil, log)
	}
	return services.NewLaptopService(repo, mq, log)
}
