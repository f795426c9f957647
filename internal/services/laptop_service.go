package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"laptopcatalog/internal/apperr"
	"laptopcatalog/internal/models"
	"laptopcatalog/internal/query"
	"laptopcatalog/internal/repositories"
)

// EventPublisher publishes catalog change events.
type EventPublisher interface {
	PublishLaptopEvent(event models.LaptopEvent) error
}

// LaptopService implements the catalog operations on top of a repository.
// It is the only place where store errors are translated into API errors.
type LaptopService struct {
	repo   repositories.LaptopRepository
	events EventPublisher
	logger *zap.Logger
	now    func() time.Time
}

// NewLaptopService creates a new LaptopService. events and logger may be nil.
func NewLaptopService(repo repositories.LaptopRepository, events EventPublisher, logger *zap.Logger) *LaptopService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LaptopService{
		repo:   repo,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// List returns one filtered, sorted page of laptops and the total match count.
func (s *LaptopService) List(ctx context.Context, args query.ListArgs) (*models.LaptopPage, error) {
	q, warnings := query.Build(args)
	for _, w := range warnings {
		s.logger.Warn(w, zap.Any("filter", args.Filter))
	}

	total, err := s.repo.Count(ctx, q.Criteria)
	if err != nil {
		return nil, s.unclassified(err, "Failed to fetch laptops")
	}
	laptops, err := s.repo.Find(ctx, q)
	if err != nil {
		return nil, s.unclassified(err, "Failed to fetch laptops")
	}

	return &models.LaptopPage{Laptops: laptops, TotalCount: total}, nil
}

// Get returns a single laptop.
func (s *LaptopService) Get(ctx context.Context, id string) (*models.Laptop, error) {
	laptop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.classify(err, "Failed to fetch laptop", zap.String("id", id))
	}
	return laptop, nil
}

// Create validates and stores a new laptop.
func (s *LaptopService) Create(ctx context.Context, in models.LaptopInput) (*models.Laptop, error) {
	laptop := in.Laptop()
	if err := s.repo.Insert(ctx, laptop); err != nil {
		return nil, s.classify(err, "Failed to create laptop")
	}
	s.publish(models.LaptopCreated, laptop.ID, laptop)
	return laptop, nil
}

// Update applies a partial update to an existing laptop.
func (s *LaptopService) Update(ctx context.Context, id string, patch models.LaptopPatch) (*models.Laptop, error) {
	laptop, err := s.repo.UpdateByID(ctx, id, patch)
	if err != nil {
		return nil, s.classify(err, "Failed to update laptop", zap.String("id", id))
	}
	s.publish(models.LaptopUpdated, laptop.ID, laptop)
	return laptop, nil
}

// Delete removes a laptop and returns the removed record.
func (s *LaptopService) Delete(ctx context.Context, id string) (*models.Laptop, error) {
	laptop, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return nil, s.classify(err, "Failed to delete laptop", zap.String("id", id))
	}
	s.publish(models.LaptopDeleted, laptop.ID, nil)
	return laptop, nil
}

// Seed replaces the whole catalog with the given laptops.
func (s *LaptopService) Seed(ctx context.Context, laptops []models.Laptop) error {
	if err := s.repo.ReplaceAll(ctx, laptops); err != nil {
		return s.classify(err, "Failed to seed laptops")
	}
	return nil
}

// Ping reports whether the store is reachable.
func (s *LaptopService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// classify passes typed client-facing errors through and hides everything else.
func (s *LaptopService) classify(err error, fallback string, fields ...zap.Field) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case apperr.KindValidation, apperr.KindInvalidIdentifier, apperr.KindNotFound:
			return appErr
		}
	}
	return s.unclassified(err, fallback, fields...)
}

func (s *LaptopService) unclassified(err error, message string, fields ...zap.Field) error {
	s.logger.Error(message, append(fields, zap.Error(err))...)
	return apperr.Wrap(apperr.KindUnclassified, err, message)
}

func (s *LaptopService) publish(typ models.LaptopEventType, id string, laptop *models.Laptop) {
	if s.events == nil {
		s.logger.Debug("event publisher not configured, skipping laptop event", zap.String("type", string(typ)))
		return
	}
	event := models.LaptopEvent{Type: typ, LaptopID: id, Laptop: laptop, OccurredAt: s.now().UTC()}
	if err := s.events.PublishLaptopEvent(event); err != nil {
		s.logger.Warn("failed to publish laptop event",
			zap.String("type", string(typ)),
			zap.String("laptop_id", id),
			zap.Error(err))
	}
}
