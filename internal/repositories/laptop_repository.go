package repositories

import (
	"context"

	"laptopcatalog/internal/models"
	"laptopcatalog/internal/query"
)

// LaptopRepository defines the interface for laptop data access.
//
// FindByID, UpdateByID and DeleteByID return an apperr.KindInvalidIdentifier
// error when the id is not in the store's identifier format and
// apperr.KindNotFound when no record matches. Insert and UpdateByID
// return apperr.KindValidation when the resulting record is invalid.
type LaptopRepository interface {
	Insert(ctx context.Context, laptop *models.Laptop) error
	FindByID(ctx context.Context, id string) (*models.Laptop, error)
	Find(ctx context.Context, q query.Query) ([]models.Laptop, error)
	Count(ctx context.Context, c query.Criteria) (int, error)
	UpdateByID(ctx context.Context, id string, patch models.LaptopPatch) (*models.Laptop, error)
	DeleteByID(ctx context.Context, id string) (*models.Laptop, error)
	// ReplaceAll removes every record and inserts the given ones.
	ReplaceAll(ctx context.Context, laptops []models.Laptop) error
	Ping(ctx context.Context) error
}
