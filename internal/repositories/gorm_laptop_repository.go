package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"laptopcatalog/internal/apperr"
	"laptopcatalog/internal/models"
	"laptopcatalog/internal/query"
	"laptopcatalog/internal/validation"
)

var gormColumns = map[string]string{
	query.FieldName:         "name",
	query.FieldPricePerHour: "price_per_hour",
}

// OpenGORM opens a postgres or sqlite database and migrates the laptops table.
func OpenGORM(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported gorm driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&models.Laptop{}); err != nil {
		return nil, fmt.Errorf("failed to migrate laptops table: %w", err)
	}
	if err := backfillNameSearch(db); err != nil {
		return nil, err
	}
	return db, nil
}

// backfillNameSearch fills name_search for rows written before the column existed.
func backfillNameSearch(db *gorm.DB) error {
	var stale []models.Laptop
	if err := db.Where("name_search = ?", "").Find(&stale).Error; err != nil {
		return fmt.Errorf("failed to load laptops for name_search backfill: %w", err)
	}
	for _, l := range stale {
		err := db.Model(&models.Laptop{}).Where("id = ?", l.ID).
			UpdateColumn("name_search", strings.ToLower(l.Name)).Error
		if err != nil {
			return fmt.Errorf("failed to backfill name_search for %s: %w", l.ID, err)
		}
	}
	return nil
}

// GORMLaptopRepository is a GORM implementation of LaptopRepository.
type GORMLaptopRepository struct {
	db       *gorm.DB
	validate *validation.Validator
}

// NewGORMLaptopRepository creates a new instance of GORMLaptopRepository.
func NewGORMLaptopRepository(db *gorm.DB) *GORMLaptopRepository {
	return &GORMLaptopRepository{
		db:       db,
		validate: validation.New(validation.Store),
	}
}

// Insert validates and creates a laptop in the database.
func (r *GORMLaptopRepository) Insert(ctx context.Context, laptop *models.Laptop) error {
	laptop.Normalize()
	if err := r.validate.Validate(laptop); err != nil {
		return err
	}
	laptop.ID = uuid.New().String()
	if err := r.db.WithContext(ctx).Create(laptop).Error; err != nil {
		return fmt.Errorf("failed to create laptop: %w", err)
	}
	return nil
}

// FindByID retrieves a single laptop by its ID from the database.
func (r *GORMLaptopRepository) FindByID(ctx context.Context, id string) (*models.Laptop, error) {
	if err := checkUUID(id); err != nil {
		return nil, err
	}
	var laptop models.Laptop
	if err := r.db.WithContext(ctx).First(&laptop, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Laptop not found")
		}
		return nil, fmt.Errorf("failed to get laptop by ID %s: %w", id, err)
	}
	return &laptop, nil
}

// Find retrieves one ordered page of matching laptops.
func (r *GORMLaptopRepository) Find(ctx context.Context, q query.Query) ([]models.Laptop, error) {
	column, ok := gormColumns[q.Sort.Field]
	if !ok {
		column = "name"
	}

	laptops := []models.Laptop{}
	err := r.where(ctx, q.Criteria).
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: q.Sort.Descending}).
		Order("id").
		Offset(q.Skip).
		Limit(q.Limit).
		Find(&laptops).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list laptops: %w", err)
	}
	return laptops, nil
}

// Count returns the number of laptops matching the criteria.
func (r *GORMLaptopRepository) Count(ctx context.Context, c query.Criteria) (int, error) {
	var n int64
	if err := r.where(ctx, c).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count laptops: %w", err)
	}
	return int(n), nil
}

// UpdateByID applies the patch inside a transaction and re-validates the record.
func (r *GORMLaptopRepository) UpdateByID(ctx context.Context, id string, patch models.LaptopPatch) (*models.Laptop, error) {
	if err := checkUUID(id); err != nil {
		return nil, err
	}

	var laptop models.Laptop
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&laptop, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Laptop not found, cannot update")
			}
			return fmt.Errorf("failed to load laptop %s: %w", id, err)
		}
		laptop.Apply(patch)
		laptop.Normalize()
		if err := r.validate.Validate(&laptop); err != nil {
			return err
		}
		if err := tx.Save(&laptop).Error; err != nil {
			return fmt.Errorf("failed to update laptop %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &laptop, nil
}

// DeleteByID deletes a laptop by its ID and returns the removed record.
func (r *GORMLaptopRepository) DeleteByID(ctx context.Context, id string) (*models.Laptop, error) {
	if err := checkUUID(id); err != nil {
		return nil, err
	}

	var laptop models.Laptop
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&laptop, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Laptop not found, cannot delete")
			}
			return fmt.Errorf("failed to load laptop %s: %w", id, err)
		}
		res := tx.Delete(&models.Laptop{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete laptop: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("Laptop not found, cannot delete")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &laptop, nil
}

// ReplaceAll empties the table and inserts the given laptops in one transaction.
func (r *GORMLaptopRepository) ReplaceAll(ctx context.Context, laptops []models.Laptop) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Laptop{}).Error; err != nil {
			return fmt.Errorf("failed to clear laptops: %w", err)
		}
		for i := range laptops {
			laptops[i].Normalize()
			if err := r.validate.Validate(&laptops[i]); err != nil {
				return err
			}
			laptops[i].ID = uuid.New().String()
			if err := tx.Create(&laptops[i]).Error; err != nil {
				return fmt.Errorf("failed to insert laptop %q: %w", laptops[i].Name, err)
			}
		}
		return nil
	})
}

// Ping checks the underlying connection pool.
func (r *GORMLaptopRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *GORMLaptopRepository) where(ctx context.Context, c query.Criteria) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&models.Laptop{})
	if c.NameContains != "" {
		// SQL LOWER is ASCII-only on SQLite; name_search is lowered in Go.
		tx = tx.Where(`name_search LIKE ? ESCAPE '\'`, c.NameLike())
	}
	if c.MinPrice != nil {
		tx = tx.Where("price_per_hour >= ?", *c.MinPrice)
	}
	if c.MaxPrice != nil {
		tx = tx.Where("price_per_hour <= ?", *c.MaxPrice)
	}
	return tx
}
