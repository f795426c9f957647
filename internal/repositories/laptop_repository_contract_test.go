package repositories_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laptopcatalog/internal/apperr"
	"laptopcatalog/internal/models"
	"laptopcatalog/internal/query"
	"laptopcatalog/internal/repositories"
)

// missingID is well-formed for the UUID based stores but never issued.
const missingID = "6f1c2a3e-0000-4000-8000-000000000000"

func sampleLaptops() []models.Laptop {
	laptops := make([]models.Laptop, 0, 10)
	for i := 0; i < 10; i++ {
		laptops = append(laptops, models.Laptop{
			Name:          fmt.Sprintf("Laptop %02d", 10-i),
			Configuration: "16GB Ram, 512GB SSD",
			PricePerHour:  models.Float(float64(24000 - i*1000)),
		})
	}
	return laptops
}

// runLaptopRepositoryContract exercises the behaviour every store must share.
func runLaptopRepositoryContract(t *testing.T, newRepo func(t *testing.T) repositories.LaptopRepository) {
	ctx := context.Background()

	t.Run("InsertThenFind", func(t *testing.T) {
		repo := newRepo(t)
		laptop := &models.Laptop{
			Name:          "  Dell Inspiron 14  ",
			Configuration: "8GB Ram, 256GB SSD",
			PricePerHour:  models.Float(15000),
			ImageURL:      "https://example.com/dell.png",
		}
		require.NoError(t, repo.Insert(ctx, laptop))
		assert.NotEmpty(t, laptop.ID)
		assert.False(t, laptop.CreatedAt.IsZero())
		assert.False(t, laptop.UpdatedAt.IsZero())

		found, err := repo.FindByID(ctx, laptop.ID)
		require.NoError(t, err)
		assert.Equal(t, laptop.ID, found.ID)
		assert.Equal(t, "Dell Inspiron 14", found.Name)
		assert.Equal(t, "8GB Ram, 256GB SSD", found.Configuration)
		assert.Equal(t, 15000.0, found.Price())
		assert.Equal(t, "https://example.com/dell.png", found.ImageURL)
	})

	t.Run("InsertRejectsNegativePrice", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.Insert(ctx, &models.Laptop{Name: "Acer", Configuration: "8GB Ram", PricePerHour: models.Float(-5)})
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
		assert.Contains(t, err.Error(), "Price cannot be negative")
	})

	t.Run("InsertAcceptsZeroPrice", func(t *testing.T) {
		repo := newRepo(t)
		laptop := &models.Laptop{Name: "Acer", Configuration: "8GB Ram", PricePerHour: models.Float(0)}
		require.NoError(t, repo.Insert(ctx, laptop))
		found, err := repo.FindByID(ctx, laptop.ID)
		require.NoError(t, err)
		assert.Equal(t, 0.0, found.Price())
	})

	t.Run("InsertAggregatesFieldErrors", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.Insert(ctx, &models.Laptop{Name: " ab ", Configuration: "", ImageURL: "not a url"})
		require.Error(t, err)
		assert.Equal(t,
			"Validation failed: Laptop name must be at least 3 characters, Configuration is required, Price per hour is required, Please enter a valid URL",
			err.Error())
	})

	t.Run("FindByIDMalformed", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.FindByID(ctx, "not-an-id")
		assert.True(t, apperr.Is(err, apperr.KindInvalidIdentifier))
	})

	t.Run("PagedSortedFind", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.ReplaceAll(ctx, sampleLaptops()))

		q, _ := query.Build(query.ListArgs{Limit: 5, SortBy: query.SortByPricePerHour, SortOrder: query.Asc})
		total, err := repo.Count(ctx, q.Criteria)
		require.NoError(t, err)
		assert.Equal(t, 10, total)

		page, err := repo.Find(ctx, q)
		require.NoError(t, err)
		require.Len(t, page, 5)
		for i, l := range page {
			assert.Equal(t, float64(15000+i*1000), l.Price())
		}

		q, _ = query.Build(query.ListArgs{Page: 3, Limit: 4, SortBy: query.SortByName, SortOrder: query.Desc})
		page, err = repo.Find(ctx, q)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "Laptop 02", page[0].Name)
		assert.Equal(t, "Laptop 01", page[1].Name)
	})

	t.Run("PriceDescending", func(t *testing.T) {
		repo := newRepo(t)
		for _, price := range []float64{10, 30, 20} {
			require.NoError(t, repo.Insert(ctx, &models.Laptop{Name: "Same name", Configuration: "8GB Ram", PricePerHour: models.Float(price)}))
		}
		q, _ := query.Build(query.ListArgs{SortBy: query.SortByPricePerHour, SortOrder: query.Desc})
		page, err := repo.Find(ctx, q)
		require.NoError(t, err)
		require.Len(t, page, 3)
		assert.Equal(t, []float64{30, 20, 10}, []float64{page[0].Price(), page[1].Price(), page[2].Price()})
	})

	t.Run("SearchAndFilter", func(t *testing.T) {
		repo := newRepo(t)
		for _, l := range []models.Laptop{
			{Name: "MacBook Air", Configuration: "8GB Ram", PricePerHour: models.Float(18000)},
			{Name: "macbook pro", Configuration: "16GB Ram", PricePerHour: models.Float(30000)},
			{Name: "a.b* special", Configuration: "8GB Ram", PricePerHour: models.Float(5000)},
			{Name: "aXbb plain", Configuration: "8GB Ram", PricePerHour: models.Float(5000)},
			{Name: "ĐỒ HỌA Pro", Configuration: "32GB Ram, RTX 4060", PricePerHour: models.Float(9000)},
		} {
			l := l
			require.NoError(t, repo.Insert(ctx, &l))
		}

		q, _ := query.Build(query.ListArgs{Search: "MACBOOK"})
		n, err := repo.Count(ctx, q.Criteria)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		for _, term := range []string{"ĐỒ HỌA", "đồ họa", "Đồ Họa pro"} {
			q, _ = query.Build(query.ListArgs{Search: term})
			page, err := repo.Find(ctx, q)
			require.NoError(t, err)
			require.Len(t, page, 1, term)
			assert.Equal(t, "ĐỒ HỌA Pro", page[0].Name)
		}

		q, _ = query.Build(query.ListArgs{Search: "a.b*"})
		page, err := repo.Find(ctx, q)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "a.b* special", page[0].Name)

		q, warnings := query.Build(query.ListArgs{Filter: &query.PriceFilter{MinPrice: models.Float(10000), MaxPrice: models.Float(500)}})
		assert.Len(t, warnings, 1)
		n, err = repo.Count(ctx, q.Criteria)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		q, _ = query.Build(query.ListArgs{Search: "book", Filter: &query.PriceFilter{MaxPrice: models.Float(20000)}})
		page, err = repo.Find(ctx, q)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "MacBook Air", page[0].Name)
	})

	t.Run("UpdatePartial", func(t *testing.T) {
		repo := newRepo(t)
		laptop := &models.Laptop{Name: "HP Pavilion", Configuration: "8GB Ram, 256GB SSD", PricePerHour: models.Float(23000)}
		require.NoError(t, repo.Insert(ctx, laptop))

		updated, err := repo.UpdateByID(ctx, laptop.ID, models.LaptopPatch{PricePerHour: models.Float(25000)})
		require.NoError(t, err)
		assert.Equal(t, "HP Pavilion", updated.Name)
		assert.Equal(t, 25000.0, updated.Price())
		assert.False(t, updated.UpdatedAt.Before(laptop.UpdatedAt))

		_, err = repo.UpdateByID(ctx, laptop.ID, models.LaptopPatch{Name: models.String("x")})
		assert.True(t, apperr.Is(err, apperr.KindValidation))

		found, err := repo.FindByID(ctx, laptop.ID)
		require.NoError(t, err)
		assert.Equal(t, "HP Pavilion", found.Name)
	})

	t.Run("SearchFollowsRename", func(t *testing.T) {
		repo := newRepo(t)
		laptop := &models.Laptop{Name: "Asus Vivobook", Configuration: "8GB Ram, 256GB SSD", PricePerHour: models.Float(16000)}
		require.NoError(t, repo.Insert(ctx, laptop))

		_, err := repo.UpdateByID(ctx, laptop.ID, models.LaptopPatch{Name: models.String("MÁY TRẠM Zenbook")})
		require.NoError(t, err)

		q, _ := query.Build(query.ListArgs{Search: "máy trạm"})
		n, err := repo.Count(ctx, q.Criteria)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		q, _ = query.Build(query.ListArgs{Search: "vivobook"})
		n, err = repo.Count(ctx, q.Criteria)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("UpdateMissingAndMalformed", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.UpdateByID(ctx, missingID, models.LaptopPatch{Name: models.String("Valid name")})
		assert.True(t, apperr.Is(err, apperr.KindNotFound))

		_, err = repo.UpdateByID(ctx, "not-an-id", models.LaptopPatch{})
		assert.True(t, apperr.Is(err, apperr.KindInvalidIdentifier))
	})

	t.Run("Delete", func(t *testing.T) {
		repo := newRepo(t)
		laptop := &models.Laptop{Name: "GPD Duo", Configuration: "8GB Ram, 1TB SSD", PricePerHour: models.Float(24000)}
		require.NoError(t, repo.Insert(ctx, laptop))

		removed, err := repo.DeleteByID(ctx, laptop.ID)
		require.NoError(t, err)
		assert.Equal(t, "GPD Duo", removed.Name)

		_, err = repo.FindByID(ctx, laptop.ID)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))

		_, err = repo.DeleteByID(ctx, laptop.ID)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))

		_, err = repo.DeleteByID(ctx, "not-an-id")
		assert.True(t, apperr.Is(err, apperr.KindInvalidIdentifier))
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, newRepo(t).Ping(ctx))
	})
}
