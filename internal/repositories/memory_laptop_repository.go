package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"laptopcatalog/internal/apperr"
	"laptopcatalog/internal/models"
	"laptopcatalog/internal/query"
	"laptopcatalog/internal/validation"
)

// MemoryLaptopRepository is an in-memory implementation of LaptopRepository.
type MemoryLaptopRepository struct {
	laptops  map[string]models.Laptop
	mu       sync.RWMutex
	validate *validation.Validator
	now      func() time.Time
}

// NewMemoryLaptopRepository creates a new instance of MemoryLaptopRepository.
func NewMemoryLaptopRepository() *MemoryLaptopRepository {
	return &MemoryLaptopRepository{
		laptops:  make(map[string]models.Laptop),
		validate: validation.New(validation.Store),
		now:      time.Now,
	}
}

// Insert stores a new laptop under a fresh UUID.
func (r *MemoryLaptopRepository) Insert(_ context.Context, laptop *models.Laptop) error {
	laptop.Normalize()
	if err := r.validate.Validate(laptop); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	laptop.ID = uuid.New().String()
	laptop.CreatedAt = now
	laptop.UpdatedAt = now
	r.laptops[laptop.ID] = copyLaptop(*laptop)
	return nil
}

// FindByID returns a laptop by its ID.
func (r *MemoryLaptopRepository) FindByID(_ context.Context, id string) (*models.Laptop, error) {
	if err := checkUUID(id); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	laptop, ok := r.laptops[id]
	if !ok {
		return nil, apperr.NotFound("Laptop not found")
	}
	out := copyLaptop(laptop)
	return &out, nil
}

// Find returns one ordered page of matching laptops.
func (r *MemoryLaptopRepository) Find(_ context.Context, q query.Query) ([]models.Laptop, error) {
	r.mu.RLock()
	matched := make([]models.Laptop, 0, len(r.laptops))
	for _, l := range r.laptops {
		if q.Criteria.Matches(l.Name, l.Price()) {
			matched = append(matched, copyLaptop(l))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return less(matched[i], matched[j], q.Sort)
	})

	if q.Skip >= len(matched) {
		return []models.Laptop{}, nil
	}
	end := len(matched)
	if q.Limit > 0 && q.Skip+q.Limit < end {
		end = q.Skip + q.Limit
	}
	return matched[q.Skip:end], nil
}

// Count returns the number of laptops matching the criteria.
func (r *MemoryLaptopRepository) Count(_ context.Context, c query.Criteria) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, l := range r.laptops {
		if c.Matches(l.Name, l.Price()) {
			n++
		}
	}
	return n, nil
}

// UpdateByID applies the patch, re-validates the whole record and stores it.
func (r *MemoryLaptopRepository) UpdateByID(_ context.Context, id string, patch models.LaptopPatch) (*models.Laptop, error) {
	if err := checkUUID(id); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	laptop, ok := r.laptops[id]
	if !ok {
		return nil, apperr.NotFound("Laptop not found, cannot update")
	}
	laptop = copyLaptop(laptop)
	laptop.Apply(patch)
	laptop.Normalize()
	if err := r.validate.Validate(&laptop); err != nil {
		return nil, err
	}
	laptop.UpdatedAt = r.now().UTC()
	r.laptops[id] = laptop

	out := copyLaptop(laptop)
	return &out, nil
}

// DeleteByID removes a laptop and returns it.
func (r *MemoryLaptopRepository) DeleteByID(_ context.Context, id string) (*models.Laptop, error) {
	if err := checkUUID(id); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	laptop, ok := r.laptops[id]
	if !ok {
		return nil, apperr.NotFound("Laptop not found, cannot delete")
	}
	delete(r.laptops, id)
	return &laptop, nil
}

// ReplaceAll drops every laptop and inserts the given ones.
func (r *MemoryLaptopRepository) ReplaceAll(ctx context.Context, laptops []models.Laptop) error {
	for i := range laptops {
		candidate := laptops[i]
		candidate.Normalize()
		if err := r.validate.Validate(&candidate); err != nil {
			return err
		}
	}

	r.mu.Lock()
	r.laptops = make(map[string]models.Laptop, len(laptops))
	r.mu.Unlock()

	for i := range laptops {
		if err := r.Insert(ctx, &laptops[i]); err != nil {
			return err
		}
	}
	return nil
}

// Ping always succeeds.
func (r *MemoryLaptopRepository) Ping(context.Context) error {
	return nil
}

func checkUUID(id string) error {
	if err := uuid.Validate(id); err != nil {
		return apperr.InvalidIdentifier(id)
	}
	return nil
}

func less(a, b models.Laptop, s query.Sort) bool {
	var cmp int
	switch s.Field {
	case query.FieldPricePerHour:
		switch {
		case a.Price() < b.Price():
			cmp = -1
		case a.Price() > b.Price():
			cmp = 1
		}
	default:
		cmp = strings.Compare(a.Name, b.Name)
	}
	if cmp == 0 {
		return a.ID < b.ID
	}
	if s.Descending {
		return cmp > 0
	}
	return cmp < 0
}

func copyLaptop(l models.Laptop) models.Laptop {
	if l.PricePerHour != nil {
		price := *l.PricePerHour
		l.PricePerHour = &price
	}
	return l
}
