package graph

import (
	"context"
	"errors"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"laptopcatalog/internal/apperr"
	"laptopcatalog/internal/metrics"
	"laptopcatalog/internal/models"
	"laptopcatalog/internal/query"
)

// LaptopService is the set of catalog operations the schema resolves against.
type LaptopService interface {
	List(ctx context.Context, args query.ListArgs) (*models.LaptopPage, error)
	Get(ctx context.Context, id string) (*models.Laptop, error)
	Create(ctx context.Context, in models.LaptopInput) (*models.Laptop, error)
	Update(ctx context.Context, id string, patch models.LaptopPatch) (*models.Laptop, error)
	Delete(ctx context.Context, id string) (*models.Laptop, error)
}

// Resolver binds the schema's root fields to a LaptopService.
type Resolver struct {
	service LaptopService
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewResolver creates a resolver. m and logger may be nil.
func NewResolver(service LaptopService, m *metrics.Metrics, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{service: service, metrics: m, logger: logger}
}

func (r *Resolver) laptops(p graphql.ResolveParams) (interface{}, error) {
	args := query.ListArgs{
		Page:      query.ParseInt(p.Args["page"], query.DefaultPage),
		Limit:     query.ParseInt(p.Args["limit"], query.DefaultLimit),
		SortBy:    query.ParseSortBy(cast.ToString(p.Args["sortBy"])),
		SortOrder: query.ParseSortOrder(cast.ToString(p.Args["sortOrder"])),
		Search:    cast.ToString(p.Args["search"]),
	}
	if raw, ok := p.Args["filter"].(map[string]interface{}); ok {
		args.Filter = &query.PriceFilter{
			MinPrice: floatArg(raw, "minPrice"),
			MaxPrice: floatArg(raw, "maxPrice"),
		}
	}

	page, err := r.service.List(p.Context, args)
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (r *Resolver) laptop(p graphql.ResolveParams) (interface{}, error) {
	laptop, err := r.service.Get(p.Context, cast.ToString(p.Args["id"]))
	if err != nil {
		return nil, err
	}
	return laptop, nil
}

func (r *Resolver) createLaptop(p graphql.ResolveParams) (interface{}, error) {
	raw, _ := p.Args["input"].(map[string]interface{})
	in := models.LaptopInput{
		Name:          cast.ToString(raw["name"]),
		Configuration: cast.ToString(raw["configuration"]),
		PricePerHour:  floatArg(raw, "pricePerHour"),
	}
	if url := stringArg(raw, "imageUrl"); url != nil {
		in.ImageURL = *url
	}

	laptop, err := r.service.Create(p.Context, in)
	if err != nil {
		return nil, err
	}
	return laptop, nil
}

func (r *Resolver) updateLaptop(p graphql.ResolveParams) (interface{}, error) {
	raw, _ := p.Args["input"].(map[string]interface{})
	patch := models.LaptopPatch{
		Name:          stringArg(raw, "name"),
		Configuration: stringArg(raw, "configuration"),
		PricePerHour:  floatArg(raw, "pricePerHour"),
		ImageURL:      stringArg(raw, "imageUrl"),
	}

	laptop, err := r.service.Update(p.Context, cast.ToString(p.Args["id"]), patch)
	if err != nil {
		return nil, err
	}
	return laptop, nil
}

func (r *Resolver) deleteLaptop(p graphql.ResolveParams) (interface{}, error) {
	laptop, err := r.service.Delete(p.Context, cast.ToString(p.Args["id"]))
	if err != nil {
		return nil, err
	}
	return laptop, nil
}

// instrument records metrics for a root field and makes sure only
// classified errors reach the client.
func (r *Resolver) instrument(operation string, fn graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		start := time.Now()
		out, err := fn(p)

		code := "OK"
		if err != nil {
			var appErr *apperr.Error
			if !errors.As(err, &appErr) || appErr.Kind == apperr.KindConnection {
				r.logger.Error("unclassified resolver error", zap.String("operation", operation), zap.Error(err))
				err = apperr.Wrap(apperr.KindUnclassified, err, "Internal server error")
			}
			code = string(apperr.KindOf(err))
		}
		r.metrics.ObserveOperation(operation, code, time.Since(start))
		return out, err
	}
}

// floatArg returns a pointer to a numeric argument, nil when absent or null.
func floatArg(raw map[string]interface{}, key string) *float64 {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil
	}
	return &f
}

// stringArg returns a pointer to a string argument, nil when absent or null.
func stringArg(raw map[string]interface{}, key string) *string {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil
	}
	s := cast.ToString(v)
	return &s
}
