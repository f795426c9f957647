// Package graph exposes the laptop catalog as a GraphQL schema.
package graph

import (
	"time"

	"github.com/graphql-go/graphql"

	"laptopcatalog/internal/models"
	"laptopcatalog/internal/query"
)

// TimestampLayout is the ISO-8601 form used for createdAt and updatedAt.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

var laptopSortByEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "LaptopSortBy",
	Values: graphql.EnumValueConfigMap{
		string(query.SortByName):         &graphql.EnumValueConfig{Value: string(query.SortByName)},
		string(query.SortByPricePerHour): &graphql.EnumValueConfig{Value: string(query.SortByPricePerHour)},
	},
})

var sortOrderEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "SortOrder",
	Values: graphql.EnumValueConfigMap{
		string(query.Asc):  &graphql.EnumValueConfig{Value: string(query.Asc)},
		string(query.Desc): &graphql.EnumValueConfig{Value: string(query.Desc)},
	},
})

var laptopFilterInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "LaptopFilterInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"minPrice": &graphql.InputObjectFieldConfig{Type: graphql.Float},
		"maxPrice": &graphql.InputObjectFieldConfig{Type: graphql.Float},
	},
})

var createLaptopInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "CreateLaptopInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":          &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"configuration": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"pricePerHour":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		"imageUrl":      &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var updateLaptopInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "UpdateLaptopInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":          &graphql.InputObjectFieldConfig{Type: graphql.String},
		"configuration": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"pricePerHour":  &graphql.InputObjectFieldConfig{Type: graphql.Float},
		"imageUrl":      &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var laptopType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Laptop",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.NewNonNull(graphql.ID),
			Resolve: laptopField(func(l *models.Laptop) interface{} {
				return l.ID
			}),
		},
		"name": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: laptopField(func(l *models.Laptop) interface{} {
				return l.Name
			}),
		},
		"configuration": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: laptopField(func(l *models.Laptop) interface{} {
				return l.Configuration
			}),
		},
		"pricePerHour": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Float),
			Resolve: laptopField(func(l *models.Laptop) interface{} {
				return l.Price()
			}),
		},
		"imageUrl": &graphql.Field{
			Type: graphql.String,
			Resolve: laptopField(func(l *models.Laptop) interface{} {
				if l.ImageURL == "" {
					return nil
				}
				return l.ImageURL
			}),
		},
		"createdAt": &graphql.Field{
			Type: graphql.String,
			Resolve: laptopField(func(l *models.Laptop) interface{} {
				return formatTimestamp(l.CreatedAt)
			}),
		},
		"updatedAt": &graphql.Field{
			Type: graphql.String,
			Resolve: laptopField(func(l *models.Laptop) interface{} {
				return formatTimestamp(l.UpdatedAt)
			}),
		},
	},
})

var laptopsPageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "LaptopsPage",
	Fields: graphql.Fields{
		"laptops": &graphql.Field{
			Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(laptopType))),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				page, _ := p.Source.(*models.LaptopPage)
				if page == nil {
					return []*models.Laptop{}, nil
				}
				out := make([]*models.Laptop, len(page.Laptops))
				for i := range page.Laptops {
					out[i] = &page.Laptops[i]
				}
				return out, nil
			},
		},
		"totalCount": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Int),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				page, _ := p.Source.(*models.LaptopPage)
				if page == nil {
					return 0, nil
				}
				return page.TotalCount, nil
			},
		},
	},
})

// NewSchema builds the executable schema backed by r.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"laptops": &graphql.Field{
				Type: graphql.NewNonNull(laptopsPageType),
				Args: graphql.FieldConfigArgument{
					"page":      &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: query.DefaultPage},
					"limit":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: query.DefaultLimit},
					"sortBy":    &graphql.ArgumentConfig{Type: laptopSortByEnum, DefaultValue: string(query.SortByName)},
					"sortOrder": &graphql.ArgumentConfig{Type: sortOrderEnum, DefaultValue: string(query.Asc)},
					"filter":    &graphql.ArgumentConfig{Type: laptopFilterInput},
					"search":    &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.instrument("laptops", r.laptops),
			},
			"laptop": &graphql.Field{
				Type: laptopType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.instrument("laptop", r.laptop),
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createLaptop": &graphql.Field{
				Type: graphql.NewNonNull(laptopType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(createLaptopInput)},
				},
				Resolve: r.instrument("createLaptop", r.createLaptop),
			},
			"updateLaptop": &graphql.Field{
				Type: graphql.NewNonNull(laptopType),
				Args: graphql.FieldConfigArgument{
					"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(updateLaptopInput)},
				},
				Resolve: r.instrument("updateLaptop", r.updateLaptop),
			},
			"deleteLaptop": &graphql.Field{
				Type: graphql.NewNonNull(laptopType),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.instrument("deleteLaptop", r.deleteLaptop),
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

func laptopField(get func(*models.Laptop) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		switch l := p.Source.(type) {
		case *models.Laptop:
			if l == nil {
				return nil, nil
			}
			return get(l), nil
		case models.Laptop:
			return get(&l), nil
		}
		return nil, nil
	}
}

func formatTimestamp(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(TimestampLayout)
}
