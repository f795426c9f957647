// Package validation holds the single validation contract for laptops.
//
// The store and the web form share every rule except the price floor:
// the store accepts a price of zero, the form requires a strictly
// positive one. Both floors stay enforced until the catalog owners pick one.
package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"laptopcatalog/internal/apperr"
	"laptopcatalog/internal/models"
)

// RuleSet names one of the two rule sets.
type RuleSet string

const (
	Store RuleSet = "store"
	Form  RuleSet = "form"
)

var fieldOrder = []string{"name", "configuration", "pricePerHour", "imageUrl"}

var baseRules = map[string]string{
	"Name":          "required,min=3",
	"Configuration": "required,min=5",
	"ImageURL":      "omitempty,url",
}

var priceRules = map[RuleSet]string{
	Store: "required,gte=0",
	Form:  "required,gt=0",
}

var messages = map[string]string{
	"name.required":          "Laptop name is required",
	"name.min":               "Laptop name must be at least 3 characters",
	"configuration.required": "Configuration is required",
	"configuration.min":      "Configuration must be at least 5 characters",
	"pricePerHour.required":  "Price per hour is required",
	"pricePerHour.gte":       "Price cannot be negative",
	"pricePerHour.gt":        "Price must be positive",
	"imageUrl.url":           "Please enter a valid URL",
}

// Validator validates laptops against one rule set.
type Validator struct {
	set      RuleSet
	validate *validator.Validate
}

// New creates a validator for the given rule set.
func New(set RuleSet) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	rules := make(map[string]string, len(baseRules)+1)
	for k, r := range baseRules {
		rules[k] = r
	}
	rules["PricePerHour"] = priceRules[set]
	v.RegisterStructValidationMapRules(rules, models.Laptop{})

	return &Validator{set: set, validate: v}
}

// Set returns the rule set this validator enforces.
func (v *Validator) Set() RuleSet {
	return v.set
}

// Validate checks a normalised copy of the laptop and returns a
// KindValidation *apperr.Error aggregating every violated field, or nil.
func (v *Validator) Validate(l *models.Laptop) error {
	candidate := *l
	candidate.Normalize()

	err := v.validate.Struct(candidate)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperr.Wrap(apperr.KindUnclassified, err, "validation could not run")
	}

	byField := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := byField[fe.Field()]; seen {
			continue
		}
		byField[fe.Field()] = message(fe.Field(), fe.Tag())
	}

	fields := make([]apperr.FieldError, 0, len(byField))
	for _, name := range fieldOrder {
		if msg, ok := byField[name]; ok {
			fields = append(fields, apperr.FieldError{Field: name, Message: msg})
		}
	}
	return NewError(fields)
}

// NewError builds the aggregated validation error for already collected field errors.
func NewError(fields []apperr.FieldError) error {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Message
	}
	return &apperr.Error{
		Kind:    apperr.KindValidation,
		Message: "Validation failed: " + strings.Join(parts, ", "),
		Fields:  fields,
	}
}

func message(field, tag string) string {
	if msg, ok := messages[field+"."+tag]; ok {
		return msg
	}
	return field + " is invalid"
}
