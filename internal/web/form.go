package web

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"laptopcatalog/internal/apperr"
	"laptopcatalog/internal/models"
	"laptopcatalog/internal/validation"
	"laptopcatalog/pkg/client"
)

// LaptopForm holds the raw values of the create and edit forms.
type LaptopForm struct {
	Name          string
	Configuration string
	PricePerHour  string
	ImageURL      string
}

func formFromRequest(c *fiber.Ctx) LaptopForm {
	return LaptopForm{
		Name:          c.FormValue("name"),
		Configuration: c.FormValue("configuration"),
		PricePerHour:  strings.TrimSpace(c.FormValue("pricePerHour")),
		ImageURL:      strings.TrimSpace(c.FormValue("imageUrl")),
	}
}

func formFromLaptop(l *client.Laptop) LaptopForm {
	return LaptopForm{
		Name:          l.Name,
		Configuration: l.Configuration,
		PricePerHour:  strconv.FormatFloat(l.PricePerHour, 'f', -1, 64),
		ImageURL:      l.Image(),
	}
}

// Validate applies the form rules and returns per-field messages, empty when valid.
func (f LaptopForm) Validate(v *validation.Validator) map[string]string {
	errs := map[string]string{}

	laptop := models.Laptop{Name: f.Name, Configuration: f.Configuration, ImageURL: f.ImageURL}
	var priceMalformed bool
	if f.PricePerHour != "" {
		price, err := strconv.ParseFloat(f.PricePerHour, 64)
		if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
			priceMalformed = true
			price = 1
		}
		laptop.PricePerHour = &price
	}

	if err := v.Validate(&laptop); err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			for _, fe := range appErr.Fields {
				errs[fe.Field] = fe.Message
			}
		}
	}
	if priceMalformed {
		errs["pricePerHour"] = "Price must be a number"
	}
	return errs
}

func (f LaptopForm) price() float64 {
	price, _ := strconv.ParseFloat(f.PricePerHour, 64)
	return price
}

func (f LaptopForm) createInput() client.CreateLaptopInput {
	return client.CreateLaptopInput{
		Name:          strings.TrimSpace(f.Name),
		Configuration: f.Configuration,
		PricePerHour:  f.price(),
		ImageURL:      f.ImageURL,
	}
}

func (f LaptopForm) updateInput() client.UpdateLaptopInput {
	name := strings.TrimSpace(f.Name)
	configuration := f.Configuration
	price := f.price()
	image := f.ImageURL
	return client.UpdateLaptopInput{
		Name:          &name,
		Configuration: &configuration,
		PricePerHour:  &price,
		ImageURL:      &image,
	}
}
