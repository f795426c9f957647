package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Laptop represents a rentable laptop in the catalog.
type Laptop struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name          string    `json:"name" gorm:"type:varchar(255);not null;index"`
	Configuration string    `json:"configuration" gorm:"type:text;not null"`
	PricePerHour  *float64  `json:"pricePerHour" gorm:"not null;index"`
	ImageURL      string    `json:"imageUrl,omitempty" gorm:"type:text"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	// NameSearch is the Unicode lower-cased name, kept for SQL substring search.
	NameSearch string `json:"-" gorm:"type:varchar(255);not null;default:'';index"`
}

// BeforeSave keeps NameSearch in step with Name on every GORM create and save.
func (l *Laptop) BeforeSave(*gorm.DB) error {
	l.NameSearch = strings.ToLower(l.Name)
	return nil
}

// Price returns the hourly price, or zero when it was never set.
func (l *Laptop) Price() float64 {
	if l.PricePerHour == nil {
		return 0
	}
	return *l.PricePerHour
}

// Normalize applies the store-side normalisation (trimmed name).
func (l *Laptop) Normalize() {
	l.Name = strings.TrimSpace(l.Name)
}

// Apply copies every field set in the patch onto the laptop.
func (l *Laptop) Apply(p LaptopPatch) {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Configuration != nil {
		l.Configuration = *p.Configuration
	}
	if p.PricePerHour != nil {
		price := *p.PricePerHour
		l.PricePerHour = &price
	}
	if p.ImageURL != nil {
		l.ImageURL = *p.ImageURL
	}
}

// LaptopInput is the payload of createLaptop.
type LaptopInput struct {
	Name          string   `json:"name"`
	Configuration string   `json:"configuration"`
	PricePerHour  *float64 `json:"pricePerHour"`
	ImageURL      string   `json:"imageUrl,omitempty"`
}

// Laptop builds a new, not yet persisted record from the input.
func (in LaptopInput) Laptop() *Laptop {
	return &Laptop{
		Name:          in.Name,
		Configuration: in.Configuration,
		PricePerHour:  in.PricePerHour,
		ImageURL:      in.ImageURL,
	}
}

// LaptopPatch is the payload of updateLaptop. Nil fields are left untouched.
type LaptopPatch struct {
	Name          *string  `json:"name,omitempty"`
	Configuration *string  `json:"configuration,omitempty"`
	PricePerHour  *float64 `json:"pricePerHour,omitempty"`
	ImageURL      *string  `json:"imageUrl,omitempty"`
}

// Empty reports whether the patch sets no field at all.
func (p LaptopPatch) Empty() bool {
	return p.Name == nil && p.Configuration == nil && p.PricePerHour == nil && p.ImageURL == nil
}

// LaptopPage is one page of a filtered, sorted listing.
type LaptopPage struct {
	Laptops    []Laptop `json:"laptops"`
	TotalCount int      `json:"totalCount"`
}

// Float returns a pointer to v; handy for building inputs.
func Float(v float64) *float64 {
	return &v
}

// String returns a pointer to v.
func String(v string) *string {
	return &v
}
