package models

import "time"

// LaptopEventType names a change to the catalog.
type LaptopEventType string

const (
	LaptopCreated LaptopEventType = "laptop.created"
	LaptopUpdated LaptopEventType = "laptop.updated"
	LaptopDeleted LaptopEventType = "laptop.deleted"
)

// LaptopEvent is published after every successful mutation.
type LaptopEvent struct {
	Type       LaptopEventType `json:"type"`
	LaptopID   string          `json:"laptopId"`
	Laptop     *Laptop         `json:"laptop,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}
