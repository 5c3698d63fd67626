package model

import "time"

// MappingType indicates which transaction field a category mapping
// matches against.
type MappingType string

const (
	// MappingCounterparty matches against the counterparty name.
	MappingCounterparty MappingType = "counterparty"
	// MappingDescription matches against the transaction details text.
	MappingDescription MappingType = "description"
)

// Category is a user-defined spending category.
type Category struct {
	CreatedAt   time.Time
	Name        string
	Description string
	Color       string
	ID          int64
	UserID      int64
}

// CategoryMapping is a learned rule tying a text pattern to a category.
// A pattern owns at most one category per user and mapping type; creating
// a mapping for an already-owned pattern removes the older mapping.
type CategoryMapping struct {
	CreatedAt  time.Time
	Pattern    string
	Type       MappingType
	ID         int64
	CategoryID int64
	UserID     int64
}
