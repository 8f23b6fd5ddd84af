package models

import (
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ValidPriorities defines the allowed item priorities.
var ValidPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// IsValidPriority checks if a priority string is valid.
func IsValidPriority(p Priority) bool {
	for _, v := range ValidPriorities {
		if v == p {
			return true
		}
	}
	return false
}

// Wishlist is a document in the "wishlists" collection. Items are embedded;
// they have no lifecycle outside their parent. OwnerEmail is immutable after
// creation.
type Wishlist struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	IsPrivate     bool      `json:"isPrivate"`
	OwnerEmail    string    `json:"ownerEmail"`
	OwnerName     string    `json:"ownerName,omitempty"`
	OwnerUsername string    `json:"ownerUsername,omitempty"`
	Items         []Item    `json:"items"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Item struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Price    *float64  `json:"price,omitempty"`
	Link     *string   `json:"link,omitempty"`
	Notes    *string   `json:"notes,omitempty"`
	Priority Priority  `json:"priority"`
	AddedAt  time.Time `json:"addedAt"`
}

type CreateWishlistParams struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"isPrivate"`
}

type AddItemParams struct {
	Name     string   `json:"name"`
	Price    *float64 `json:"price,omitempty"`
	Link     *string  `json:"link,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
	Priority Priority `json:"priority"`
}
