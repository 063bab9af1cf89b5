package model

import (
	"slices"
	"time"
)

// Item is a reported lost or found object.
type Item struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Color       string    `json:"color"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	Status      string    `json:"status"`
	Verified    bool      `json:"verified"`
	ReportedBy  string    `json:"reported_by"`
	Date        time.Time `json:"date"`
	MatchedWith string    `json:"matched_with,omitempty"`
}

// Item types.
const (
	ItemTypeLost  = "lost"
	ItemTypeFound = "found"
)

// Item statuses.
const (
	ItemStatusPending = "pending"
	ItemStatusActive  = "active"
	ItemStatusMatched = "matched"
)

// OppositeType returns the counterpart type: lost for found and found for lost.
func OppositeType(itemType string) string {
	if itemType == ItemTypeLost {
		return ItemTypeFound
	}
	return ItemTypeLost
}

// Public reports whether the item is visible in browsing and search.
func (i *Item) Public() bool {
	return i.Verified && i.Status != ItemStatusMatched
}

// IndexOf returns the position of the item with the given ID, or -1.
func IndexOf(items []Item, id string) int {
	return slices.IndexFunc(items, func(it Item) bool { return it.ID == id })
}

// Stats holds item counts shown on the home page and admin dashboard.
type Stats struct {
	Pending  int `json:"pending"`
	Active   int `json:"active"`
	Verified int `json:"verified"`
	Matched  int `json:"matched"`
	Total    int `json:"total"`
}

// CountItems tallies item states. Total counts items that passed verification.
func CountItems(items []Item) Stats {
	var s Stats
	for _, it := range items {
		switch it.Status {
		case ItemStatusPending:
			s.Pending++
		case ItemStatusActive:
			s.Active++
		case ItemStatusMatched:
			s.Matched++
		}
		if it.Verified {
			s.Verified++
		}
	}
	s.Total = s.Active + s.Matched
	return s
}
