package matching

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/erazemk/lostfound/internal/model"
)

// Component weights of the combined score.
const (
	NameWeight     = 0.4
	CategoryWeight = 0.3
	LocationWeight = 0.2
	ColorWeight    = 0.1
)

// Threshold is the score a candidate must exceed to be reported.
const Threshold = 50.0

// Candidate is a ranked match proposal for a target item.
type Candidate struct {
	ItemID      string    `json:"item_id"`
	Type        string    `json:"type"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Color       string    `json:"color"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	ReportedBy  string    `json:"reported_by"`
	Date        time.Time `json:"date"`
	Score       float64   `json:"score"`
}

// Score returns the weighted similarity of two items on a 0-100 scale,
// rounded to two decimals.
func Score(target, candidate *model.Item) float64 {
	name := Ratio(target.Name, candidate.Name)
	location := Ratio(target.Location, candidate.Location)

	var category, color float64
	if target.Category == candidate.Category {
		category = 1
	}
	if strings.ToLower(target.Color) == strings.ToLower(candidate.Color) {
		color = 1
	}

	raw := NameWeight*name + CategoryWeight*category + LocationWeight*location + ColorWeight*color
	return math.Round(raw*100*100) / 100
}

// FindMatches ranks the opposite-type items of pool against the item with
// targetID. An unknown target yields no candidates. Matched items and the
// target itself are never candidates; equal scores keep pool order.
func FindMatches(targetID string, pool []model.Item) []Candidate {
	idx := model.IndexOf(pool, targetID)
	if idx < 0 {
		return nil
	}
	target := &pool[idx]
	opposite := model.OppositeType(target.Type)

	var matches []Candidate
	for i := range pool {
		item := &pool[i]
		if item.ID == target.ID || item.Type != opposite || item.Status == model.ItemStatusMatched {
			continue
		}

		score := Score(target, item)
		if score <= Threshold {
			continue
		}
		matches = append(matches, Candidate{
			ItemID:      item.ID,
			Type:        item.Type,
			Name:        item.Name,
			Category:    item.Category,
			Location:    item.Location,
			Color:       item.Color,
			Description: item.Description,
			Image:       item.Image,
			ReportedBy:  item.ReportedBy,
			Date:        item.Date,
			Score:       score,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}
