package wardrobe

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/closai/internal/sizing"
)

// FitStatus is the user's verdict on a garment worn in the selected size.
type FitStatus string

const (
	FitUnset FitStatus = ""
	FitGood  FitStatus = "GOOD"
	FitBig   FitStatus = "BIG"
	FitSmall FitStatus = "SMALL"
)

// FitStatuses lists the statuses a user can choose from.
var FitStatuses = []FitStatus{FitGood, FitBig, FitSmall}

// ParseFitStatus accepts the status in any case. An empty string clears the status.
func ParseFitStatus(s string) (FitStatus, error) {
	status := FitStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case FitUnset, FitGood, FitBig, FitSmall:
		return status, nil
	default:
		return FitUnset, fmt.Errorf("%w: %q", ErrInvalidFitStatus, s)
	}
}

// Category is a top-level garment category.
type Category string

// CategoryOther is used when the shop does not report a category.
const CategoryOther Category = sizing.DefaultCategory

// OrOther returns CategoryOther for a blank category.
func (c Category) OrOther() Category {
	if strings.TrimSpace(string(c)) == "" {
		return CategoryOther
	}
	return c
}

// Item is a garment saved to the wardrobe.
type Item struct {
	GoodsNo      string        `json:"goodsNo"`
	Title        string        `json:"title"`
	Brand        string        `json:"brand"`
	ImageURL     string        `json:"imageUrl"`
	Category1    Category      `json:"category1"`
	Category2    string        `json:"category2"`
	Link         string        `json:"link,omitempty"`
	AddedAt      time.Time     `json:"addedAt"`
	SizeTable    *sizing.Table `json:"sizeTable"`
	FitStatus    FitStatus     `json:"fitStatus,omitempty"`
	SelectedSize string        `json:"selectedSize,omitempty"`
}

// UserStats holds the body measurements the user entered, verbatim.
type UserStats struct {
	Height string `json:"height"`
	Weight string `json:"weight"`
}

// Snapshot is the complete persisted wardrobe.
type Snapshot struct {
	Items     []Item    `json:"items"`
	UserStats UserStats `json:"userStats"`
}

// Empty returns the snapshot of a wardrobe that was never written.
func Empty() *Snapshot {
	return &Snapshot{Items: []Item{}}
}

// Find returns the index of the item with goodsNo, or -1.
func (s *Snapshot) Find(goodsNo string) int {
	for i := range s.Items {
		if s.Items[i].GoodsNo == goodsNo {
			return i
		}
	}
	return -1
}

// Len returns the number of saved garments.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Items)
}

func (s *Snapshot) clone() *Snapshot {
	out := &Snapshot{UserStats: s.UserStats, Items: make([]Item, len(s.Items))}
	copy(out.Items, s.Items)
	return out
}

// normalize fills the defaults older stores may lack.
func (s *Snapshot) normalize() *Snapshot {
	if s.Items == nil {
		s.Items = []Item{}
	}
	for i := range s.Items {
		s.Items[i].Category1 = s.Items[i].Category1.OrOther()
	}
	return s
}

// UnmarshalJSON accepts addedAt as RFC 3339, a plain date-time, epoch
// milliseconds or garbage. Unparsable values become the zero time.
func (i *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	aux := struct {
		*plain
		AddedAt any `json:"addedAt"`
	}{plain: (*plain)(i)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	i.AddedAt = parseAddedAt(aux.AddedAt)
	return nil
}

var addedAtLayouts = []string{time.RFC3339Nano, time.DateTime, time.DateOnly}

func parseAddedAt(v any) time.Time {
	switch v := v.(type) {
	case string:
		v = strings.TrimSpace(v)
		for _, layout := range addedAtLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t
			}
		}
	case float64:
		return time.UnixMilli(int64(v)).UTC()
	}
	return time.Time{}
}

// Category implements sizing.Garment.
func (i Item) Category() string { return string(i.Category1.OrOther()) }

// Fit implements sizing.Garment.
func (i Item) Fit() (bool, string) { return i.FitStatus == FitGood, i.SelectedSize }

// Measurements implements sizing.Garment.
func (i Item) Measurements() *sizing.Table { return i.SizeTable }
