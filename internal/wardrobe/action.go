package wardrobe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/closai/internal/sizing"
)

// ActionType names a wardrobe mutation in the profile API.
type ActionType string

const (
	ActionAddItem     ActionType = "ADD_ITEM"
	ActionUpdateFit   ActionType = "UPDATE_FIT"
	ActionDeleteItem  ActionType = "DELETE_ITEM"
	ActionUpdateStats ActionType = "UPDATE_STATS"
)

var ErrUnknownAction = errors.New("unknown wardrobe action")

// Action is the loosely typed request body of the profile API:
// {"action": "...", "item": {...}, "height": "...", "weight": "..."}.
type Action struct {
	Type   ActionType     `json:"action"`
	Item   map[string]any `json:"item,omitempty"`
	Height any            `json:"height,omitempty"`
	Weight any            `json:"weight,omitempty"`
}

type itemPayload struct {
	GoodsNo   string        `mapstructure:"goodsNo"`
	Title     string        `mapstructure:"title"`
	Brand     string        `mapstructure:"brand"`
	ImageURL  string        `mapstructure:"imageUrl"`
	Category1 string        `mapstructure:"category1"`
	Category2 string        `mapstructure:"category2"`
	Link      string        `mapstructure:"link"`
	SizeTable *tablePayload `mapstructure:"sizeTable"`
}

type tablePayload struct {
	Headers  []string     `mapstructure:"headers"`
	Rows     []rowPayload `mapstructure:"rows"`
	ImageURL string       `mapstructure:"imageUrl"`
}

type rowPayload struct {
	Name   string   `mapstructure:"name"`
	Values []string `mapstructure:"values"`
}

type fitPayload struct {
	GoodsNo      string `mapstructure:"goodsNo"`
	FitStatus    string `mapstructure:"fitStatus"`
	SelectedSize string `mapstructure:"selectedSize"`
}

// Apply dispatches an API action to the matching store operation.
func (s *Store) Apply(ctx context.Context, action Action) (*Snapshot, error) {
	switch ActionType(strings.ToUpper(string(action.Type))) {
	case ActionAddItem:
		var p itemPayload
		if err := decode(action.Item, &p); err != nil {
			return nil, err
		}
		return s.AddItem(ctx, p.item())

	case ActionUpdateFit:
		var p fitPayload
		if err := decode(action.Item, &p); err != nil {
			return nil, err
		}
		status, err := ParseFitStatus(p.FitStatus)
		if err != nil {
			return nil, err
		}
		return s.UpdateFit(ctx, p.GoodsNo, status, p.SelectedSize)

	case ActionDeleteItem:
		var p fitPayload
		if err := decode(action.Item, &p); err != nil {
			return nil, err
		}
		return s.DeleteItem(ctx, p.GoodsNo)

	case ActionUpdateStats:
		return s.UpdateStats(ctx, weakString(action.Height), weakString(action.Weight))

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action.Type)
	}
}

// decode maps a JSON object onto a payload, coercing numbers to strings.
func decode(input map[string]any, out any) error {
	if input == nil {
		return fmt.Errorf("%w: item is required", ErrInvalidItem)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidItem, err)
	}
	return nil
}

func weakString(v any) string {
	var s string
	if v == nil {
		return ""
	}
	if err := mapstructure.WeakDecode(v, &s); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return s
}

func (p itemPayload) item() Item {
	item := Item{
		GoodsNo:   p.GoodsNo,
		Title:     p.Title,
		Brand:     p.Brand,
		ImageURL:  p.ImageURL,
		Category1: Category(p.Category1),
		Category2: p.Category2,
		Link:      p.Link,
	}
	if p.SizeTable != nil {
		table := &sizing.Table{
			Headers:  p.SizeTable.Headers,
			ImageURL: p.SizeTable.ImageURL,
			Rows:     make([]sizing.Row, 0, len(p.SizeTable.Rows)),
		}
		for _, row := range p.SizeTable.Rows {
			table.Rows = append(table.Rows, sizing.Row{Name: row.Name, Values: row.Values})
		}
		item.SizeTable = table
	}
	return item
}
