package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/closai/internal/sizing"
)

type measurement struct {
	Name  string `mapstructure:"name"`
	Value string `mapstructure:"value"`
}

// sizeEntry is one size row. Older products use actual_size instead of items.
type sizeEntry struct {
	Name       string        `mapstructure:"name"`
	Items      []measurement `mapstructure:"items"`
	ActualSize []measurement `mapstructure:"actual_size"`
}

func (e sizeEntry) measurements() []measurement {
	if len(e.Items) > 0 {
		return e.Items
	}
	return e.ActualSize
}

type tableResult struct {
	table *sizing.Table
}

func (c *Client) sizeTable(ctx context.Context, goodsNo string) (*tableResult, error) {
	u := fmt.Sprintf("%s/api2/goods/%s/actual-size", c.detailURL, goodsNo)
	body, err := c.getJSON(ctx, u, nil, c.productURL(goodsNo))
	if err != nil {
		return nil, err
	}

	return parseSizeTable(body)
}

// parseSizeTable accepts {"data": {"sizes": [...]}} and {"data": [...]}.
func parseSizeTable(body any) (*tableResult, error) {
	data := field(body, "data")
	if sizes := field(data, "sizes"); sizes != nil {
		data = sizes
	}

	list, ok := data.([]any)
	if !ok || len(list) == 0 {
		return nil, fmt.Errorf("actual size response has no sizes")
	}

	var entries []sizeEntry
	if err := decode(list, &entries); err != nil {
		return nil, fmt.Errorf("decoding actual size: %w", err)
	}

	table := &sizing.Table{Rows: make([]sizing.Row, 0, len(entries))}
	for _, m := range entries[0].measurements() {
		table.Headers = append(table.Headers, strings.TrimSpace(m.Name))
	}
	for _, e := range entries {
		row := sizing.Row{Name: strings.TrimSpace(e.Name)}
		for _, m := range e.measurements() {
			row.Values = append(row.Values, strings.TrimSpace(m.Value))
		}
		table.Rows = append(table.Rows, row)
	}

	if table.IsEmpty() {
		return nil, fmt.Errorf("actual size response has no measurements")
	}
	return &tableResult{table: table}, nil
}
