package wardrobe

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func decodeAction(t *testing.T, body string) Action {
	t.Helper()
	var action Action
	if err := json.Unmarshal([]byte(body), &action); err != nil {
		t.Fatalf("decode action: %v", err)
	}
	return action
}

func TestApplyActions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	add := decodeAction(t, `{
		"action": "ADD_ITEM",
		"item": {
			"goodsNo": 3141592,
			"title": "Oxford shirt",
			"category1": "상의",
			"sizeTable": {"headers": ["총장", "어깨너비"], "rows": [{"name": "M", "values": [71.5, "45"]}]}
		}
	}`)
	snap, err := store.Apply(ctx, add)
	if err != nil {
		t.Fatalf("ADD_ITEM: %v", err)
	}
	if snap.Len() != 1 {
		t.Fatalf("expected one item, got %d", snap.Len())
	}
	item := snap.Items[0]
	if item.GoodsNo != "3141592" {
		t.Fatalf("numeric goodsNo must be coerced, got %q", item.GoodsNo)
	}
	row, ok := item.SizeTable.Row("M")
	if !ok || row.Values[0] != "71.5" || row.Values[1] != "45" {
		t.Fatalf("unexpected row %+v", row)
	}

	fit := decodeAction(t, `{"action": "update_fit", "item": {"goodsNo": "3141592", "fitStatus": "good", "selectedSize": "M"}}`)
	snap, err = store.Apply(ctx, fit)
	if err != nil {
		t.Fatalf("UPDATE_FIT: %v", err)
	}
	if snap.Items[0].FitStatus != FitGood {
		t.Fatalf("unexpected status %q", snap.Items[0].FitStatus)
	}

	stats := decodeAction(t, `{"action": "UPDATE_STATS", "height": 178, "weight": "72"}`)
	snap, err = store.Apply(ctx, stats)
	if err != nil {
		t.Fatalf("UPDATE_STATS: %v", err)
	}
	if snap.UserStats != (UserStats{Height: "178", Weight: "72"}) {
		t.Fatalf("unexpected stats %+v", snap.UserStats)
	}

	del := decodeAction(t, `{"action": "DELETE_ITEM", "item": {"goodsNo": "3141592"}}`)
	snap, err = store.Apply(ctx, del)
	if err != nil {
		t.Fatalf("DELETE_ITEM: %v", err)
	}
	if snap.Len() != 0 {
		t.Fatalf("expected empty wardrobe after delete")
	}
}

func TestApplyRejectsBadActions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want error
	}{
		{name: "unknown", body: `{"action": "PAINT_IT_BLACK"}`, want: ErrUnknownAction},
		{name: "missing item", body: `{"action": "ADD_ITEM"}`, want: ErrInvalidItem},
		{name: "bad fit", body: `{"action": "UPDATE_FIT", "item": {"goodsNo": "1", "fitStatus": "LOOSE"}}`, want: ErrInvalidFitStatus},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := newTestStore(t).Apply(context.Background(), decodeAction(t, tt.body))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
