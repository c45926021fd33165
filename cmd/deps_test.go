package cmd

import (
	"testing"

	"github.com/spigell/closai/internal/catalog"
	"github.com/spigell/closai/internal/sizing"
	"github.com/spigell/closai/internal/wardrobe"
)

func TestItemFromProduct(t *testing.T) {
	table := &sizing.Table{Headers: []string{"총장"}, Rows: []sizing.Row{{Name: "L", Values: []string{"72"}}}}
	item := itemFromProduct(&catalog.Product{
		GoodsNo:   "1001",
		Title:     "Oxford shirt",
		Brand:     "closai",
		Category1: "상의",
		Link:      "https://www.musinsa.com/products/1001",
		Price:     39000,
		SizeTable: table,
		Reviews:   []catalog.Review{{Content: "good"}},
	})

	if item.GoodsNo != "1001" || item.Category1 != wardrobe.Category("상의") || item.SizeTable != table {
		t.Fatalf("unexpected item: %+v", item)
	}
	if item.FitStatus != wardrobe.FitUnset || item.SelectedSize != "" {
		t.Fatalf("a new garment must not carry a fit: %+v", item)
	}
}

func TestRedactedHidesSecrets(t *testing.T) {
	config := &Config{
		Store: &StoreConfig{Postgres: &PostgresConfig{DSN: "postgres://user:pass@db/closai"}},
		AI:    &AIConfig{Gemini: &GeminiConfig{APIKey: "secret", Model: "gemini-2.5-flash"}},
	}

	safe := redacted(config)

	if safe.Store.Postgres.DSN != "***" || safe.AI.Gemini.APIKey != "***" {
		t.Fatalf("secrets leaked: %+v %+v", safe.Store.Postgres, safe.AI.Gemini)
	}
	if safe.AI.Gemini.Model != "gemini-2.5-flash" {
		t.Fatalf("non secret fields must be kept, got %q", safe.AI.Gemini.Model)
	}
	if config.Store.Postgres.DSN == "***" || config.AI.Gemini.APIKey == "***" {
		t.Fatal("the original config must not be modified")
	}
}

func TestGetConfigDefaults(t *testing.T) {
	config, err := getConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.Store.Backend != "file" || config.Store.Path != "data/profile.json" {
		t.Fatalf("unexpected store defaults: %+v", config.Store)
	}
	if !config.AI.Enabled || config.AI.Gemini.Model != "gemini-2.5-flash" {
		t.Fatalf("unexpected ai defaults: %+v %+v", config.AI, config.AI.Gemini)
	}
	if config.Server.Addr != ":8080" {
		t.Fatalf("unexpected server addr %q", config.Server.Addr)
	}
}
