package sizing

import (
	"encoding/json"
	"errors"
	"testing"
)

type garment struct {
	category string
	good     bool
	size     string
	table    *Table
}

func (g garment) Category() string     { return g.category }
func (g garment) Fit() (bool, string)  { return g.good, g.size }
func (g garment) Measurements() *Table { return g.table }

func topTable(values ...string) *Table {
	return &Table{
		Headers: []string{"length", "chest"},
		Rows:    []Row{{Name: "L", Values: values}},
	}
}

func TestComputeIdealSize(t *testing.T) {
	items := []garment{
		{category: "Top", good: true, size: "L", table: topTable("70", "55")},
		{category: "Top", good: true, size: "L", table: topTable("72", "57")},
	}

	profile := ComputeIdealSize(items)

	want := Stats{
		"length": {Avg: 71.0, Min: 70, Max: 72},
		"chest":  {Avg: 56.0, Min: 55, Max: 57},
	}
	got, ok := profile["Top"]
	if !ok {
		t.Fatalf("expected Top category in profile, got %+v", profile)
	}
	for dim, stat := range want {
		if got[dim] != stat {
			t.Fatalf("unexpected %s stat: got %+v, want %+v", dim, got[dim], stat)
		}
	}
}

func TestComputeIdealSizeIsolatesCategories(t *testing.T) {
	items := []garment{
		{category: "Top", good: true, size: "L", table: topTable("70", "55")},
		{category: "Outer", good: true, size: "L", table: topTable("100", "60")},
	}

	profile := ComputeIdealSize(items)

	if len(profile) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(profile))
	}
	if profile["Top"]["length"].Avg != 70 {
		t.Fatalf("top length mixed with other category: %+v", profile["Top"]["length"])
	}
	if profile["Outer"]["length"].Avg != 100 {
		t.Fatalf("outer length mixed with other category: %+v", profile["Outer"]["length"])
	}
}

func TestComputeIdealSizeSkipsNonQualifyingItems(t *testing.T) {
	tests := []struct {
		name string
		item garment
	}{
		{name: "not good", item: garment{category: "Top", good: false, size: "L", table: topTable("90", "90")}},
		{name: "no size", item: garment{category: "Top", good: true, size: "", table: topTable("90", "90")}},
		{name: "no table", item: garment{category: "Top", good: true, size: "L"}},
		{name: "unknown row", item: garment{category: "Top", good: true, size: "XXL", table: topTable("90", "90")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := []garment{
				{category: "Top", good: true, size: "L", table: topTable("70", "55")},
				tt.item,
			}

			profile := ComputeIdealSize(items)
			if got := profile["Top"]["length"]; got != (Stat{Avg: 70, Min: 70, Max: 70}) {
				t.Fatalf("item should have been skipped, got %+v", got)
			}
		})
	}
}

func TestComputeIdealSizeToleratesNonNumericCells(t *testing.T) {
	items := []garment{
		{category: "Top", good: true, size: "L", table: topTable("70", "-")},
		{category: "Top", good: true, size: "L", table: topTable("72", "없음")},
		{category: "Top", good: true, size: "L", table: topTable("74", "56")},
	}

	profile := ComputeIdealSize(items)

	if got := profile["Top"]["length"]; got.Avg != 72 {
		t.Fatalf("unexpected length avg: %+v", got)
	}
	if got := profile["Top"]["chest"]; got != (Stat{Avg: 56, Min: 56, Max: 56}) {
		t.Fatalf("non-numeric cells must be excluded from chest: %+v", got)
	}
}

func TestComputeIdealSizeShortRow(t *testing.T) {
	items := []garment{
		{category: "Top", good: true, size: "L", table: topTable("70")},
	}

	profile := ComputeIdealSize(items)

	if _, ok := profile["Top"]["chest"]; ok {
		t.Fatalf("missing trailing cell must not produce a stat")
	}
	if profile["Top"]["length"].Avg != 70 {
		t.Fatalf("unexpected length: %+v", profile["Top"]["length"])
	}
}

func TestComputeIdealSizeEmpty(t *testing.T) {
	if profile := ComputeIdealSize([]garment{}); profile != nil {
		t.Fatalf("expected nil profile, got %+v", profile)
	}

	bad := []garment{{category: "Top", good: false, size: "L", table: topTable("70", "55")}}
	if profile := ComputeIdealSize(bad); profile != nil {
		t.Fatalf("expected nil profile without good items, got %+v", profile)
	}
}

func TestComputeIdealSizeDefaultCategory(t *testing.T) {
	items := []garment{{good: true, size: "L", table: topTable("70", "55")}}

	profile := ComputeIdealSize(items)
	if _, ok := profile[DefaultCategory]; !ok {
		t.Fatalf("expected blank category to aggregate under %q, got %v", DefaultCategory, profile.Categories())
	}
}

func TestComputeIdealSizeRoundsAverage(t *testing.T) {
	items := []garment{
		{category: "Top", good: true, size: "L", table: topTable("70", "55")},
		{category: "Top", good: true, size: "L", table: topTable("70", "55")},
		{category: "Top", good: true, size: "L", table: topTable("71", "55")},
	}

	profile := ComputeIdealSize(items)
	if got := profile["Top"]["length"].Avg; got != 70.3 {
		t.Fatalf("expected avg rounded to 70.3, got %v", got)
	}
}

func TestParseMeasurement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{input: "55", want: 55, ok: true},
		{input: " 55.5 ", want: 55.5, ok: true},
		{input: "55cm", want: 55, ok: true},
		{input: "-", ok: false},
		{input: "없음", ok: false},
		{input: "", ok: false},
		{input: ".", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseMeasurement(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("ParseMeasurement(%q) = %v, %v; want %v, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestTableValidate(t *testing.T) {
	table := &Table{
		Headers: []string{"length", "chest"},
		Rows: []Row{
			{Name: "M", Values: []string{"68", "53"}},
			{Name: "L", Values: []string{"70"}},
		},
	}

	err := table.Validate()
	var malformed *MalformedTableError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedTableError, got %v", err)
	}
	if malformed.Row != "L" || malformed.Want != 2 || malformed.Got != 1 {
		t.Fatalf("unexpected error details: %+v", malformed)
	}

	table.Rows = table.Rows[:1]
	if err := table.Validate(); err != nil {
		t.Fatalf("expected valid table, got %v", err)
	}
}

func TestTableDecodesNumericCells(t *testing.T) {
	raw := `{"headers":["총장","가슴단면"],"rows":[{"name":"L","values":[70,"55.5"]},{"name":95,"values":[null,"-"]}]}`

	var table Table
	if err := json.Unmarshal([]byte(raw), &table); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	row, ok := table.Row("L")
	if !ok {
		t.Fatalf("expected row L")
	}
	if row.Values[0] != "70" || row.Values[1] != "55.5" {
		t.Fatalf("unexpected values: %q", row.Values)
	}

	numeric, ok := table.Row("95")
	if !ok {
		t.Fatalf("expected numeric row name to decode as string, got %v", table.RowNames())
	}
	if numeric.Values[0] != "" {
		t.Fatalf("expected null cell to decode as empty, got %q", numeric.Values[0])
	}
}
