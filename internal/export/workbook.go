package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spigell/closai/internal/sizing"
	"github.com/spigell/closai/internal/wardrobe"
)

const (
	WardrobeSheet = "Wardrobe"
	ProfileSheet  = "Ideal size"
)

var (
	wardrobeHeader = []any{"Goods No", "Brand", "Title", "Category", "Subcategory", "Fit", "Size", "Added at", "Link"}
	profileHeader  = []any{"Category", "Dimension", "Avg", "Min", "Max"}
)

// Workbook renders the wardrobe and its ideal-size profile as a spreadsheet.
func Workbook(snap *wardrobe.Snapshot, profile sizing.Profile) (*excelize.File, error) {
	if snap == nil {
		snap = wardrobe.Empty()
	}

	wb := excelize.NewFile()
	if err := wb.SetSheetName("Sheet1", WardrobeSheet); err != nil {
		return nil, err
	}
	if _, err := wb.NewSheet(ProfileSheet); err != nil {
		return nil, err
	}

	rows := make([][]any, 0, len(snap.Items)+1)
	rows = append(rows, wardrobeHeader)
	for _, item := range snap.Items {
		added := ""
		if !item.AddedAt.IsZero() {
			added = item.AddedAt.Format(time.DateTime)
		}
		rows = append(rows, []any{
			item.GoodsNo,
			item.Brand,
			item.Title,
			string(item.Category1.OrOther()),
			item.Category2,
			string(item.FitStatus),
			item.SelectedSize,
			added,
			item.Link,
		})
	}
	if err := writeRows(wb, WardrobeSheet, rows); err != nil {
		return nil, err
	}

	rows = [][]any{profileHeader}
	for _, category := range profile.Categories() {
		stats := profile[category]
		for _, dim := range stats.Dimensions() {
			s := stats[dim]
			rows = append(rows, []any{category, dim, s.Avg, s.Min, s.Max})
		}
	}
	if err := writeRows(wb, ProfileSheet, rows); err != nil {
		return nil, err
	}

	if err := wb.SetColWidth(WardrobeSheet, "C", "C", 40); err != nil {
		return nil, err
	}
	wb.SetActiveSheet(0)

	return wb, nil
}

func writeRows(wb *excelize.File, sheet string, rows [][]any) error {
	for idx, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, idx+1)
		if err != nil {
			return err
		}
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, idx+1, err)
		}
	}
	return nil
}
