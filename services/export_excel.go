package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// GenerateBOQExcel creates an Excel bill of quantities from the given export
// data and returns the file contents as a byte slice. Line items are grouped
// under merged section rows and the markup ladder follows the bill.
func GenerateBOQExcel(data BOQExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "BOQ"
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	// Column references (A through H).
	columns := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	lastCol := columns[len(columns)-1]

	widths := []float64{8, 48, 8, 10, 8, 10, 16, 18}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	styles, err := newWorkbookStyles(f)
	if err != nil {
		return nil, err
	}

	// ── Header Rows (1-3) ───────────────────────────────────────────────

	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", sanitizeExcelCell("Bill of Quantities - "+data.ProjectName))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", styles.title)

	if data.County != "" {
		if err := f.MergeCell(sheetName, "A2", lastCol+"2"); err != nil {
			return nil, fmt.Errorf("merge county: %w", err)
		}
		f.SetCellValue(sheetName, "A2", "County: "+sanitizeExcelCell(data.County))
		f.SetCellStyle(sheetName, "A2", lastCol+"2", styles.subtitle)
	}

	if err := f.MergeCell(sheetName, "A3", lastCol+"3"); err != nil {
		return nil, fmt.Errorf("merge date: %w", err)
	}
	f.SetCellValue(sheetName, "A3", "Date: "+data.GeneratedDate)
	f.SetCellStyle(sheetName, "A3", lastCol+"3", styles.subtitle)

	// ── Row 5: Column Headers ───────────────────────────────────────────

	headers := []string{"Item", "Description", "Unit", "Net Qty", "Waste", "Gross Qty", "Rate (KES)", "Amount (KES)"}
	for i, h := range headers {
		f.SetCellValue(sheetName, fmt.Sprintf("%s5", columns[i]), h)
	}
	f.SetCellStyle(sheetName, "A5", lastCol+"5", styles.header)

	// ── Bill Rows (starting row 6) ──────────────────────────────────────

	row := 6
	currentCategory := ""
	for _, item := range data.Items {
		if item.Category != currentCategory {
			currentCategory = item.Category
			rowStr := fmt.Sprintf("%d", row)
			if err := f.MergeCell(sheetName, "A"+rowStr, lastCol+rowStr); err != nil {
				return nil, fmt.Errorf("merge section row: %w", err)
			}
			f.SetCellValue(sheetName, "A"+rowStr, sanitizeExcelCell(currentCategory))
			f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, styles.section)
			row++
		}

		rowStr := fmt.Sprintf("%d", row)
		desc := item.Description
		if item.NeedsReview {
			desc += " [needs review]"
		}

		f.SetCellValue(sheetName, "A"+rowStr, item.ItemNumber)
		f.SetCellValue(sheetName, "B"+rowStr, sanitizeExcelCell(desc))
		f.SetCellValue(sheetName, "C"+rowStr, sanitizeExcelCell(item.Unit))
		f.SetCellValue(sheetName, "D"+rowStr, item.NetQuantity)
		f.SetCellValue(sheetName, "E"+rowStr, item.WasteFactor)
		f.SetCellValue(sheetName, "F"+rowStr, item.GrossQuantity)
		if item.CostedByMarkup {
			f.SetCellValue(sheetName, "G"+rowStr, "Incl.")
			f.SetCellValue(sheetName, "H"+rowStr, "Incl.")
		} else {
			f.SetCellValue(sheetName, "G"+rowStr, FormatKES(item.UnitRate))
			f.SetCellValue(sheetName, "H"+rowStr, FormatKES(item.TotalCost))
		}
		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, styles.item)
		row++
	}

	// ── Markup Ladder ───────────────────────────────────────────────────

	row++
	s := data.Summary
	ladder := []struct {
		label string
		value float64
	}{
		{"Materials Subtotal:", s.MaterialsSubtotal},
		{"Preliminaries (5%):", s.PreliminaryCost},
		{"Provisional Sums (10%):", s.ProvisionalSum},
		{"Labour & Overheads (50%):", s.LaborOverheads},
		{fmt.Sprintf("Contingency (%.0f%%):", s.ContingencyPct*100), s.ContingencyAmount},
		{fmt.Sprintf("VAT (%.0f%%):", s.VATPct*100), s.VATAmount},
		{"GRAND TOTAL:", s.GrandTotal},
	}
	for _, entry := range ladder {
		rowStr := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "F"+rowStr, entry.label)
		f.SetCellStyle(sheetName, "F"+rowStr, "F"+rowStr, styles.summaryLabel)
		f.SetCellValue(sheetName, "H"+rowStr, FormatKES(entry.value))
		f.SetCellStyle(sheetName, "H"+rowStr, "H"+rowStr, styles.summaryValue)
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateBBSExcel creates an Excel bar bending schedule and returns the
// file contents as a byte slice.
func GenerateBBSExcel(data BBSExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "BBS"
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}
	lastCol := columns[len(columns)-1]

	widths := []float64{10, 12, 22, 9, 7, 8, 14, 8, 12, 40}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	styles, err := newWorkbookStyles(f)
	if err != nil {
		return nil, err
	}

	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", sanitizeExcelCell("Bar Bending Schedule - "+data.ProjectName))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", styles.title)

	if err := f.MergeCell(sheetName, "A2", lastCol+"2"); err != nil {
		return nil, fmt.Errorf("merge date: %w", err)
	}
	f.SetCellValue(sheetName, "A2", "Date: "+data.GeneratedDate)
	f.SetCellStyle(sheetName, "A2", lastCol+"2", styles.subtitle)

	headers := []string{"Bar Mark", "Member", "Location", "Dia (mm)", "Type", "Shape", "Length (mm)", "No.", "Weight (kg)", "Remarks"}
	for i, h := range headers {
		f.SetCellValue(sheetName, fmt.Sprintf("%s4", columns[i]), h)
	}
	f.SetCellStyle(sheetName, "A4", lastCol+"4", styles.header)

	row := 5
	for _, bar := range data.Bars {
		rowStr := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "A"+rowStr, bar.BarMark)
		f.SetCellValue(sheetName, "B"+rowStr, string(bar.MemberType))
		f.SetCellValue(sheetName, "C"+rowStr, sanitizeExcelCell(bar.Location))
		f.SetCellValue(sheetName, "D"+rowStr, bar.DiameterMM)
		f.SetCellValue(sheetName, "E"+rowStr, string(bar.BarType))
		f.SetCellValue(sheetName, "F"+rowStr, bar.ShapeCode)
		f.SetCellValue(sheetName, "G"+rowStr, bar.TotalLengthMM)
		f.SetCellValue(sheetName, "H"+rowStr, bar.BarCount)
		f.SetCellValue(sheetName, "I"+rowStr, bar.TotalWeightKg)
		f.SetCellValue(sheetName, "J"+rowStr, sanitizeExcelCell(bar.Remarks))
		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, styles.item)
		row++
	}

	row++
	totals := []struct {
		label string
		value float64
	}{
		{"High Tensile (T):", data.HighTensileKg},
		{"Mild Steel (R):", data.MildSteelKg},
		{"Total Steel:", data.TotalSteelKg},
	}
	for _, entry := range totals {
		rowStr := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "G"+rowStr, entry.label)
		f.SetCellStyle(sheetName, "G"+rowStr, "G"+rowStr, styles.summaryLabel)
		f.SetCellValue(sheetName, "I"+rowStr, fmt.Sprintf("%.0f kg", entry.value))
		f.SetCellStyle(sheetName, "I"+rowStr, "I"+rowStr, styles.summaryValue)
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// workbookStyles holds the shared cell styles of one workbook.
type workbookStyles struct {
	title        int
	subtitle     int
	header       int
	section      int
	item         int
	summaryLabel int
	summaryValue int
}

func newWorkbookStyles(f *excelize.File) (workbookStyles, error) {
	var s workbookStyles
	var err error

	// Title style: bold, 16pt.
	s.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return s, fmt.Errorf("create title style: %w", err)
	}

	s.subtitle, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 11},
	})
	if err != nil {
		return s, fmt.Errorf("create subtitle style: %w", err)
	}

	// Column header style: bold, white text, charcoal background, centered.
	s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: thinBorders(),
	})
	if err != nil {
		return s, fmt.Errorf("create header style: %w", err)
	}

	// Section row style: bold on light gray.
	s.section, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#EDEDED"}, Pattern: 1},
		Border: thinBorders(),
	})
	if err != nil {
		return s, fmt.Errorf("create section style: %w", err)
	}

	s.item, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return s, fmt.Errorf("create item style: %w", err)
	}

	s.summaryLabel, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return s, fmt.Errorf("create summary label style: %w", err)
	}

	s.summaryValue, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return s, fmt.Errorf("create summary value style: %w", err)
	}

	return s, nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
