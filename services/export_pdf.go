package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// GenerateBOQPDF creates a PDF bill of quantities with the cost summary
// ladder using maroto/v2. It returns the raw PDF bytes or an error.
func GenerateBOQPDF(data BOQExportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addBOQHeader(m, data)
	addBOQTableHeader(m)

	currentCategory := ""
	for _, item := range data.Items {
		if item.Category != currentCategory {
			currentCategory = item.Category
			addSectionRow(m, currentCategory)
		}
		addBOQTableRow(m, item)
	}

	addCostLadder(m, data.Summary)
	addCategoryBreakdown(m, data.Summary)
	addGeneratedFooter(m, data.GeneratedDate)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

// addBOQHeader adds the title, county, and date to the PDF.
func addBOQHeader(m core.Maroto, data BOQExportData) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New("Bill of Quantities - "+data.ProjectName, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	m.AddRows(
		row.New(8).Add(
			col.New(6).Add(
				text.New(fmt.Sprintf("County: %s", data.County), props.Text{
					Size:  9,
					Align: align.Left,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
			col.New(6).Add(
				text.New(fmt.Sprintf("Date: %s", data.GeneratedDate), props.Text{
					Size:  9,
					Align: align.Right,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
		),
	)

	// Spacer
	m.AddRows(row.New(4))
}

// addBOQTableHeader adds the column header row for the bill table.
func addBOQTableHeader(m core.Maroto) {
	headerBg := &props.Color{Red: 33, Green: 37, Blue: 41}
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerTextLeft := headerText
	headerTextLeft.Align = align.Left

	headerCell := props.Cell{BackgroundColor: headerBg}

	m.AddRows(
		row.New(8).Add(
			col.New(1).Add(
				text.New("Item", headerText),
			).WithStyle(&headerCell),
			col.New(4).Add(
				text.New("Description", headerTextLeft),
			).WithStyle(&headerCell),
			col.New(1).Add(
				text.New("Unit", headerText),
			).WithStyle(&headerCell),
			col.New(1).Add(
				text.New("Qty", headerText),
			).WithStyle(&headerCell),
			col.New(1).Add(
				text.New("Waste", headerText),
			).WithStyle(&headerCell),
			col.New(2).Add(
				text.New("Rate", headerText),
			).WithStyle(&headerCell),
			col.New(2).Add(
				text.New("Amount", headerText),
			).WithStyle(&headerCell),
		),
	)
}

// addSectionRow adds a shaded full-width row naming the bill section.
func addSectionRow(m core.Maroto, category string) {
	bg := &props.Color{Red: 235, Green: 235, Blue: 235}
	m.AddRows(
		row.New(7).Add(
			col.New(12).Add(
				text.New(category, props.Text{
					Size:  8,
					Style: fontstyle.Bold,
					Align: align.Left,
				}),
			).WithStyle(&props.Cell{BackgroundColor: bg}),
		),
	)
}

// addBOQTableRow adds a single bill line to the table.
func addBOQTableRow(m core.Maroto, item BOQLineItem) {
	baseText := props.Text{
		Size:  7,
		Align: align.Center,
	}
	leftText := baseText
	leftText.Align = align.Left
	rightText := baseText
	rightText.Align = align.Right

	desc := item.Description
	if item.NeedsReview {
		desc += " [needs review]"
	}

	rate := FormatKES(item.UnitRate)
	amount := FormatKES(item.TotalCost)
	if item.CostedByMarkup {
		rate = "Incl."
		amount = "Incl."
	}

	m.AddRows(
		row.New(7).Add(
			col.New(1).Add(text.New(item.ItemNumber, baseText)),
			col.New(4).Add(text.New(desc, leftText)),
			col.New(1).Add(text.New(item.Unit, baseText)),
			col.New(1).Add(text.New(formatQty(item.GrossQuantity), rightText)),
			col.New(1).Add(text.New(fmt.Sprintf("%.2f", item.WasteFactor), rightText)),
			col.New(2).Add(text.New(rate, rightText)),
			col.New(2).Add(text.New(amount, rightText)),
		),
	)
}

// addCostLadder adds the markup ladder from materials subtotal to grand
// total at the bottom of the bill.
func addCostLadder(m core.Maroto, s CostSummary) {
	// Spacer before summary
	m.AddRows(row.New(6))

	summaryBg := &props.Color{Red: 240, Green: 240, Blue: 240}
	summaryCell := &props.Cell{BackgroundColor: summaryBg}

	labelStyle := props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Align: align.Right,
	}
	valueStyle := labelStyle

	ladder := []struct {
		label string
		value float64
	}{
		{"Materials Subtotal", s.MaterialsSubtotal},
		{"Preliminaries (5%)", s.PreliminaryCost},
		{"Provisional Sums (10%)", s.ProvisionalSum},
		{"Labour & Overheads (50%)", s.LaborOverheads},
		{fmt.Sprintf("Contingency (%.0f%%)", s.ContingencyPct*100), s.ContingencyAmount},
		{fmt.Sprintf("VAT (%.0f%%)", s.VATPct*100), s.VATAmount},
		{"GRAND TOTAL", s.GrandTotal},
	}

	for _, entry := range ladder {
		m.AddRows(
			row.New(8).Add(
				col.New(8).Add(
					text.New(entry.label, labelStyle),
				).WithStyle(summaryCell),
				col.New(4).Add(
					text.New(FormatKES(entry.value), valueStyle),
				).WithStyle(summaryCell),
			),
		)
	}
}

// addCategoryBreakdown lists the per-section material cost split.
func addCategoryBreakdown(m core.Maroto, s CostSummary) {
	if len(s.CategoryTotals) == 0 {
		return
	}

	m.AddRows(row.New(6))
	m.AddRows(
		row.New(8).Add(
			col.New(12).Add(
				text.New("Cost by Section", props.Text{
					Size:  10,
					Style: fontstyle.Bold,
					Align: align.Left,
				}),
			),
		),
	)

	categories := make([]string, 0, len(s.CategoryTotals))
	for c := range s.CategoryTotals {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	for _, c := range categories {
		m.AddRows(
			row.New(7).Add(
				col.New(6).Add(
					text.New(c, props.Text{Size: 8, Align: align.Left}),
				),
				col.New(6).Add(
					text.New(FormatKES(s.CategoryTotals[c]), props.Text{Size: 8, Align: align.Right}),
				),
			),
		)
	}
}

// addGeneratedFooter adds the generated-date line at the bottom.
func addGeneratedFooter(m core.Maroto, date string) {
	m.AddRows(row.New(6))
	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(
				text.New(
					fmt.Sprintf("Generated on %s", date),
					props.Text{
						Size:  7,
						Align: align.Left,
						Color: &props.Color{Red: 140, Green: 140, Blue: 140},
					},
				),
			),
		),
	)
}

// formatQty returns a string representation of the quantity value.
// Whole numbers are formatted without decimals; fractional values get 2 decimal places.
func formatQty(qty float64) string {
	if qty == math.Trunc(qty) {
		return fmt.Sprintf("%.0f", qty)
	}
	return fmt.Sprintf("%.2f", qty)
}
