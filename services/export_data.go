package services

import "time"

// BOQExportData bundles everything the bill-of-quantities exporters need:
// project identity, the priced line items and the costing ladder.
type BOQExportData struct {
	ProjectName   string
	County        string
	GeneratedDate string
	Items         []BOQLineItem
	Summary       CostSummary
}

// BBSExportData bundles the bar bending schedule export inputs.
type BBSExportData struct {
	ProjectName   string
	GeneratedDate string
	Bars          []BarSpec
	TotalSteelKg  float64
	HighTensileKg float64
	MildSteelKg   float64
}

// NewBOQExportData assembles export data from a costing run.
func NewBOQExportData(projectName string, items []BOQLineItem, summary CostSummary) BOQExportData {
	return BOQExportData{
		ProjectName:   projectName,
		County:        summary.County,
		GeneratedDate: summary.GeneratedAt.Format("02 Jan 2006"),
		Items:         items,
		Summary:       summary,
	}
}

// NewBBSExportData assembles export data from a schedule generation run.
func NewBBSExportData(projectName string, result BBSResult, generated time.Time) BBSExportData {
	return BBSExportData{
		ProjectName:   projectName,
		GeneratedDate: generated.Format("02 Jan 2006"),
		Bars:          result.Bars,
		TotalSteelKg:  result.TotalSteelKg,
		HighTensileKg: result.HighTensileKg,
		MildSteelKg:   result.MildSteelKg,
	}
}
