package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ValidationError represents a single field-level error on one row.
type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RateImportResult is returned after parsing and validating an uploaded rate
// file. ParsedRates holds only the rows that passed validation.
type RateImportResult struct {
	TotalRows   int               `json:"total_rows"`
	ValidRows   int               `json:"valid_rows"`
	ErrorRows   int               `json:"error_rows"`
	Errors      []ValidationError `json:"errors"`
	ParsedRates []MaterialRate    `json:"-"`
	FileName    string            `json:"-"`
}

// rateImportColumns maps accepted column headers to rate fields.
var rateImportColumns = map[string]string{
	"material code": "code",
	"code":          "code",
	"description":   "description",
	"unit":          "unit",
	"unit price":    "unit_price",
	"price":         "unit_price",
	"source":        "source",
	"region":        "region",
}

var materialCodePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// parseCSV reads a CSV file and returns headers + data rows.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	return allRows[0], allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the
// first sheet.
func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	return rows[0], rows[1:], nil
}

// mapRateHeaders maps uploaded column headers to rate field keys. Returns an
// ordered list of field keys (empty string for unrecognized columns).
func mapRateHeaders(headers []string) []string {
	mapped := make([]string, len(headers))
	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		norm = strings.TrimSuffix(norm, " *")
		norm = strings.TrimSpace(norm)
		mapped[i] = rateImportColumns[norm]
	}
	return mapped
}

// ValidateRateFile parses and validates an uploaded material rate file.
// Accepts .csv and .xlsx uploads with at least a code, unit and unit price
// column.
func ValidateRateFile(file io.Reader, fileName string) (*RateImportResult, error) {
	var headers []string
	var dataRows [][]string
	var err error

	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		headers, dataRows, err = parseCSV(file)
	case strings.HasSuffix(lowerName, ".xlsx"):
		headers, dataRows, err = parseExcel(file)
	default:
		return nil, fmt.Errorf("unsupported file format: must be .csv or .xlsx")
	}
	if err != nil {
		return nil, err
	}

	columnKeys := mapRateHeaders(headers)

	present := make(map[string]bool)
	for _, key := range columnKeys {
		if key != "" {
			present[key] = true
		}
	}
	for _, required := range []string{"code", "unit", "unit_price"} {
		if !present[required] {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	result := &RateImportResult{
		TotalRows: len(dataRows),
		FileName:  fileName,
	}

	seen := make(map[string]int)
	for rowIdx, row := range dataRows {
		rowNum := rowIdx + 2 // 1-indexed, +1 for header row
		rowData := make(map[string]string)
		for colIdx, key := range columnKeys {
			if key == "" {
				continue
			}
			value := ""
			if colIdx < len(row) {
				value = strings.TrimSpace(row[colIdx])
			}
			rowData[key] = value
		}

		var rowErrors []ValidationError

		code := rowData["code"]
		switch {
		case code == "":
			rowErrors = append(rowErrors, ValidationError{Row: rowNum, Field: "Material Code", Message: "Material Code is required"})
		case !materialCodePattern.MatchString(code):
			rowErrors = append(rowErrors, ValidationError{Row: rowNum, Field: "Material Code", Message: "Material Code must be lowercase letters, digits and underscores"})
		default:
			if firstRow, dup := seen[code]; dup {
				rowErrors = append(rowErrors, ValidationError{Row: rowNum, Field: "Material Code", Message: fmt.Sprintf("Duplicate of code %q on row %d", code, firstRow)})
			} else {
				seen[code] = rowNum
			}
		}

		if rowData["unit"] == "" {
			rowErrors = append(rowErrors, ValidationError{Row: rowNum, Field: "Unit", Message: "Unit is required"})
		}

		price, priceErr := strconv.ParseFloat(rowData["unit_price"], 64)
		switch {
		case rowData["unit_price"] == "":
			rowErrors = append(rowErrors, ValidationError{Row: rowNum, Field: "Unit Price", Message: "Unit Price is required"})
		case priceErr != nil:
			rowErrors = append(rowErrors, ValidationError{Row: rowNum, Field: "Unit Price", Message: fmt.Sprintf("Unit Price %q is not a number", rowData["unit_price"])})
		case price < 0:
			rowErrors = append(rowErrors, ValidationError{Row: rowNum, Field: "Unit Price", Message: "Unit Price must not be negative"})
		}

		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			continue
		}

		description := rowData["description"]
		if description == "" {
			description = MaterialDescription(code)
		}
		result.ParsedRates = append(result.ParsedRates, MaterialRate{
			Code:        code,
			Description: description,
			Unit:        rowData["unit"],
			UnitPrice:   price,
			Source:      rowData["source"],
			Region:      rowData["region"],
		})
	}

	errorRowSet := make(map[int]bool)
	for _, e := range result.Errors {
		errorRowSet[e.Row] = true
	}
	result.ErrorRows = len(errorRowSet)
	result.ValidRows = result.TotalRows - result.ErrorRows

	return result, nil
}

// ParseRatesJSON decodes a JSON rate file as produced by the price scraper:
// an array of material rate objects. Unlike the spreadsheet path, any invalid
// entry fails the whole file; a seeding run is all-or-nothing.
func ParseRatesJSON(data []byte) ([]MaterialRate, error) {
	var rates []MaterialRate
	if err := json.Unmarshal(data, &rates); err != nil {
		return nil, fmt.Errorf("failed to parse rates JSON: %w", err)
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("rates file contains no entries")
	}

	seen := make(map[string]bool)
	for i := range rates {
		rate := &rates[i]
		switch {
		case rate.Code == "":
			return nil, fmt.Errorf("entry %d: material code is required", i+1)
		case !materialCodePattern.MatchString(rate.Code):
			return nil, fmt.Errorf("entry %d: material code %q must be lowercase letters, digits and underscores", i+1, rate.Code)
		case seen[rate.Code]:
			return nil, fmt.Errorf("entry %d: duplicate material code %q", i+1, rate.Code)
		}
		seen[rate.Code] = true

		if rate.Unit == "" {
			return nil, fmt.Errorf("entry %d (%s): unit is required", i+1, rate.Code)
		}
		if rate.UnitPrice < 0 {
			return nil, fmt.Errorf("entry %d (%s): unit price must not be negative", i+1, rate.Code)
		}
		if rate.Confidence < 0 || rate.Confidence > 1 {
			return nil, fmt.Errorf("entry %d (%s): confidence %.2f outside [0, 1]", i+1, rate.Code, rate.Confidence)
		}
		if rate.Description == "" {
			rate.Description = MaterialDescription(rate.Code)
		}
	}
	return rates, nil
}

// GenerateErrorReport creates a downloadable .xlsx file from validation
// errors.
func GenerateErrorReport(errors []ValidationError) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Errors"
	defaultSheet := f.GetSheetName(0)
	f.SetSheetName(defaultSheet, sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DC2626"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})

	f.SetCellValue(sheet, "A1", "Row #")
	f.SetCellValue(sheet, "B1", "Field")
	f.SetCellValue(sheet, "C1", "Error")
	f.SetCellStyle(sheet, "A1", "C1", headerStyle)
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 22)
	f.SetColWidth(sheet, "C", "C", 55)

	for i, e := range errors {
		row := fmt.Sprintf("%d", i+2)
		f.SetCellValue(sheet, "A"+row, e.Row)
		f.SetCellValue(sheet, "B"+row, sanitizeExcelCell(e.Field))
		f.SetCellValue(sheet, "C"+row, sanitizeExcelCell(e.Message))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write error report: %w", err)
	}
	return buf.Bytes(), nil
}
