package services

import "testing"

func TestGenerateBOQPDF(t *testing.T) {
	result, err := GenerateBOQPDF(testBOQExportData())
	if err != nil {
		t.Fatalf("GenerateBOQPDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateBOQPDF() returned empty bytes")
	}
	// PDF files start with %PDF
	if len(result) > 4 && string(result[:5]) != "%PDF-" {
		t.Errorf("result does not start with PDF header, got %q", string(result[:5]))
	}
}

func TestGenerateBOQPDF_EmptyBill(t *testing.T) {
	data := BOQExportData{
		ProjectName:   "Empty Project",
		GeneratedDate: "15 Jan 2026",
	}

	result, err := GenerateBOQPDF(data)
	if err != nil {
		t.Fatalf("GenerateBOQPDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateBOQPDF() returned empty bytes")
	}
}

func TestFormatQty(t *testing.T) {
	tests := []struct {
		input  float64
		expect string
	}{
		{10, "10"},
		{10.5, "10.50"},
		{0, "0"},
		{151.2, "151.20"},
	}

	for _, tt := range tests {
		t.Run(tt.expect, func(t *testing.T) {
			if got := formatQty(tt.input); got != tt.expect {
				t.Errorf("formatQty(%v) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}
