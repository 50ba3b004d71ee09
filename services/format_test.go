package services

import "testing"

func TestFormatKES_Values(t *testing.T) {
	tests := []struct {
		name   string
		input  float64
		expect string
	}{
		{"zero", 0, "KES 0.00"},
		{"small integer", 5, "KES 5.00"},
		{"with decimals", 42.50, "KES 42.50"},
		{"hundreds", 999.99, "KES 999.99"},
		{"thousands", 1234.56, "KES 1,234.56"},
		{"ten thousands", 12345.00, "KES 12,345.00"},
		{"hundred thousands", 123456.78, "KES 123,456.78"},
		{"millions", 2105400.00, "KES 2,105,400.00"},
		{"tens of millions", 12345678.90, "KES 12,345,678.90"},
		{"negative small", -100.00, "-KES 100.00"},
		{"negative thousands", -250000.50, "-KES 250,000.50"},
		{"one shilling", 1, "KES 1.00"},
		{"exact thousands boundary", 1000, "KES 1,000.00"},
		{"exact million boundary", 1000000, "KES 1,000,000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatKES(tt.input)
			if got != tt.expect {
				t.Errorf("FormatKES(%v) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func TestApplyThousandsGrouping(t *testing.T) {
	tests := []struct {
		input  string
		expect string
	}{
		{"0", "0"},
		{"999", "999"},
		{"1000", "1,000"},
		{"12345", "12,345"},
		{"123456", "123,456"},
		{"1234567", "1,234,567"},
		{"123456789", "123,456,789"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := applyThousandsGrouping(tt.input)
			if got != tt.expect {
				t.Errorf("applyThousandsGrouping(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}
