package services

import (
	"fmt"
	"strings"
)

// FormatKES formats a float64 amount into Kenyan Shilling notation with
// thousands separators (e.g., KES 2,105,400.00). The result always includes
// exactly 2 decimal places.
func FormatKES(amount float64) string {
	negative := false
	if amount < 0 {
		negative = true
		amount = -amount
	}

	// Format with 2 decimal places.
	raw := fmt.Sprintf("%.2f", amount)

	// Split into integer and decimal parts.
	parts := strings.SplitN(raw, ".", 2)
	intPart := parts[0]
	decPart := parts[1]

	result := "KES " + applyThousandsGrouping(intPart) + "." + decPart
	if negative {
		result = "-" + result
	}
	return result
}

// applyThousandsGrouping inserts commas into an integer string every 3
// digits from the right.
func applyThousandsGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	result := s[n-3:]
	remaining := s[:n-3]
	for len(remaining) > 3 {
		result = remaining[len(remaining)-3:] + "," + result
		remaining = remaining[:len(remaining)-3]
	}
	return remaining + "," + result
}
