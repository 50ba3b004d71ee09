package services

import "fmt"

// DimensionBreakdown records the adjusted leg dimensions and allowances that
// make up a computed bar length, for the schedule's A..E columns and audit.
type DimensionBreakdown struct {
	A             float64 `json:"a,omitempty"`
	B             float64 `json:"b,omitempty"`
	C             float64 `json:"c,omitempty"`
	BendAllowance float64 `json:"bend_allowance,omitempty"`
	Perimeter     float64 `json:"perimeter,omitempty"`
	HookLength    float64 `json:"hook_length,omitempty"`
}

// StraightBarLength computes the cut length of a shape code 00 bar: the
// nominal length less cover at both ends.
func StraightBarLength(totalLengthMM, coverMM float64) (float64, error) {
	length := totalLengthMM - 2*coverMM
	if length <= 0 {
		return 0, fmt.Errorf("straight bar: nominal length %.0fmm does not exceed twice the cover %.0fmm", totalLengthMM, coverMM)
	}
	return length, nil
}

// LBarLength computes the cut length of a shape code 11 bar. Each leg is
// reduced by cover once and a single bend allowance is deducted.
func LBarLength(std Standards, legAMM, legBMM float64, diameterMM int, coverMM float64) (float64, DimensionBreakdown, error) {
	ba, err := std.BendAllowance(diameterMM)
	if err != nil {
		return 0, DimensionBreakdown{}, err
	}

	adjA := legAMM - coverMM
	adjB := legBMM - coverMM
	if adjA <= 0 || adjB <= 0 {
		return 0, DimensionBreakdown{}, fmt.Errorf("l-bar: legs %.0fx%.0fmm do not clear %.0fmm cover", legAMM, legBMM, coverMM)
	}

	total := adjA + adjB - ba
	return total, DimensionBreakdown{A: adjA, B: adjB, BendAllowance: ba}, nil
}

// UBarLength computes the cut length of a shape code 13 bar (stirrup-leg
// form): two vertical legs reduced by cover once, the horizontal leg reduced
// by cover at both ends, less two bend allowances.
func UBarLength(std Standards, legAMM, legBMM, legCMM float64, diameterMM int, coverMM float64) (float64, DimensionBreakdown, error) {
	ba, err := std.BendAllowance(diameterMM)
	if err != nil {
		return 0, DimensionBreakdown{}, err
	}

	adjA := legAMM - coverMM
	adjB := legBMM - 2*coverMM
	adjC := legCMM - coverMM
	if adjA <= 0 || adjB <= 0 || adjC <= 0 {
		return 0, DimensionBreakdown{}, fmt.Errorf("u-bar: legs %.0f/%.0f/%.0fmm do not clear %.0fmm cover", legAMM, legBMM, legCMM, coverMM)
	}

	total := adjA + adjB + adjC - 2*ba
	return total, DimensionBreakdown{A: adjA, B: adjB, C: adjC, BendAllowance: ba}, nil
}

// StirrupLength computes the cut length of a shape code 21 closed stirrup
// around a member of the given width and depth: the cover-adjusted perimeter
// less four corner bend allowances, plus a 10-diameter hook.
func StirrupLength(std Standards, widthMM, depthMM float64, diameterMM int, coverMM float64) (float64, DimensionBreakdown, error) {
	ba, err := std.BendAllowance(diameterMM)
	if err != nil {
		return 0, DimensionBreakdown{}, err
	}

	adjWidth := widthMM - 2*coverMM
	adjDepth := depthMM - 2*coverMM
	if adjWidth <= 0 || adjDepth <= 0 {
		return 0, DimensionBreakdown{}, fmt.Errorf("stirrup: section %.0fx%.0fmm does not clear %.0fmm cover", widthMM, depthMM, coverMM)
	}

	perimeter := 2 * (adjWidth + adjDepth)
	hook := 10 * float64(diameterMM)
	total := perimeter - 4*ba + hook

	return total, DimensionBreakdown{
		A:             adjWidth,
		B:             adjDepth,
		Perimeter:     perimeter,
		BendAllowance: ba,
		HookLength:    hook,
	}, nil
}
