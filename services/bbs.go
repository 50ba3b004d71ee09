package services

import (
	"fmt"
	"math"
)

// MemberType is the structural member category of a schedule line.
type MemberType string

const (
	MemberColumn     MemberType = "Column"
	MemberBeam       MemberType = "Beam"
	MemberSlab       MemberType = "Slab"
	MemberFoundation MemberType = "Foundation"
)

// BarType distinguishes high-tensile (T) from mild-steel (R) bars, which are
// priced at different rates.
type BarType string

const (
	BarHighTensile BarType = "T"
	BarMildSteel   BarType = "R"
)

// BarSpec is one line of the bar bending schedule. Immutable once persisted;
// regeneration replaces the whole schedule.
type BarSpec struct {
	BarMark          string     `json:"bar_mark"`
	MemberType       MemberType `json:"member_type"`
	Location         string     `json:"location"`
	DiameterMM       int        `json:"diameter_mm"`
	BarType          BarType    `json:"bar_type"`
	ShapeCode        string     `json:"shape_code"`
	A                float64    `json:"a,omitempty"`
	B                float64    `json:"b,omitempty"`
	C                float64    `json:"c,omitempty"`
	D                float64    `json:"d,omitempty"`
	E                float64    `json:"e,omitempty"`
	TotalLengthMM    float64    `json:"total_length_mm"`
	BarCount         int        `json:"bar_count"`
	UnitWeightKgPerM float64    `json:"unit_weight_kg_per_m"`
	TotalWeightKg    float64    `json:"total_weight_kg"`
	Remarks          string     `json:"remarks,omitempty"`
}

// BBSResult is the full schedule of one generation run with steel-weight
// totals split by bar type for costing.
type BBSResult struct {
	Bars          []BarSpec `json:"bars"`
	TotalSteelKg  float64   `json:"total_steel_weight_kg"`
	HighTensileKg float64   `json:"high_tensile_kg"`
	MildSteelKg   float64   `json:"mild_steel_kg"`
}

// AggregateQuantities are the per-category governing quantities the BBS
// builder works from, usually derived from a takeoff run.
type AggregateQuantities struct {
	ColumnCount  int
	BeamLengthM  float64
	SlabAreaSqm  float64
	FloorAreaSqm float64 // per floor, authoritative
}

// AggregatesFromTakeoff derives the BBS governing quantities from a
// completed takeoff run.
func AggregatesFromTakeoff(params ProjectParams, takeoff TakeoffSet) AggregateQuantities {
	return AggregateQuantities{
		ColumnCount:  takeoff.Columns.Count,
		BeamLengthM:  takeoff.Beams.NetQuantity,
		SlabAreaSqm:  takeoff.Slabs.NetQuantity,
		FloorAreaSqm: params.FloorAreaSqm,
	}
}

// RoundWeightTo50 rounds a steel weight to the nearest 50 kg, half up:
// 623.4 -> 600, 625 -> 650.
func RoundWeightTo50(kg float64) float64 {
	return math.Floor(kg/50+0.5) * 50
}

// markCounter issues sequential bar marks (B001, B002, ...) scoped to a
// single generation run, never reused within it.
type markCounter struct {
	n int
}

func (m *markCounter) next() string {
	m.n++
	return fmt.Sprintf("B%03d", m.n)
}

// GenerateBBS synthesizes a representative reinforcement schedule from
// aggregate quantities using the fixed member sizing defaults. Member
// categories with a zero governing quantity are skipped. Assumed structural
// metadata is recorded in line remarks.
func GenerateBBS(std Standards, params ProjectParams, q AggregateQuantities) (BBSResult, error) {
	if q.ColumnCount < 0 || q.BeamLengthM < 0 || q.SlabAreaSqm < 0 || q.FloorAreaSqm < 0 {
		return BBSResult{}, fmt.Errorf("aggregate quantities must not be negative")
	}

	marks := &markCounter{}
	var bars []BarSpec

	if q.FloorAreaSqm > 0 {
		items, err := foundationBars(std, marks, q.FloorAreaSqm)
		if err != nil {
			return BBSResult{}, fmt.Errorf("foundation reinforcement: %w", err)
		}
		bars = append(bars, items...)
	}

	if q.ColumnCount > 0 {
		items, err := columnBars(std, params, marks, q.ColumnCount)
		if err != nil {
			return BBSResult{}, fmt.Errorf("column reinforcement: %w", err)
		}
		bars = append(bars, items...)
	}

	if q.BeamLengthM > 0 {
		items, err := beamBars(std, params, marks, q.BeamLengthM)
		if err != nil {
			return BBSResult{}, fmt.Errorf("beam reinforcement: %w", err)
		}
		bars = append(bars, items...)
	}

	if q.SlabAreaSqm > 0 {
		items, err := slabBars(std, marks, q.SlabAreaSqm)
		if err != nil {
			return BBSResult{}, fmt.Errorf("slab reinforcement: %w", err)
		}
		bars = append(bars, items...)
	}

	result := BBSResult{Bars: bars}
	for _, b := range bars {
		result.TotalSteelKg += b.TotalWeightKg
		switch b.BarType {
		case BarHighTensile:
			result.HighTensileKg += b.TotalWeightKg
		default:
			result.MildSteelKg += b.TotalWeightKg
		}
	}

	return result, nil
}

// lineWeight computes the schedule line weight, rounded to the nearest 50 kg.
func lineWeight(lengthMM, unitWeightKgPerM float64, count int) float64 {
	return RoundWeightTo50(lengthMM / 1000 * unitWeightKgPerM * float64(count))
}

// columnBars emits the longitudinal bars and links for all columns:
// 4 main bars per column plus closed links at fixed spacing.
func columnBars(std Standards, params ProjectParams, marks *markCounter, count int) ([]BarSpec, error) {
	cfg := std.BBS.Column
	cover := std.DefaultCoverMM
	height := params.FloorHeightMM
	size := params.ColumnSizeMM

	var remarks string
	if height.Assumed || size.Assumed {
		remarks = fmt.Sprintf(" (assumed %.0fx%.0fmm section, %.0fmm floor height)", size.Value, size.Value, height.Value)
	}

	mainLength, err := StraightBarLength(height.Value, cover)
	if err != nil {
		return nil, err
	}
	// Starter lap.
	mainLength += float64(cfg.LapLengthDiameters * cfg.MainBarDiameterMM)

	mainWeight, err := std.BarWeight(cfg.MainBarDiameterMM)
	if err != nil {
		return nil, err
	}
	totalMainBars := cfg.MainBarsPerColumn * count

	items := []BarSpec{{
		BarMark:          marks.next(),
		MemberType:       MemberColumn,
		Location:         "All columns",
		DiameterMM:       cfg.MainBarDiameterMM,
		BarType:          BarHighTensile,
		ShapeCode:        "00",
		A:                mainLength,
		TotalLengthMM:    mainLength,
		BarCount:         totalMainBars,
		UnitWeightKgPerM: mainWeight,
		TotalWeightKg:    lineWeight(mainLength, mainWeight, totalMainBars),
		Remarks:          fmt.Sprintf("Main reinforcement, %d bars per column%s", cfg.MainBarsPerColumn, remarks),
	}}

	linkLength, dims, err := StirrupLength(std, size.Value, size.Value, cfg.LinkDiameterMM, cover)
	if err != nil {
		return nil, err
	}
	linkWeight, err := std.BarWeight(cfg.LinkDiameterMM)
	if err != nil {
		return nil, err
	}
	linksPerColumn := int(math.Ceil(height.Value / float64(cfg.LinkSpacingMM)))
	totalLinks := linksPerColumn * count

	items = append(items, BarSpec{
		BarMark:          marks.next(),
		MemberType:       MemberColumn,
		Location:         "All columns",
		DiameterMM:       cfg.LinkDiameterMM,
		BarType:          BarMildSteel,
		ShapeCode:        "21",
		A:                dims.A,
		B:                dims.B,
		TotalLengthMM:    linkLength,
		BarCount:         totalLinks,
		UnitWeightKgPerM: linkWeight,
		TotalWeightKg:    lineWeight(linkLength, linkWeight, totalLinks),
		Remarks:          fmt.Sprintf("Links @ %dmm c/c%s", cfg.LinkSpacingMM, remarks),
	})

	return items, nil
}

// beamBars emits bottom bars, top bars and stirrups. Beam count derives from
// the total detected linear length and the average beam length assumption.
func beamBars(std Standards, params ProjectParams, marks *markCounter, totalLengthM float64) ([]BarSpec, error) {
	cfg := std.BBS.Beam
	cover := std.DefaultCoverMM
	avgLength := std.Defaults.AvgBeamLengthMM
	numBeams := int(math.Ceil(totalLengthM * 1000 / avgLength))

	var remarks string
	if params.BeamWidthMM.Assumed || params.BeamDepthMM.Assumed {
		remarks = fmt.Sprintf(" (assumed %.0fx%.0fmm section)", params.BeamWidthMM.Value, params.BeamDepthMM.Value)
	}

	barLength, err := StraightBarLength(avgLength, cover)
	if err != nil {
		return nil, err
	}

	bottomWeight, err := std.BarWeight(cfg.BottomBarDiameterMM)
	if err != nil {
		return nil, err
	}
	totalBottom := cfg.BottomBarsPerBeam * numBeams

	items := []BarSpec{{
		BarMark:          marks.next(),
		MemberType:       MemberBeam,
		Location:         "All beams",
		DiameterMM:       cfg.BottomBarDiameterMM,
		BarType:          BarHighTensile,
		ShapeCode:        "00",
		A:                barLength,
		TotalLengthMM:    barLength,
		BarCount:         totalBottom,
		UnitWeightKgPerM: bottomWeight,
		TotalWeightKg:    lineWeight(barLength, bottomWeight, totalBottom),
		Remarks:          "Bottom bars (tension reinforcement)" + remarks,
	}}

	topWeight, err := std.BarWeight(cfg.TopBarDiameterMM)
	if err != nil {
		return nil, err
	}
	totalTop := cfg.TopBarsPerBeam * numBeams

	items = append(items, BarSpec{
		BarMark:          marks.next(),
		MemberType:       MemberBeam,
		Location:         "All beams",
		DiameterMM:       cfg.TopBarDiameterMM,
		BarType:          BarHighTensile,
		ShapeCode:        "00",
		A:                barLength,
		TotalLengthMM:    barLength,
		BarCount:         totalTop,
		UnitWeightKgPerM: topWeight,
		TotalWeightKg:    lineWeight(barLength, topWeight, totalTop),
		Remarks:          "Top bars (compression reinforcement)" + remarks,
	})

	stirrupLength, dims, err := StirrupLength(std, params.BeamWidthMM.Value, params.BeamDepthMM.Value, cfg.StirrupDiameterMM, cover)
	if err != nil {
		return nil, err
	}
	stirrupWeight, err := std.BarWeight(cfg.StirrupDiameterMM)
	if err != nil {
		return nil, err
	}
	stirrupsPerBeam := int(math.Ceil(avgLength / float64(cfg.StirrupSpacingMM)))
	totalStirrups := stirrupsPerBeam * numBeams

	items = append(items, BarSpec{
		BarMark:          marks.next(),
		MemberType:       MemberBeam,
		Location:         "All beams",
		DiameterMM:       cfg.StirrupDiameterMM,
		BarType:          BarMildSteel,
		ShapeCode:        "21",
		A:                dims.A,
		B:                dims.B,
		TotalLengthMM:    stirrupLength,
		BarCount:         totalStirrups,
		UnitWeightKgPerM: stirrupWeight,
		TotalWeightKg:    lineWeight(stirrupLength, stirrupWeight, totalStirrups),
		Remarks:          fmt.Sprintf("Stirrups @ %dmm c/c%s", cfg.StirrupSpacingMM, remarks),
	})

	return items, nil
}

// slabBars emits bottom mesh and top distribution mesh, both ways, for a
// square-equivalent slab.
func slabBars(std Standards, marks *markCounter, areaSqm float64) ([]BarSpec, error) {
	cfg := std.BBS.Slab
	sideMM := math.Sqrt(areaSqm) * 1000
	barsPerDirection := int(math.Ceil(sideMM / float64(cfg.BarSpacingMM)))
	totalBars := barsPerDirection * 2

	bottomWeight, err := std.BarWeight(cfg.BottomBarDiameterMM)
	if err != nil {
		return nil, err
	}

	items := []BarSpec{{
		BarMark:          marks.next(),
		MemberType:       MemberSlab,
		Location:         "All slabs",
		DiameterMM:       cfg.BottomBarDiameterMM,
		BarType:          BarHighTensile,
		ShapeCode:        "00",
		A:                sideMM,
		TotalLengthMM:    sideMM,
		BarCount:         totalBars,
		UnitWeightKgPerM: bottomWeight,
		TotalWeightKg:    lineWeight(sideMM, bottomWeight, totalBars),
		Remarks:          fmt.Sprintf("Bottom mesh @ %dmm c/c both ways", cfg.BarSpacingMM),
	}}

	topWeight, err := std.BarWeight(cfg.TopBarDiameterMM)
	if err != nil {
		return nil, err
	}

	items = append(items, BarSpec{
		BarMark:          marks.next(),
		MemberType:       MemberSlab,
		Location:         "All slabs",
		DiameterMM:       cfg.TopBarDiameterMM,
		BarType:          BarHighTensile,
		ShapeCode:        "00",
		A:                sideMM,
		TotalLengthMM:    sideMM,
		BarCount:         totalBars,
		UnitWeightKgPerM: topWeight,
		TotalWeightKg:    lineWeight(sideMM, topWeight, totalBars),
		Remarks:          fmt.Sprintf("Top mesh (distribution) @ %dmm c/c both ways", cfg.BarSpacingMM),
	})

	return items, nil
}

// foundationBars emits the foundation mat, both ways, over the assumed
// foundation footprint fraction of the floor area.
func foundationBars(std Standards, marks *markCounter, floorAreaSqm float64) ([]BarSpec, error) {
	cfg := std.BBS.Foundation
	foundationArea := floorAreaSqm * std.Defaults.FoundationAreaFraction
	sideMM := math.Sqrt(foundationArea) * 1000
	barsPerDirection := int(math.Ceil(sideMM / float64(cfg.BarSpacingMM)))
	totalBars := barsPerDirection * 2

	weight, err := std.BarWeight(cfg.BarDiameterMM)
	if err != nil {
		return nil, err
	}

	return []BarSpec{{
		BarMark:          marks.next(),
		MemberType:       MemberFoundation,
		Location:         "Strip/pad foundations",
		DiameterMM:       cfg.BarDiameterMM,
		BarType:          BarHighTensile,
		ShapeCode:        "00",
		A:                sideMM,
		TotalLengthMM:    sideMM,
		BarCount:         totalBars,
		UnitWeightKgPerM: weight,
		TotalWeightKg:    lineWeight(sideMM, weight, totalBars),
		Remarks:          fmt.Sprintf("Foundation reinforcement @ %dmm c/c both ways", cfg.BarSpacingMM),
	}}, nil
}
