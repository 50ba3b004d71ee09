package services

import "fmt"

// Measurement is one detection's contribution to a takeoff quantity.
type Measurement struct {
	Location   string  `json:"location"`
	LengthM    float64 `json:"length_m,omitempty"`
	HeightM    float64 `json:"height_m,omitempty"`
	AreaSqm    float64 `json:"area_sqm,omitempty"`
	VolumeM3   float64 `json:"volume_m3,omitempty"`
	Confidence float64 `json:"confidence"`
}

// TakeoffResult is the measured quantity for one element type, gross of the
// category waste factor. Gross is always >= net for non-negative inputs.
type TakeoffResult struct {
	ElementType   string        `json:"element_type"`
	Unit          string        `json:"unit"`
	NetQuantity   float64       `json:"net_quantity"`
	WasteFactor   float64       `json:"waste_factor"`
	GrossQuantity float64       `json:"gross_quantity"`
	Count         int           `json:"count,omitempty"`
	NetVolumeM3   float64       `json:"net_volume_m3,omitempty"`
	GrossVolumeM3 float64       `json:"gross_volume_m3,omitempty"`
	Details       []Measurement `json:"details,omitempty"`
	Assumed       bool          `json:"assumed"`
	Confidence    float64       `json:"confidence"`
}

// TakeoffSet groups the per-element takeoff results of one run.
type TakeoffSet struct {
	Walls   TakeoffResult `json:"walls"`
	Columns TakeoffResult `json:"columns"`
	Beams   TakeoffResult `json:"beams"`
	Slabs   TakeoffResult `json:"slabs"`
	Doors   TakeoffResult `json:"doors"`
	Windows TakeoffResult `json:"windows"`
	Roof    TakeoffResult `json:"roof"`
}

// Results returns the set in a stable order for persistence and reporting.
func (s TakeoffSet) Results() []TakeoffResult {
	return []TakeoffResult{s.Walls, s.Columns, s.Beams, s.Slabs, s.Doors, s.Windows, s.Roof}
}

// RunTakeoff converts a completed detection feed into per-element quantities
// with waste factors applied. Element categories with no detections yield
// zero-quantity results rather than errors; costing treats those as zero-cost
// lines.
func RunTakeoff(std Standards, params ProjectParams, detections []DetectedElement) (TakeoffSet, error) {
	for _, d := range detections {
		if d.Confidence < 0 || d.Confidence > 1 {
			return TakeoffSet{}, fmt.Errorf("detection %q: confidence %.2f outside [0, 1]", d.Location, d.Confidence)
		}
	}

	groups := groupDetections(detections)

	return TakeoffSet{
		Walls:   takeoffWalls(std, params, groups[ElementWall]),
		Columns: takeoffColumns(std, params, groups[ElementColumn]),
		Beams:   takeoffBeams(std, params, groups[ElementBeam]),
		Slabs:   takeoffSlabs(std, params, groups[ElementSlab]),
		Doors:   takeoffOpenings(groups[ElementDoor], "door"),
		Windows: takeoffOpenings(groups[ElementWindow], "window"),
		Roof:    takeoffRoof(std, params),
	}, nil
}

// takeoffWalls sums detected wall lengths against the project wall height.
func takeoffWalls(std Standards, params ProjectParams, walls []DetectedElement) TakeoffResult {
	var netArea float64
	details := make([]Measurement, 0, len(walls))

	height := params.WallHeightM

	for _, w := range walls {
		length := w.WidthM()
		area := length * height.Value
		netArea += area

		details = append(details, Measurement{
			Location:   w.Location,
			LengthM:    length,
			HeightM:    height.Value,
			AreaSqm:    area,
			Confidence: w.Confidence,
		})
	}

	return TakeoffResult{
		ElementType:   "wall",
		Unit:          "sqm",
		NetQuantity:   netArea,
		WasteFactor:   std.Waste.Blockwork,
		GrossQuantity: netArea * std.Waste.Blockwork,
		Details:       details,
		Assumed:       height.Assumed && len(walls) > 0,
		Confidence:    minConfidence(details),
	}
}

// takeoffColumns counts columns and derives concrete volume from the assumed
// cross-section and floor height.
func takeoffColumns(std Standards, params ProjectParams, columns []DetectedElement) TakeoffResult {
	sizeM := params.ColumnSizeMM.Value / 1000
	heightM := params.FloorHeightMM.Value / 1000
	volumePer := sizeM * sizeM * heightM

	var netVolume float64
	details := make([]Measurement, 0, len(columns))
	for _, c := range columns {
		netVolume += volumePer
		details = append(details, Measurement{
			Location:   c.Location,
			HeightM:    heightM,
			VolumeM3:   volumePer,
			Confidence: c.Confidence,
		})
	}

	return TakeoffResult{
		ElementType:   "column",
		Unit:          "No.",
		NetQuantity:   float64(len(columns)),
		WasteFactor:   std.Waste.Concrete,
		GrossQuantity: float64(len(columns)),
		Count:         len(columns),
		NetVolumeM3:   netVolume,
		GrossVolumeM3: netVolume * std.Waste.Concrete,
		Details:       details,
		Assumed:       (params.ColumnSizeMM.Assumed || params.FloorHeightMM.Assumed) && len(columns) > 0,
		Confidence:    minConfidence(details),
	}
}

// takeoffBeams sums detected beam lengths and derives volume from the
// assumed cross-section.
func takeoffBeams(std Standards, params ProjectParams, beams []DetectedElement) TakeoffResult {
	widthM := params.BeamWidthMM.Value / 1000
	depthM := params.BeamDepthMM.Value / 1000

	var netLength, netVolume float64
	details := make([]Measurement, 0, len(beams))
	for _, b := range beams {
		length := b.WidthM()
		volume := length * widthM * depthM
		netLength += length
		netVolume += volume
		details = append(details, Measurement{
			Location:   b.Location,
			LengthM:    length,
			VolumeM3:   volume,
			Confidence: b.Confidence,
		})
	}

	return TakeoffResult{
		ElementType:   "beam",
		Unit:          "m",
		NetQuantity:   netLength,
		WasteFactor:   std.Waste.Concrete,
		GrossQuantity: netLength * std.Waste.Concrete,
		NetVolumeM3:   netVolume,
		GrossVolumeM3: netVolume * std.Waste.Concrete,
		Details:       details,
		Assumed:       (params.BeamWidthMM.Assumed || params.BeamDepthMM.Assumed) && len(beams) > 0,
		Confidence:    minConfidence(details),
	}
}

// takeoffSlabs prefers the authoritative project floor area over
// detection-derived areas; detections are a fallback only.
func takeoffSlabs(std Standards, params ProjectParams, slabs []DetectedElement) TakeoffResult {
	var netArea float64
	var details []Measurement
	fromDetections := false

	if gfa := params.GrossFloorAreaSqm(); gfa > 0 {
		netArea = gfa
	} else {
		fromDetections = true
		for _, s := range slabs {
			area := s.WidthM() * s.HeightM()
			netArea += area
			details = append(details, Measurement{
				Location:   s.Location,
				AreaSqm:    area,
				Confidence: s.Confidence,
			})
		}
	}

	thickness := params.SlabThicknessM
	netVolume := netArea * thickness.Value

	return TakeoffResult{
		ElementType:   "slab",
		Unit:          "sqm",
		NetQuantity:   netArea,
		WasteFactor:   std.Waste.Concrete,
		GrossQuantity: netArea * std.Waste.Concrete,
		NetVolumeM3:   netVolume,
		GrossVolumeM3: netVolume * std.Waste.Concrete,
		Details:       details,
		Assumed:       netArea > 0 && (thickness.Assumed || fromDetections),
		Confidence:    minConfidence(details),
	}
}

// takeoffOpenings counts doors or windows. Type inference beyond the default
// bucket is the detector's concern; counts are what the BoQ recipes need.
func takeoffOpenings(openings []DetectedElement, elementType string) TakeoffResult {
	details := make([]Measurement, 0, len(openings))
	for _, o := range openings {
		details = append(details, Measurement{Location: o.Location, Confidence: o.Confidence})
	}

	return TakeoffResult{
		ElementType:   elementType,
		Unit:          "No.",
		NetQuantity:   float64(len(openings)),
		WasteFactor:   1.0,
		GrossQuantity: float64(len(openings)),
		Count:         len(openings),
		Details:       details,
		Confidence:    minConfidence(details),
	}
}

// takeoffRoof derives roof area from floor area plus the overhang allowance.
// Without an authoritative floor area there is nothing to measure.
func takeoffRoof(std Standards, params ProjectParams) TakeoffResult {
	result := TakeoffResult{
		ElementType: "roof",
		Unit:        "sqm",
		WasteFactor: std.Waste.Roofing,
		Confidence:  1.0,
	}

	if params.FloorAreaSqm > 0 {
		netArea := params.FloorAreaSqm * std.Defaults.RoofOverhangFactor
		result.NetQuantity = netArea
		result.GrossQuantity = netArea * std.Waste.Roofing
	}

	return result
}

// minConfidence is the weakest detection confidence in a set, 1.0 for an
// empty set (nothing detected means nothing uncertain to review).
func minConfidence(details []Measurement) float64 {
	min := 1.0
	for _, d := range details {
		if d.Confidence < min {
			min = d.Confidence
		}
	}
	return min
}
