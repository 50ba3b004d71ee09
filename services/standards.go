// Package services implements the quantity-to-cost pipeline: reinforcement
// geometry, bar bending schedule generation, quantity takeoff, BoQ
// generation and project costing, plus report serialization.
package services

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed standards.yml
var standardsYAML []byte

// WasteFactors holds the fixed per-category waste multipliers (all > 1.0).
type WasteFactors struct {
	Concrete      float64 `yaml:"concrete"`
	Blockwork     float64 `yaml:"blockwork"`
	Reinforcement float64 `yaml:"reinforcement"`
	Formwork      float64 `yaml:"formwork"`
	Tiles         float64 `yaml:"tiles"`
	Paint         float64 `yaml:"paint"`
	Pipes         float64 `yaml:"pipes"`
	Roofing       float64 `yaml:"roofing"`
	Electrical    float64 `yaml:"electrical"`
}

// Markups holds the layered markup percentages applied by the costing engine.
type Markups struct {
	Preliminary        float64 `yaml:"preliminary"`
	ProvisionalSum     float64 `yaml:"provisional_sum"`
	LaborOverheads     float64 `yaml:"labor_overheads"`
	VAT                float64 `yaml:"vat"`
	DefaultContingency float64 `yaml:"default_contingency"`
}

// StructuralDefaults are the sizing assumptions used when a project does not
// supply its own structural metadata.
type StructuralDefaults struct {
	WallHeightM            float64 `yaml:"wall_height_m"`
	ColumnSizeMM           float64 `yaml:"column_size_mm"`
	FloorHeightMM          float64 `yaml:"floor_height_mm"`
	BeamWidthMM            float64 `yaml:"beam_width_mm"`
	BeamDepthMM            float64 `yaml:"beam_depth_mm"`
	AvgBeamLengthMM        float64 `yaml:"avg_beam_length_mm"`
	SlabThicknessM         float64 `yaml:"slab_thickness_m"`
	ExcavationDepthM       float64 `yaml:"excavation_depth_m"`
	FoundationAreaFraction float64 `yaml:"foundation_area_fraction"`
	RoofOverhangFactor     float64 `yaml:"roof_overhang_factor"`
}

// ColumnBBSDefaults fixes the column reinforcement assumptions.
type ColumnBBSDefaults struct {
	MainBarDiameterMM  int `yaml:"main_bar_diameter_mm"`
	MainBarsPerColumn  int `yaml:"main_bars_per_column"`
	LinkDiameterMM     int `yaml:"link_diameter_mm"`
	LinkSpacingMM      int `yaml:"link_spacing_mm"`
	LapLengthDiameters int `yaml:"lap_length_diameters"`
}

// BeamBBSDefaults fixes the beam reinforcement assumptions.
type BeamBBSDefaults struct {
	BottomBarDiameterMM int `yaml:"bottom_bar_diameter_mm"`
	BottomBarsPerBeam   int `yaml:"bottom_bars_per_beam"`
	TopBarDiameterMM    int `yaml:"top_bar_diameter_mm"`
	TopBarsPerBeam      int `yaml:"top_bars_per_beam"`
	StirrupDiameterMM   int `yaml:"stirrup_diameter_mm"`
	StirrupSpacingMM    int `yaml:"stirrup_spacing_mm"`
}

// SlabBBSDefaults fixes the slab mesh assumptions.
type SlabBBSDefaults struct {
	BottomBarDiameterMM int `yaml:"bottom_bar_diameter_mm"`
	TopBarDiameterMM    int `yaml:"top_bar_diameter_mm"`
	BarSpacingMM        int `yaml:"bar_spacing_mm"`
}

// FoundationBBSDefaults fixes the foundation mat assumptions.
type FoundationBBSDefaults struct {
	BarDiameterMM int `yaml:"bar_diameter_mm"`
	BarSpacingMM  int `yaml:"bar_spacing_mm"`
}

// BBSDefaults groups the per-member reinforcement defaults.
type BBSDefaults struct {
	Column     ColumnBBSDefaults     `yaml:"column"`
	Beam       BeamBBSDefaults       `yaml:"beam"`
	Slab       SlabBBSDefaults       `yaml:"slab"`
	Foundation FoundationBBSDefaults `yaml:"foundation"`
}

// Standards bundles every fixed lookup table the engines consume. It is
// loaded once from the embedded standards.yml and treated as immutable.
type Standards struct {
	DefaultCoverMM   float64                       `yaml:"default_cover_mm"`
	BendAllowancesMM map[int]float64               `yaml:"bend_allowances_mm"`
	BarWeightsKgPerM map[int]float64               `yaml:"bar_weights_kg_per_m"`
	ShapeCodes       map[string]string             `yaml:"shape_codes"`
	Waste            WasteFactors                  `yaml:"waste_factors"`
	Markups          Markups                       `yaml:"markups"`
	ReviewThreshold  float64                       `yaml:"review_confidence_threshold"`
	LocationFactors  map[string]float64            `yaml:"location_factors"`
	Defaults         StructuralDefaults            `yaml:"structural_defaults"`
	BBS              BBSDefaults                   `yaml:"bbs_defaults"`
	MaterialRecipes  map[string]map[string]float64 `yaml:"material_recipes"`
}

var (
	standardsOnce sync.Once
	standards     Standards
	standardsErr  error
)

// LoadStandards parses the embedded standards tables. The result is cached;
// subsequent calls return the same value.
func LoadStandards() (Standards, error) {
	standardsOnce.Do(func() {
		standardsErr = yaml.Unmarshal(standardsYAML, &standards)
		if standardsErr == nil {
			standardsErr = standards.validate()
		}
	})
	return standards, standardsErr
}

// MustStandards is LoadStandards for contexts where the embedded tables are
// known-good (main, tests). Panics on a malformed table.
func MustStandards() Standards {
	std, err := LoadStandards()
	if err != nil {
		panic(fmt.Sprintf("standards tables invalid: %v", err))
	}
	return std
}

func (s Standards) validate() error {
	if len(s.BendAllowancesMM) == 0 || len(s.BarWeightsKgPerM) == 0 {
		return fmt.Errorf("reinforcement tables missing")
	}
	if len(s.BendAllowancesMM) != len(s.BarWeightsKgPerM) {
		return fmt.Errorf("bend allowance and bar weight tables cover different diameter sets")
	}
	for dia := range s.BendAllowancesMM {
		if _, ok := s.BarWeightsKgPerM[dia]; !ok {
			return fmt.Errorf("diameter %dmm has a bend allowance but no bar weight", dia)
		}
	}
	if s.DefaultCoverMM <= 0 {
		return fmt.Errorf("default cover must be positive")
	}
	if s.Markups.VAT <= 0 || s.Markups.DefaultContingency <= 0 {
		return fmt.Errorf("markup percentages missing")
	}
	if s.ReviewThreshold <= 0 || s.ReviewThreshold > 1 {
		return fmt.Errorf("review confidence threshold must be in (0, 1]")
	}
	return nil
}

// SupportedDiameters returns the standard diameter set in ascending order.
func (s Standards) SupportedDiameters() []int {
	dias := make([]int, 0, len(s.BendAllowancesMM))
	for d := range s.BendAllowancesMM {
		dias = append(dias, d)
	}
	sort.Ints(dias)
	return dias
}

// BendAllowance returns the BS 8666 bend allowance in mm for a supported
// diameter. Unsupported diameters are a data error, never defaulted.
func (s Standards) BendAllowance(diameterMM int) (float64, error) {
	ba, ok := s.BendAllowancesMM[diameterMM]
	if !ok {
		return 0, fmt.Errorf("unsupported bar diameter %dmm", diameterMM)
	}
	return ba, nil
}

// BarWeight returns the nominal bar weight in kg/m for a supported diameter.
func (s Standards) BarWeight(diameterMM int) (float64, error) {
	w, ok := s.BarWeightsKgPerM[diameterMM]
	if !ok {
		return 0, fmt.Errorf("unsupported bar diameter %dmm", diameterMM)
	}
	return w, nil
}

// LocationFactor returns the county rate multiplier and whether the county is
// present in the factor table. Absent counties resolve to 1.0; the caller is
// responsible for flagging the fallback.
func (s Standards) LocationFactor(county string) (float64, bool) {
	f, ok := s.LocationFactors[county]
	if !ok {
		return 1.0, false
	}
	return f, true
}

// Recipe returns the material recipe for a unit of work, or nil when the
// work type has no breakdown.
func (s Standards) Recipe(name string) map[string]float64 {
	return s.MaterialRecipes[name]
}
