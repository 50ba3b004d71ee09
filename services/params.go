package services

import "fmt"

// Dim is a structural dimension tagged with its provenance: supplied by the
// project (authoritative) or filled from the standards defaults (assumed).
// Assumed values propagate into needs_review flags downstream.
type Dim struct {
	Value   float64
	Assumed bool
}

// Authoritative wraps a project-supplied dimension.
func Authoritative(v float64) Dim { return Dim{Value: v} }

// Assumed wraps a defaulted dimension.
func Assumed(v float64) Dim { return Dim{Value: v, Assumed: true} }

// dimOr returns an authoritative Dim when v is positive, otherwise the
// assumed default.
func dimOr(v, fallback float64) Dim {
	if v > 0 {
		return Authoritative(v)
	}
	return Assumed(fallback)
}

// ProjectParams carries the per-project inputs of a processing run: identity,
// location, authoritative areas and the structural dimensions with their
// provenance. Built once per run and passed through unchanged.
type ProjectParams struct {
	ProjectID string
	Name      string
	County    string
	SoilType  string

	FloorAreaSqm   float64 // per floor; 0 when unknown
	FloorCount     int
	ContingencyPct float64

	WallHeightM    Dim
	ColumnSizeMM   Dim
	FloorHeightMM  Dim
	BeamWidthMM    Dim
	BeamDepthMM    Dim
	SlabThicknessM Dim
}

// NewProjectParams fills unset structural dimensions from the standards
// defaults and validates the rest. Negative inputs are rejected here, before
// any engine runs.
func NewProjectParams(std Standards, p ProjectParams) (ProjectParams, error) {
	if p.ProjectID == "" {
		return ProjectParams{}, fmt.Errorf("project id is required")
	}
	if p.FloorAreaSqm < 0 {
		return ProjectParams{}, fmt.Errorf("floor area must not be negative, got %.2f", p.FloorAreaSqm)
	}
	if p.FloorCount < 0 {
		return ProjectParams{}, fmt.Errorf("floor count must not be negative, got %d", p.FloorCount)
	}
	if p.ContingencyPct < 0 || p.ContingencyPct > 1 {
		return ProjectParams{}, fmt.Errorf("contingency percentage %.2f outside [0, 1]", p.ContingencyPct)
	}
	if p.ContingencyPct == 0 {
		p.ContingencyPct = std.Markups.DefaultContingency
	}
	if p.FloorCount == 0 {
		p.FloorCount = 1
	}

	p.WallHeightM = dimOr(p.WallHeightM.Value, std.Defaults.WallHeightM)
	p.ColumnSizeMM = dimOr(p.ColumnSizeMM.Value, std.Defaults.ColumnSizeMM)
	p.FloorHeightMM = dimOr(p.FloorHeightMM.Value, std.Defaults.FloorHeightMM)
	p.BeamWidthMM = dimOr(p.BeamWidthMM.Value, std.Defaults.BeamWidthMM)
	p.BeamDepthMM = dimOr(p.BeamDepthMM.Value, std.Defaults.BeamDepthMM)
	p.SlabThicknessM = dimOr(p.SlabThicknessM.Value, std.Defaults.SlabThicknessM)

	return p, nil
}

// GrossFloorAreaSqm is the authoritative floor area across all floors, or 0
// when the project has no recorded floor area.
func (p ProjectParams) GrossFloorAreaSqm() float64 {
	return p.FloorAreaSqm * float64(p.FloorCount)
}
