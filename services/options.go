package services

import "sort"

// SoilTypeOptions is the soil vocabulary offered for new projects. Soil type
// is free text on the project; these are the common choices.
var SoilTypeOptions = []string{
	"ordinary",
	"red coffee soil",
	"black cotton soil",
	"murram",
	"rocky",
}

// Counties returns the counties with a calibrated location factor, sorted.
// Counties outside this list cost at the 1.0 baseline and are flagged.
func (s Standards) Counties() []string {
	counties := make([]string, 0, len(s.LocationFactors))
	for county := range s.LocationFactors {
		counties = append(counties, county)
	}
	sort.Strings(counties)
	return counties
}
