package services

import "fmt"

// ElementClass is the closed vocabulary of structural element classes the
// detection collaborators emit. Parsing an unknown class is an error, not a
// silent no-op.
type ElementClass int

const (
	ElementWall ElementClass = iota
	ElementColumn
	ElementBeam
	ElementSlab
	ElementFloor
	ElementDoor
	ElementWindow
)

var elementClassNames = map[ElementClass]string{
	ElementWall:   "wall",
	ElementColumn: "column",
	ElementBeam:   "beam",
	ElementSlab:   "slab",
	ElementFloor:  "floor",
	ElementDoor:   "door",
	ElementWindow: "window",
}

func (c ElementClass) String() string {
	if name, ok := elementClassNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ElementClass(%d)", int(c))
}

// ParseElementClass maps a detection class name to its variant.
func ParseElementClass(name string) (ElementClass, error) {
	for class, n := range elementClassNames {
		if n == name {
			return class, nil
		}
	}
	return 0, fmt.Errorf("unknown element class %q", name)
}

// DetectedElement is one class-labeled detection from the AI/OCR
// collaborators. Bounding box coordinates are scale-calibrated by the parser
// upstream, so deltas read directly as meters.
type DetectedElement struct {
	Class      ElementClass
	BBox       [4]float64 // x1, y1, x2, y2
	Confidence float64    // 0..1
	Location   string
}

// WidthM returns the horizontal extent of the detection in meters.
func (d DetectedElement) WidthM() float64 {
	w := d.BBox[2] - d.BBox[0]
	if w < 0 {
		return -w
	}
	return w
}

// HeightM returns the vertical extent of the detection in meters.
func (d DetectedElement) HeightM() float64 {
	h := d.BBox[3] - d.BBox[1]
	if h < 0 {
		return -h
	}
	return h
}

// groupDetections buckets a detection feed by element class. Slab and floor
// detections land in the same bucket: both describe horizontal plates.
func groupDetections(detections []DetectedElement) map[ElementClass][]DetectedElement {
	groups := make(map[ElementClass][]DetectedElement)
	for _, d := range detections {
		class := d.Class
		if class == ElementFloor {
			class = ElementSlab
		}
		groups[class] = append(groups[class], d)
	}
	return groups
}
