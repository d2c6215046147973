package pingrab

// Category is a curated-image category with its own geometry requirements.
type Category string

const (
	Avatars         Category = "avatars"
	WallpapersPC    Category = "wallpapers_pc"
	WallpapersPhone Category = "wallpapers_phone"
)

// Valid reports whether the category is one of the known curated categories.
func (c Category) Valid() bool {
	switch c {
	case Avatars, WallpapersPC, WallpapersPhone:
		return true
	}
	return false
}

// Orientation is the shape rule a category enforces.
type Orientation int

const (
	Square    Orientation = iota // aspect ratio close to 1:1
	Landscape                    // meaningfully wider than tall
	Portrait                     // meaningfully taller than wide
)

// GeometrySpec describes the geometric constraints of a category.
// Tolerance must be in (0, 1]; minimum dimensions must be >= 0.
type GeometrySpec struct {
	MinWidth    int
	MinHeight   int
	TargetRatio float64 // width/height of the ideal shape
	Tolerance   float64
	Orientation Orientation
}

// geometrySpecs carries the per-category constraints. Tolerances are chosen so
// the landscape gate sits at ratio ≈1.3 and the portrait gate at ≈0.77, the
// observed "clearly 16:9-ish" thresholds of the source material.
var geometrySpecs = map[Category]GeometrySpec{
	Avatars: {
		TargetRatio: 1.0,
		Tolerance:   0.2,
		Orientation: Square,
	},
	WallpapersPC: {
		MinWidth:    1280,
		MinHeight:   720,
		TargetRatio: 16.0 / 9.0,
		Tolerance:   0.27,
		Orientation: Landscape,
	},
	WallpapersPhone: {
		MinWidth:    720,
		MinHeight:   1280,
		TargetRatio: 16.0 / 9.0, // height/width for portrait
		Tolerance:   0.37,
		Orientation: Portrait,
	},
}

// Geometry returns the GeometrySpec for the category. Unknown categories get
// a zero spec that accepts nothing but unknown-size candidates.
func (c Category) Geometry() GeometrySpec {
	return geometrySpecs[c]
}

// Accept reports whether an image of the given pixel dimensions satisfies the
// spec. A width or height of 0 means the size is unknown; the lenient stance
// (accept unknown) is applied here, callers wanting the strict stance gate on
// zero before calling. Boundary ratios exactly at the tolerance edge are
// accepted.
func (s GeometrySpec) Accept(width, height int) bool {
	if width == 0 || height == 0 {
		return true
	}

	ratio := float64(width) / float64(height)

	switch s.Orientation {
	case Square:
		return ratio >= s.TargetRatio-s.Tolerance && ratio <= s.TargetRatio+s.Tolerance
	case Landscape:
		if width < s.MinWidth || height < s.MinHeight {
			return false
		}
		return ratio >= s.TargetRatio*(1-s.Tolerance)
	case Portrait:
		if width < s.MinWidth || height < s.MinHeight {
			return false
		}
		return ratio <= (1/s.TargetRatio)*(1+s.Tolerance)
	}
	return false
}

// meetsGeometry applies the configured unknown-size policy on top of
// GeometrySpec.Accept.
func (cfg *Config) meetsGeometry(width, height int, spec GeometrySpec) bool {
	if cfg.StrictGeometry && (width == 0 || height == 0) {
		return false
	}
	return spec.Accept(width, height)
}
