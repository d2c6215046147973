package pingrab

import "testing"

func TestAvatarGeometry(t *testing.T) {
	t.Parallel()

	spec := Avatars.Geometry()
	tests := []struct {
		w, h int
		want bool
	}{
		{500, 500, true},    // exact square
		{900, 1000, true},   // ratio 0.9
		{1100, 1000, true},  // ratio 1.1
		{1200, 1000, true},  // ratio 1.2, boundary inclusive
		{800, 1000, true},   // ratio 0.8, boundary inclusive
		{2000, 1000, false}, // ratio 2.0
		{1000, 2000, false}, // ratio 0.5
	}
	for _, tt := range tests {
		if got := spec.Accept(tt.w, tt.h); got != tt.want {
			t.Errorf("avatar Accept(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestDesktopWallpaperGeometry(t *testing.T) {
	t.Parallel()

	spec := WallpapersPC.Geometry()
	tests := []struct {
		w, h int
		want bool
	}{
		{1920, 1080, true},  // 16:9
		{1280, 720, true},   // minimum size, 16:9
		{2560, 1080, true},  // ultrawide
		{1000, 700, false},  // below minimum width
		{1280, 1024, false}, // ratio 1.25, not meaningfully landscape
		{1080, 1920, false}, // portrait
	}
	for _, tt := range tests {
		if got := spec.Accept(tt.w, tt.h); got != tt.want {
			t.Errorf("desktop Accept(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestPhoneWallpaperGeometry(t *testing.T) {
	t.Parallel()

	spec := WallpapersPhone.Geometry()
	tests := []struct {
		w, h int
		want bool
	}{
		{1080, 1920, true},  // 9:16
		{720, 1280, true},   // minimum size
		{1080, 1080, false}, // square, not meaningfully portrait
		{1920, 1080, false}, // landscape
		{600, 1400, false},  // below minimum width
	}
	for _, tt := range tests {
		if got := spec.Accept(tt.w, tt.h); got != tt.want {
			t.Errorf("phone Accept(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestUnknownSizePolicy(t *testing.T) {
	t.Parallel()

	spec := Avatars.Geometry()

	// Lenient default: unknown size passes.
	lenient := &Config{}
	if !lenient.meetsGeometry(0, 0, spec) {
		t.Error("lenient policy rejected an unknown-size candidate")
	}

	strict := &Config{StrictGeometry: true}
	if strict.meetsGeometry(0, 0, spec) {
		t.Error("strict policy accepted an unknown-size candidate")
	}
	// Strict only gates unknowns, known-good sizes still pass.
	if !strict.meetsGeometry(512, 512, spec) {
		t.Error("strict policy rejected a known-good candidate")
	}
}

func TestCategoryValid(t *testing.T) {
	t.Parallel()

	for _, c := range []Category{Avatars, WallpapersPC, WallpapersPhone} {
		if !c.Valid() {
			t.Errorf("%s reported invalid", c)
		}
	}
	if Category("posters").Valid() {
		t.Error("unknown category reported valid")
	}
}
