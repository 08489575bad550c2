package presenter

import "testing"

func TestColorToRGBMasksAlpha(t *testing.T) {
	rgb := ColorToRGB(0x20) // entry 0x20 is 0xFFFFFEFF
	if rgb != 0x00FFFEFF {
		t.Fatalf("ColorToRGB(0x20) = 0x%06X, want 0x00FFFEFF", rgb)
	}
}

func TestColorToRGBOutOfRangeIsBlack(t *testing.T) {
	if got := ColorToRGB(64); got != 0 {
		t.Fatalf("ColorToRGB(64) = 0x%06X, want 0", got)
	}
}

func TestIndexedToRGBConvertsEveryPixel(t *testing.T) {
	var indexed [256 * 240]uint8
	indexed[0] = 0x20
	indexed[1] = 0x0D // a documented-black entry
	rgb := IndexedToRGB(&indexed)
	if rgb[0] != 0x00FFFEFF {
		t.Fatalf("pixel 0 = 0x%06X, want 0x00FFFEFF", rgb[0])
	}
	if rgb[1] != 0 {
		t.Fatalf("pixel 1 = 0x%06X, want 0", rgb[1])
	}
}
