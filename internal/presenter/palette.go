// Package presenter converts the PPU's indexed framebuffer into
// pixels a host window or headless dumper can consume, and feeds
// keyboard input back into the controller ports.
package presenter

// nesPalette is the NES 2C02 NTSC palette: 64 entries, each 0xAARRGGBB.
var nesPalette = [64]uint32{
	0xFF666666, 0xFF002A88, 0xFF1412A7, 0xFF3B00A4, 0xFF5C007E, 0xFF6E0040, 0xFF6C0600, 0xFF561D00,
	0xFF333500, 0xFF0B4800, 0xFF005200, 0xFF004F08, 0xFF00404D, 0xFF000000, 0xFF000000, 0xFF000000,
	0xFFADADAD, 0xFF155FD9, 0xFF4240FF, 0xFF7527FE, 0xFFA01ACC, 0xFFB71E7B, 0xFFB53120, 0xFF994E00,
	0xFF6B6D00, 0xFF388700, 0xFF0C9300, 0xFF008F32, 0xFF007C8D, 0xFF000000, 0xFF000000, 0xFF000000,
	0xFFFFFEFF, 0xFF64B0FF, 0xFF9290FF, 0xFFC676FF, 0xFFF36AFF, 0xFFFE6ECC, 0xFFFE8170, 0xFFEA9E22,
	0xFFBCBE00, 0xFF88D800, 0xFF5CE430, 0xFF45E082, 0xFF48CDDE, 0xFF4F4F4F, 0xFF000000, 0xFF000000,
	0xFFFFFEFF, 0xFFC0DFFF, 0xFFD3D2FF, 0xFFE8C8FF, 0xFFFBC2FF, 0xFFFEC4EA, 0xFFFECCC5, 0xFFF7D8A5,
	0xFFE4E594, 0xFFCFF29B, 0xFFBEFBB3, 0xFFB8F8D8, 0xFFB8F8F8, 0xFF000000, 0xFF000000, 0xFF000000,
}

// ColorToRGB maps a 6-bit NES palette index to a 0x00RRGGBB pixel.
// Indices outside 0-63 map to black; the PPU's palette RAM keeps the
// full written byte, so such values can reach here.
func ColorToRGB(index uint8) uint32 {
	if index >= 64 {
		return 0
	}
	return nesPalette[index] & 0x00FFFFFF
}

// IndexedToRGB converts a full PPU framebuffer of palette indices into
// 0x00RRGGBB pixels.
func IndexedToRGB(indexed *[256 * 240]uint8) [256 * 240]uint32 {
	var out [256 * 240]uint32
	for i, idx := range indexed {
		out[i] = ColorToRGB(idx)
	}
	return out
}
