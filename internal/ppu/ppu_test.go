package ppu

import (
	"testing"

	"nesgo/internal/clock"
)

func TestPPUAddrSetsV(t *testing.T) {
	p := New()
	p.WriteRegister(0x2006, 0x21) // high byte
	p.WriteRegister(0x2006, 0x08) // low byte
	if p.v != 0x2108 {
		t.Fatalf("v = $%04X, want $2108", p.v)
	}
	if p.w {
		t.Fatalf("write toggle should be false after second PPUADDR write")
	}
}

func TestPPUScrollSetsFineXAndT(t *testing.T) {
	p := New()
	p.WriteRegister(0x2005, 0x7D) // x: coarse 15, fine 5
	p.WriteRegister(0x2005, 0x5E) // y: coarse 11, fine 6
	if p.x != 5 {
		t.Fatalf("fine-X = %d, want 5", p.x)
	}
	if coarseX := p.t & 0x1F; coarseX != 15 {
		t.Fatalf("coarse-X in t = %d, want 15", coarseX)
	}
	if coarseY := (p.t >> 5) & 0x1F; coarseY != 11 {
		t.Fatalf("coarse-Y in t = %d, want 11", coarseY)
	}
	if fineY := (p.t >> 12) & 0x7; fineY != 6 {
		t.Fatalf("fine-Y in t = %d, want 6", fineY)
	}
}

func TestStatusReadClearsVBlankAndToggle(t *testing.T) {
	p := New()
	p.status |= 0x80
	p.w = true
	status := p.ReadRegister(0x2002)
	if status&0x80 == 0 {
		t.Fatalf("status read should report vblank before clearing it")
	}
	if p.status&0x80 != 0 {
		t.Fatalf("vblank flag should be cleared after status read")
	}
	if p.w {
		t.Fatalf("write toggle should be cleared after status read")
	}
}

func TestPaletteWriteMirrorsSpriteBackdrops(t *testing.T) {
	p := New()
	p.WriteRegister(0x2006, 0x3F)
	p.WriteRegister(0x2006, 0x10)
	p.WriteRegister(0x2007, 0x0F)
	if p.palette[0x00] != 0x0F {
		t.Fatalf("write to $3F10 should alias $3F00, got palette[0]=0x%02X", p.palette[0x00])
	}
}

func TestVBlankSetsAtScanline241Dot1AndRaisesNMI(t *testing.T) {
	p := New()
	nmiCount := 0
	p.SetNMICallback(func() { nmiCount++ })
	p.ctrl |= 0x80 // NMI-on-VBlank

	target := clock.Dot(241*dotsPerScanline + 1 + 1)
	p.StepTo(target)

	if p.status&0x80 == 0 {
		t.Fatalf("vblank flag should be set by (241,1)")
	}
	if nmiCount != 1 {
		t.Fatalf("NMI callback count = %d, want 1", nmiCount)
	}
}

func TestVBlankOverTenFrames(t *testing.T) {
	p := New()
	nmiCount := 0
	p.SetNMICallback(func() { nmiCount++ })
	p.ctrl |= 0x80

	framesDots := clock.Dot(dotsPerScanline) * clock.Dot(scanlinesPerFrame)
	p.StepTo(framesDots * 10)

	if nmiCount != 10 {
		t.Fatalf("NMI count over 10 frames = %d, want 10", nmiCount)
	}
}

func TestOddFrameSkipsOneDot(t *testing.T) {
	p := New()
	p.mask = 0x08 // enable background so the skip applies

	framesDots := clock.Dot(dotsPerScanline) * clock.Dot(scanlinesPerFrame)
	// Frame 0 (even) runs the full count; frame 1 (odd) should need one
	// fewer dot to reach the same (scanline, dot) position.
	p.StepTo(framesDots)
	if p.frame != 1 {
		t.Fatalf("frame = %d, want 1 after one full even frame", p.frame)
	}
	p.StepTo(framesDots*2 - 1)
	if p.frame != 2 {
		t.Fatalf("frame = %d, want 2: the odd frame should finish one dot early", p.frame)
	}
}

func TestSpriteZeroHitBeforeScanline33(t *testing.T) {
	p := New()
	p.mask = 0x1E // background + sprites, including the leftmost 8px

	// Background tile 1, non-zero pattern so the background-index
	// buffer is opaque at x=0. By scanline 32 the fetch pipeline's
	// coarse-Y has advanced to row 4 (32/8), so the tile lives at
	// nametable offset 128, not 0.
	p.nametable[128] = 1
	p.pattern[1*16+0] = 0xFF // pattern low byte: all bits set
	p.palette[1] = 0x01

	// Sprite 0 at (0, 31): visible starting scanline 32.
	p.oam[0] = 31 // Y
	p.oam[1] = 1  // tile 1: the same opaque row-0 pattern as the background
	p.oam[2] = 0  // attributes: priority in front, no flip
	p.oam[3] = 0  // X

	target := clock.Dot(33 * dotsPerScanline)
	p.StepTo(target)

	if p.status&0x40 == 0 {
		t.Fatalf("sprite-zero hit flag should be set by the start of scanline 33")
	}
}

func TestOAMDMAWriteIsVisibleThroughPPU(t *testing.T) {
	p := New()
	p.WriteOAM(0x10, 0x55)
	if p.oam[0x10] != 0x55 {
		t.Fatalf("WriteOAM did not write through to OAM")
	}
}
