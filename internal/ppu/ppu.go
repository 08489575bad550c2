// Package ppu implements the dot-accurate NES Picture Processing Unit
// (2C02): background tile fetch, sprite evaluation and sprite-zero
// hit, VBlank/NMI timing, and the odd-frame dot skip.
package ppu

import (
	"nesgo/internal/cartridge"
	"nesgo/internal/clock"
)

const (
	dotsPerScanline   = 341
	scanlinesPerFrame = 262
	visibleScanlines  = 240
	postRenderLine    = 240
	vblankStartLine   = 241
	preRenderLine     = 261
)

// PPU is the 2C02. Its rendering state advances one dot at a time via
// StepTo; the CPU-visible register file is reached through
// ReadRegister/WriteRegister.
type PPU struct {
	ctrl    uint8
	mask    uint8
	status  uint8
	oamAddr uint8

	v uint16
	t uint16
	x uint8
	w bool

	readBuffer uint8

	oam          [256]uint8
	secondaryOAM [32]uint8
	spriteIndex  [8]uint8
	spriteCount  uint8
	sprite0InSec bool

	nametable [2048]uint8
	palette   [32]uint8
	pattern   [8192]uint8
	mirror    cartridge.Mirroring

	scanline int
	dot      int
	dots     clock.Dot
	frame    uint64
	oddFrame bool

	frameFront [256 * 240]uint8
	frameBack  [256 * 240]uint8
	bgIndex    [256]uint8

	bgNTByte   uint8
	bgATByte   uint8
	bgPTLo     uint8
	bgPTHi     uint8
	bgShiftLo  uint16
	bgShiftHi  uint16
	bgAttrLo   uint16
	bgAttrHi   uint16

	nmiCallback   func()
	frameCallback func()

	frameLimit uint64
	stopped    bool
}

// New constructs a PPU in its power-on state.
func New() *PPU {
	p := &PPU{}
	p.PowerOn()
	return p
}

// PowerOn resets all state to the values present after a cold boot.
func (p *PPU) PowerOn() {
	p.ctrl, p.mask, p.status = 0, 0, 0xA0
	p.oamAddr = 0
	p.v, p.t, p.x, p.w = 0, 0, 0, false
	p.readBuffer = 0
	p.scanline, p.dot, p.dots, p.frame, p.oddFrame = 0, 0, 0, 0, false
	p.spriteCount = 0
	p.sprite0InSec = false
	for i := range p.oam {
		p.oam[i] = 0
	}
}

// Reset performs a soft reset: PPUCTRL/PPUMASK clear and the write
// toggle resets, but OAM, nametable, palette, and pattern memory are
// left untouched.
func (p *PPU) Reset() {
	p.ctrl, p.mask = 0, 0
	p.w = false
	p.oddFrame = false
}

// SetNMICallback installs the function invoked when the PPU asserts
// NMI at VBlank start.
func (p *PPU) SetNMICallback(cb func()) { p.nmiCallback = cb }

// SetFrameCallback installs the function invoked when a frame
// completes (the 261->0 scanline transition).
func (p *PPU) SetFrameCallback(cb func()) { p.frameCallback = cb }

// SetFrameLimit makes the PPU report Stopped once its frame count
// reaches n; used by the scheduler's automatic-stop facility. StepTo
// itself keeps advancing. 0 means unlimited.
func (p *PPU) SetFrameLimit(n uint64) { p.frameLimit = n }

// Stopped reports whether the frame limit has been reached.
func (p *PPU) Stopped() bool { return p.stopped }

// Dots returns the PPU's cumulative dot count.
func (p *PPU) Dots() clock.Dot { return p.dots }

// FrontBuffer returns the most recently completed frame as NES
// palette indices (0-63), one byte per pixel, row-major.
func (p *PPU) FrontBuffer() *[256 * 240]uint8 { return &p.frameFront }

// SetMirroring installs the cartridge's nametable mirroring mode.
func (p *PPU) SetMirroring(m cartridge.Mirroring) { p.mirror = m }

// ProjectCHR copies a mapper-supplied CHR window into pattern memory.
func (p *PPU) ProjectCHR(base uint16, data []uint8) {
	copy(p.pattern[base:], data)
}

// WriteOAM writes one OAM byte directly, bypassing OAMADDR. OAM-DMA
// does not use it; the CPU's DMA writes go through OAMDATA ($2004).
func (p *PPU) WriteOAM(address uint8, value uint8) {
	p.oam[address] = value
}

func (p *PPU) renderingEnabled() bool {
	return p.mask&0x18 != 0
}

func (p *PPU) backgroundEnabled() bool {
	return p.mask&0x08 != 0
}

func (p *PPU) spritesEnabled() bool {
	return p.mask&0x10 != 0
}

// ReadRegister services a CPU read of $2000-$2007.
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch address & 0x7 {
	case 2:
		result := p.status & 0xE0
		p.status &^= 0x80
		p.w = false
		return result
	case 4:
		return p.oam[p.oamAddr]
	case 7:
		return p.readPPUData()
	default:
		return 0
	}
}

// WriteRegister services a CPU write to $2000-$2007.
func (p *PPU) WriteRegister(address uint16, value uint8) {
	switch address & 0x7 {
	case 0:
		p.ctrl = value
		p.t = (p.t & 0xF3FF) | (uint16(value&0x03) << 10)
	case 1:
		p.mask = value
	case 3:
		p.oamAddr = value
	case 4:
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 5:
		p.writePPUScroll(value)
	case 6:
		p.writePPUAddr(value)
	case 7:
		p.writePPUData(value)
	}
}

func (p *PPU) writePPUScroll(value uint8) {
	if !p.w {
		p.t = (p.t & 0xFFE0) | uint16(value>>3)
		p.x = value & 0x07
	} else {
		p.t = (p.t & 0x0C1F) | (uint16(value&0x07) << 12) | (uint16(value>>3) << 5)
	}
	p.w = !p.w
}

func (p *PPU) writePPUAddr(value uint8) {
	if !p.w {
		p.t = (p.t & 0x00FF) | (uint16(value&0x3F) << 8)
	} else {
		p.t = (p.t & 0xFF00) | uint16(value)
		p.v = p.t
	}
	p.w = !p.w
}

func (p *PPU) readPPUData() uint8 {
	addr := p.v & 0x3FFF
	var value uint8
	if addr >= 0x3F00 {
		value = p.readVRAM(addr)
	} else {
		value = p.readBuffer
		p.readBuffer = p.readVRAM(addr)
	}
	p.incrementV()
	return value
}

func (p *PPU) writePPUData(value uint8) {
	p.writeVRAM(p.v&0x3FFF, value)
	p.incrementV()
}

func (p *PPU) incrementV() {
	if p.ctrl&0x04 != 0 {
		p.v += 32
	} else {
		p.v++
	}
}

func (p *PPU) readVRAM(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return p.pattern[addr]
	case addr < 0x3F00:
		return p.nametable[p.nametableIndex(addr)]
	default:
		return p.palette[paletteIndex(addr)]
	}
}

func (p *PPU) writeVRAM(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		p.pattern[addr] = value
	case addr < 0x3F00:
		p.nametable[p.nametableIndex(addr)] = value
	default:
		p.palette[paletteIndex(addr)] = value
	}
}

func (p *PPU) nametableIndex(addr uint16) int {
	addr &= 0x0FFF
	table := (addr >> 10) & 0x3
	offset := addr & 0x3FF
	var page uint16
	switch p.mirror {
	case cartridge.MirrorVertical:
		page = table & 1
	case cartridge.MirrorSingleScreen0:
		page = 0
	case cartridge.MirrorSingleScreen1:
		page = 1
	default: // horizontal and four-screen fall back to horizontal layout
		page = (table >> 1) & 1
	}
	return int(page)*0x400 + int(offset)
}

func paletteIndex(addr uint16) int {
	idx := int(addr & 0x1F)
	switch idx {
	case 0x10, 0x14, 0x18, 0x1C:
		idx -= 0x10
	}
	return idx
}

// Scroll helper methods, following the v/t loopy-register convention.

func (p *PPU) incrementCoarseX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	y := (p.v & 0x03E0) >> 5
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	p.v = (p.v &^ 0x03E0) | (y << 5)
}

func (p *PPU) copyX() {
	p.v = (p.v & 0xFBE0) | (p.t & 0x041F)
}

// StepTo advances the PPU one dot at a time until its cumulative dot
// count reaches target.
func (p *PPU) StepTo(target clock.Dot) {
	for p.dots < target {
		p.stepDot()
	}
}

func (p *PPU) stepDot() {
	p.handleTiming()

	rendering := p.scanline <= visibleScanlines-1 || p.scanline == preRenderLine
	if rendering {
		p.backgroundPipeline()
	}
	if p.scanline < visibleScanlines {
		p.spritePipeline()
	}

	if p.scanline < visibleScanlines && p.dot >= 1 && p.dot <= 256 {
		p.renderPixel(p.dot - 1)
	}

	p.advanceDot()
}

func (p *PPU) handleTiming() {
	if p.scanline == vblankStartLine && p.dot == 1 {
		p.status |= 0x80
		if p.ctrl&0x80 != 0 && p.nmiCallback != nil {
			p.nmiCallback()
		}
	}
	if p.scanline == preRenderLine-1 && p.dot == dotsPerScanline-13 {
		// Clears 12 dots early to dodge a race with CPU PPUSTATUS reads.
		p.status &^= 0x80
	}
	if p.scanline == preRenderLine && p.dot == 0 {
		p.status &^= 0x80
		if p.renderingEnabled() {
			p.v = p.t
		}
	}
	if p.scanline == preRenderLine && p.dot == 1 {
		p.status &^= 0x60
	}
}

func (p *PPU) backgroundPipeline() {
	inFetchWindow := (p.dot >= 1 && p.dot <= 256) || (p.dot >= 321 && p.dot <= 336)
	if inFetchWindow {
		switch p.dot % 8 {
		case 1:
			p.bgNTByte = p.readVRAM(0x2000 | (p.v & 0x0FFF))
		case 3:
			atAddr := uint16(0x23C0) | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07)
			p.bgATByte = p.readVRAM(atAddr)
		case 5:
			base := uint16(0)
			if p.ctrl&0x10 != 0 {
				base = 0x1000
			}
			fineY := (p.v >> 12) & 0x7
			p.bgPTLo = p.readVRAM(base + uint16(p.bgNTByte)*16 + fineY)
		case 7:
			base := uint16(0)
			if p.ctrl&0x10 != 0 {
				base = 0x1000
			}
			fineY := (p.v >> 12) & 0x7
			p.bgPTHi = p.readVRAM(base + uint16(p.bgNTByte)*16 + fineY + 8)
		case 0:
			p.loadShiftRegisters()
			if p.renderingEnabled() {
				p.incrementCoarseX()
			}
		}
	}

	if p.dot == 256 && p.renderingEnabled() {
		p.incrementY()
	}
	if p.dot == 257 && p.renderingEnabled() {
		p.copyX()
	}

	if (p.dot >= 2 && p.dot <= 257) || (p.dot >= 322 && p.dot <= 337) {
		p.bgShiftLo <<= 1
		p.bgShiftHi <<= 1
		p.bgAttrLo <<= 1
		p.bgAttrHi <<= 1
	}
}

func (p *PPU) loadShiftRegisters() {
	p.bgShiftLo = (p.bgShiftLo & 0xFF00) | uint16(p.bgPTLo)
	p.bgShiftHi = (p.bgShiftHi & 0xFF00) | uint16(p.bgPTHi)

	coarseX := p.v & 0x1F
	coarseY := (p.v >> 5) & 0x1F
	shift := ((coarseY & 0x02) << 1) | (coarseX & 0x02)
	bits := (p.bgATByte >> shift) & 0x03

	var lo, hi uint16
	if bits&0x01 != 0 {
		lo = 0xFF
	}
	if bits&0x02 != 0 {
		hi = 0xFF
	}
	p.bgAttrLo = (p.bgAttrLo & 0xFF00) | lo
	p.bgAttrHi = (p.bgAttrHi & 0xFF00) | hi
}

func (p *PPU) spritePipeline() {
	if p.dot == 0 {
		for i := range p.secondaryOAM {
			p.secondaryOAM[i] = 0xFF
		}
		p.spriteCount = 0
		p.sprite0InSec = false
		p.status &^= 0x20
	}
	if p.dot == 65 {
		p.evaluateSprites()
	}
	if p.dot == 257 {
		p.fetchAndPlotSprites()
	}
}

func (p *PPU) spriteHeight() int {
	if p.ctrl&0x20 != 0 {
		return 16
	}
	return 8
}

func (p *PPU) evaluateSprites() {
	height := p.spriteHeight()
	for i := 0; i < 64; i++ {
		y := int(p.oam[i*4])
		if y+1 > p.scanline || p.scanline >= y+1+height {
			continue
		}
		if p.spriteCount < 8 {
			copy(p.secondaryOAM[p.spriteCount*4:], p.oam[i*4:i*4+4])
			p.spriteIndex[p.spriteCount] = uint8(i)
			if i == 0 {
				p.sprite0InSec = true
			}
			p.spriteCount++
		} else {
			p.status |= 0x20
			break
		}
	}
}

func (p *PPU) fetchAndPlotSprites() {
	height := p.spriteHeight()
	var drawn [256]bool

	for s := uint8(0); s < p.spriteCount; s++ {
		y := p.secondaryOAM[s*4]
		tile := p.secondaryOAM[s*4+1]
		attr := p.secondaryOAM[s*4+2]
		x := p.secondaryOAM[s*4+3]

		flipV := attr&0x80 != 0
		flipH := attr&0x40 != 0
		behind := attr&0x20 != 0
		paletteSet := attr & 0x03

		row := p.scanline - int(y) - 1
		if flipV {
			row = height - 1 - row
		}

		var base uint16
		var patternTile uint8
		if height == 16 {
			base = uint16(tile&0x01) * 0x1000
			patternTile = tile &^ 0x01
			if row >= 8 {
				patternTile++
				row -= 8
			}
		} else {
			patternTile = tile
			if p.ctrl&0x08 != 0 {
				base = 0x1000
			}
		}

		lo := p.readVRAM(base + uint16(patternTile)*16 + uint16(row))
		hi := p.readVRAM(base + uint16(patternTile)*16 + uint16(row) + 8)

		for i := 0; i < 8; i++ {
			col := i
			if !flipH {
				col = 7 - i
			}
			pixel := ((hi>>col)&1)<<1 | ((lo >> col) & 1)
			px := int(x) + i
			if px > 255 || pixel == 0 {
				continue
			}
			if drawn[px] {
				continue
			}

			bgOpaque := p.bgIndex[px] != 0
			if p.spriteIndex[s] == 0 && p.sprite0InSec && bgOpaque {
				p.status |= 0x40
			}
			if behind && bgOpaque {
				continue
			}

			color := p.palette[0x10+int(paletteSet)*4+int(pixel)]
			p.frameBack[p.scanline*256+px] = color
			drawn[px] = true
		}
	}
}

func (p *PPU) renderPixel(x int) {
	var bgPixel uint8
	var bgSet uint8
	if p.backgroundEnabled() && (x >= 8 || p.mask&0x02 != 0) {
		shift := 15 - p.x
		bgPixel = uint8((p.bgShiftHi>>shift)&1)<<1 | uint8((p.bgShiftLo>>shift)&1)
		bgSet = uint8((p.bgAttrHi>>shift)&1)<<1 | uint8((p.bgAttrLo>>shift)&1)
	}
	p.bgIndex[x] = bgPixel

	var color uint8
	if bgPixel == 0 {
		color = p.palette[0]
	} else {
		color = p.palette[int(bgSet)*4+int(bgPixel)]
	}
	p.frameBack[p.scanline*256+x] = color
}

func (p *PPU) advanceDot() {
	p.dot++
	skip := p.oddFrame && p.backgroundEnabled() && p.scanline == preRenderLine && p.dot == dotsPerScanline-1
	if skip {
		p.dot++
	}
	p.dots++
	if p.dot >= dotsPerScanline {
		p.dot = 0
		p.scanline++
		if p.scanline >= scanlinesPerFrame {
			p.scanline = 0
			p.frame++
			p.oddFrame = !p.oddFrame
			p.frameFront = p.frameBack
			if p.frameCallback != nil {
				p.frameCallback()
			}
			if p.frameLimit != 0 && p.frame >= p.frameLimit {
				p.stopped = true
			}
		}
	}
}
