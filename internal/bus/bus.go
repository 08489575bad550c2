// Package bus implements the NES CPU-visible address space: internal
// RAM mirroring, PPU/APU/input register dispatch, and the cartridge
// mapper's PRG window and register range.
package bus

import (
	"nesgo/internal/apu"
	"nesgo/internal/cartridge"
	"nesgo/internal/input"
	"nesgo/internal/ppu"
)

// dmaRequester is the narrow view of the CPU the bus needs to start
// an OAM-DMA stall; it avoids importing the cpu package.
type dmaRequester interface {
	RequestOAMDMA(page uint8)
}

// Bus routes 16-bit CPU addresses to RAM, the PPU, the APU stub, the
// input ports, and the cartridge mapper's projected PRG window.
type Bus struct {
	ram    [0x800]uint8
	prgRAM [0x2000]uint8
	prg    [0x8000]uint8

	ppu    *ppu.PPU
	apu    *apu.APU
	input  *input.InputState
	mapper cartridge.Mapper
	cpu    dmaRequester

	openBus uint8
}

// New constructs a Bus wired to the given PPU, APU, and input ports.
// The mapper and CPU are installed afterward via InstallCartridge and
// SetCPU.
func New(p *ppu.PPU, a *apu.APU, in *input.InputState) *Bus {
	return &Bus{ppu: p, apu: a, input: in}
}

// SetCPU installs the CPU's OAM-DMA request sink.
func (b *Bus) SetCPU(c dmaRequester) { b.cpu = c }

// InstallCartridge wires a newly loaded mapper into the bus and
// projects its initial PRG configuration.
func (b *Bus) InstallCartridge(m cartridge.Mapper) {
	b.mapper = m
	m.OnLoadRAM(b)
}

// ProjectPRG satisfies cartridge.BusProjector: it copies a mapper's
// PRG window into the bus's flat $8000-$FFFF array.
func (b *Bus) ProjectPRG(base uint16, data []uint8) {
	offset := base - 0x8000
	copy(b.prg[offset:], data)
}

// SetMirroring satisfies cartridge.BusProjector by forwarding to the
// PPU, which owns nametable RAM.
func (b *Bus) SetMirroring(m cartridge.Mirroring) {
	b.ppu.SetMirroring(m)
}

// CodeAddr returns the mapper-reported entry point, used by the
// scheduler's direct-load mode.
func (b *Bus) CodeAddr() uint16 {
	if b.mapper == nil {
		return 0
	}
	return b.mapper.Info().CodeAddr
}

// Read services a CPU memory read.
func (b *Bus) Read(address uint16) uint8 {
	var value uint8
	switch {
	case address < 0x2000:
		value = b.ram[address&0x07FF]
	case address < 0x4000:
		value = b.ppu.ReadRegister(0x2000 + (address & 0x7))
	case address == 0x4015:
		value = b.apu.ReadStatus()
	case address == 0x4016 || address == 0x4017:
		value = b.input.Read(address)
	case address < 0x4020:
		value = b.openBus
	case address >= 0x6000 && address < 0x8000:
		value = b.prgRAM[address-0x6000]
	case address < 0x8000:
		value = b.openBus
	default:
		value = b.prg[address-0x8000]
	}
	b.openBus = value
	return value
}

// Write services a CPU memory write.
func (b *Bus) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		b.ram[address&0x07FF] = value
	case address < 0x4000:
		b.ppu.WriteRegister(0x2000+(address&0x7), value)
	case address == 0x4014:
		if b.cpu != nil {
			b.cpu.RequestOAMDMA(value)
		}
	case address == 0x4016:
		b.input.Write(address, value)
	case address >= 0x4000 && address <= 0x4013, address == 0x4015, address == 0x4017:
		b.apu.WriteRegister(address, value)
	case address < 0x4020:
		// $4018-$401F test-mode registers: accepted silently.
	case address >= 0x6000 && address < 0x8000:
		b.prgRAM[address-0x6000] = value
	case address < 0x8000:
		// $4020-$5FFF expansion area: unmapped by NROM/MMC1/MMC3.
	default:
		if b.mapper != nil {
			info := b.mapper.Info()
			if info.RegStart <= info.RegEnd && address >= info.RegStart && address <= info.RegEnd {
				b.mapper.WriteReg(address, value)
			}
		}
	}
}
