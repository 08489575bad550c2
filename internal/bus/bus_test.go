package bus

import (
	"testing"

	"nesgo/internal/apu"
	"nesgo/internal/cartridge"
	"nesgo/internal/input"
	"nesgo/internal/ppu"
)

type fakeMapper struct {
	info      cartridge.Info
	writes    []uint16
	lastValue uint8
}

func (m *fakeMapper) OnLoadRAM(b cartridge.BusProjector) {
	b.ProjectPRG(0x8000, make([]uint8, 0x8000))
}
func (m *fakeMapper) OnLoadPPU(p cartridge.PPUProjector) {}
func (m *fakeMapper) Info() cartridge.Info               { return m.info }
func (m *fakeMapper) WriteReg(addr uint16, val uint8) {
	m.writes = append(m.writes, addr)
	m.lastValue = val
}

type fakeCPU struct {
	dmaPage uint8
	dmaHit  bool
}

func (c *fakeCPU) RequestOAMDMA(page uint8) {
	c.dmaHit = true
	c.dmaPage = page
}

func newTestBus() (*Bus, *ppu.PPU) {
	p := ppu.New()
	a := apu.New()
	in := input.NewInputState()
	return New(p, a, in), p
}

func TestRAMMirroring(t *testing.T) {
	b, _ := newTestBus()
	b.Write(0x0000, 0x42)
	for _, mirror := range []uint16{0x0000, 0x0800, 0x1000, 0x1800} {
		if got := b.Read(mirror); got != 0x42 {
			t.Fatalf("RAM mirror at $%04X = 0x%02X, want 0x42", mirror, got)
		}
	}
}

func TestPPURegisterMirrorEvery8(t *testing.T) {
	b, _ := newTestBus()
	b.Write(0x2006, 0x21)
	b.Write(0x2006, 0x08)
	b.Write(0x2007, 0x55)
	// $2007 is mirrored at $200F, $2017, etc. Reading $2008 (mirror of
	// $2000/PPUCTRL) should not disturb the address we just set.
	_ = b.Read(0x2008)
	b.Write(0x2006, 0x21)
	b.Write(0x2006, 0x08)
	// A PPUDATA read returns the previous buffer content; this read
	// through the $200F mirror loads $2108 into the buffer.
	_ = b.Read(0x200F)
	if got := b.Read(0x2007); got != 0x55 {
		t.Fatalf("PPUDATA read = 0x%02X, want the buffered byte from the prior write", got)
	}
}

func TestOAMDMADelegatesToCPU(t *testing.T) {
	b, _ := newTestBus()
	c := &fakeCPU{}
	b.SetCPU(c)
	b.Write(0x4014, 0x02)
	if !c.dmaHit {
		t.Fatalf("writing $4014 should request OAM DMA from the CPU")
	}
	if c.dmaPage != 0x02 {
		t.Fatalf("DMA source page = 0x%02X, want 0x02", c.dmaPage)
	}
}

func TestControllerStrobeRoutedToInput(t *testing.T) {
	b, _ := newTestBus()
	b.input.Controller1.SetButton(1, true) // ButtonA
	b.Write(0x4016, 0x01)
	b.Write(0x4016, 0x00)
	if got := b.Read(0x4016); got&1 != 1 {
		t.Fatalf("first controller read after strobe should report button A pressed")
	}
}

func TestMapperRegisterWindowRouting(t *testing.T) {
	b, _ := newTestBus()
	m := &fakeMapper{info: cartridge.Info{CodeAddr: 0x8000, RegStart: 0x8000, RegEnd: 0xFFFF}}
	b.InstallCartridge(m)
	b.Write(0x9000, 0x07)
	if len(m.writes) != 1 || m.writes[0] != 0x9000 || m.lastValue != 0x07 {
		t.Fatalf("mapper did not receive the register write: %+v", m.writes)
	}
}

func TestNROMStyleMapperHasNoRegisterWindow(t *testing.T) {
	b, _ := newTestBus()
	m := &fakeMapper{info: cartridge.Info{CodeAddr: 0x8000, RegStart: 1, RegEnd: 0}}
	b.InstallCartridge(m)
	b.Write(0x9000, 0x07)
	if len(m.writes) != 0 {
		t.Fatalf("mapper with RegEnd < RegStart should never receive WriteReg calls")
	}
}

func TestOpenBusRetainsLastReadValue(t *testing.T) {
	b, _ := newTestBus()
	b.prgRAM[0] = 0x99
	_ = b.Read(0x6000)
	if got := b.Read(0x4018); got != 0x99 {
		t.Fatalf("open-bus read = 0x%02X, want the last driven value 0x99", got)
	}
}

func TestPRGRAMReadWrite(t *testing.T) {
	b, _ := newTestBus()
	b.Write(0x6123, 0xAB)
	if got := b.Read(0x6123); got != 0xAB {
		t.Fatalf("PRG-RAM read = 0x%02X, want 0xAB", got)
	}
}

func TestCodeAddrReflectsMapperInfo(t *testing.T) {
	b, _ := newTestBus()
	if got := b.CodeAddr(); got != 0 {
		t.Fatalf("CodeAddr with no cartridge installed = 0x%04X, want 0", got)
	}
	m := &fakeMapper{info: cartridge.Info{CodeAddr: 0xC000, RegStart: 1, RegEnd: 0}}
	b.InstallCartridge(m)
	if got := b.CodeAddr(); got != 0xC000 {
		t.Fatalf("CodeAddr = 0x%04X, want 0xC000", got)
	}
}
