package system

import (
	"testing"
)

// buildROM assembles a minimal iNES image: a 16-byte header followed
// by prg and chr bytes. mapperID is encoded into flags 6/7.
func buildROM(mapperID uint8, prg []byte, chr []byte) []byte {
	prgBanks := len(prg) / 16384
	chrBanks := len(chr) / 8192
	header := make([]byte, 16)
	copy(header[0:4], []byte{'N', 'E', 'S', 0x1A})
	header[4] = byte(prgBanks)
	header[5] = byte(chrBanks)
	header[6] = (mapperID & 0x0F) << 4
	header[7] = mapperID & 0xF0
	data := append(header, prg...)
	data = append(data, chr...)
	return data
}

func nromROM(prgSize int, fill func([]byte)) []byte {
	prg := make([]byte, prgSize)
	if fill != nil {
		fill(prg)
	}
	return buildROM(0, prg, nil)
}

// TestDirectModeEntersAtMapperCodeAddr exercises the nestest-style
// direct-load path: PC starts at the mapper's reported entry point
// rather than the value at the reset vector.
func TestDirectModeEntersAtMapperCodeAddr(t *testing.T) {
	rom := nromROM(16384, func(prg []byte) {
		prg[0] = 0xEA // NOP at $8000
	})
	s := New()
	if err := s.LoadROM(rom, DirectMode); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	if s.CPU.PC != 0x8000 {
		t.Fatalf("PC = $%04X, want $8000 in direct mode", s.CPU.PC)
	}
}

// TestResetModeLoadsPCFromVector confirms power-on loads PC from
// $FFFC when the ROM supplies its own reset vector.
func TestResetModeLoadsPCFromVector(t *testing.T) {
	rom := nromROM(16384, func(prg []byte) {
		prg[0x3FFC] = 0x34 // $FFFC low byte (mirrored at $C000+$3FFC)
		prg[0x3FFD] = 0x81 // $FFFD high byte
	})
	s := New()
	if err := s.LoadROM(rom, ResetMode); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	if s.CPU.PC != 0x8134 {
		t.Fatalf("PC = $%04X, want $8134 from the reset vector", s.CPU.PC)
	}
}

// TestNOPTimingAdvancesCPUAndPPUInLockstep runs a short run of NOPs
// and checks the PPU dot count tracks 3 dots per CPU cycle exactly.
func TestNOPTimingAdvancesCPUAndPPUInLockstep(t *testing.T) {
	rom := nromROM(16384, func(prg []byte) {
		for i := 0; i < 10; i++ {
			prg[i] = 0xEA // NOP, 2 cycles each
		}
	})
	s := New()
	if err := s.LoadROM(rom, DirectMode); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	startCycles := s.CPU.Cycles()
	startDots := s.PPU.Dots()
	for i := 0; i < 10; i++ {
		if err := s.Step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}
	wantCycles := uint64(20) // 10 NOPs * 2 cycles
	if gotCycles := uint64(s.CPU.Cycles() - startCycles); gotCycles != wantCycles {
		t.Fatalf("CPU cycles = %d, want %d", gotCycles, wantCycles)
	}
	wantDots := wantCycles * 3
	if gotDots := uint64(s.PPU.Dots() - startDots); gotDots != wantDots {
		t.Fatalf("PPU dots = %d, want %d", gotDots, wantDots)
	}
}

// TestOAMDMAStallsCPUAndCopies256Bytes exercises a write to $4014: the
// CPU should stall for 513 or 514 cycles and every OAM byte should
// reach the PPU.
func TestOAMDMAStallsCPUAndCopies256Bytes(t *testing.T) {
	rom := nromROM(16384, func(prg []byte) {
		prg[0] = 0xA9 // LDA #$02
		prg[1] = 0x02
		prg[2] = 0x85 // STA $00 (zero page source page marker, unused)
		prg[3] = 0x00
		prg[4] = 0xEA // NOP, marks the instruction boundary after DMA
	})
	s := New()
	if err := s.LoadROM(rom, DirectMode); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	for i := 0; i < 256; i++ {
		s.Bus.Write(0x0200+uint16(i), uint8(i))
	}
	if err := s.Step(); err != nil { // LDA
		t.Fatal(err)
	}
	if err := s.Step(); err != nil { // STA
		t.Fatal(err)
	}
	before := s.CPU.Cycles()
	s.Bus.Write(0x4014, 0x02) // trigger DMA from page $02
	if err := s.Step(); err != nil {
		t.Fatal(err)
	}
	delta := s.CPU.Cycles() - before
	if delta != 513 && delta != 514 {
		t.Fatalf("OAM-DMA stall = %d cycles, want 513 or 514", delta)
	}
	for i := 0; i < 256; i++ {
		s.Bus.Write(0x2003, uint8(i)) // OAMADDR
		if got := s.Bus.Read(0x2004); got != uint8(i) {
			t.Fatalf("OAM[%d] = 0x%02X, want 0x%02X", i, got, uint8(i))
		}
	}
}

// TestVBlankNMIFiresOncePerFrame confirms the NMI wiring from PPU to
// CPU: over 10 frames, exactly 10 NMIs should be serviced when
// PPUCTRL's NMI-enable bit is set.
func TestVBlankNMIFiresOncePerFrame(t *testing.T) {
	rom := nromROM(16384, func(prg []byte) {
		prg[0] = 0xEA // NOP; the reset vector's target runs a tight NOP loop
		prg[1] = 0x4C // JMP $8000
		prg[2] = 0x00
		prg[3] = 0x80
		prg[0x3FFA] = 0x10 // NMI vector -> $8010
		prg[0x3FFB] = 0x80
		prg[0x10] = 0xEA // RTI at the NMI handler's first instruction... use NOP then RTI
		prg[0x11] = 0x40
	})
	s := New()
	if err := s.LoadROM(rom, DirectMode); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	s.Bus.Write(0x2000, 0x80) // enable NMI-on-VBlank

	nmiSeen := 0
	for frame := 0; frame < 10; frame++ {
		startFrame := s.PPU.Dots()
		for s.PPU.Dots()-startFrame < 341*262 {
			if s.CPU.PC == 0x8010 {
				nmiSeen++
			}
			if err := s.Step(); err != nil {
				t.Fatalf("Step: %v", err)
			}
		}
	}
	if nmiSeen != 10 {
		t.Fatalf("NMI handler ran %d times over 10 frames, want 10", nmiSeen)
	}
}

// TestMMC1BankSwitchReadBack writes the five-bit shift sequence to
// select PRG bank 1, then confirms a read at $8000 reflects the
// switched bank's first byte.
func TestMMC1BankSwitchReadBack(t *testing.T) {
	prg := make([]byte, 16384*4) // 4 switchable 16KB banks
	prg[0] = 0x11                // bank 0 marker
	prg[16384] = 0x22             // bank 1 marker
	rom := buildROM(1, prg, nil)

	s := New()
	if err := s.LoadROM(rom, ResetMode); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}

	writeMMC1 := func(addr uint16, value uint8) {
		for bit := 0; bit < 5; bit++ {
			s.Bus.Write(addr, (value>>bit)&1)
		}
	}
	// PRG mode 3 (fix last bank at $C000, switch $8000): control reg.
	writeMMC1(0x8000, 0x0C)
	// select PRG bank 1 at $8000.
	writeMMC1(0xE000, 0x01)

	if got := s.Bus.Read(0x8000); got != 0x22 {
		t.Fatalf("PRG bank switch: $8000 = 0x%02X, want 0x22", got)
	}
}
