// Package system wires the CPU, PPU, APU, memory bus, and controllers
// into a single master-clock scheduler: one CPU cycle always advances
// the PPU by exactly three dots and the APU by one cycle.
package system

import (
	"nesgo/internal/apu"
	"nesgo/internal/bus"
	"nesgo/internal/cartridge"
	"nesgo/internal/clock"
	"nesgo/internal/cpu"
	"nesgo/internal/input"
	"nesgo/internal/ppu"
)

// LoadMode selects how the program counter is seeded after a ROM
// loads. Direct mode is used by test harnesses like nestest that
// start execution at a fixed address instead of the reset vector.
type LoadMode int

const (
	// ResetMode loads PC from $FFFC, as real hardware does on power-up.
	ResetMode LoadMode = iota
	// DirectMode sets PC to the mapper's reported entry point,
	// bypassing the reset vector.
	DirectMode
)

// System is the master-clock scheduler binding every NES component
// together behind one Step call.
type System struct {
	CPU   *cpu.CPU
	PPU   *ppu.PPU
	APU   *apu.APU
	Bus   *bus.Bus
	Input *input.InputState

	rom     *cartridge.ROM
	stopped bool
}

// New constructs a System with no cartridge loaded. Call LoadROM
// before stepping.
func New() *System {
	p := ppu.New()
	a := apu.New()
	in := input.NewInputState()
	b := bus.New(p, a, in)

	s := &System{PPU: p, APU: a, Bus: b, Input: in}
	s.CPU = cpu.New(b)
	b.SetCPU(s.CPU)
	p.SetNMICallback(s.CPU.RequestNMI)
	return s
}

// LoadROM parses an iNES image, installs its mapper, and seeds the
// program counter according to mode.
func (s *System) LoadROM(data []byte, mode LoadMode) error {
	rom, err := cartridge.Load(data)
	if err != nil {
		return err
	}
	s.rom = rom
	s.Bus.InstallCartridge(rom.Mapper)
	rom.Mapper.OnLoadPPU(s.PPU)

	switch mode {
	case DirectMode:
		s.CPU.PowerOn()
		s.CPU.SetPC(s.Bus.CodeAddr())
	default:
		s.CPU.PowerOn()
	}
	// The CPU's power-on sequence spends cycles; bring the PPU to three
	// dots per elapsed CPU cycle so the two start in step.
	s.PPU.StepTo(s.CPU.Cycles().Dots())
	return nil
}

// PowerOn resets every component to its documented power-up state.
// LoadROM powers on only the CPU; this also resets the PPU, APU, and
// controllers, so a caller can re-power-on mid-run.
func (s *System) PowerOn() {
	s.CPU.PowerOn()
	s.PPU.PowerOn()
	s.APU.Reset()
	s.Input.Reset()
}

// Reset performs a soft reset, matching the NES reset button: PC
// reloads from $FFFC, the PPU's write toggle and rendering flags
// clear, but OAM/VRAM/PRG-RAM survive.
func (s *System) Reset() {
	s.CPU.Reset()
	s.PPU.Reset()
}

// Step advances the system by exactly one CPU instruction boundary
// (one opcode, one interrupt service, or one OAM-DMA stall chunk),
// then drives the PPU and APU forward by the equivalent number of
// dots and cycles.
func (s *System) Step() error {
	before := s.CPU.Cycles()
	if err := s.CPU.StepTo(before + 1); err != nil {
		return err
	}
	delta := s.CPU.Cycles() - before

	s.PPU.StepTo(s.CPU.Cycles().Dots())
	for i := clock.Cycle(0); i < delta; i++ {
		s.APU.Step()
	}
	return nil
}

// RunROM steps the system until the PPU's frame limit stops it, Stop
// is called, or the CPU raises an illegal-opcode error.
func (s *System) RunROM() error {
	for !s.stopped && !s.PPU.Stopped() {
		if err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Stop halts RunROM before its next iteration. Intended for a host
// shell reacting to a window-close or signal, not for normal frame
// budgeting (use SetFrameLimit for that).
func (s *System) Stop() {
	s.stopped = true
}

// SetFrameLimit stops RunROM automatically once the PPU completes n
// frames from power-on.
func (s *System) SetFrameLimit(n uint64) {
	s.PPU.SetFrameLimit(n)
}

// SetStrictOpcodes controls whether an undecoded opcode raises
// IllegalOpcodeError or is treated as a two-cycle NOP.
func (s *System) SetStrictOpcodes(strict bool) {
	s.CPU.StrictOpcodes = strict
}

// FrameBuffer returns the PPU's front framebuffer of NES palette
// indices, ready for a presenter to convert to RGB.
func (s *System) FrameBuffer() *[256 * 240]uint8 {
	return s.PPU.FrontBuffer()
}
