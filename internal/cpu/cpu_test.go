package cpu

import (
	"testing"

	"nesgo/internal/clock"
)

// mockBus implements Bus over a flat 64KB array, following the teacher's
// hand-rolled mock convention (no assertion library).
type mockBus struct {
	data       [0x10000]uint8
	oamWrites  []uint8
}

func newMockBus() *mockBus { return &mockBus{} }

func (m *mockBus) Read(address uint16) uint8 { return m.data[address] }

func (m *mockBus) Write(address uint16, value uint8) {
	m.data[address] = value
	if address == oamDataReg {
		m.oamWrites = append(m.oamWrites, value)
	}
}

func (m *mockBus) setBytes(address uint16, values ...uint8) {
	for i, v := range values {
		m.data[address+uint16(i)] = v
	}
}

func newTestCPU() (*CPU, *mockBus) {
	bus := newMockBus()
	return New(bus), bus
}

func TestPowerOnLoadsResetVector(t *testing.T) {
	c, bus := newTestCPU()
	bus.setBytes(resetVector, 0x00, 0x80)
	c.PowerOn()
	if c.PC != 0x8000 {
		t.Fatalf("PC = $%04X, want $8000", c.PC)
	}
	if c.SP != 0xFD {
		t.Fatalf("SP = $%02X, want $FD", c.SP)
	}
	if !c.I {
		t.Fatalf("I flag should be set after power-on")
	}
}

func TestPushPullRoundTrip(t *testing.T) {
	c, bus := newTestCPU()
	bus.setBytes(resetVector, 0x00, 0x80)
	c.PowerOn()
	c.push(0x42)
	if got := c.pop(); got != 0x42 {
		t.Fatalf("pop() = 0x%02X, want 0x42", got)
	}
}

func TestTaxTxaIsIdentity(t *testing.T) {
	c, bus := newTestCPU()
	bus.setBytes(resetVector, 0x00, 0x80)
	c.PowerOn()
	c.A = 0x37
	c.tax(0)
	c.A = 0
	c.txa(0)
	if c.A != 0x37 {
		t.Fatalf("A after TAX/TXA = 0x%02X, want 0x37", c.A)
	}
}

func TestJMPIndirectPageWrapBug(t *testing.T) {
	c, bus := newTestCPU()
	bus.setBytes(resetVector, 0x00, 0x80)
	c.PowerOn()
	c.PC = 0x8000
	bus.setBytes(0x8000, 0x6C, 0xFF, 0x10) // JMP ($10FF)
	bus.data[0x10FF] = 0x34
	bus.data[0x1000] = 0x12 // bug: high byte wraps to start of page, not $1100
	bus.data[0x1100] = 0x99
	if err := c.StepTo(c.cycles + 5); err != nil {
		t.Fatalf("StepTo: %v", err)
	}
	if c.PC != 0x1234 {
		t.Fatalf("PC after buggy JMP indirect = $%04X, want $1234", c.PC)
	}
}

func TestADCOverflowBoundary(t *testing.T) {
	c, bus := newTestCPU()
	bus.setBytes(resetVector, 0x00, 0x80)
	c.PowerOn()
	c.A = 0x7F
	c.C = true
	bus.data[0x10] = 0x01
	c.adc(0x10)
	if c.A != 0x81 || !c.N || !c.V || c.C || c.Z {
		t.Fatalf("ADC boundary: A=0x%02X N=%v V=%v C=%v Z=%v, want A=0x81 N=1 V=1 C=0 Z=0",
			c.A, c.N, c.V, c.C, c.Z)
	}
}

func TestBranchCycleTiming(t *testing.T) {
	c, bus := newTestCPU()
	bus.setBytes(resetVector, 0x00, 0x80)
	c.PowerOn()
	c.PC = 0x80FD
	c.Z = true
	bus.setBytes(0x80FD, 0xF0, 0x02) // BEQ +2, crosses to next page
	before := c.cycles
	if err := c.StepTo(before + clock.Cycle(1)); err != nil {
		t.Fatalf("StepTo: %v", err)
	}
	// BEQ base 2 + taken 1 + page-cross 1 = 4
	if got := c.cycles - before; got != 4 {
		t.Fatalf("branch cycles = %d, want 4", got)
	}
}

func TestOAMDMAAdvancesCyclesAndCopiesBytes(t *testing.T) {
	c, bus := newTestCPU()
	bus.setBytes(resetVector, 0x00, 0x80)
	c.PowerOn()
	for i := 0; i < 256; i++ {
		bus.data[0x0200+i] = uint8(i)
	}
	before := c.cycles
	c.RequestOAMDMA(0x02)
	bus.setBytes(c.PC, 0xEA) // NOP, unused: DMA services before fetch
	if err := c.StepTo(before + 1); err != nil {
		t.Fatalf("StepTo: %v", err)
	}
	added := c.cycles - before
	if added != 513 && added != 514 {
		t.Fatalf("OAM-DMA cycles = %d, want 513 or 514", added)
	}
	if len(bus.oamWrites) != 256 {
		t.Fatalf("OAMDATA write count = %d, want 256", len(bus.oamWrites))
	}
	for i, v := range bus.oamWrites {
		if v != uint8(i) {
			t.Fatalf("OAMDATA write %d = %d, want %d", i, v, i)
		}
	}
}

func TestStrictModeReturnsIllegalOpcode(t *testing.T) {
	c, bus := newTestCPU()
	bus.setBytes(resetVector, 0x00, 0x80)
	c.PowerOn()
	c.StrictOpcodes = true
	bus.data[c.PC] = 0x02 // KIL/JAM, not in the table
	err := c.StepTo(c.cycles + 1)
	if err == nil {
		t.Fatalf("expected IllegalOpcodeError, got nil")
	}
	if _, ok := err.(*IllegalOpcodeError); !ok {
		t.Fatalf("expected *IllegalOpcodeError, got %T", err)
	}
}

func TestNMIServicedAtInstructionBoundary(t *testing.T) {
	c, bus := newTestCPU()
	bus.setBytes(resetVector, 0x00, 0x80)
	c.PowerOn()
	bus.setBytes(nmiVector, 0x00, 0x90)
	bus.setBytes(c.PC, 0xEA) // NOP
	c.RequestNMI()
	if err := c.StepTo(c.cycles + 7); err != nil {
		t.Fatalf("StepTo: %v", err)
	}
	if c.PC != 0x9000 {
		t.Fatalf("PC after NMI = $%04X, want $9000", c.PC)
	}
}
