// Package clock defines the strongly-typed cycle scalars shared by the
// CPU, PPU, and scheduler so master cycles, CPU cycles, and PPU dots are
// never mixed by accident.
package clock

// Cycle counts master clock ticks. On NTSC hardware one master cycle
// equals one CPU cycle.
type Cycle uint64

// Dot counts PPU dots. Three dots elapse per master cycle.
type Dot uint64

// Dots converts a count of master/CPU cycles to the equivalent PPU dot
// count.
func (c Cycle) Dots() Dot {
	return Dot(c) * 3
}
