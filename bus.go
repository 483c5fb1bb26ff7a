package enc28j60

import "time"

// Bus is the opaque SPI transport capability the core invokes. A single Tx
// call asserts chip-select, clocks out len(w) bytes while simultaneously
// clocking in len(r) bytes, then deasserts chip-select, matching
// periph.io/x/conn/v3/conn.Conn.Tx, which every SPI transaction in this
// driver is built around. w and r are always the same length.
type Bus interface {
	Tx(w, r []byte) error
}

// OutputPin is the GPIO capability for the active-low reset line.
type OutputPin interface {
	// Out drives the pin high when high is true, low otherwise.
	Out(high bool) error
}

// InputPin is the GPIO capability for the active-low interrupt line. The
// core never reads it (spec: interrupt-driven reception is a non-goal) but
// it is part of the Device's capability set so a caller can reach it to use
// as a wake source.
type InputPin interface {
	Read() bool
}

// Delayer is the microsecond/nanosecond delay capability the init and reset
// paths consume to enforce post-reset quarantine periods.
type Delayer interface {
	Sleep(d time.Duration)
}

// RealDelayer implements Delayer with the standard library's monotonic
// clock. It is the default used when no Delayer is supplied to NewDevice.
type RealDelayer struct{}

// Sleep blocks the calling goroutine for d, via time.Sleep.
func (RealDelayer) Sleep(d time.Duration) { time.Sleep(d) }
