// Package periphspi adapts periph.io/x/conn/v3's SPI and GPIO primitives to
// the enc28j60 package's minimal Bus/OutputPin/InputPin capability
// interfaces. This is the concrete implementation of the "opaque SPI
// transport" and "GPIO capabilities" the core driver treats as external
// collaborators.
package periphspi

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Bus adapts a periph.io spi.Conn to enc28j60.Bus.
type Bus struct {
	conn spi.Conn
}

// Tx performs a full-duplex SPI transaction, delegating directly to the
// underlying spi.Conn.
func (b *Bus) Tx(w, r []byte) error {
	return b.conn.Tx(w, r)
}

// OutputPin adapts a periph.io gpio.PinOut to enc28j60.OutputPin.
type OutputPin struct {
	pin gpio.PinOut
}

// Out drives the pin high when high is true, low otherwise.
func (p *OutputPin) Out(high bool) error {
	return p.pin.Out(gpio.Level(high))
}

// InputPin adapts a periph.io gpio.PinIn to enc28j60.InputPin.
type InputPin struct {
	pin gpio.PinIn
}

// Read returns the pin's current level as a bool (true = high).
func (p *InputPin) Read() bool {
	return bool(p.pin.Read())
}

// Config names the real hardware resources a Board binds to.
type Config struct {
	// SPIBus is the periph.io SPI port name, e.g. "/dev/spidev0.0" or "SPI0.0".
	SPIBus string
	// SpeedHz is the SPI clock rate. The ENC28J60 tolerates up to 20MHz;
	// callers should pick a rate their wiring supports reliably.
	SpeedHz int64
	// ResetPin and IntPin are periph.io GPIO pin names, e.g. "GPIO17".
	ResetPin string
	IntPin   string
}

// Board bundles the opened SPI bus and GPIO pins needed to construct an
// enc28j60.Device, plus the periph.io handles needed to Close them.
type Board struct {
	Bus   *Bus
	Reset *OutputPin
	Int   *InputPin

	spiPort spi.PortCloser
}

// Open initializes the periph.io host drivers, opens the named SPI bus at
// cfg.SpeedHz in SPI mode 0 (the ENC28J60's required mode), and binds the
// named reset/interrupt GPIO pins. The reset pin is configured as an
// output and driven high (inactive); the interrupt pin is configured as an
// input with a pull-up, since the line is active-low.
func Open(cfg Config) (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periphspi: host init: %w", err)
	}

	port, err := spireg.Open(cfg.SPIBus)
	if err != nil {
		return nil, fmt.Errorf("periphspi: open SPI bus %q: %w", cfg.SPIBus, err)
	}
	conn, err := port.Connect(physic.Frequency(cfg.SpeedHz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("periphspi: connect SPI bus %q: %w", cfg.SPIBus, err)
	}

	resetPin := gpioreg.ByName(cfg.ResetPin)
	if resetPin == nil {
		port.Close()
		return nil, fmt.Errorf("periphspi: no such GPIO pin %q", cfg.ResetPin)
	}
	if err := resetPin.Out(gpio.High); err != nil {
		port.Close()
		return nil, fmt.Errorf("periphspi: configure reset pin %q: %w", cfg.ResetPin, err)
	}

	intPin := gpioreg.ByName(cfg.IntPin)
	if intPin == nil {
		port.Close()
		return nil, fmt.Errorf("periphspi: no such GPIO pin %q", cfg.IntPin)
	}
	if err := intPin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		port.Close()
		return nil, fmt.Errorf("periphspi: configure interrupt pin %q: %w", cfg.IntPin, err)
	}

	return &Board{
		Bus:     &Bus{conn: conn},
		Reset:   &OutputPin{pin: resetPin},
		Int:     &InputPin{pin: intPin},
		spiPort: port,
	}, nil
}

// Close releases the underlying SPI port.
func (b *Board) Close() error {
	return b.spiPort.Close()
}
