package enc28j60_test

import (
	"fmt"
	"sync"
	"time"

	"example.com/enc28j60"
)

// fakeSilicon is a software model of just enough ENC28J60 register state to
// drive the SPI wire protocol realistically: banked control registers, the
// 8KiB buffer-memory port with its auto-increment read/write pointers, and
// the handful of bits the driver polls (CLKRDY, MISTAT.BUSY, ECON1.TXRTS).
// It is not a cycle-accurate model of the silicon, only of what the SPI
// opcodes observe.
type fakeSilicon struct {
	mu sync.Mutex

	// control holds every banked register's byte value, keyed by the bank
	// that was selected when it was last written.
	control map[controlKey]byte

	econ1 byte // global, not in the keyed map

	buf  [8192]byte
	rdpt uint16
	wrpt uint16

	// txCalls records every Tx invocation for assertions.
	txCalls [][]byte

	// afterTx, when set, runs after each control-register transaction has
	// been recorded and its simulated effect applied (buffer-memory and
	// System Reset transactions do not run it). Tests use it to flip bits
	// that a real chip would flip asynchronously (e.g. clearing TXRTS).
	afterTx func(*fakeSilicon)
}

type controlKey struct {
	bank enc28j60.Bank
	addr byte
}

// globalBank is the key bank used for EIE/EIR/ESTAT/ECON2 (ECON1 itself is
// tracked separately in econ1): since these registers mirror into every
// bank, the simulator must store one value independent of whatever bank is
// currently selected.
const globalBank enc28j60.Bank = 0xff

func isGlobalAddr(addr byte) bool {
	switch addr {
	case enc28j60.EIE.Addr(), enc28j60.EIR.Addr(), enc28j60.ESTAT.Addr(), enc28j60.ECON2.Addr():
		return true
	default:
		return false
	}
}

func newFakeSilicon() *fakeSilicon {
	return &fakeSilicon{control: make(map[controlKey]byte)}
}

// Tx implements enc28j60.Bus by decoding the opcode byte and simulating the
// corresponding register/buffer effect. This only has to handle the
// patterns the driver itself emits (RCR/WCR/BFS/BFC on a single byte, RBM/
// WBM on the buffer port, and the System Reset Command), not the full
// datasheet.
func (f *fakeSilicon) Tx(w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.txCalls = append(f.txCalls, append([]byte(nil), w...))

	if len(w) == 1 && w[0] == 0xff {
		f.reset()
		return nil
	}

	op := w[0] & 0b1110_0000
	addr := w[0] & 0b0001_1111

	const bufferMemoryAddr = 0x1a
	switch op {
	case 0b001 << 5: // RBM
		if addr == bufferMemoryAddr {
			for i := 1; i < len(r); i++ {
				r[i] = f.buf[f.rdpt]
				f.rdpt = (f.rdpt + 1) % uint16(len(f.buf))
			}
			return nil
		}
	case 0b011 << 5: // WBM
		if addr == bufferMemoryAddr {
			for i := 1; i < len(w); i++ {
				f.buf[f.wrpt] = w[i]
				f.wrpt = (f.wrpt + 1) % uint16(len(f.buf))
			}
			return nil
		}
	}

	bank := enc28j60.Bank(f.econ1 & 0b11)

	switch op {
	case 0b000 << 5: // RCR
		r[len(r)-1] = f.readRaw(bank, addr)
	case 0b010 << 5: // WCR
		f.writeRaw(bank, addr, w[1])
		f.syncBufferPointers(bank, addr)
	case 0b100 << 5: // BFS
		cur := f.readRaw(bank, addr)
		f.writeRaw(bank, addr, cur|w[1])
	case 0b101 << 5: // BFC
		cur := f.readRaw(bank, addr)
		f.writeRaw(bank, addr, cur&^w[1])
	default:
		return fmt.Errorf("fakeSilicon: unhandled opcode 0x%02x", w[0])
	}

	if f.afterTx != nil {
		f.afterTx(f)
	}
	return nil
}

func (f *fakeSilicon) readRaw(bank enc28j60.Bank, addr byte) byte {
	if addr == enc28j60.ECON1.Addr() {
		return f.econ1
	}
	if isGlobalAddr(addr) {
		bank = globalBank
	}
	return f.control[controlKey{bank: bank, addr: addr}]
}

func (f *fakeSilicon) writeRaw(bank enc28j60.Bank, addr, v byte) {
	if addr == enc28j60.ECON1.Addr() {
		f.econ1 = v
		return
	}
	if isGlobalAddr(addr) {
		bank = globalBank
	}
	f.control[controlKey{bank: bank, addr: addr}] = v
}

// syncBufferPointers mirrors a write to ERDPT/EWRPT into the simulator's
// own read/write cursors, matching real silicon where those control
// registers are exactly the buffer-memory port's pointers.
func (f *fakeSilicon) syncBufferPointers(bank enc28j60.Bank, addr byte) {
	if bank != enc28j60.Bank0 {
		return
	}
	switch addr {
	case enc28j60.ERDPTL.Addr(), enc28j60.ERDPTH.Addr():
		lo := f.control[controlKey{bank: enc28j60.Bank0, addr: enc28j60.ERDPTL.Addr()}]
		hi := f.control[controlKey{bank: enc28j60.Bank0, addr: enc28j60.ERDPTH.Addr()}]
		f.rdpt = uint16(lo) | uint16(hi)<<8
	case enc28j60.EWRPTL.Addr(), enc28j60.EWRPTH.Addr():
		lo := f.control[controlKey{bank: enc28j60.Bank0, addr: enc28j60.EWRPTL.Addr()}]
		hi := f.control[controlKey{bank: enc28j60.Bank0, addr: enc28j60.EWRPTH.Addr()}]
		f.wrpt = uint16(lo) | uint16(hi)<<8
	}
}

// reset models the System Reset Command. EREVID holds the silicon revision,
// which a reset does not change, so its value survives.
func (f *fakeSilicon) reset() {
	revKey := controlKey{bank: enc28j60.Bank3, addr: enc28j60.EREVID.Addr()}
	revision := f.control[revKey]
	f.control = map[controlKey]byte{revKey: revision}
	f.econ1 = 0
	f.rdpt, f.wrpt = 0, 0
}

// fakePin implements both enc28j60.OutputPin and enc28j60.InputPin,
// recording every level it was driven to.
type fakePin struct {
	mu      sync.Mutex
	levels  []bool
	current bool
}

func (p *fakePin) Out(high bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.levels = append(p.levels, high)
	p.current = high
	return nil
}

func (p *fakePin) Read() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// fakeDelayer implements enc28j60.Delayer without actually sleeping,
// recording every requested duration so tests can assert on reset timing.
type fakeDelayer struct {
	mu    sync.Mutex
	slept []time.Duration
}

func (d *fakeDelayer) Sleep(dur time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.slept = append(d.slept, dur)
}
