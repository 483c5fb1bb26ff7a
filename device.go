package enc28j60

// Device owns exclusive access to one ENC28J60: an SPI transport, an
// output pin wired to the active-low reset line, an input pin wired to the
// active-low interrupt line, and the cached bank-select bits of ECON1,
// the only mutable state the driver keeps beyond what lives in the silicon
// itself.
type Device struct {
	bus   Bus
	reset OutputPin
	irq   InputPin
	delay Delayer

	// macAddress is programmed into MAADR1..MAADR6 during Init.
	macAddress [6]byte

	// currentBank caches the bank bits actually programmed into ECON1.
	// Conservatively initialized to Bank0, the device's post-reset bank.
	currentBank Bank

	bankCheck bool
	tracer    Tracer
}

// NewDevice constructs a Device around the given capabilities. It performs
// no I/O; call Init (after an optional HardwareReset) to bring the
// controller into a receive-capable state.
func NewDevice(bus Bus, reset OutputPin, irq InputPin, mac [6]byte, opts ...Option) *Device {
	d := &Device{
		bus:         bus,
		reset:       reset,
		irq:         irq,
		delay:       RealDelayer{},
		macAddress:  mac,
		currentBank: Bank0,
		tracer:      noopTracer{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// InterruptPin exposes the interrupt line capability so a caller may use it
// as a wake source. The core itself never reads it.
func (d *Device) InterruptPin() InputPin { return d.irq }

// setBank switches the device to bank b by clearing then setting ECON1's
// bank-select bits, and updates the cache. ECON1 is global, so no prior
// bank switch is needed to perform this operation itself.
func (d *Device) setBank(b Bank) error {
	const bankMask = 0b11
	if err := d.bitClear(ECON1, bankMask); err != nil {
		return err
	}
	if err := d.bitSet(ECON1, byte(b)&bankMask); err != nil {
		return err
	}
	d.currentBank = b
	d.tracer.Tracef("enc28j60: switched to bank %d", b)
	return nil
}

// ensureBank switches to reg's bank if it differs from the cached current
// bank. Global registers (no bank) never trigger a switch. When
// WithBankCheck is enabled, a cache hit is cross-checked by re-reading
// ECON1 directly.
func (d *Device) ensureBank(reg ControlRegister) error {
	bank, ok := reg.Banked()
	if !ok {
		return nil
	}
	if bank != d.currentBank {
		return d.setBank(bank)
	}
	if d.bankCheck {
		return d.checkBankCache()
	}
	return nil
}

// checkBankCache re-reads ECON1 directly (bypassing the cache, since ECON1
// is global) and compares its bank bits against the cached current bank.
func (d *Device) checkBankCache() error {
	econ1, err := d.readControlRaw(ECON1)
	if err != nil {
		return err
	}
	observed := Bank(econ1 & 0b11)
	if observed != d.currentBank {
		return &BankCacheMismatchError{Cached: d.currentBank, Observed: observed}
	}
	return nil
}

// readControlRaw issues RCR for reg without any bank switch or bank-check
// recursion; used internally where the caller already knows the bank is
// correct (e.g. ECON1, which is global).
func (d *Device) readControlRaw(reg ControlRegister) (byte, error) {
	n := 2
	if reg.ShiftsDummyByte() {
		n = 3
	}
	w := make([]byte, n)
	r := make([]byte, n)
	w[0] = reg.opcode(OpRCR)
	if err := d.bus.Tx(w, r); err != nil {
		return 0, deviceErr("read_control", err)
	}
	return r[n-1], nil
}

// ReadControl reads an ETH, MAC, or MII control register, switching banks
// first if necessary. MAC and MII reads shift out one extra dummy byte
// before the data byte; the returned value accounts for that.
func (d *Device) ReadControl(reg ControlRegister) (byte, error) {
	if err := d.ensureBank(reg); err != nil {
		return 0, err
	}
	return d.readControlRaw(reg)
}

// WriteControl writes data to an ETH, MAC, or MII control register,
// switching banks first if necessary.
func (d *Device) WriteControl(reg ControlRegister, data byte) error {
	if err := d.ensureBank(reg); err != nil {
		return err
	}
	w := []byte{reg.opcode(OpWCR), data}
	r := make([]byte, len(w))
	if err := d.bus.Tx(w, r); err != nil {
		return deviceErr("write_control", err)
	}
	return nil
}

// BitSet issues BFS, valid only on ETH registers; behavior on MAC/MII is
// undefined per the datasheet.
func (d *Device) BitSet(reg ControlRegister, mask byte) error {
	return d.bitSet(reg, mask)
}

func (d *Device) bitSet(reg ControlRegister, mask byte) error {
	if err := d.ensureBank(reg); err != nil {
		return err
	}
	w := []byte{reg.opcode(OpBFS), mask}
	r := make([]byte, len(w))
	if err := d.bus.Tx(w, r); err != nil {
		return deviceErr("bit_set", err)
	}
	return nil
}

// BitClear issues BFC, valid only on ETH registers.
func (d *Device) BitClear(reg ControlRegister, mask byte) error {
	return d.bitClear(reg, mask)
}

func (d *Device) bitClear(reg ControlRegister, mask byte) error {
	if err := d.ensureBank(reg); err != nil {
		return err
	}
	w := []byte{reg.opcode(OpBFC), mask}
	r := make([]byte, len(w))
	if err := d.bus.Tx(w, r); err != nil {
		return deviceErr("bit_clear", err)
	}
	return nil
}

// memRead issues RBM and reads len(buf) bytes from the on-chip buffer
// memory port, advancing the device's auto-increment read pointer (ERDPT).
// Chip-select is held for the entire opcode-plus-payload exchange.
func (d *Device) memRead(buf []byte) error {
	w := make([]byte, 1+len(buf))
	r := make([]byte, 1+len(buf))
	w[0] = OpRBM.withBufferAddr()
	if err := d.bus.Tx(w, r); err != nil {
		return deviceErr("mem_read", err)
	}
	copy(buf, r[1:])
	return nil
}

// memWrite issues WBM and writes data to the on-chip buffer memory port,
// advancing EWRPT.
func (d *Device) memWrite(data []byte) error {
	w := make([]byte, 1+len(data))
	w[0] = OpWBM.withBufferAddr()
	copy(w[1:], data)
	r := make([]byte, len(w))
	if err := d.bus.Tx(w, r); err != nil {
		return deviceErr("mem_write", err)
	}
	return nil
}

// withBufferAddr combines op with the fixed buffer-memory port address, for
// the RBM/WBM opcodes which always target address 0x1A regardless of which
// ControlRegister happens to share that bit pattern.
func (op Op) withBufferAddr() byte {
	return byte(op) | bufferMemoryAddr
}

// softResetViaSPI transmits the single-byte System Reset Command (0xFF).
// The reset is not immediate: it completes asynchronously on the device.
func (d *Device) softResetViaSPI() error {
	w := []byte{systemResetCommand}
	r := make([]byte, 1)
	if err := d.bus.Tx(w, r); err != nil {
		return deviceErr("soft_reset_via_spi", err)
	}
	return nil
}

// readU16 reads a little-endian 16-bit register pair, low byte first. This
// order is mandatory only for correctness of the helper's own two reads;
// the device does not latch on read the way it does on write.
func (d *Device) readU16(lo, hi ControlRegister) (uint16, error) {
	loVal, err := d.ReadControl(lo)
	if err != nil {
		return 0, err
	}
	hiVal, err := d.ReadControl(hi)
	if err != nil {
		return 0, err
	}
	return uint16(loVal) | uint16(hiVal)<<8, nil
}

// writeU16 writes a little-endian 16-bit register pair, low byte first.
// This order is mandatory: the ENC28J60 latches certain 16-bit register
// pairs on the write of the high byte.
func (d *Device) writeU16(lo, hi ControlRegister, v uint16) error {
	if err := d.WriteControl(lo, byte(v&0xff)); err != nil {
		return err
	}
	return d.WriteControl(hi, byte(v>>8))
}
