package enc28j60

import "time"

// buggyClkrdyRevisions lists EREVID values whose ESTAT.CLKRDY bit is
// documented-buggy (Microchip silicon errata for revisions B1/B4/B5/B7);
// the CLKRDY wait is skipped for these, as it is for 0x00/0xFF (reset in
// progress or a silent bus).
var buggyClkrdyRevisions = map[byte]bool{
	0b0010: true,
	0b1000: true,
	0b0101: true,
	0b0110: true,
}

// HardwareReset asserts the reset pin protocol: drive RST low for at least
// 400ns, release it, then wait at least 50us before any PHY access. It also
// resets the bank cache to Bank0, the device's state immediately after a
// hardware reset. Call Init again afterward to bring the controller back
// into a receive-capable state.
func (d *Device) HardwareReset() error {
	if err := d.reset.Out(false); err != nil {
		return pinErr("hardware_reset: assert", err)
	}
	d.delay.Sleep(400 * time.Nanosecond)
	if err := d.reset.Out(true); err != nil {
		return pinErr("hardware_reset: release", err)
	}
	d.delay.Sleep(50 * time.Microsecond)
	d.currentBank = Bank0
	d.tracer.Tracef("enc28j60: hardware reset complete")
	return nil
}

// Init executes the documented power-up recipe once, bringing the
// controller into a deterministic receive-capable state. Any SPI failure
// is surfaced immediately; no rollback is attempted. A timed-out CLKRDY
// wait is not detected internally; bound this call with an external
// watchdog.
func (d *Device) Init() error {
	if err := d.softResetViaSPI(); err != nil {
		return err
	}
	d.delay.Sleep(time.Millisecond)

	revision, err := d.ReadControl(EREVID)
	if err != nil {
		return err
	}
	d.tracer.Tracef("enc28j60: EREVID=0x%02x", revision)
	if revision != 0x00 && revision != 0xff && !buggyClkrdyRevisions[revision] {
		if err := d.waitClkReady(); err != nil {
			return err
		}
	}

	const autoinc = 0x80
	if err := d.bitSet(ECON2, autoinc); err != nil {
		return err
	}

	if err := d.writeU16(ERXSTL, ERXSTH, rxBufStart); err != nil {
		return err
	}
	if err := d.writeU16(ERXNDL, ERXNDH, rxBufEnd); err != nil {
		return err
	}
	if err := d.writeU16(ERXRDPTL, ERXRDPTH, rxBufStart); err != nil {
		return err
	}
	if err := d.writeU16(ETXSTL, ETXSTH, txStart); err != nil {
		return err
	}

	const marxen = 0x01
	if err := d.WriteControl(MACON1, marxen); err != nil {
		return err
	}
	const macon3Mask = 0b00110011 // TXCRCEN | PADCFG(pad-to-60+CRC) | FULDPX | frame-length checking
	if err := d.WriteControl(MACON3, macon3Mask); err != nil {
		return err
	}
	const maxFrameLength = 1518
	if err := d.writeU16(MAMXFLL, MAMXFLH, maxFrameLength); err != nil {
		return err
	}
	if err := d.WriteControl(MABBIPG, 0x15); err != nil {
		return err
	}
	if err := d.WriteControl(MAIPGL, 0x06); err != nil {
		return err
	}
	if err := d.writeStationAddress(); err != nil {
		return err
	}

	if err := d.WriteControl(ERXFCON, 0x00); err != nil {
		return err
	}

	const pdpxmd = 0x0100
	if err := d.WritePHY(PHCON1, pdpxmd); err != nil {
		return err
	}
	const hldis = 0x0100
	if err := d.WritePHY(PHCON2, hldis); err != nil {
		return err
	}

	const intieAndPktie = 0b1100_0000
	if err := d.WriteControl(EIE, intieAndPktie); err != nil {
		return err
	}

	const rxen = 0b0000_0100
	if err := d.WriteControl(ECON1, rxen); err != nil {
		return err
	}

	d.tracer.Tracef("enc28j60: init complete, reception enabled")
	return nil
}

func (d *Device) waitClkReady() error {
	const clkrdy = 0x01
	for {
		estat, err := d.ReadControl(ESTAT)
		if err != nil {
			return err
		}
		if estat&clkrdy != 0 {
			return nil
		}
	}
}

// writeStationAddress programs the 6 octets of d.macAddress into
// MAADR1..MAADR6. MAADR1 is the most-significant octet when programming,
// even though register.go's MAADR1..6 vars are ordered by the datasheet's
// address-space layout (5,6,3,4,1,2), not by significance.
func (d *Device) writeStationAddress() error {
	regs := [6]ControlRegister{MAADR1, MAADR2, MAADR3, MAADR4, MAADR5, MAADR6}
	for i, reg := range regs {
		if err := d.WriteControl(reg, d.macAddress[i]); err != nil {
			return err
		}
	}
	return nil
}
