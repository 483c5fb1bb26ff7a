package enc28j60

// Transmit builds and sends a single Ethernet frame: dst and src are
// 6-octet MAC addresses in transmission order, and data must begin with
// the two-octet EtherType in network byte order followed by the payload.
// Transmit blocks until the controller clears TXRTS; no internal timeout
// is applied. When the controller reports TXABRT, the flag is cleared
// before returning so the next Transmit starts clean, but this is the
// documented current behavior: Transmit still reports success.
func (d *Device) Transmit(dst, src [6]byte, data []byte) error {
	txStartAddr, err := d.readU16(ETXSTL, ETXSTH)
	if err != nil {
		return err
	}
	if err := d.writeU16(EWRPTL, EWRPTH, txStartAddr); err != nil {
		return err
	}

	const perPacketControlByte = 0x00 // POVERRIDE=0, PCRCEN/PPADEN=use MACON3, PHUGEEN=0
	if err := d.memWrite([]byte{perPacketControlByte}); err != nil {
		return err
	}
	if err := d.memWrite(dst[:]); err != nil {
		return err
	}
	if err := d.memWrite(src[:]); err != nil {
		return err
	}
	if err := d.memWrite(data); err != nil {
		return err
	}

	frameLen := 1 + len(dst) + len(src) + len(data)
	txEnd := txStartAddr + uint16(frameLen) - 1
	if err := d.writeU16(ETXNDL, ETXNDH, txEnd); err != nil {
		return err
	}

	const txif = 0b0000_1000
	if err := d.bitClear(EIR, txif); err != nil {
		return err
	}

	const txrts = 0b0000_1000
	if err := d.bitSet(ECON1, txrts); err != nil {
		return err
	}
	if err := d.waitTXRTSClear(txrts); err != nil {
		return err
	}

	estat, err := d.ReadControl(ESTAT)
	if err != nil {
		return err
	}
	const txabrt = 0b0000_0010
	if estat&txabrt != 0 {
		if err := d.bitClear(ESTAT, txabrt); err != nil {
			return err
		}
		d.tracer.Tracef("enc28j60: transmit aborted (TXABRT)")
		return nil
	}

	d.tracer.Tracef("enc28j60: transmitted %d bytes", len(data))
	return nil
}

func (d *Device) waitTXRTSClear(txrts byte) error {
	for {
		econ1, err := d.ReadControl(ECON1)
		if err != nil {
			return err
		}
		if econ1&txrts == 0 {
			return nil
		}
	}
}
