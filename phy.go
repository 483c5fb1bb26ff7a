package enc28j60

// ReadPHY performs the MII indirect read sequence: point MIREGADR at reg,
// request a read via MICMD.MIIRD, poll MISTAT.BUSY until clear, then read
// the 16-bit result from MIRDL/MIRDH.
func (d *Device) ReadPHY(reg PhyRegister) (uint16, error) {
	if err := d.WriteControl(MIREGADR, reg.Addr()); err != nil {
		return 0, err
	}
	const miiRD = 0b01
	if err := d.WriteControl(MICMD, miiRD); err != nil {
		return 0, err
	}
	if err := d.waitMIIBusyClear(); err != nil {
		return 0, err
	}
	if err := d.WriteControl(MICMD, 0); err != nil {
		return 0, err
	}
	return d.readU16(MIRDL, MIRDH)
}

// WritePHY performs the MII indirect write sequence: point MIREGADR at reg,
// then write the 16-bit data to MIWRL/MIWRH. The device raises MISTAT.BUSY
// automatically; callers must avoid initiating a new MII operation until it
// clears.
func (d *Device) WritePHY(reg PhyRegister, data uint16) error {
	if err := d.WriteControl(MIREGADR, reg.Addr()); err != nil {
		return err
	}
	return d.writeU16(MIWRL, MIWRH, data)
}

func (d *Device) waitMIIBusyClear() error {
	const busy = 0b01
	for {
		mistat, err := d.ReadControl(MISTAT)
		if err != nil {
			return err
		}
		if mistat&busy == 0 {
			return nil
		}
	}
}
