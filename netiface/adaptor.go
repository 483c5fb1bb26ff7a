package netiface

import "fmt"

// Device is the subset of *enc28j60.Device the adaptor depends on, kept as
// an interface so tests can substitute a fake without importing the driver
// package's transport types.
type Device interface {
	Receive(buf []byte) (int, error)
	Transmit(dst, src [6]byte, data []byte) error
}

// Adaptor wraps a driver Device and implements SimpleNetwork, translating
// the driver's typed errors to this package's taxonomy.
type Adaptor struct {
	dev Device
}

// NewAdaptor wraps dev as a SimpleNetwork.
func NewAdaptor(dev Device) *Adaptor {
	return &Adaptor{dev: dev}
}

// Receive implements SimpleNetwork.
func (a *Adaptor) Receive(buf []byte) (int, error) {
	n, err := a.dev.Receive(buf)
	if err != nil {
		return 0, translateErr(err)
	}
	return n, nil
}

// Transmit implements SimpleNetwork. It serializes etherType in network
// byte order and issues the frame as EtherType followed by payload.
func (a *Adaptor) Transmit(dst, src MacAddress, etherType EtherType, payload []byte) error {
	etBytes := etherType.Bytes()
	data := make([]byte, 0, len(etBytes)+len(payload))
	data = append(data, etBytes[:]...)
	data = append(data, payload...)

	if err := a.dev.Transmit([6]byte(dst), [6]byte(src), data); err != nil {
		return translateErr(err)
	}
	return nil
}

func translateErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrDeviceError, err)
}
