package enc28j60

import (
	"errors"
	"fmt"
)

// ErrAborted is returned when the controller's TXABRT status bit was set
// after a transmission. Defined for API completeness; the current
// Transmit implementation clears TXABRT but still reports success, so
// this is never returned today.
var ErrAborted = errors.New("enc28j60: transmission aborted")

// DeviceError wraps a failure reported by the underlying SPI transport.
// It is never retried internally; the caller decides whether to retry,
// reset, or give up.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("enc28j60: %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

func deviceErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &DeviceError{Op: op, Err: err}
}

// PinError wraps a failure reported by the reset pin capability during
// HardwareReset.
type PinError struct {
	Op  string
	Err error
}

func (e *PinError) Error() string {
	return fmt.Sprintf("enc28j60: %s: %v", e.Op, e.Err)
}

func (e *PinError) Unwrap() error { return e.Err }

func pinErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PinError{Op: op, Err: err}
}

// BankCacheMismatchError is returned only when WithBankCheck is enabled and
// a re-read of ECON1 disagrees with the cached current bank. It indicates
// either a bug in the bank-switch bookkeeping or that something else on the
// (notionally exclusive) SPI bus reprogrammed ECON1 behind the driver's
// back.
type BankCacheMismatchError struct {
	Cached   Bank
	Observed Bank
}

func (e *BankCacheMismatchError) Error() string {
	return fmt.Sprintf("enc28j60: bank cache mismatch: cached %d, ECON1 reports %d", e.Cached, e.Observed)
}
