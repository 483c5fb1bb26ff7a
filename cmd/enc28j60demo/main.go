// Command enc28j60demo is example firmware: a tiny host application loop
// wiring a real ENC28J60 up over periph.io, bringing it up, and echoing
// received frames back out with the source and destination swapped. The
// host application main loop is an external collaborator, not part of
// the driver itself; this program is just one example of such a loop.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"example.com/enc28j60"
	"example.com/enc28j60/netiface"
	"example.com/enc28j60/transport/periphspi"
)

// boardConfig mirrors the [device] section of the INI config file:
// which SPI bus and GPIO pins the chip is wired to, and the station MAC
// address to program into it.
type boardConfig struct {
	SPIBus   string
	SpeedHz  int64
	ResetPin string
	IntPin   string
	MAC      [6]byte
}

func loadConfig(path string) (boardConfig, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return boardConfig{}, fmt.Errorf("load config %q: %w", path, err)
	}
	sec := cfg.Section("device")

	mac, err := parseMAC(sec.Key("mac").MustString("ff:ca:de:ee:ff:c0"))
	if err != nil {
		return boardConfig{}, fmt.Errorf("parse mac: %w", err)
	}

	return boardConfig{
		SPIBus:   sec.Key("spi_bus").MustString("/dev/spidev0.0"),
		SpeedHz:  sec.Key("speed_hz").MustInt64(8_000_000),
		ResetPin: sec.Key("reset_pin").MustString("GPIO25"),
		IntPin:   sec.Key("int_pin").MustString("GPIO24"),
		MAC:      mac,
	}, nil
}

func parseMAC(s string) ([6]byte, error) {
	var mac [6]byte
	parts := strings.Split(s, ":")
	if len(parts) != 6 {
		return mac, fmt.Errorf("want 6 colon-separated octets, got %d", len(parts))
	}
	for i, p := range parts {
		b, err := hex.DecodeString(p)
		if err != nil || len(b) != 1 {
			return mac, fmt.Errorf("invalid octet %q", p)
		}
		mac[i] = b[0]
	}
	return mac, nil
}

func main() {
	configPath := flag.String("config", "enc28j60demo.ini", "path to device config file")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	board, err := periphspi.Open(periphspi.Config{
		SPIBus:   cfg.SPIBus,
		SpeedHz:  cfg.SpeedHz,
		ResetPin: cfg.ResetPin,
		IntPin:   cfg.IntPin,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to open board")
	}
	defer board.Close()

	dev := enc28j60.NewDevice(board.Bus, board.Reset, board.Int, cfg.MAC, enc28j60.WithTracer(log))

	if err := dev.HardwareReset(); err != nil {
		log.WithError(err).Fatal("hardware reset failed")
	}
	if err := dev.Init(); err != nil {
		log.WithError(err).Fatal("init failed")
	}
	log.WithField("mac", netiface.MacAddress(cfg.MAC)).Info("enc28j60 ready")

	net := netiface.NewAdaptor(dev)
	runLoop(net, netiface.MacAddress(cfg.MAC), log)
}

// runLoop polls for received frames and echoes each one back to its
// sender, swapping source and destination. This matches the driver's
// cooperative, single-threaded polling model: it has no internal
// concurrency, and EPKTCNT is polled rather than interrupt-driven.
func runLoop(net *netiface.Adaptor, self netiface.MacAddress, log *logrus.Logger) {
	buf := make([]byte, 1518)
	for {
		n, err := net.Receive(buf)
		if err != nil {
			log.WithError(err).Warn("receive failed")
			time.Sleep(10 * time.Millisecond)
			continue
		}
		if n < 14 {
			time.Sleep(time.Millisecond)
			continue
		}

		// buf holds the frame as received: dst(6), src(6), EtherType(2), payload.
		var sender netiface.MacAddress
		copy(sender[:], buf[6:12])
		etherType := netiface.EtherType(uint16(buf[12])<<8 | uint16(buf[13]))
		payload := append([]byte(nil), buf[14:n]...)

		log.WithFields(logrus.Fields{
			"etherType": fmt.Sprintf("0x%04x", uint16(etherType)),
			"bytes":     n,
		}).Info("received frame")

		if err := net.Transmit(sender, self, etherType, payload); err != nil {
			log.WithError(err).Warn("echo transmit failed")
		}
	}
}
