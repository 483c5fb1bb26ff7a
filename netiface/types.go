// Package netiface translates the enc28j60 driver's typed errors onto a
// transport-agnostic, packet-oriented network interface that higher-layer
// protocol stacks (ARP, IPv4, IPv6) can consume without depending on the
// driver package directly.
package netiface

import "fmt"

// MacAddress is a six-octet hardware address in transmission order
// (most-significant octet first on the wire).
type MacAddress [6]byte

// String renders the address in the conventional colon-separated form.
func (m MacAddress) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", m[0], m[1], m[2], m[3], m[4], m[5])
}

// EtherType is the 16-bit EtherType/length field of an Ethernet frame,
// serialized big-endian (network byte order) on the wire.
type EtherType uint16

// Named EtherType values.
const (
	IEEE8023  EtherType = 0x0000
	IPv4      EtherType = 0x0800
	ARP       EtherType = 0x0806
	WakeOnLAN EtherType = 0x0842
	VLAN      EtherType = 0x8100
	IPv6      EtherType = 0x86dd
)

// Bytes returns et as its two network-byte-order octets.
func (et EtherType) Bytes() [2]byte {
	return [2]byte{byte(et >> 8), byte(et)}
}
