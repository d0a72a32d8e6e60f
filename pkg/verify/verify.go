// Package verify computes and checks the single trailing checksum byte of
// fixed-size serial packets.
package verify

import (
	"errors"
	"fmt"
)

// ErrShortPacket is returned when a packet has no room for a payload and a
// checksum byte.
var ErrShortPacket = errors.New("packet too short")

// Algorithm computes an 8-bit checksum over data.
type Algorithm interface {
	Calculate(data []byte) uint8
}

// CRC8 is the table-driven CRC8 with a configurable initial value.
type CRC8 struct {
	Init uint8
}

// Calculate returns the CRC8 of data.
func (c CRC8) Calculate(data []byte) uint8 {
	crc := c.Init
	for _, b := range data {
		crc = crc8Table[crc^b]
	}
	return crc
}

// Sum8 is the plain byte sum modulo 256.
type Sum8 struct{}

// Calculate returns the byte sum of data.
func (Sum8) Calculate(data []byte) uint8 {
	var sum uint8
	for _, b := range data {
		sum += b
	}
	return sum
}

var (
	// DJICRC8 is the CRC8 used by DJI referee and motor packets.
	DJICRC8 = CRC8{Init: 0xff}
	// GyH1CRC8 is the CRC8 used by the GY-H1 gyroscope.
	GyH1CRC8 = CRC8{Init: 0x00}
)

// Checksum appends and verifies a checksum stored in the last byte of a
// packet and covering every byte before it.
type Checksum struct {
	Algorithm Algorithm
}

var (
	DJI  = Checksum{Algorithm: DJICRC8}
	GyH1 = Checksum{Algorithm: GyH1CRC8}
	Sum  = Checksum{Algorithm: Sum8{}}
)

// Append writes the checksum of packet[:len-1] into the last byte.
func (c Checksum) Append(packet []byte) error {
	if len(packet) < 2 {
		return fmt.Errorf("append checksum to %d bytes: %w", len(packet), ErrShortPacket)
	}
	n := len(packet) - 1
	packet[n] = c.Algorithm.Calculate(packet[:n])
	return nil
}

// Verify reports whether the last byte matches the checksum of the rest.
func (c Checksum) Verify(packet []byte) bool {
	if len(packet) < 2 {
		return false
	}
	n := len(packet) - 1
	return packet[n] == c.Algorithm.Calculate(packet[:n])
}
