// Package link frames joint targets for the motor controller serial link.
//
// A frame is 27 bytes: the 0xA5 header, a sequence byte, six little-endian
// float32 joint angles, and a DJI CRC8 over everything before it.
package link

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"go.bug.st/serial"

	"github.com/gwillem/pickarm/pkg/vec"
	"github.com/gwillem/pickarm/pkg/verify"
)

const (
	// Header starts every frame.
	Header = 0xa5
	// FrameSize is the encoded length of one frame.
	FrameSize = 2 + 6*4 + 1
	// DefaultBaud is used when no baud rate is configured.
	DefaultBaud = 115200
)

var (
	ErrShortFrame  = errors.New("short frame")
	ErrBadHeader   = errors.New("bad frame header")
	ErrBadChecksum = errors.New("bad frame checksum")
)

// Encoder writes target frames to an underlying writer.
type Encoder struct {
	mu  sync.Mutex
	w   io.Writer
	seq uint8
	buf [FrameSize]byte
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes one frame carrying targets. NaN channels are sent as NaN so
// the receiver can hold those joints.
func (e *Encoder) Encode(targets vec.Vec6) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	Marshal(e.buf[:], e.seq, targets)
	if _, err := e.w.Write(e.buf[:]); err != nil {
		return fmt.Errorf("write frame %d: %w", e.seq, err)
	}
	e.seq++
	return nil
}

// Marshal encodes one frame into dst, which must hold FrameSize bytes.
func Marshal(dst []byte, seq uint8, targets vec.Vec6) {
	_ = dst[FrameSize-1]
	dst[0] = Header
	dst[1] = seq
	for i, v := range targets {
		binary.LittleEndian.PutUint32(dst[2+4*i:], math.Float32bits(float32(v)))
	}
	// Cannot fail: the frame is longer than two bytes.
	_ = verify.DJI.Append(dst[:FrameSize])
}

// Decode parses one frame.
func Decode(frame []byte) (uint8, vec.Vec6, error) {
	var targets vec.Vec6
	if len(frame) < FrameSize {
		return 0, targets, fmt.Errorf("decode %d bytes: %w", len(frame), ErrShortFrame)
	}
	frame = frame[:FrameSize]
	if frame[0] != Header {
		return 0, targets, fmt.Errorf("decode header %#x: %w", frame[0], ErrBadHeader)
	}
	if !verify.DJI.Verify(frame) {
		return 0, targets, ErrBadChecksum
	}
	for i := range targets {
		targets[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(frame[2+4*i:])))
	}
	return frame[1], targets, nil
}

// Open opens a serial port for frame output.
func Open(port string, baud int) (io.WriteCloser, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	p, err := serial.Open(port, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open link %s: %w", port, err)
	}
	return p, nil
}
