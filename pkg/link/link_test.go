package link

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/pickarm/pkg/vec"
	"github.com/gwillem/pickarm/pkg/verify"
)

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	targets := vec.Vec6{0, -0.67269, -0.023241, math.Pi, 0.713385, 0}

	require.NoError(t, enc.Encode(targets))
	require.NoError(t, enc.Encode(targets.Scale(2)))
	require.Equal(t, 2*FrameSize, buf.Len())

	frames := buf.Bytes()
	assert.Equal(t, byte(Header), frames[0])
	assert.True(t, verify.DJI.Verify(frames[:FrameSize]))

	seq, got, err := Decode(frames[:FrameSize])
	require.NoError(t, err)
	assert.Equal(t, uint8(0), seq)
	assert.True(t, vec.ApproxEqual(targets, got, 1e-6))

	seq, got, err = Decode(frames[FrameSize:])
	require.NoError(t, err)
	assert.Equal(t, uint8(1), seq)
	assert.True(t, vec.ApproxEqual(targets.Scale(2), got, 1e-6))
}

func TestSequenceWraps(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	enc.seq = 255

	require.NoError(t, enc.Encode(vec.Vec6{}))
	require.NoError(t, enc.Encode(vec.Vec6{}))
	assert.Equal(t, byte(255), buf.Bytes()[1])
	assert.Equal(t, byte(0), buf.Bytes()[FrameSize+1])
}

func TestNaNSurvives(t *testing.T) {
	t.Parallel()

	frame := make([]byte, FrameSize)
	Marshal(frame, 7, vec.NaN())

	_, got, err := Decode(frame)
	require.NoError(t, err)
	assert.True(t, got.HasNaN())
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	frame := make([]byte, FrameSize)
	Marshal(frame, 1, vec.Vec6{1, 2, 3, 4, 5, 6})

	_, _, err := Decode(frame[:FrameSize-1])
	assert.ErrorIs(t, err, ErrShortFrame)

	bad := bytes.Clone(frame)
	bad[0] = 0x5a
	_, _, err = Decode(bad)
	assert.ErrorIs(t, err, ErrBadHeader)

	bad = bytes.Clone(frame)
	bad[5] ^= 0x01
	_, _, err = Decode(bad)
	assert.ErrorIs(t, err, ErrBadChecksum)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("unplugged") }

func TestEncodeWriteError(t *testing.T) {
	t.Parallel()

	enc := NewEncoder(failingWriter{})
	assert.Error(t, enc.Encode(vec.Vec6{}))
	assert.Equal(t, uint8(0), enc.seq, "failed frames do not consume a sequence number")
}
