package binary

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteReadWrite(t *testing.T) {
	var buf bytes.Buffer
	bw := NewByteWriter(&buf)
	require.NoError(t, bw.WriteString("hoopla"))
	require.NoError(t, bw.WriteInt(42))
	require.NoError(t, bw.WriteBytes(nil))

	br := NewByteReader(&buf)
	s, err := br.ReadString()
	require.NoError(t, err)
	require.Equal(t, "hoopla", s)

	i, err := br.ReadInt()
	require.NoError(t, err)
	require.Equal(t, 42, i)

	b, err := br.ReadBytes()
	require.NoError(t, err)
	require.Empty(t, b)
}

func TestReadBytesRejectsOversizedField(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, int64(MaxBytesLen+1)))

	_, err := NewByteReader(&buf).ReadBytes()
	require.ErrorIs(t, err, ErrFieldTooLarge)
}

func TestReadBytesTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, int64(8)))
	buf.WriteString("abc")

	_, err := NewByteReader(&buf).ReadBytes()
	require.Error(t, err)
}

type closeRecorder struct {
	bytes.Buffer
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestBufferedWriteCloser(t *testing.T) {
	dst := &closeRecorder{}
	bw := NewBufferedWriteCloser(dst)

	_, err := bw.Write([]byte("header"))
	require.NoError(t, err)
	require.Equal(t, 6, bw.Total())
	require.Zero(t, dst.Len())

	require.NoError(t, bw.Close())
	require.True(t, dst.closed)
	require.Equal(t, "header", dst.String())
}
