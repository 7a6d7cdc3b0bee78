package binary

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxBytesLen bounds a single length-prefixed field so a damaged header
// cannot trigger a huge allocation.
const MaxBytesLen = 1 << 20

var ErrFieldTooLarge = errors.New("length-prefixed field too large")

type BufferedWriteCloser struct {
	w     *bufio.Writer
	wc    io.WriteCloser
	count int
}

func NewBufferedWriteCloser(w io.WriteCloser) *BufferedWriteCloser {
	return &BufferedWriteCloser{
		w:  bufio.NewWriter(w),
		wc: w,
	}
}

func (bw *BufferedWriteCloser) Total() int {
	return bw.count
}

func (bw *BufferedWriteCloser) Write(p []byte) (n int, err error) {
	n, err = bw.w.Write(p)
	bw.count += n
	return n, err
}

func (bw *BufferedWriteCloser) Flush() error {
	return bw.w.Flush()
}

func (bw *BufferedWriteCloser) Close() error {
	if err := bw.w.Flush(); err != nil {
		bw.wc.Close()
		return err
	}
	return bw.wc.Close()
}

type ByteWriter struct {
	w io.Writer
}

func NewByteWriter(w io.Writer) *ByteWriter {
	return &ByteWriter{
		w: w,
	}
}

func (bw *ByteWriter) WriteBytes(b []byte) error {
	if err := binary.Write(bw.w, binary.LittleEndian, int64(len(b))); err != nil {
		return err
	}
	_, err := bw.w.Write(b)
	return err
}

func (bw *ByteWriter) WriteString(s string) error {
	return bw.WriteBytes([]byte(s))
}

func (bw *ByteWriter) WriteInt(i int) error {
	return binary.Write(bw.w, binary.LittleEndian, int64(i))
}

type ByteReader struct {
	r io.Reader
}

func NewByteReader(r io.Reader) *ByteReader {
	return &ByteReader{
		r: r,
	}
}

func (br *ByteReader) ReadBytes() ([]byte, error) {
	var length int64
	if err := binary.Read(br.r, binary.LittleEndian, &length); err != nil {
		return nil, err
	}
	if length < 0 || length > MaxBytesLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrFieldTooLarge, length)
	}
	b := make([]byte, length)
	if _, err := io.ReadFull(br.r, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (br *ByteReader) ReadString() (string, error) {
	b, err := br.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (br *ByteReader) ReadInt() (int, error) {
	var i int64
	err := binary.Read(br.r, binary.LittleEndian, &i)
	return int(i), err
}

// Reader exposes the underlying reader so a payload can follow the header.
func (br *ByteReader) Reader() io.Reader {
	return br.r
}
