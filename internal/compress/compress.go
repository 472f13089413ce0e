// Package compress wraps zstd and LZ4 frame streams for boundary tables,
// GeoJSON inputs, and published containers.
package compress

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec identifies a stream compression format.
type Codec uint8

const (
	// None passes bytes through unchanged.
	None Codec = iota
	// LZ4 is the LZ4 frame format (fast, larger output).
	LZ4
	// ZSTD is the Zstandard frame format (better ratio).
	ZSTD
)

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// ErrUnknownCodec is returned for codec values outside None, LZ4, and ZSTD.
var ErrUnknownCodec = errors.New("compress: unknown codec")

func (c Codec) String() string {
	switch c {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("codec(%d)", uint8(c))
	}
}

// Ext returns the conventional file extension, including the dot.
func (c Codec) Ext() string {
	switch c {
	case LZ4:
		return ".lz4"
	case ZSTD:
		return ".zst"
	default:
		return ""
	}
}

// ParseCodec maps "none", "lz4", "zstd" (or "zst") to a Codec.
func ParseCodec(s string) (Codec, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd", "zst":
		return ZSTD, nil
	default:
		return None, fmt.Errorf("%w: %q", ErrUnknownCodec, s)
	}
}

// CodecFromPath guesses the codec from a file extension.
func CodecFromPath(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return ZSTD
	case ".lz4":
		return LZ4
	default:
		return None
	}
}

var zstdDecoderPool sync.Pool

func getZstdDecoder(r io.Reader) (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		dec := v.(*zstd.Decoder)
		if err := dec.Reset(r); err != nil {
			return nil, err
		}
		return dec, nil
	}
	return zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
}

type zstdReadCloser struct {
	dec  *zstd.Decoder
	once sync.Once
}

func (z *zstdReadCloser) Read(p []byte) (int, error) { return z.dec.Read(p) }

func (z *zstdReadCloser) Close() error {
	z.once.Do(func() {
		// Detach the source so the pooled decoder does not pin it.
		if err := z.dec.Reset(nil); err == nil {
			zstdDecoderPool.Put(z.dec)
		} else {
			z.dec.Close()
		}
	})
	return nil
}

// NewReader decompresses r with codec c. Close does not close r.
func NewReader(r io.Reader, c Codec) (io.ReadCloser, error) {
	switch c {
	case None:
		return io.NopCloser(r), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case ZSTD:
		dec, err := getZstdDecoder(r)
		if err != nil {
			return nil, fmt.Errorf("compress: zstd reader: %w", err)
		}
		return &zstdReadCloser{dec: dec}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCodec, c)
	}
}

// Detect peeks at the first bytes of r and returns the codec its frame magic
// announces together with a reader that still yields those bytes.
func Detect(r io.Reader) (Codec, io.Reader, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4)
	if err != nil && !errors.Is(err, io.EOF) {
		return None, nil, err
	}
	switch {
	case bytes.Equal(head, zstdMagic):
		return ZSTD, br, nil
	case bytes.Equal(head, lz4Magic):
		return LZ4, br, nil
	default:
		return None, br, nil
	}
}

// NewAutoReader decompresses r with whatever codec its frame magic announces.
func NewAutoReader(r io.Reader) (io.ReadCloser, error) {
	c, br, err := Detect(r)
	if err != nil {
		return nil, err
	}
	return NewReader(br, c)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// NewWriter compresses into w with codec c. Close flushes the frame but does
// not close w.
func NewWriter(w io.Writer, c Codec) (io.WriteCloser, error) {
	switch c {
	case None:
		return nopWriteCloser{w}, nil
	case LZ4:
		return lz4.NewWriter(w), nil
	case ZSTD:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("compress: zstd writer: %w", err)
		}
		return enc, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCodec, c)
	}
}
