package store

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// CompressionThreshold is the value size, in bytes, above which zstd
// compression kicks in. Smaller values are stored as is.
const CompressionThreshold = 256

// Compressor transforms cell values on their way to and from the store.
// Decompress must accept values that were never compressed.
type Compressor interface {
	Compress(in []byte) []byte
	Decompress(in []byte) ([]byte, error)
}

// NewCompressor returns the compressor for `mode`:
//
//   - `zstd` (or empty): values bigger than `CompressionThreshold` are compressed
//   - `decode-only`: values are written as is, compressed ones are still decoded on read
//   - `none`: values are never transformed
func NewCompressor(mode string) (Compressor, error) {
	switch mode {
	case "", "zstd":
		return NewZstdCompressor(), nil
	case "decode-only":
		return NewDecodeOnlyCompressor(), nil
	case "none", "false", "no":
		return NewNoOpCompressor(), nil
	default:
		return nil, fmt.Errorf("invalid compression value %q, use zstd (by default), 'decode-only' or 'none'", mode)
	}
}

type NoOpCompressor struct{}

func NewNoOpCompressor() *NoOpCompressor {
	return &NoOpCompressor{}
}

func (NoOpCompressor) Compress(in []byte) []byte {
	return in
}
func (NoOpCompressor) Decompress(in []byte) ([]byte, error) {
	return in, nil
}

type ZstdCompressor struct {
	dec *zstd.Decoder
	enc *zstd.Encoder

	encodeDisabled bool
}

func NewZstdCompressor() *ZstdCompressor {
	enc, _ := zstd.NewWriter(nil) // Errors only on failed `opts` application
	dec, _ := zstd.NewReader(nil)
	return &ZstdCompressor{
		dec: dec,
		enc: enc,
	}
}

// NewDecodeOnlyCompressor reads zstd compressed values but never compresses
// new ones, used while migrating a table away from compression.
func NewDecodeOnlyCompressor() *ZstdCompressor {
	dec, _ := zstd.NewReader(nil)
	return &ZstdCompressor{
		dec:            dec,
		encodeDisabled: true,
	}
}

func (c *ZstdCompressor) Compress(in []byte) (out []byte) {
	if c.encodeDisabled || len(in) <= CompressionThreshold {
		return in
	}

	return c.enc.EncodeAll(in, out)
}

var zstdMagicBytes = []byte{0x28, 0xB5, 0x2F, 0xFD}

func (c *ZstdCompressor) Decompress(in []byte) ([]byte, error) {
	if len(in) > 4 && bytes.Equal(in[:4], zstdMagicBytes) {
		buf, err := c.dec.DecodeAll(in, nil)
		if err != nil {
			return nil, err
		}
		return buf, nil
	}

	return in, nil
}
