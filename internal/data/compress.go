package data

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4"
)

// Compressor handles blob compression inside the store. Stored blobs
// carry a one-byte tag so either compressor can read rows written by
// the other.
type Compressor interface {
	Name() string
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

const (
	blobRaw = 0x00
	blobLZ4 = 0x01
)

// NewCompressor returns the compressor for a configured name.
func NewCompressor(name string) (Compressor, error) {
	switch name {
	case "", "none":
		return &NoCompressor{}, nil
	case "lz4":
		return &LZ4Compressor{}, nil
	default:
		return nil, fmt.Errorf("unsupported compressor: %s", name)
	}
}

// NoCompressor stores blobs unchanged.
type NoCompressor struct{}

// Name returns the compressor name.
func (c *NoCompressor) Name() string { return "none" }

// Compress tags the data as raw.
func (c *NoCompressor) Compress(data []byte) ([]byte, error) {
	out := make([]byte, len(data)+1)
	out[0] = blobRaw
	copy(out[1:], data)
	return out, nil
}

// Decompress strips the tag.
func (c *NoCompressor) Decompress(data []byte) ([]byte, error) {
	return decodeBlob(data)
}

// LZ4Compressor compresses blobs with LZ4 block compression.
type LZ4Compressor struct{}

// Name returns the compressor name.
func (c *LZ4Compressor) Name() string { return "lz4" }

// Compress compresses the data, falling back to raw storage when the
// block does not shrink.
func (c *LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{blobRaw}, nil
	}

	buf := make([]byte, 5+lz4.CompressBlockBound(len(data)))
	buf[0] = blobLZ4
	binary.BigEndian.PutUint32(buf[1:5], uint32(len(data)))

	n, err := lz4.CompressBlock(data, buf[5:], nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if n == 0 || n >= len(data) {
		// Incompressible
		out := make([]byte, len(data)+1)
		out[0] = blobRaw
		copy(out[1:], data)
		return out, nil
	}

	return buf[:5+n], nil
}

// Decompress restores a blob written by either compressor.
func (c *LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	return decodeBlob(data)
}

func decodeBlob(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty stored blob")
	}

	switch data[0] {
	case blobRaw:
		out := make([]byte, len(data)-1)
		copy(out, data[1:])
		return out, nil
	case blobLZ4:
		if len(data) < 5 {
			return nil, fmt.Errorf("truncated lz4 blob")
		}
		size := binary.BigEndian.Uint32(data[1:5])
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(data[5:], out)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompression failed: %w", err)
		}
		if uint32(n) != size {
			return nil, fmt.Errorf("lz4 blob decompressed to %d bytes, want %d", n, size)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown blob tag 0x%02X", data[0])
	}
}
