package compression

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/xiaolin/stowr/internal/storeerr"
)

type zstdCodec struct {
	level int
}

func newZstdCodec(level int) *zstdCodec {
	return &zstdCodec{level: level}
}

func (c *zstdCodec) Name() string      { return AlgoZstd }
func (c *zstdCodec) Level() int        { return c.level }
func (c *zstdCodec) Extension() string { return "zst" }

// zstdEncoderLevel maps stowr's 1-22 level scale onto klauspost/compress's
// coarser EncoderLevel enum.
func zstdEncoderLevel(level int) zstd.EncoderLevel {
	switch {
	case level <= 3:
		return zstd.SpeedFastest
	case level <= 9:
		return zstd.SpeedDefault
	case level <= 15:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

func (c *zstdCodec) Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstdEncoderLevel(c.level)))
	if err != nil {
		return nil, fmt.Errorf("%w: zstd encoder: %v", storeerr.ErrIoError, err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func (c *zstdCodec) Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd decoder: %v", storeerr.ErrIoError, err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storeerr.ErrDecodeCorrupt, err)
	}
	return out, nil
}
