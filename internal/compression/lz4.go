package compression

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
	"github.com/xiaolin/stowr/internal/storeerr"
)

type lz4Codec struct{}

func newLZ4Codec() *lz4Codec {
	return &lz4Codec{}
}

func (c *lz4Codec) Name() string      { return AlgoLZ4 }
func (c *lz4Codec) Level() int        { return 0 }
func (c *lz4Codec) Extension() string { return "lz4" }

func (c *lz4Codec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("%w: lz4 write: %v", storeerr.ErrIoError, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: lz4 close: %v", storeerr.ErrIoError, err)
	}
	return buf.Bytes(), nil
}

func (c *lz4Codec) Decompress(data []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(data))
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storeerr.ErrDecodeCorrupt, err)
	}
	return out, nil
}
