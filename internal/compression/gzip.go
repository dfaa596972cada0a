package compression

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/xiaolin/stowr/internal/storeerr"
)

type gzipCodec struct {
	level int
}

func newGzipCodec(level int) *gzipCodec {
	return &gzipCodec{level: level}
}

func (c *gzipCodec) Name() string      { return AlgoGzip }
func (c *gzipCodec) Level() int        { return c.level }
func (c *gzipCodec) Extension() string { return "gz" }

func (c *gzipCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, c.level)
	if err != nil {
		return nil, fmt.Errorf("%w: gzip writer: %v", storeerr.ErrIoError, err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("%w: gzip write: %v", storeerr.ErrIoError, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: gzip close: %v", storeerr.ErrIoError, err)
	}
	return buf.Bytes(), nil
}

func (c *gzipCodec) Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storeerr.ErrDecodeCorrupt, err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storeerr.ErrDecodeCorrupt, err)
	}
	return out, nil
}
