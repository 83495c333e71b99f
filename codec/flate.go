package codec

import (
	"io"

	"github.com/klauspost/compress/flate"
)

// flateCodec implements Codec for the Deflate method using klauspost/compress instead of compress/flate.
type flateCodec struct {
	level int
}

var _ Codec = flateCodec{}

func (c flateCodec) NewDecoder(src io.Reader) (io.ReadCloser, error) {
	return flate.NewReader(src), nil
}

func (c flateCodec) NewEncoder(dst io.Writer) (io.WriteCloser, error) {
	return flate.NewWriter(dst, c.level)
}
