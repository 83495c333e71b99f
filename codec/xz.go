package codec

import (
	"io"

	"github.com/ulikunitz/xz"
)

// xzCodec implements Codec for the XZ method (95).
type xzCodec struct {
}

var _ Codec = xzCodec{}

func (c xzCodec) NewDecoder(src io.Reader) (io.ReadCloser, error) {
	r, err := xz.NewReader(src)
	if err != nil {
		return nil, err
	}

	return io.NopCloser(r), nil
}

func (c xzCodec) NewEncoder(dst io.Writer) (io.WriteCloser, error) {
	return xz.NewWriter(dst)
}
