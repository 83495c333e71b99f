package codec

import (
	"archive/zip"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
	yzip "github.com/yeka/zip"
)

// Method is the compression method of an entry.
//
// The numeric values are the method ids written to the zip headers, except MethodDefault which resolves to
// MethodDeflate.
type Method int32

const (
	MethodDefault Method = -1
	MethodStore   Method = 0
	MethodDeflate Method = 8
	MethodZstd    Method = 93
	MethodXZ      Method = 95
)

// methodAES is the method id of WinZip AES encrypted entries. The actual compression method is in the AES extra field.
const methodAES = 99

// ParseMethod returns the Method for the given name, case-insensitively.
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(name) {
	case "", "default":
		return MethodDefault, nil
	case "store", "none":
		return MethodStore, nil
	case "deflate":
		return MethodDeflate, nil
	case "zstd":
		return MethodZstd, nil
	case "xz":
		return MethodXZ, nil
	default:
		return MethodDefault, fmt.Errorf("unsupported compression method: %s", name)
	}
}

func (m Method) String() string {
	switch m {
	case MethodDefault:
		return "default"
	case MethodStore:
		return "store"
	case MethodDeflate:
		return "deflate"
	case MethodZstd:
		return "zstd"
	case MethodXZ:
		return "xz"
	default:
		return fmt.Sprintf("method(%d)", int32(m))
	}
}

// UnmarshalFlag implements go-flags' Unmarshaler.
func (m *Method) UnmarshalFlag(value string) (err error) {
	*m, err = ParseMethod(value)
	return
}

// Supported returns true if entries can be written with this method.
func (m Method) Supported() bool {
	switch m {
	case MethodDefault, MethodStore, MethodDeflate, MethodZstd, MethodXZ:
		return true
	default:
		return false
	}
}

func (m Method) zipMethod() uint16 {
	if m == MethodDefault {
		return zip.Deflate
	}

	return uint16(m)
}

// Encryption is the encryption method of an entry, using libzip numbering.
type Encryption uint16

const (
	EncryptionNone        Encryption = 0
	EncryptionTraditional Encryption = 1
	EncryptionAES128      Encryption = 0x0101
	EncryptionAES192      Encryption = 0x0102
	EncryptionAES256      Encryption = 0x0103
)

// ParseEncryption returns the Encryption for the given name, case-insensitively.
func ParseEncryption(name string) (Encryption, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return EncryptionNone, nil
	case "traditional", "zipcrypto", "pkware":
		return EncryptionTraditional, nil
	case "aes128", "aes-128":
		return EncryptionAES128, nil
	case "aes192", "aes-192":
		return EncryptionAES192, nil
	case "aes256", "aes-256", "aes":
		return EncryptionAES256, nil
	default:
		return EncryptionNone, fmt.Errorf("unsupported encryption method: %s", name)
	}
}

func (e Encryption) String() string {
	switch e {
	case EncryptionNone:
		return "none"
	case EncryptionTraditional:
		return "traditional"
	case EncryptionAES128:
		return "aes128"
	case EncryptionAES192:
		return "aes192"
	case EncryptionAES256:
		return "aes256"
	default:
		return fmt.Sprintf("encryption(%#04x)", uint16(e))
	}
}

// UnmarshalFlag implements go-flags' Unmarshaler.
func (e *Encryption) UnmarshalFlag(value string) (err error) {
	*e, err = ParseEncryption(value)
	return
}

// Supported returns true if entries can be written with this encryption method.
func (e Encryption) Supported() bool {
	switch e {
	case EncryptionNone, EncryptionTraditional, EncryptionAES128, EncryptionAES192, EncryptionAES256:
		return true
	default:
		return false
	}
}

func (e Encryption) yekaMethod() yzip.EncryptionMethod {
	switch e {
	case EncryptionTraditional:
		return yzip.StandardEncryption
	case EncryptionAES128:
		return yzip.AES128Encryption
	case EncryptionAES192:
		return yzip.AES192Encryption
	default:
		return yzip.AES256Encryption
	}
}

// describe returns the effective compression and encryption methods of an entry read from disk.
func describe(fh *zip.FileHeader) (Method, Encryption) {
	if fh.Flags&0x1 == 0 {
		return Method(fh.Method), EncryptionNone
	}

	if fh.Method != methodAES {
		return Method(fh.Method), EncryptionTraditional
	}

	// AES extra field 0x9901: version (2), vendor "AE" (2), strength (1), actual method (2).
	for extra := fh.Extra; len(extra) >= 4; {
		tag := binary.LittleEndian.Uint16(extra[0:2])
		size := int(binary.LittleEndian.Uint16(extra[2:4]))
		if len(extra) < 4+size {
			break
		}

		if data := extra[4 : 4+size]; tag == 0x9901 && size >= 7 {
			method := Method(binary.LittleEndian.Uint16(data[5:7]))
			switch data[4] {
			case 1:
				return method, EncryptionAES128
			case 2:
				return method, EncryptionAES192
			default:
				return method, EncryptionAES256
			}
		}

		extra = extra[4+size:]
	}

	return MethodDeflate, EncryptionAES256
}

var codecs = map[uint16]Codec{
	zip.Deflate:        flateCodec{level: flate.DefaultCompression},
	uint16(MethodZstd): zstdCodec{},
	uint16(MethodXZ):   xzCodec{},
}

// registerCompressors registers every supported method with the register function of a zip.Writer.
func registerCompressors(register func(method uint16, comp zip.Compressor)) {
	for method, c := range codecs {
		register(method, c.NewEncoder)
	}
}

// registerDecompressors registers every supported method with the register function of a zip.Reader.
func registerDecompressors(register func(method uint16, dcomp zip.Decompressor)) {
	for method, c := range codecs {
		register(method, decompressor(c))
	}
}

func decompressor(c Codec) func(io.Reader) io.ReadCloser {
	return func(r io.Reader) io.ReadCloser {
		rc, err := c.NewDecoder(r)
		if err != nil {
			return errReadCloser{err}
		}

		return rc
	}
}
