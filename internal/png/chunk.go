package png

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

const (
	lengthSize = 4
	typeSize   = 4
	crcSize    = 4

	// minChunkSize is a chunk with an empty data field.
	minChunkSize = lengthSize + typeSize + crcSize
)

// Chunk is a single length prefixed, CRC protected record of a PNG stream.
// The length and CRC are derived from the type and data, never stored.
type Chunk struct {
	typ  ChunkType
	data []byte
}

// NewChunk takes ownership of data. The chunk type is not validated here.
func NewChunk(typ ChunkType, data []byte) *Chunk {
	return &Chunk{
		typ:  typ,
		data: data,
	}
}

// ParseChunk decodes the chunk at the start of b. Bytes past the end of the
// chunk are ignored.
func ParseChunk(b []byte) (*Chunk, error) {
	c, _, err := readChunk(b)
	return c, err
}

// readChunk decodes the chunk at the start of b and returns it along with the
// number of bytes it occupied.
func readChunk(b []byte) (*Chunk, int, error) {
	if len(b) < minChunkSize {
		return nil, 0, errors.Wrapf(ErrTooShort, "got %d bytes, need at least %d", len(b), minChunkSize)
	}

	length := binary.BigEndian.Uint32(b[:lengthSize])

	var raw [4]byte
	copy(raw[:], b[lengthSize:lengthSize+typeSize])
	typ, err := ChunkTypeFromBytes(raw)
	if err != nil {
		return nil, 0, errors.Wrap(ErrInvalidType, err.Error())
	}
	if !typ.IsValid() {
		return nil, 0, errors.Wrapf(ErrInvalidType, "%q", typ.String())
	}

	// compare in uint64 so a huge length cannot overflow int on 32 bit
	total := uint64(minChunkSize) + uint64(length)
	if uint64(len(b)) < total {
		return nil, 0, errors.Wrapf(ErrTooShort, "chunk %s declares %d data bytes, only %d available",
			typ, length, len(b)-minChunkSize)
	}

	start := lengthSize + typeSize
	end := start + int(length)

	data := make([]byte, length)
	copy(data, b[start:end])

	c := &Chunk{
		typ:  typ,
		data: data,
	}

	stored := binary.BigEndian.Uint32(b[end : end+crcSize])
	if actual := c.CRC(); actual != stored {
		return nil, 0, &ChecksumMismatchError{Expected: stored, Actual: actual}
	}

	return c, end + crcSize, nil
}

// Length is the size of the data field.
func (c *Chunk) Length() uint32 {
	return uint32(len(c.data))
}

// Type
func (c *Chunk) Type() ChunkType {
	return c.typ
}

// Data returns the chunk payload. Callers must not modify it.
func (c *Chunk) Data() []byte {
	return c.data
}

// CRC computes the CRC-32 over the type code followed by the data.
func (c *Chunk) CRC() uint32 {
	h := crc32.NewIEEE()
	h.Write(c.typ[:])
	h.Write(c.data)
	return h.Sum32()
}

// DataString returns the payload as text, failing with ErrTextDecode when it
// is not valid UTF-8.
func (c *Chunk) DataString() (string, error) {
	if !utf8.Valid(c.data) {
		return "", errors.Wrapf(ErrTextDecode, "chunk %s", c.typ)
	}

	return string(c.data), nil
}

// Marshal encodes the chunk in its wire form: length, type, data, CRC.
func (c *Chunk) Marshal() []byte {
	buf := make([]byte, 0, minChunkSize+len(c.data))
	buf = binary.BigEndian.AppendUint32(buf, c.Length())
	buf = append(buf, c.typ[:]...)
	buf = append(buf, c.data...)
	buf = binary.BigEndian.AppendUint32(buf, c.CRC())
	return buf
}

// String renders a short human readable summary. It is not the wire format.
func (c *Chunk) String() string {
	var sb strings.Builder
	sb.WriteString("Chunk {\n")
	fmt.Fprintf(&sb, "  Length: %d\n", c.Length())
	fmt.Fprintf(&sb, "  Type: %s\n", c.typ)
	fmt.Fprintf(&sb, "  Data: %d bytes\n", len(c.data))
	fmt.Fprintf(&sb, "  Crc: %d\n", c.CRC())
	sb.WriteString("}")
	return sb.String()
}
