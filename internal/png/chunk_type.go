package png

import (
	"github.com/pkg/errors"
)

// ChunkType is the 4 byte type code of a chunk. The case of each byte
// carries one property bit: uppercase means the bit is set.
type ChunkType [4]byte

// ChunkTypeFromBytes accepts any 4 ASCII bytes. The result may still report
// itself as not valid.
func ChunkTypeFromBytes(b [4]byte) (ChunkType, error) {
	for _, c := range b {
		if c > 0x7f {
			return ChunkType{}, errors.Wrapf(ErrInvalidEncoding, "byte %#x", c)
		}
	}

	return ChunkType(b), nil
}

// ParseChunkType reads the first 4 bytes of name, all of which must be
// ASCII letters.
func ParseChunkType(name string) (ChunkType, error) {
	if len(name) < 4 {
		return ChunkType{}, errors.Wrapf(ErrInvalidEncoding, "chunk type %q is shorter than 4 bytes", name)
	}

	var t ChunkType
	for i := 0; i < 4; i++ {
		if !isLetter(name[i]) {
			return ChunkType{}, errors.Wrapf(ErrInvalidAlphabeticEncoding, "chunk type %q", name)
		}
		t[i] = name[i]
	}

	return t, nil
}

// Bytes
func (t ChunkType) Bytes() [4]byte {
	return t
}

// String
func (t ChunkType) String() string {
	return string(t[:])
}

// IsValid reports whether every byte is a letter and the reserved bit is
// valid.
func (t ChunkType) IsValid() bool {
	for _, c := range t {
		if !isLetter(c) {
			return false
		}
	}

	return t.IsReservedBitValid()
}

// IsCritical is false for ancillary chunks.
func (t ChunkType) IsCritical() bool {
	return isUpper(t[0])
}

// IsPublic is false for private chunks.
func (t ChunkType) IsPublic() bool {
	return isUpper(t[1])
}

func (t ChunkType) IsReservedBitValid() bool {
	return isUpper(t[2])
}

func (t ChunkType) IsSafeToCopy() bool {
	return isLower(t[3])
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

func isLower(c byte) bool { return c >= 'a' && c <= 'z' }

func isLetter(c byte) bool { return isUpper(c) || isLower(c) }
