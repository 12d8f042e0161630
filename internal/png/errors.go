package png

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidEncoding           = errors.New("only bytes in the ASCII table are accepted")
	ErrInvalidAlphabeticEncoding = errors.New("only ASCII alphabetic bytes are accepted")
	ErrTooShort                  = errors.New("not enough bytes to hold a chunk")
	ErrInvalidType               = errors.New("invalid chunk type")
	ErrChecksumMismatch          = errors.New("chunk checksum mismatch")
	ErrInvalidSignature          = errors.New("not a PNG file")
	ErrNotFound                  = errors.New("chunk type not found")
	ErrTextDecode                = errors.New("chunk data is not valid UTF-8")
)

// ChecksumMismatchError carries the stored (Expected) and recomputed (Actual)
// CRC of a chunk that failed verification.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("invalid CRC: expected %d but got %d", e.Expected, e.Actual)
}

// Is makes errors.Is(err, ErrChecksumMismatch) match.
func (e *ChecksumMismatchError) Is(target error) bool {
	return target == ErrChecksumMismatch
}
