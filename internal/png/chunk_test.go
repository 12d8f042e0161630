package png

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

const (
	testMessage = "This is where your secret message will be!"
	testCRC     = uint32(2882656334)
)

// rawChunk builds the wire form of a chunk with an explicit length and CRC so
// tests can forge broken chunks.
func rawChunk(length uint32, typ string, data []byte, crc uint32) []byte {
	var buf []byte
	buf = binary.BigEndian.AppendUint32(buf, length)
	buf = append(buf, typ...)
	buf = append(buf, data...)
	buf = binary.BigEndian.AppendUint32(buf, crc)
	return buf
}

func testingChunk(t *testing.T) *Chunk {
	t.Helper()
	c, err := ParseChunk(rawChunk(42, "RuSt", []byte(testMessage), testCRC))
	if err != nil {
		t.Fatalf("ParseChunk: %v", err)
	}
	return c
}

func TestNewChunk(t *testing.T) {
	c := NewChunk(mustChunkType(t, "RuSt"), []byte(testMessage))
	if c.Length() != 42 {
		t.Errorf("Length() = %d, want 42", c.Length())
	}
	if c.CRC() != testCRC {
		t.Errorf("CRC() = %d, want %d", c.CRC(), testCRC)
	}
}

func TestParseChunk(t *testing.T) {
	c := testingChunk(t)

	if c.Length() != 42 {
		t.Errorf("Length() = %d, want 42", c.Length())
	}
	if c.Type().String() != "RuSt" {
		t.Errorf("Type() = %s, want RuSt", c.Type())
	}
	if c.CRC() != testCRC {
		t.Errorf("CRC() = %d, want %d", c.CRC(), testCRC)
	}

	s, err := c.DataString()
	if err != nil {
		t.Fatalf("DataString: %v", err)
	}
	if s != testMessage {
		t.Errorf("DataString() = %q, want %q", s, testMessage)
	}
}

func TestParseChunkBadCRC(t *testing.T) {
	_, err := ParseChunk(rawChunk(42, "RuSt", []byte(testMessage), testCRC-1))
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("err = %v, want ErrChecksumMismatch", err)
	}

	var mismatch *ChecksumMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("err = %T, want *ChecksumMismatchError", err)
	}
	if mismatch.Expected != testCRC-1 || mismatch.Actual != testCRC {
		t.Errorf("mismatch = %+v, want expected %d actual %d", mismatch, testCRC-1, testCRC)
	}
}

func TestParseChunkErrors(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want error
	}{
		{
			name: "empty",
			in:   nil,
			want: ErrTooShort,
		},
		{
			name: "eleven bytes",
			in:   make([]byte, 11),
			want: ErrTooShort,
		},
		{
			name: "length past end",
			in:   rawChunk(43, "RuSt", []byte(testMessage), testCRC),
			want: ErrTooShort,
		},
		{
			name: "max length",
			in:   rawChunk(0xFFFFFFFF, "RuSt", []byte(testMessage), testCRC),
			want: ErrTooShort,
		},
		{
			name: "reserved bit",
			in:   rawChunk(42, "Rust", []byte(testMessage), testCRC),
			want: ErrInvalidType,
		},
		{
			name: "digit in type",
			in:   rawChunk(42, "Ru1t", []byte(testMessage), testCRC),
			want: ErrInvalidType,
		},
		{
			name: "non ascii type",
			in:   rawChunk(42, "R\xffSt", []byte(testMessage), testCRC),
			want: ErrInvalidType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseChunk(tt.in)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestChunkMarshalRoundTrip(t *testing.T) {
	payloads := [][]byte{
		nil,
		[]byte(testMessage),
		{0x00, 0xFF, 0x89, 0x50},
		bytes.Repeat([]byte{0xAB}, 4096),
	}

	for _, data := range payloads {
		c := NewChunk(mustChunkType(t, "stEg"), data)
		raw := c.Marshal()

		if got := binary.BigEndian.Uint32(raw[:4]); got != uint32(len(data)) {
			t.Errorf("length field = %d, want %d", got, len(data))
		}
		if len(raw) != minChunkSize+len(data) {
			t.Errorf("len(Marshal()) = %d, want %d", len(raw), minChunkSize+len(data))
		}

		parsed, err := ParseChunk(raw)
		if err != nil {
			t.Fatalf("ParseChunk: %v", err)
		}
		if parsed.Type() != c.Type() || !bytes.Equal(parsed.Data(), c.Data()) || parsed.CRC() != c.CRC() {
			t.Errorf("round trip mismatch: got %v, want %v", parsed, c)
		}
	}
}

func TestChunkMarshalMatchesWireLayout(t *testing.T) {
	want := rawChunk(42, "RuSt", []byte(testMessage), testCRC)
	if got := testingChunk(t).Marshal(); !bytes.Equal(got, want) {
		t.Errorf("Marshal() = %x, want %x", got, want)
	}
}

func TestParseChunkDetectsBitFlips(t *testing.T) {
	raw := NewChunk(mustChunkType(t, "RuSt"), []byte(testMessage)).Marshal()

	// every bit of the data field
	for i := 8; i < 8+len(testMessage); i++ {
		for bit := 0; bit < 8; bit++ {
			flipped := bytes.Clone(raw)
			flipped[i] ^= 1 << bit
			if _, err := ParseChunk(flipped); !errors.Is(err, ErrChecksumMismatch) {
				t.Fatalf("byte %d bit %d: err = %v, want ErrChecksumMismatch", i, bit, err)
			}
		}
	}

	// case flips that keep the type valid
	for _, i := range []int{4, 5, 7} {
		flipped := bytes.Clone(raw)
		flipped[i] ^= 0x20
		if _, err := ParseChunk(flipped); !errors.Is(err, ErrChecksumMismatch) {
			t.Errorf("type byte %d: err = %v, want ErrChecksumMismatch", i-4, err)
		}
	}
}

func TestParseChunkIgnoresTrailingBytes(t *testing.T) {
	raw := append(rawChunk(42, "RuSt", []byte(testMessage), testCRC), 1, 2, 3)
	if _, err := ParseChunk(raw); err != nil {
		t.Fatalf("ParseChunk: %v", err)
	}
}

func TestChunkDataStringInvalidUTF8(t *testing.T) {
	c := NewChunk(mustChunkType(t, "RuSt"), []byte{0xff, 0xfe, 0xfd})
	if _, err := c.DataString(); !errors.Is(err, ErrTextDecode) {
		t.Fatalf("err = %v, want ErrTextDecode", err)
	}
}

func TestChunkString(t *testing.T) {
	s := testingChunk(t).String()
	for _, want := range []string{"Length: 42", "Type: RuSt", "Data: 42 bytes", "Crc: 2882656334"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}
