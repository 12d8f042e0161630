// Package png reads and writes the chunk layer of PNG files. Chunk data is
// treated as opaque bytes; pixel data is never decoded.
package png

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
)

// IENDChunk is the type of the trailing chunk of a standard PNG stream.
const IENDChunk = "IEND"

// Signature is the 8 byte header every PNG stream starts with.
var Signature = [8]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// PNG represents a png image as an ordered list of chunks.
type PNG struct {
	chunks []*Chunk
}

// New builds a PNG from already decoded chunks.
func New(chunks []*Chunk) *PNG {
	return &PNG{chunks: chunks}
}

// Parse decodes a whole PNG stream. It fails if the signature is wrong or if
// any chunk fails to decode; a partially valid stream is never returned.
func Parse(b []byte) (*PNG, error) {
	if len(b) < len(Signature) || !bytes.Equal(b[:len(Signature)], Signature[:]) {
		return nil, ErrInvalidSignature
	}

	p := &PNG{}
	offset := len(Signature)
	for offset < len(b) {
		c, n, err := readChunk(b[offset:])
		if err != nil {
			return nil, errors.Wrapf(err, "chunk %d at offset %d", len(p.chunks), offset)
		}

		p.chunks = append(p.chunks, c)
		offset += n
	}

	return p, nil
}

// AppendChunk adds c after the last chunk. Duplicate types are allowed.
func (p *PNG) AppendChunk(c *Chunk) {
	p.chunks = append(p.chunks, c)
}

// InsertChunk places c at index i, shifting later chunks back.
func (p *PNG) InsertChunk(i int, c *Chunk) error {
	if i < 0 || i > len(p.chunks) {
		return errors.Errorf("insert index %d out of range [0, %d]", i, len(p.chunks))
	}

	p.chunks = append(p.chunks, nil)
	copy(p.chunks[i+1:], p.chunks[i:])
	p.chunks[i] = c
	return nil
}

// InsertBeforeEnd places c right before the first IEND chunk so the stream
// keeps its standard layout. Without an IEND chunk it appends.
func (p *PNG) InsertBeforeEnd(c *Chunk) {
	for i, n := range p.chunks {
		if n.Type().String() == IENDChunk {
			// index is always in range here
			_ = p.InsertChunk(i, c)
			return
		}
	}

	p.AppendChunk(c)
}

// RemoveChunk removes the first chunk whose type is chunkType and returns it.
func (p *PNG) RemoveChunk(chunkType string) (*Chunk, error) {
	for i, c := range p.chunks {
		if c.Type().String() == chunkType {
			p.chunks = append(p.chunks[:i], p.chunks[i+1:]...)
			return c, nil
		}
	}

	return nil, errors.Wrapf(ErrNotFound, "%q", chunkType)
}

// ChunkByType returns the first chunk of the given type, or nil.
func (p *PNG) ChunkByType(chunkType string) *Chunk {
	for _, c := range p.chunks {
		if c.Type().String() == chunkType {
			return c
		}
	}

	return nil
}

// ChunksByType returns every chunk of the given type in stream order.
func (p *PNG) ChunksByType(chunkType string) []*Chunk {
	var out []*Chunk
	for _, c := range p.chunks {
		if c.Type().String() == chunkType {
			out = append(out, c)
		}
	}

	return out
}

// Chunks returns a copy of the chunk list.
func (p *PNG) Chunks() []*Chunk {
	out := make([]*Chunk, len(p.chunks))
	copy(out, p.chunks)
	return out
}

func (p *PNG) Len() int {
	return len(p.chunks)
}

// Marshal encodes the signature followed by every chunk in order.
func (p *PNG) Marshal() []byte {
	size := len(Signature)
	for _, c := range p.chunks {
		size += minChunkSize + len(c.data)
	}

	buf := make([]byte, 0, size)
	buf = append(buf, Signature[:]...)
	for _, c := range p.chunks {
		buf = append(buf, c.Marshal()...)
	}

	return buf
}

// String lists every chunk summary, one after the other.
func (p *PNG) String() string {
	lines := make([]string, len(p.chunks))
	for i, c := range p.chunks {
		lines[i] = c.String()
	}

	return strings.Join(lines, "\n")
}
