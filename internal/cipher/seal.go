package cipher

import (
	"crypto/aes"
	cryptocipher "crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize  = 32
	keySize   = 32
	nonceSize = 12

	DefaultIterations = 100000
)

var (
	ErrEmptyPassphrase = errors.New("passphrase must not be empty")
	ErrSealedTooShort  = errors.New("sealed data is too short")
	ErrOpen            = errors.New("cannot open sealed data: wrong passphrase or tampered data")
)

// Sealer encrypts chunk data with AES-256-GCM under a key derived from a
// passphrase with PBKDF2-SHA256. Sealed data is laid out as
// salt || nonce || ciphertext.
type Sealer struct {
	Iterations int
	Rand       io.Reader
}

func NewSealer(iterations int) *Sealer {
	if iterations <= 0 {
		iterations = DefaultIterations
	}

	return &Sealer{
		Iterations: iterations,
		Rand:       rand.Reader,
	}
}

func (s *Sealer) deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, s.Iterations, keySize, sha256.New)
}

func (s *Sealer) aead(passphrase string, salt []byte) (cryptocipher.AEAD, error) {
	block, err := aes.NewCipher(s.deriveKey(passphrase, salt))
	if err != nil {
		return nil, errors.Wrap(err, "creating block cipher")
	}

	return cryptocipher.NewGCM(block)
}

// Seal
func (s *Sealer) Seal(plaintext []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}

	head := make([]byte, saltSize+nonceSize)
	if _, err := io.ReadFull(s.Rand, head); err != nil {
		return nil, errors.Wrap(err, "reading salt and nonce")
	}

	aead, err := s.aead(passphrase, head[:saltSize])
	if err != nil {
		return nil, err
	}

	return aead.Seal(head, head[saltSize:], plaintext, nil), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	if len(sealed) < saltSize+nonceSize {
		return nil, errors.Wrapf(ErrSealedTooShort, "got %d bytes", len(sealed))
	}

	salt := sealed[:saltSize]
	nonce := sealed[saltSize : saltSize+nonceSize]

	aead, err := s.aead(passphrase, salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, sealed[saltSize+nonceSize:], nil)
	if err != nil {
		return nil, ErrOpen
	}

	return plaintext, nil
}
