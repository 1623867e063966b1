// Package sealer implements AES-256-GCM sealing of record payloads.
//
// The wire layout is fixed: IV (12 bytes) ‖ TAG (16 bytes) ‖ ciphertext.
// This differs from crypto/cipher's native cipher.AEAD.Seal framing, which
// appends the tag after the ciphertext rather than before it, so Seal/Open
// here re-slice the GCM output to match the layout other implementations of
// this format (and any on-disk data already written in it) expect.
package sealer

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"

	"github.com/luxfi/vaultdb/vaulterr"
)

const (
	keySize   = 32 // AES-256
	ivSize    = 12
	tagSize   = 16
	headerLen = ivSize + tagSize
)

// Sealer encrypts and decrypts payloads with a fixed AES-256-GCM key.
type Sealer struct {
	gcm cipher.AEAD
}

// New builds a Sealer from a 32-byte AES-256 key.
func New(key []byte) (*Sealer, error) {
	if len(key) != keySize {
		return nil, vaulterr.New(vaulterr.Internal, "sealer.New")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.Internal, "sealer.New", err)
	}
	gcm, err := cipher.NewGCMWithTagSize(block, tagSize)
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.Internal, "sealer.New", err)
	}
	return &Sealer{gcm: gcm}, nil
}

// Seal encrypts plaintext and returns IV ‖ TAG ‖ ciphertext.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, vaulterr.Wrap(vaulterr.Internal, "sealer.Seal", err)
	}

	// gcm.Seal appends ciphertext||tag after the provided dst; split the
	// trailing tag off so we can place it ahead of the ciphertext instead.
	sealed := s.gcm.Seal(nil, iv, plaintext, nil)
	ct := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	out := make([]byte, 0, headerLen+len(ct))
	out = append(out, iv...)
	out = append(out, tag...)
	out = append(out, ct...)
	return out, nil
}

// Open verifies and decrypts a IV ‖ TAG ‖ ciphertext blob produced by Seal.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < headerLen {
		return nil, vaulterr.New(vaulterr.AuthFail, "sealer.Open")
	}
	iv := sealed[:ivSize]
	tag := sealed[ivSize:headerLen]
	ct := sealed[headerLen:]

	// Reassemble into the ciphertext||tag order crypto/cipher expects.
	combined := make([]byte, 0, len(ct)+tagSize)
	combined = append(combined, ct...)
	combined = append(combined, tag...)

	plaintext, err := s.gcm.Open(nil, iv, combined, nil)
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.AuthFail, "sealer.Open", err)
	}
	return plaintext, nil
}

// SealBatch applies Seal to every element, stopping at the first error.
func (s *Sealer) SealBatch(plaintexts [][]byte) ([][]byte, error) {
	out := make([][]byte, len(plaintexts))
	for i, pt := range plaintexts {
		sealed, err := s.Seal(pt)
		if err != nil {
			return nil, err
		}
		out[i] = sealed
	}
	return out, nil
}

// OpenBatch applies Open to every element, stopping at the first error.
func (s *Sealer) OpenBatch(sealed [][]byte) ([][]byte, error) {
	out := make([][]byte, len(sealed))
	for i, blob := range sealed {
		pt, err := s.Open(blob)
		if err != nil {
			return nil, err
		}
		out[i] = pt
	}
	return out, nil
}

// GenerateKey returns a fresh random AES-256 key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, vaulterr.Wrap(vaulterr.Internal, "sealer.GenerateKey", err)
	}
	return key, nil
}
