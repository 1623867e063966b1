package index

import (
	"github.com/luxfi/lattice/v7/core/rlwe"
)

// KeyGenerator creates BGV key material, mirroring the constructor shape
// used throughout the lattice library's schemes.
type KeyGenerator struct {
	params Parameters
	kgen   *rlwe.KeyGenerator
}

// NewKeyGenerator builds a KeyGenerator for params.
func NewKeyGenerator(params Parameters) *KeyGenerator {
	return &KeyGenerator{
		params: params,
		kgen:   rlwe.NewKeyGenerator(params.Parameters.Parameters),
	}
}

// GenKeyPair generates a fresh secret/public key pair.
func (kg *KeyGenerator) GenKeyPair() (*rlwe.SecretKey, *rlwe.PublicKey) {
	return kg.kgen.GenKeyPairNew()
}

// GenRelinearizationKey generates the relinearization key needed after
// every ciphertext-ciphertext multiplication.
func (kg *KeyGenerator) GenRelinearizationKey(sk *rlwe.SecretKey) *rlwe.RelinearizationKey {
	return kg.kgen.GenRelinearizationKeyNew(sk)
}

// GenGaloisKeys generates Galois keys for the given rotation steps. The
// index engine does not need slot rotations for its current operations,
// but the engine accepts them so a full-mode instance can be extended with
// batched multi-record predicates without a key-generation migration.
func (kg *KeyGenerator) GenGaloisKeys(steps []int, sk *rlwe.SecretKey) []*rlwe.GaloisKey {
	galEls := make([]uint64, len(steps))
	for i, s := range steps {
		galEls[i] = kg.params.GaloisElement(s)
	}
	return kg.kgen.GenGaloisKeysNew(galEls, sk)
}
