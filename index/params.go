// Package index implements the homomorphic index engine: a BGV
// (batch-encoded, BFV-equivalent) context for encrypting integers and
// strings, and the equality/range comparison protocols evaluated entirely
// over ciphertexts.
package index

import (
	"github.com/luxfi/lattice/v7/schemes/bgv"

	"github.com/luxfi/vaultdb/vaulterr"
)

// ParametersLiteral is a user-friendly BGV parameter specification.
type ParametersLiteral struct {
	// LogN is log2 of the polynomial modulus degree.
	LogN int
	// LogQ is the bit-length chain of the ciphertext coefficient modulus.
	LogQ []int
	// LogP is the bit-length chain of the auxiliary (key-switching) modulus.
	LogP []int
	// PlaintextModulus is the batch-encoder's plaintext modulus t.
	PlaintextModulus uint64
	// MaxRangeBits caps the bit width the range comparison operations
	// accept (0 means 32). The comparator's multiplicative depth is checked
	// against the coefficient modulus chain separately (checkRangeBudget).
	MaxRangeBits int
}

// DefaultParameters returns the default parameter set: N=8192, plaintext
// modulus 1032193 (a 20-bit NTT-friendly prime), and an 8-prime coefficient
// modulus chain. The range comparator's exclusive-prefix-product scan
// (see index/compare.go) costs ceil(log2(bits))+1 multiplicative levels,
// so an 8-prime chain (7 usable levels) comfortably covers every bit width
// up to 64, including the default MaxRangeBits of 32.
func DefaultParameters() ParametersLiteral {
	return ParametersLiteral{
		LogN:             13,
		LogQ:             []int{60, 40, 40, 40, 40, 40, 40, 60},
		LogP:             []int{60},
		PlaintextModulus: 1032193,
		MaxRangeBits:     32,
	}
}

// Parameters wraps the constructed BGV parameter set.
type Parameters struct {
	bgv.Parameters
	maxRangeBits int
}

// NewParametersFromLiteral constructs Parameters, validating the literal.
func NewParametersFromLiteral(lit ParametersLiteral) (Parameters, error) {
	p, err := bgv.NewParametersFromLiteral(bgv.ParametersLiteral{
		LogN:             lit.LogN,
		LogQ:             lit.LogQ,
		LogP:             lit.LogP,
		PlaintextModulus: lit.PlaintextModulus,
	})
	if err != nil {
		return Parameters{}, vaulterr.Wrap(vaulterr.Internal, "index.NewParametersFromLiteral", err)
	}

	maxBits := lit.MaxRangeBits
	if maxBits == 0 {
		maxBits = 32
	}
	return Parameters{Parameters: p, maxRangeBits: maxBits}, nil
}

// Slots returns the number of batch-encoder slots (equal to N).
func (p Parameters) Slots() int { return 1 << p.Parameters.LogN() }
