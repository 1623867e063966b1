package index

import (
	"github.com/luxfi/lattice/v7/core/rlwe"

	"github.com/luxfi/vaultdb/vaulterr"
)

// encodePlain encodes v into slot 0 of a fresh plaintext (no encryption).
func (e *Engine) encodePlain(v uint64) (*rlwe.Plaintext, error) {
	values := e.newZeroSlots()
	values[0] = v % e.params.PlaintextModulus()

	pt := e.plaintextAtMaxLevel()
	if err := e.encoder.Encode(values, pt); err != nil {
		return nil, vaulterr.Wrap(vaulterr.Internal, "index.encodePlain", err)
	}
	return pt, nil
}

// CompareEncrypted decides whether the ciphertext ct encrypts v, without a
// data-dependent branch on its content: it computes d := ct - encode(v),
// squares d to suppress sign, relinearizes, and decrypts only that result.
func (e *Engine) CompareEncrypted(ct []byte, v uint64) (bool, error) {
	if err := e.requireFull("index.CompareEncrypted"); err != nil {
		return false, err
	}

	ciphertext, err := unmarshalCiphertext(ct)
	if err != nil {
		return false, err
	}

	vPt, err := e.encodePlain(v)
	if err != nil {
		return false, err
	}

	d, err := e.evaluator.SubNew(ciphertext, vPt)
	if err != nil {
		return false, vaulterr.Wrap(vaulterr.Internal, "index.CompareEncrypted", err)
	}

	squared, err := e.evaluator.MulRelinNew(d, d)
	if err != nil {
		return false, vaulterr.Wrap(vaulterr.Internal, "index.CompareEncrypted", err)
	}

	result, err := e.decryptSlot0(squared)
	if err != nil {
		return false, err
	}
	return result == 0, nil
}

// EncryptForRangeQuery splits v into bits LSB-first (bit_position 0 = LSB)
// and encrypts each independently. v must lie in [0, 2^bits).
func (e *Engine) EncryptForRangeQuery(v uint64, bits int) ([][]byte, error) {
	if bits <= 0 || bits > 64 {
		return nil, vaulterr.New(vaulterr.EncodeRange, "index.EncryptForRangeQuery")
	}
	if bits < 64 && v >= (uint64(1)<<uint(bits)) {
		return nil, vaulterr.New(vaulterr.EncodeRange, "index.EncryptForRangeQuery")
	}

	out := make([][]byte, bits)
	for i := 0; i < bits; i++ {
		bit := (v >> uint(i)) & 1
		env, err := e.EncryptInt(bit)
		if err != nil {
			return nil, err
		}
		out[i] = env
	}
	return out, nil
}

// rangeComparatorDepth is the multiplicative depth comparatorResult spends:
// ceil(log2(bits)) levels for the exclusive-prefix-product scan (see
// exclusivePrefixProducts), plus one more for the per-bit contribution
// multiply.
func rangeComparatorDepth(bits int) int {
	depth := 0
	for (1 << uint(depth)) < bits {
		depth++
	}
	return depth + 1
}

// checkRangeBudget rejects a comparator call before it runs a single
// multiplication, on two grounds: bits exceeds the operator-configured
// ceiling (params.maxRangeBits), or the comparator's actual multiplicative
// depth for this bit width exceeds the levels a fresh ciphertext carries
// under the configured modulus chain (available, from ct.Level()).
func (e *Engine) checkRangeBudget(available, bits int, op string) error {
	if bits > e.params.maxRangeBits {
		return vaulterr.New(vaulterr.CryptoCapacity, op)
	}
	if rangeComparatorDepth(bits) > available {
		return vaulterr.New(vaulterr.CryptoCapacity, op)
	}
	return nil
}

// exclusivePrefixProducts returns, for each index j, the product of
// y[0:j] (the identity ciphertext when j == 0). It uses a Hillis-Steele
// scan, so the multiplicative depth of the result is ceil(log2(len(y)))
// rather than len(y): each round doubles the stride and only depends on
// the previous round's output, so position j's final value is ready after
// ceil(log2(j+1)) sequential ciphertext-ciphertext multiplications.
func (e *Engine) exclusivePrefixProducts(y []*rlwe.Ciphertext, identity *rlwe.Ciphertext) ([]*rlwe.Ciphertext, error) {
	n := len(y)
	s := make([]*rlwe.Ciphertext, n)
	copy(s, y)
	for d := 1; d < n; d *= 2 {
		next := make([]*rlwe.Ciphertext, n)
		copy(next, s)
		for k := d; k < n; k++ {
			prod, err := e.evaluator.MulRelinNew(s[k], s[k-d])
			if err != nil {
				return nil, vaulterr.Wrap(vaulterr.Internal, "index.exclusivePrefixProducts", err)
			}
			next[k] = prod
		}
		s = next
	}

	out := make([]*rlwe.Ciphertext, n)
	out[0] = identity
	copy(out[1:], s[:n-1])
	return out, nil
}

// comparatorResult runs the MSB-down running equal-so-far/running-target-so-far
// comparator shared by CompareLessThan and CompareGreaterThan. wantLessThan
// selects which side's bit feeds the accumulator: when true, x's complement
// at the positions where q's bit is 1; when false, x itself at the positions
// where q's bit is 0, matching the textbook MSB-down bit comparator. The
// equal-so-far gate for every bit position is computed as one batched
// prefix-product scan (exclusivePrefixProducts) instead of a sequential
// per-bit chain, so the whole comparator costs O(log bits) multiplicative
// levels rather than O(bits).
func (e *Engine) comparatorResult(encBits [][]byte, q uint64, bits int, wantLessThan bool) (bool, error) {
	if err := e.requireFull("index.comparatorResult"); err != nil {
		return false, err
	}
	if len(encBits) != bits {
		return false, vaulterr.New(vaulterr.EncodeRange, "index.comparatorResult")
	}

	onePt, err := e.encodePlain(1)
	if err != nil {
		return false, err
	}
	identity, err := e.encryptSlot0(1)
	if err != nil {
		return false, err
	}
	if err := e.checkRangeBudget(identity.Level(), bits, "index.comparatorResult"); err != nil {
		return false, err
	}

	// bitEq[j]/bitHit[j]/hit[j] describe bit position i = bits-1-j, so j
	// runs MSB first (j=0) to LSB last (j=bits-1).
	bitEq := make([]*rlwe.Ciphertext, bits)
	bitHit := make([]*rlwe.Ciphertext, bits)
	hit := make([]bool, bits)
	for j := 0; j < bits; j++ {
		i := bits - 1 - j
		xi, err := unmarshalCiphertext(encBits[i])
		if err != nil {
			return false, err
		}
		qi := (q >> uint(i)) & 1

		notXi, err := e.bitNot(xi, onePt)
		if err != nil {
			return false, err
		}

		// bitHit is true at this position iff this bit alone decides the
		// comparison in the accumulator's favor, given prefix equality.
		if wantLessThan {
			hit[j] = qi == 1
			bitHit[j] = notXi // x's bit 0, q's bit 1 => x<q here
		} else {
			hit[j] = qi == 0
			bitHit[j] = xi // x's bit 1, q's bit 0 => x>q here
		}

		// bitEq = xi if qi==1 else (1-xi).
		if qi == 1 {
			bitEq[j] = xi
		} else {
			bitEq[j] = notXi
		}
	}

	// prefix[j] is the product of all higher bits' bitEq (the "equal so
	// far" gate for position j), matching what a sequential chain would
	// have held immediately before processing position j.
	prefix, err := e.exclusivePrefixProducts(bitEq, identity)
	if err != nil {
		return false, err
	}

	acc, err := e.encryptSlot0(0) // running "x<q" (or "x>q") result
	if err != nil {
		return false, err
	}
	for j := 0; j < bits; j++ {
		if !hit[j] {
			continue
		}
		contribution, err := e.evaluator.MulRelinNew(prefix[j], bitHit[j])
		if err != nil {
			return false, vaulterr.Wrap(vaulterr.Internal, "index.comparatorResult", err)
		}
		acc, err = e.evaluator.AddNew(acc, contribution)
		if err != nil {
			return false, vaulterr.Wrap(vaulterr.Internal, "index.comparatorResult", err)
		}
	}

	result, err := e.decryptSlot0(acc)
	if err != nil {
		return false, err
	}
	return result != 0, nil
}

func (e *Engine) bitNot(ct *rlwe.Ciphertext, onePt *rlwe.Plaintext) (*rlwe.Ciphertext, error) {
	neg, err := e.evaluator.NegNew(ct)
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.Internal, "index.bitNot", err)
	}
	out, err := e.evaluator.AddNew(neg, onePt)
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.Internal, "index.bitNot", err)
	}
	return out, nil
}

// CompareLessThan decides x < q given x's bit-encrypted form.
func (e *Engine) CompareLessThan(encBits [][]byte, q uint64, bits int) (bool, error) {
	return e.comparatorResult(encBits, q, bits, true)
}

// CompareGreaterThan decides x > q given x's bit-encrypted form.
func (e *Engine) CompareGreaterThan(encBits [][]byte, q uint64, bits int) (bool, error) {
	return e.comparatorResult(encBits, q, bits, false)
}

// CompareRange decides (lo==nil || x>=lo) && (hi==nil || x<=hi). Both bounds
// nil yields true.
func (e *Engine) CompareRange(encBits [][]byte, lo, hi *uint64, bits int) (bool, error) {
	if lo != nil {
		lessThanLo, err := e.CompareLessThan(encBits, *lo, bits)
		if err != nil {
			return false, err
		}
		if lessThanLo {
			return false, nil
		}
	}
	if hi != nil {
		greaterThanHi, err := e.CompareGreaterThan(encBits, *hi, bits)
		if err != nil {
			return false, err
		}
		if greaterThanHi {
			return false, nil
		}
	}
	return true, nil
}
