package index

import (
	"sync"

	"github.com/luxfi/lattice/v7/schemes/bgv"
	"github.com/luxfi/lattice/v7/core/rlwe"

	"github.com/luxfi/vaultdb/vaulterr"
)

// engineMode tags an Engine as full (secret key present) or encrypt-only,
// so decrypt/compare operations are rejected by a runtime check rather than
// by dereferencing a nil secret key.
type engineMode uint8

const (
	modeEncryptOnly engineMode = iota
	modeFull
)

// Engine wraps a BGV context bound to one key pair. Construct it with
// NewFullEngine when the secret key is available, or NewEncryptOnlyEngine
// otherwise; every decrypt/compare method checks mode and returns a
// MODE_ERROR instead of a nil-pointer fault.
type Engine struct {
	params    Parameters
	mode      engineMode
	encoder   *bgv.Encoder
	encryptor *rlwe.Encryptor
	decryptor *rlwe.Decryptor
	evaluator *bgv.Evaluator

	memo sync.Map // emptied by ClearCache; no comparison reads or writes it
}

// NewFullEngine builds an Engine that can encrypt, decrypt, and evaluate
// homomorphic comparisons.
func NewFullEngine(params Parameters, sk *rlwe.SecretKey, pk *rlwe.PublicKey, rlk *rlwe.RelinearizationKey, gks []*rlwe.GaloisKey) (*Engine, error) {
	evk := rlwe.NewMemEvaluationKeySet(rlk, gks...)

	return &Engine{
		params:    params,
		mode:      modeFull,
		encoder:   bgv.NewEncoder(params.Parameters),
		encryptor: rlwe.NewEncryptor(params.Parameters.Parameters, pk),
		decryptor: rlwe.NewDecryptor(params.Parameters.Parameters, sk),
		evaluator: bgv.NewEvaluator(params.Parameters, evk, false),
	}, nil
}

// NewEncryptOnlyEngine builds an Engine that can only encrypt; Decrypt* and
// Compare* methods return MODE_ERROR.
func NewEncryptOnlyEngine(params Parameters, pk *rlwe.PublicKey) (*Engine, error) {
	return &Engine{
		params:    params,
		mode:      modeEncryptOnly,
		encoder:   bgv.NewEncoder(params.Parameters),
		encryptor: rlwe.NewEncryptor(params.Parameters.Parameters, pk),
	}, nil
}

func (e *Engine) requireFull(op string) error {
	if e.mode != modeFull {
		return vaulterr.New(vaulterr.ModeError, op)
	}
	return nil
}

// ClearCache empties the internal comparison memo.
func (e *Engine) ClearCache() {
	e.memo.Range(func(k, _ any) bool {
		e.memo.Delete(k)
		return true
	})
}

func (e *Engine) newZeroSlots() []uint64 {
	return make([]uint64, e.params.Slots())
}

func (e *Engine) plaintextAtMaxLevel() *rlwe.Plaintext {
	return bgv.NewPlaintext(e.params.Parameters, e.params.MaxLevel())
}

// encryptSlot0 encodes v into slot 0 (all other slots zero) and encrypts.
func (e *Engine) encryptSlot0(v uint64) (*rlwe.Ciphertext, error) {
	values := e.newZeroSlots()
	values[0] = v % e.params.PlaintextModulus()

	pt := e.plaintextAtMaxLevel()
	if err := e.encoder.Encode(values, pt); err != nil {
		return nil, vaulterr.Wrap(vaulterr.Internal, "index.encryptSlot0", err)
	}

	ct := bgv.NewCiphertext(e.params.Parameters, 1, pt.Level())
	if err := e.encryptor.Encrypt(pt, ct); err != nil {
		return nil, vaulterr.Wrap(vaulterr.Internal, "index.encryptSlot0", err)
	}
	return ct, nil
}

// decryptSlot0 decrypts ct and returns its slot-0 value.
func (e *Engine) decryptSlot0(ct *rlwe.Ciphertext) (uint64, error) {
	if err := e.requireFull("index.decryptSlot0"); err != nil {
		return 0, err
	}

	pt := e.decryptor.DecryptNew(ct)
	values := e.newZeroSlots()
	if err := e.encoder.Decode(pt, values); err != nil {
		return 0, vaulterr.Wrap(vaulterr.Internal, "index.decryptSlot0", err)
	}
	return values[0], nil
}

// EncryptInt places v in slot 0 of a fresh ciphertext and returns its
// compressed envelope.
func (e *Engine) EncryptInt(v uint64) ([]byte, error) {
	ct, err := e.encryptSlot0(v)
	if err != nil {
		return nil, err
	}
	return marshalCiphertext(ct)
}

// DecryptInt decompresses and decrypts an EncryptInt envelope, requiring
// full mode.
func (e *Engine) DecryptInt(envelope []byte) (uint64, error) {
	if err := e.requireFull("index.DecryptInt"); err != nil {
		return 0, err
	}
	ct, err := unmarshalCiphertext(envelope)
	if err != nil {
		return 0, err
	}
	return e.decryptSlot0(ct)
}

// EncryptString encrypts each UTF-8 byte of s independently, position-wise.
func (e *Engine) EncryptString(s string) ([][]byte, error) {
	bytes := []byte(s)
	out := make([][]byte, len(bytes))
	for i, b := range bytes {
		ct, err := e.EncryptInt(uint64(b))
		if err != nil {
			return nil, err
		}
		out[i] = ct
	}
	return out, nil
}

// DecryptString reverses EncryptString, requiring full mode.
func (e *Engine) DecryptString(envelopes [][]byte) (string, error) {
	out := make([]byte, len(envelopes))
	for i, env := range envelopes {
		v, err := e.DecryptInt(env)
		if err != nil {
			return "", err
		}
		out[i] = byte(v)
	}
	return string(out), nil
}
