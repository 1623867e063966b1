package index

import (
	"github.com/klauspost/compress/zstd"
	"github.com/luxfi/lattice/v7/core/rlwe"

	"github.com/luxfi/vaultdb/vaulterr"
)

func zstdCompress(raw []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.Internal, "index.zstdCompress", err)
	}
	defer enc.Close()
	return enc.EncodeAll(raw, nil), nil
}

func zstdDecompress(envelope []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.Internal, "index.zstdDecompress", err)
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(envelope, nil)
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.Internal, "index.zstdDecompress", err)
	}
	return raw, nil
}

// marshalCiphertext binary-marshals ct (rlwe.Ciphertext implements
// encoding.BinaryMarshaler), then zstd-compresses the result. The envelope
// is not authenticated; compression is a size concern only.
func marshalCiphertext(ct *rlwe.Ciphertext) ([]byte, error) {
	raw, err := ct.MarshalBinary()
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.Internal, "index.marshalCiphertext", err)
	}
	return zstdCompress(raw)
}

// unmarshalCiphertext reverses marshalCiphertext.
func unmarshalCiphertext(envelope []byte) (*rlwe.Ciphertext, error) {
	raw, err := zstdDecompress(envelope)
	if err != nil {
		return nil, err
	}

	ct := new(rlwe.Ciphertext)
	if err := ct.UnmarshalBinary(raw); err != nil {
		return nil, vaulterr.Wrap(vaulterr.Internal, "index.unmarshalCiphertext", err)
	}
	return ct, nil
}
