package index

import (
	"github.com/luxfi/lattice/v7/core/rlwe"

	"github.com/luxfi/vaultdb/vaulterr"
)

// MarshalPublicKey returns the raw binary encoding of pk (no compression;
// the Key Vault compresses key blobs itself before writing them to disk).
func MarshalPublicKey(pk *rlwe.PublicKey) ([]byte, error) {
	raw, err := pk.MarshalBinary()
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.Internal, "index.MarshalPublicKey", err)
	}
	return raw, nil
}

// UnmarshalPublicKey reverses MarshalPublicKey.
func UnmarshalPublicKey(raw []byte) (*rlwe.PublicKey, error) {
	pk := new(rlwe.PublicKey)
	if err := pk.UnmarshalBinary(raw); err != nil {
		return nil, vaulterr.Wrap(vaulterr.Internal, "index.UnmarshalPublicKey", err)
	}
	return pk, nil
}

// MarshalSecretKey returns the raw binary encoding of sk.
func MarshalSecretKey(sk *rlwe.SecretKey) ([]byte, error) {
	raw, err := sk.MarshalBinary()
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.Internal, "index.MarshalSecretKey", err)
	}
	return raw, nil
}

// UnmarshalSecretKey reverses MarshalSecretKey.
func UnmarshalSecretKey(raw []byte) (*rlwe.SecretKey, error) {
	sk := new(rlwe.SecretKey)
	if err := sk.UnmarshalBinary(raw); err != nil {
		return nil, vaulterr.Wrap(vaulterr.Internal, "index.UnmarshalSecretKey", err)
	}
	return sk, nil
}

// MarshalRelinearizationKey returns the raw binary encoding of rlk.
func MarshalRelinearizationKey(rlk *rlwe.RelinearizationKey) ([]byte, error) {
	raw, err := rlk.MarshalBinary()
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.Internal, "index.MarshalRelinearizationKey", err)
	}
	return raw, nil
}

// UnmarshalRelinearizationKey reverses MarshalRelinearizationKey.
func UnmarshalRelinearizationKey(raw []byte) (*rlwe.RelinearizationKey, error) {
	rlk := new(rlwe.RelinearizationKey)
	if err := rlk.UnmarshalBinary(raw); err != nil {
		return nil, vaulterr.Wrap(vaulterr.Internal, "index.UnmarshalRelinearizationKey", err)
	}
	return rlk, nil
}
