package keyvault

import "github.com/luxfi/vaultdb/vaulterr"

// SaveAESKey persists key under file, sealed with password per the
// salt(16) ‖ IV(16) ‖ AES-CBC-PKCS7(...) layout.
func (v *Vault) SaveAESKey(key []byte, file, password string) error {
	sealed, err := sealWithPassword(key, password)
	if err != nil {
		return err
	}
	v.log.WithField("file", file).Info("saving AES key")
	return writeFile(v.path(file), sealed)
}

// LoadAESKey reads and unseals an AES key previously written by SaveAESKey.
func (v *Vault) LoadAESKey(file, password string) ([]byte, error) {
	sealed, err := readFile(v.path(file))
	if err != nil {
		return nil, err
	}
	key, err := openWithPassword(sealed, password)
	if err != nil {
		v.log.WithField("file", file).Warn("AES key unseal failed")
		return nil, err
	}
	return key, nil
}

// GenerateAESKey produces a fresh random AES-256 key and saves it.
func (v *Vault) GenerateAESKey(file, password string) ([]byte, error) {
	key := make([]byte, kekSize)
	if err := randomBytes(key); err != nil {
		return nil, vaulterr.Wrap(vaulterr.Internal, "keyvault.GenerateAESKey", err)
	}
	if err := v.SaveAESKey(key, file, password); err != nil {
		return nil, err
	}
	return key, nil
}
