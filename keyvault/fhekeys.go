package keyvault

// SaveFHEKeys zstd-compresses both blobs, writes the public key unsealed,
// and writes the secret key sealed with password when password != "", or
// unsealed (compressed only) otherwise.
func (v *Vault) SaveFHEKeys(pub, sec []byte, pubFile, secFile, password string) error {
	compressedPub, err := compress(pub)
	if err != nil {
		return err
	}
	if err := writeFile(v.path(pubFile), compressedPub); err != nil {
		return err
	}

	compressedSec, err := compress(sec)
	if err != nil {
		return err
	}

	if password == "" {
		return writeFile(v.path(secFile), compressedSec)
	}

	sealed, err := sealWithPassword(compressedSec, password)
	if err != nil {
		return err
	}
	v.log.WithField("file", secFile).Info("saving sealed FHE secret key")
	return writeFile(v.path(secFile), sealed)
}

// LoadFHEPublicKey reads and decompresses a public key file.
func (v *Vault) LoadFHEPublicKey(pubFile string) ([]byte, error) {
	compressed, err := readFile(v.path(pubFile))
	if err != nil {
		return nil, err
	}
	return decompress(compressed)
}

// LoadFHESecretKey reads a secret key file, unsealing with password when
// non-empty, and decompresses the result.
func (v *Vault) LoadFHESecretKey(secFile, password string) ([]byte, error) {
	data, err := readFile(v.path(secFile))
	if err != nil {
		return nil, err
	}

	compressed := data
	if password != "" {
		compressed, err = openWithPassword(data, password)
		if err != nil {
			return nil, err
		}
	}
	return decompress(compressed)
}

// SaveEvaluationKey persists a relinearization or Galois key blob,
// compressed and unsealed — like the public key, these are shared with
// whatever process evaluates homomorphic predicates, not kept secret.
func (v *Vault) SaveEvaluationKey(raw []byte, file string) error {
	compressed, err := compress(raw)
	if err != nil {
		return err
	}
	v.log.WithField("file", file).Info("saving evaluation key")
	return writeFile(v.path(file), compressed)
}

// LoadEvaluationKey reverses SaveEvaluationKey.
func (v *Vault) LoadEvaluationKey(file string) ([]byte, error) {
	compressed, err := readFile(v.path(file))
	if err != nil {
		return nil, err
	}
	return decompress(compressed)
}
