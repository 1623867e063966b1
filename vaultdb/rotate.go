package vaultdb

import (
	"context"

	"github.com/luxfi/vaultdb/index"
	"github.com/luxfi/vaultdb/keyvault"
)

// RotateFHEKeys generates a fresh BGV key pair, backs up the previous
// public/secret/relinearization key files under keys/backups/ with a UTC
// timestamp, and swaps the in-process engine to the new keys. Records
// encrypted under the prior key pair become unqueryable — re-encrypting
// them is an operator task, not something this method attempts.
func (db *DB) RotateFHEKeys(ctx context.Context, params index.ParametersLiteral, fhePassword string) error {
	newParams, err := index.NewParametersFromLiteral(params)
	if err != nil {
		return err
	}

	kgen := index.NewKeyGenerator(newParams)
	sk, pk := kgen.GenKeyPair()
	rlk := kgen.GenRelinearizationKey(sk)

	pubRaw, err := index.MarshalPublicKey(pk)
	if err != nil {
		return err
	}
	secRaw, err := index.MarshalSecretKey(sk)
	if err != nil {
		return err
	}
	relinRaw, err := index.MarshalRelinearizationKey(rlk)
	if err != nil {
		return err
	}

	if err := db.vault.RotateFHEKeys(pubRaw, secRaw, keyvault.DefaultPublicKeyFile, keyvault.DefaultSecretKeyFile, fhePassword); err != nil {
		return err
	}
	if err := db.vault.RotateEvaluationKey(relinRaw, keyvault.DefaultRelinKeyFile); err != nil {
		return err
	}

	newEngine, err := index.NewFullEngine(newParams, sk, pk, rlk, nil)
	if err != nil {
		return err
	}
	db.engine = newEngine
	db.ClearCaches(ctx)
	return nil
}
