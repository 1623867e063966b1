package keyvault

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/luxfi/vaultdb/vaulterr"
)

const backupTimeLayout = "20060102_150405"

// RotateFHEKeys moves the current public/secret key files into backups/
// with a UTC timestamp suffix, then saves the new key pair in their place.
// If saving the new keys fails, the backups remain and the slot is left
// absent; the caller recovers via RestoreBackup or by regenerating.
func (v *Vault) RotateFHEKeys(newPub, newSec []byte, pubFile, secFile, password string) error {
	ts := time.Now().UTC().Format(backupTimeLayout)

	if err := v.backupFile(pubFile, ts); err != nil {
		return err
	}
	if err := v.backupFile(secFile, ts); err != nil {
		return err
	}

	v.log.WithField("timestamp", ts).Info("rotating FHE keys")
	return v.SaveFHEKeys(newPub, newSec, pubFile, secFile, password)
}

// RotateEvaluationKey backs up the current evaluation key file (relin or
// Galois) with the same timestamp convention as RotateFHEKeys, then saves
// raw in its place.
func (v *Vault) RotateEvaluationKey(raw []byte, file string) error {
	ts := time.Now().UTC().Format(backupTimeLayout)
	if err := v.backupFile(file, ts); err != nil {
		return err
	}
	return v.SaveEvaluationKey(raw, file)
}

// backupFile moves an existing key file into backups/<name>_<timestamp>.
// A missing source file is not an error: rotation of a fresh vault has
// nothing to back up yet.
func (v *Vault) backupFile(name, timestamp string) error {
	src := v.path(name)
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return vaulterr.Wrap(vaulterr.IOFail, "keyvault.backupFile", err)
	}

	dst := v.backupPath(fmt.Sprintf("%s_%s", name, timestamp))
	if err := os.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return vaulterr.Wrap(vaulterr.IOFail, "keyvault.backupFile", err)
	}
	if err := os.Rename(src, dst); err != nil {
		return vaulterr.Wrap(vaulterr.IOFail, "keyvault.backupFile", err)
	}
	return nil
}
